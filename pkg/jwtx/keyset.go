package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the identity provider's public verification keys. It is
// safe for concurrent use; the JWKS refresher swaps its contents while
// requests are being verified.
type KeySet struct {
	mu  sync.RWMutex
	pub map[string]any // kid: ed25519.PublicKey | *rsa.PublicKey | *ecdsa.PublicKey
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]any)}
}

// AddSigner registers a Signer's public key. Used by tests and tooling.
func (k *KeySet) AddSigner(s Signer) error {
	return k.AddJWK(s.PublicJWK())
}

// AddJWK parses j and adds it to the set.
func (k *KeySet) AddJWK(j JWK) error {
	key, err := parseJWKToKey(j)
	if err != nil {
		return err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[j.Kid] = key
	return nil
}

// AddPublicKeyPEM adds a PKIX "PUBLIC KEY" PEM block under kid.
func (k *KeySet) AddPublicKeyPEM(kid string, pemBytes []byte) error {
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != "PUBLIC KEY" {
		return errors.New("jwtx: expected PEM block of type PUBLIC KEY")
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("jwtx: parse public key: %w", err)
	}
	switch key.(type) {
	case ed25519.PublicKey, *rsa.PublicKey, *ecdsa.PublicKey:
	default:
		return fmt.Errorf("jwtx: unsupported public key type %T", key)
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[kid] = key
	return nil
}

// Get returns the public key for the given kid.
func (k *KeySet) Get(kid string) (any, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// IsReady returns true if the KeySet has at least one key loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// ResetFromJWKS replaces all keys from a JWKS. Keys the set cannot parse
// are skipped so one exotic key does not lock out the rest; the call fails
// only when nothing usable remains.
func (k *KeySet) ResetFromJWKS(jwks JWKS) (skipped int, err error) {
	next := make(map[string]any, len(jwks.Keys))
	for _, j := range jwks.Keys {
		if j.Use != "" && j.Use != "sig" {
			skipped++
			continue
		}
		key, err := parseJWKToKey(j)
		if err != nil {
			skipped++
			continue
		}
		next[j.Kid] = key
	}
	if len(next) == 0 {
		return skipped, errors.New("jwtx: JWKS contains no usable signing keys")
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	return skipped, nil
}

func decodeB64(field, s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode %s: %w", field, err)
	}
	return b, nil
}

// parseJWKToKey converts a JWK into a crypto public key. Supports RSA,
// Ed25519 (OKP) and P-256 (EC).
func parseJWKToKey(j JWK) (any, error) {
	switch j.Kty {
	case "OKP":
		if j.Crv != "Ed25519" {
			return nil, errors.New("jwtx: unsupported OKP curve " + j.Crv)
		}
		x, err := decodeB64("x", j.X)
		if err != nil {
			return nil, err
		}
		if len(x) != ed25519.PublicKeySize {
			return nil, errors.New("jwtx: invalid Ed25519 public key size")
		}
		return ed25519.PublicKey(x), nil

	case "RSA":
		n, err := decodeB64("n", j.N)
		if err != nil {
			return nil, err
		}
		e, err := decodeB64("e", j.E)
		if err != nil {
			return nil, err
		}
		return &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}, nil

	case "EC":
		if j.Crv != "P-256" {
			return nil, errors.New("jwtx: unsupported EC curve " + j.Crv)
		}
		x, err := decodeB64("x", j.X)
		if err != nil {
			return nil, err
		}
		y, err := decodeB64("y", j.Y)
		if err != nil {
			return nil, err
		}
		pub := &ecdsa.PublicKey{
			Curve: elliptic.P256(),
			X:     new(big.Int).SetBytes(x),
			Y:     new(big.Int).SetBytes(y),
		}
		if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
			return nil, errors.New("jwtx: EC point not on curve")
		}
		return pub, nil

	default:
		return nil, errors.New("jwtx: unsupported kty " + j.Kty)
	}
}
