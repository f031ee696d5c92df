package cryptox

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
)

// Ed25519Key draws a new Ed25519 private key from the generator's random
// source and returns it as a PKCS8 "PRIVATE KEY" PEM block, the form
// jwtx.NewSignerEdDSA loads.
func (g Generator) Ed25519Key() ([]byte, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(g.reader(), seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	priv := ed25519.NewKeyFromSeed(seed)

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("cryptox: marshal ed25519 key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// GenerateEd25519Key is Generator{}.Ed25519Key.
func GenerateEd25519Key() ([]byte, error) {
	return Generator{}.Ed25519Key()
}
