package jwtx

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience values the token must contain (claims.aud). Empty means "don't care".
	Audience []string

	// Leeway allows small clock skew when validating exp/nbf/iat.
	Leeway time.Duration
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// keyVerifier validates tokens of a single algorithm against a KeySet.
type keyVerifier struct {
	method jwt.SigningMethod
	keys   *KeySet
	opts   VerifyOptions
}

// NewVerifier returns a Verifier for alg ("EdDSA", "RS256" or "ES256").
func NewVerifier(alg string, keys *KeySet, opts VerifyOptions) (Verifier, error) {
	switch alg {
	case jwt.SigningMethodEdDSA.Alg():
		return &keyVerifier{method: jwt.SigningMethodEdDSA, keys: keys, opts: opts}, nil
	case jwt.SigningMethodRS256.Alg():
		return &keyVerifier{method: jwt.SigningMethodRS256, keys: keys, opts: opts}, nil
	case jwt.SigningMethodES256.Alg():
		return &keyVerifier{method: jwt.SigningMethodES256, keys: keys, opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrAlgMismatch, alg)
	}
}

// Verify parses tokenStr, checks its signature, lifetime, issuer and audience.
func (v *keyVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.method.Alg()}),
		jwt.WithLeeway(v.opts.Leeway),
		jwt.WithExpirationRequired(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, v.keyFunc)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.opts.Audience); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

func (v *keyVerifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}

	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}

	// Make sure the key type matches the algorithm.
	var ok bool
	switch v.method {
	case jwt.SigningMethodEdDSA:
		_, ok = pub.(ed25519.PublicKey)
	case jwt.SigningMethodRS256:
		_, ok = pub.(*rsa.PublicKey)
	case jwt.SigningMethodES256:
		_, ok = pub.(*ecdsa.PublicKey)
	}
	if !ok {
		return nil, fmt.Errorf("%w: key %q is not usable with %s", ErrAlgMismatch, kid, v.method.Alg())
	}
	return pub, nil
}

// mapParseError folds golang-jwt errors into the package sentinels.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID), errors.Is(err, ErrAlgMismatch):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", ErrNotYetValid, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
