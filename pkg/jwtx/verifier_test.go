package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/aussiebroadwan/mfa/pkg/cryptox"
	"github.com/aussiebroadwan/mfa/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://idp.campus.example"
	testAudience = "mfa"
)

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	s, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return s
}

func mint(t *testing.T, s jwtx.Signer, mutate func(*jwtx.Claims)) string {
	t.Helper()
	c := jwtx.NewAccessClaims("user-1", "alice@school.example", "alice", nil,
		5*time.Minute, testIssuer, []string{testAudience}, time.Now().UTC())
	if mutate != nil {
		mutate(&c)
	}
	tok, err := s.Sign(c)
	require.NoError(t, err)
	return tok
}

func newEdDSAVerifier(t *testing.T, keys *jwtx.KeySet) jwtx.Verifier {
	t.Helper()
	v, err := jwtx.NewVerifier("EdDSA", keys, jwtx.VerifyOptions{
		Issuer:   testIssuer,
		Audience: []string{testAudience},
		Leeway:   5 * time.Second,
	})
	require.NoError(t, err)
	return v
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	require.False(t, keys.IsReady())
	require.NoError(t, keys.AddSigner(signer))
	require.True(t, keys.IsReady())

	claims, err := newEdDSAVerifier(t, keys).Verify(mint(t, signer, nil))
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "alice@school.example", claims.Email)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, []string{"pwd"}, claims.AMR)
}

func TestVerifyFromPublicKeyPEM(t *testing.T) {
	signer := newSigner(t, "static")
	pubPEM, err := signer.PublicKeyPEM()
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddPublicKeyPEM("static", pubPEM))

	_, err = newEdDSAVerifier(t, keys).Verify(mint(t, signer, nil))
	require.NoError(t, err)

	require.Error(t, keys.AddPublicKeyPEM("bad", []byte("not pem")))
}

func TestVerifyFailures(t *testing.T) {
	signer := newSigner(t, "k1")
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	v := newEdDSAVerifier(t, keys)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"malformed", "not.a.jwt", jwtx.ErrMalformed},
		{"wrong issuer", mint(t, signer, func(c *jwtx.Claims) { c.Issuer = "evil" }), jwtx.ErrIssuer},
		{"wrong audience", mint(t, signer, func(c *jwtx.Claims) { c.Audience = jwt.ClaimStrings{"grades"} }), jwtx.ErrAudience},
		{"expired", mint(t, signer, func(c *jwtx.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		}), jwtx.ErrExpired},
		{"not yet valid", mint(t, signer, func(c *jwtx.Claims) {
			c.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
		}), jwtx.ErrNotYetValid},
		{"no expiry", mint(t, signer, func(c *jwtx.Claims) { c.ExpiresAt = nil }), jwtx.ErrInvalidClaim},
		{"unknown kid", mint(t, newSigner(t, "k2"), nil), jwtx.ErrUnknownKID},
		{"wrong key same kid", mint(t, newSigner(t, "k1"), nil), jwtx.ErrInvalidSig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func rsaJWK(kid string, pub *rsa.PublicKey) jwtx.JWK {
	return jwtx.JWK{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		Kid: kid,
		N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}
}

func TestRS256Verify(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(rsaJWK("rsa-1", &priv.PublicKey)))

	c := jwtx.NewAccessClaims("user-9", "", "", nil, time.Minute, testIssuer, []string{testAudience}, time.Now())
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
	tok.Header["kid"] = "rsa-1"
	raw, err := tok.SignedString(priv)
	require.NoError(t, err)

	v, err := jwtx.NewVerifier("RS256", keys, jwtx.VerifyOptions{Issuer: testIssuer})
	require.NoError(t, err)
	claims, err := v.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-9", claims.AccountLabel())

	// An EdDSA verifier must refuse the RS256 token outright.
	_, err = newEdDSAVerifier(t, keys).Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsKeyOfWrongType(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// The RSA key is registered under the kid the EdDSA token names.
	signer := newSigner(t, "shared")
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(rsaJWK("shared", &priv.PublicKey)))

	_, err = newEdDSAVerifier(t, keys).Verify(mint(t, signer, nil))
	require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
}

func TestNewVerifier_UnsupportedAlg(t *testing.T) {
	_, err := jwtx.NewVerifier("HS256", jwtx.NewKeySet(), jwtx.VerifyOptions{})
	require.ErrorIs(t, err, jwtx.ErrAlgMismatch)
}
