package jwtx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/mfa/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestFetchJWKS(t *testing.T) {
	signer := newSigner(t, "k1")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/jwks.json" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}})
	}))
	defer srv.Close()

	jwks, err := jwtx.FetchJWKS(context.Background(), srv.Client(), srv.URL+"/.well-known/jwks.json")
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "k1", jwks.Keys[0].Kid)

	_, err = jwtx.FetchJWKS(context.Background(), srv.Client(), srv.URL+"/missing")
	require.Error(t, err)
}

func TestResetFromJWKS(t *testing.T) {
	old := newSigner(t, "old")
	fresh := newSigner(t, "fresh")

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(old))

	skipped, err := keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{
		fresh.PublicJWK(),
		{Kty: "oct", Kid: "symmetric"},
		{Kty: "OKP", Crv: "X25519", Kid: "wrong-curve"},
		{Kty: "RSA", Use: "enc", Kid: "encryption"},
	}})
	require.NoError(t, err)
	require.Equal(t, 3, skipped)

	_, err = keys.Get("old")
	require.ErrorIs(t, err, jwtx.ErrNoKey, "reset replaces the previous keys")
	_, err = keys.Get("fresh")
	require.NoError(t, err)

	_, err = keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{{Kty: "oct"}}})
	require.Error(t, err)
	_, err = keys.Get("fresh")
	require.NoError(t, err, "a failed reset keeps the current keys")
}
