package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/mfa/pkg/httpx"
	"github.com/aussiebroadwan/mfa/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

type fakeVerifier map[string]jwtx.Claims

func (f fakeVerifier) Verify(token string) (jwtx.Claims, error) {
	c, ok := f[token]
	if !ok {
		return jwtx.Claims{}, errors.New("bad token")
	}
	return c, nil
}

func claimsFor(sub string, scopes ...string) jwtx.Claims {
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		Scopes:           scopes,
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mark("outer"), mark("inner"))
	serve(h, requestFrom("10.0.0.1:1"))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	v := fakeVerifier{
		"good":      claimsFor("user-1"),
		"anonymous": claimsFor(""),
	}

	var gotUser string
	h := httpx.AuthnMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = httpx.UserIDFromContext(r.Context())
		claims, ok := httpx.ClaimsFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, gotUser, claims.Subject)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"no subject", "Bearer anonymous", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/mfa/status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, req)
			require.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				require.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Bearer error=\"invalid_token\""))
				require.Contains(t, rec.Body.String(), "invalid_token")
			}
		})
	}
	require.Equal(t, "user-1", gotUser)
}

func TestRequireAnyScope(t *testing.T) {
	v := fakeVerifier{
		"mfa":   claimsFor("u1", "profile:read", "mfa:manage"),
		"other": claimsFor("u2", "profile:read"),
	}

	guarded := httpx.Chain(okHandler, httpx.AuthnMiddleware(v), httpx.RequireAnyScope("mfa:manage"))
	open := httpx.Chain(okHandler, httpx.AuthnMiddleware(v), httpx.RequireAnyScope())

	call := func(h http.Handler, token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return serve(h, req).Code
	}

	require.Equal(t, http.StatusOK, call(guarded, "mfa"))
	require.Equal(t, http.StatusForbidden, call(guarded, "other"))
	require.Equal(t, http.StatusOK, call(open, "other"))
}
