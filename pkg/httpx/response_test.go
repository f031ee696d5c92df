package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/mfa/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote addr", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"remote addr without port", "192.168.1.1", nil, "192.168.1.1"},
		{"forwarded for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "203.0.113.1"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
		{"forwarded wins", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "203.0.113.2"}, "203.0.113.1"},
		{"ipv6", "[2001:db8::1]:443", nil, "2001:db8::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.ClientIP(req))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Code string `json:"code"`
	}

	t.Run("valid", func(t *testing.T) {
		var b body
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"123456"}`))
		require.NoError(t, httpx.DecodeJSON(req, &b))
		require.Equal(t, "123456", b.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		b := body{Code: "keep"}
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		require.NoError(t, httpx.DecodeJSON(req, &b))
		require.Equal(t, "keep", b.Code)
	})

	for _, raw := range []string{`{"code":`, `{"unknown":1}`, `[]`} {
		t.Run(raw, func(t *testing.T) {
			var b body
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(raw))
			require.ErrorIs(t, httpx.DecodeJSON(req, &b), httpx.ErrBadBody)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]bool{"ok": true})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
