package httpx

import (
	"net/http"
	"strings"
)

// RequireAnyScope lets the request through when the token carries at least
// one of the required scopes. With no scopes listed it is a no-op.
func RequireAnyScope(required ...string) Middleware {
	if len(required) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	want := make(map[string]struct{}, len(required))
	for _, s := range required {
		want[s] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, s := range scopesFromCtx(r.Context()) {
				if _, ok := want[s]; ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set("WWW-Authenticate",
				`Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
			WriteJSON(w, http.StatusForbidden, map[string]string{
				"error":             "insufficient_scope",
				"error_description": "token lacks a required scope",
			})
		})
	}
}
