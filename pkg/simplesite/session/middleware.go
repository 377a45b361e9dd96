package session

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
)

type contextKey string

// UsernameContextKey is the context key holding the authenticated admin
const UsernameContextKey contextKey = "session:username"

// RequireSession rejects requests without a valid session cookie with a 401
// JSON body
func RequireSession(signer *Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := TokenFromRequest(r)
			if !ok {
				unauthorized(w, r)
				return
			}
			username, err := signer.Authenticate(token)
			if err != nil {
				unauthorized(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), UsernameContextKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the admin set by RequireSession, or ""
func UsernameFromContext(ctx context.Context) string {
	if username, ok := ctx.Value(UsernameContextKey).(string); ok {
		return username
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]any{"success": false, "error": "Unauthorized"})
}
