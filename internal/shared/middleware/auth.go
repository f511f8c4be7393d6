package middleware

import (
	"context"
	"net/http"

	"household/internal/shared/auth"
)

type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
	EmailKey  ContextKey = "email"
)

func Auth(jwt *auth.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromRequest(r)
			if err != nil {
				if err == auth.ErrNoToken {
					http.Error(w, "Authentication required", http.StatusUnauthorized)
				} else {
					http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				}
				return
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// Authenticator adapts jwt for callers that only need a yes/no answer,
// such as the WebSocket upgrade.
func Authenticator(jwt *auth.JWT) func(*http.Request) (string, bool) {
	return func(r *http.Request) (string, bool) {
		token, err := auth.TokenFromRequest(r)
		if err != nil {
			return "", false
		}
		claims, err := jwt.Validate(token)
		if err != nil {
			return "", false
		}
		return claims.UserID, true
	}
}
