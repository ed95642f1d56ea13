package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/josearcagni/cmcwebapp/internal/models"
	"github.com/josearcagni/cmcwebapp/internal/utils"
)

type contextKey string

// ActorContextKey is where the resolved actor is stored in the request context
const ActorContextKey contextKey = "actor"

// Auth returns a middleware that verifies the Bearer token and resolves the
// acting identity into the request context
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			actor := utils.ActorFromClaims(claims)
			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom extracts the resolved actor from a request context
func ActorFrom(r *http.Request) *models.Actor {
	actor, _ := r.Context().Value(ActorContextKey).(*models.Actor)
	return actor
}
