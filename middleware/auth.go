// Package middleware holds the layers a request passes through before
// reaching its handler: Auth -> RateLimit -> Handler. Each middleware is
// a func(next http.Handler) http.Handler, a failed check responds
// directly and never calls next.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/petfm/server/handlers"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/services"
)

// AuthMiddleware validates the bearer token and loads the caller.
type AuthMiddleware struct {
	authService services.AuthService
	userRepo    repository.UserRepository
}

func NewAuthMiddleware(authService services.AuthService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userRepo:    userRepo,
	}
}

// Require rejects requests without a valid access token. On success the
// caller's user record rides the request context under
// handlers.UserContextKey.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.authService.ValidateAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// The token may outlive its user, confirm the account still exists.
		user, err := m.userRepo.GetByUsername(r.Context(), claims.Username)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found")
			return
		}

		user.PasswordHash = ""

		ctx := context.WithValue(r.Context(), handlers.UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
