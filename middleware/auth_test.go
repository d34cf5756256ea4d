package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfm/server/database"
	"github.com/petfm/server/handlers"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg/ratelimit"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/services"
)

func newAuthFixture(t *testing.T) (*AuthMiddleware, services.AuthService) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.New(dbPath, database.EmbeddedMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	refreshRepo := repository.NewSQLiteRefreshTokenRepo(db.Conn)
	authService := services.NewAuthService(
		db.Conn, userRepo, refreshRepo, "test-secret", 5*time.Minute, 7*24*time.Hour,
	)

	return NewAuthMiddleware(authService, userRepo), authService
}

func loginFixtureUser(t *testing.T, authService services.AuthService, username string) string {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, authService.Register(ctx, &models.RegisterRequest{
		Username: username,
		Password: "password123",
	}))

	tokens, err := authService.Login(ctx, &models.LoginRequest{
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	return tokens.AccessToken
}

func doBearerRequest(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireRejectsBadCredentials(t *testing.T) {
	authMW, _ := newAuthFixture(t)

	wrapped := authMW.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := doBearerRequest(wrapped, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doBearerRequest(wrapped, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedChainThrottlesAuthenticatedRoute(t *testing.T) {
	authMW, authService := newAuthFixture(t)
	token := loginFixtureUser(t, authService, "alice")

	limiter := ratelimit.New(2, time.Minute)
	t.Cleanup(limiter.Stop)
	rateLimitMW := NewRateLimitMiddleware(limiter, "2 requests per minute max")

	// Same composition main uses for every authenticated route: auth
	// first, then the limiter keyed on the authenticated username.
	wrapped := authMW.Require(rateLimitMW.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		require.True(t, ok)
		assert.Equal(t, "alice", user.Username)
		w.WriteHeader(http.StatusOK)
	})))

	for i := 0; i < 2; i++ {
		rec := doBearerRequest(wrapped, token)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doBearerRequest(wrapped, token)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
