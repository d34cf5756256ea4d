package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petfm/server/handlers"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg/ratelimit"
)

func doRequest(t *testing.T, handler http.Handler, username string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/artists", nil)
	if username != "" {
		user := &models.User{ID: "u1", Username: username, Role: models.RoleUser}
		req = req.WithContext(context.WithValue(req.Context(), handlers.UserContextKey, user))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLimitRejectsAfterWindowSpent(t *testing.T) {
	limiter := ratelimit.New(3, time.Minute)
	t.Cleanup(limiter.Stop)

	wrapped := NewRateLimitMiddleware(limiter, "3 requests per minute max").
		Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 3; i++ {
		rec := doRequest(t, wrapped, "alice")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, wrapped, "alice")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body rateLimitBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body.Error)
	assert.Equal(t, "3 requests per minute max", body.Message)

	// Another user is unaffected by alice's window.
	rec = doRequest(t, wrapped, "bob")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLimitRequiresAuthenticatedUser(t *testing.T) {
	limiter := ratelimit.New(3, time.Minute)
	t.Cleanup(limiter.Stop)

	wrapped := NewRateLimitMiddleware(limiter, "3 requests per minute max").
		Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	rec := doRequest(t, wrapped, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
