package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/petfm/server/handlers"
	"github.com/petfm/server/models"
	"github.com/petfm/server/pkg"
	"github.com/petfm/server/pkg/ratelimit"
)

// rateLimitBody is the fixed 429 payload. It deliberately does not use
// the pkg.APIResponse envelope, clients key on the top-level "error"
// field to detect throttling.
type rateLimitBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RateLimitMiddleware gates requests per authenticated username. It
// must run after AuthMiddleware.Require, the principal comes from the
// request context.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	message string
}

func NewRateLimitMiddleware(limiter *ratelimit.Limiter, message string) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiter: limiter,
		message: message,
	}
}

// Limit counts the request against the caller's window and rejects with
// 429 once the window is spent. Rejected requests still count.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(handlers.UserContextKey).(*models.User)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if !m.limiter.Allow(user.Username) {
			retryAfter := m.limiter.RetryAfterSeconds(user.Username)
			log.Printf("[ratelimit] user %s throttled, retry in %ds", user.Username, retryAfter)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(rateLimitBody{
				Error:   "Rate limit exceeded",
				Message: m.message,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
