package ratelimit

import (
	"fmt"
	"net"
	"net/http"

	"github.com/clockwise-hq/clockwise-web/internal/auth"
	"github.com/clockwise-hq/clockwise-web/internal/logger"
)

// Middleware creates an HTTP middleware that applies rate limiting.
// Authenticated requests are keyed by employee ID, anonymous ones by client
// IP (install chi's RealIP middleware ahead of this one).
func Middleware(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := requestKey(r)

			if !limiter.Allow(r.Context(), key) {
				logger.Ctx(r.Context()).Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestKey(r *http.Request) string {
	if employeeID, ok := auth.GetEmployeeID(r.Context()); ok {
		return fmt.Sprintf("employee:%d", employeeID)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
