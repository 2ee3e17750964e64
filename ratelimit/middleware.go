package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/CypherAli/My-project/logging"
)

// Middleware wraps handlers with per-client rate limiting.
type Middleware struct {
	limiter   *TokenBucketLimiter
	skipPaths map[string]bool
}

type MiddlewareConfig struct {
	Limiter   *TokenBucketLimiter
	SkipPaths []string
}

func NewMiddleware(config MiddlewareConfig) *Middleware {
	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &Middleware{
		limiter:   config.Limiter,
		skipPaths: skipPaths,
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		clientKey := "ip:" + ClientIP(r)

		result, err := m.limiter.Allow(r.Context(), clientKey)
		if err != nil {
			// Fail open: a broken limiter must not take down market data.
			logging.GetLogger().WithField("error", err.Error()).Warn("Rate limiter error, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", m.limiter.MaxTokens()))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))

		if !result.Allowed {
			retryAfterSeconds := int(result.RetryAfter.Seconds()) + 1

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSeconds))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))
			w.WriteHeader(http.StatusTooManyRequests)

			fmt.Fprintf(w, `{"success":false,"error":"Rate limit exceeded","retry_after_seconds":%d,"reset_at":"%s"}`,
				retryAfterSeconds, result.ResetAt.Format(time.RFC3339))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP extracts the client address, honoring proxy headers.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
