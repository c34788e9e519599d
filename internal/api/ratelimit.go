package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/http/response"
	"github.com/icgdb/icgdb-server/internal/ratelimit"
)

// RateLimiter is the per-key token bucket used by the API.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter allows ratePerInterval requests per interval per key, with
// bursts up to burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

const rateLimitedMessage = "Too many requests. Please try again later."

// RateLimitMiddleware rate limits plain http handlers by client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r.Header.Get("X-Forwarded-For"), r.Header.Get("X-Real-IP"), r.RemoteAddr)

			if !limiter.Allow(key) {
				logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				response.TooManyRequests(w, rateLimitedMessage, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitOperation is the huma equivalent of RateLimitMiddleware, for
// operations registered through huma.
func (s *Server) rateLimitOperation(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.Header("X-Forwarded-For"), ctx.Header("X-Real-IP"), ctx.RemoteAddr())

	if !s.authRateLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded", "ip", key, "path", ctx.URL().Path)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, rateLimitedMessage)
		return
	}

	next(ctx)
}

// clientIP picks the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address without its port.
func clientIP(forwardedFor, realIP, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	if realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
