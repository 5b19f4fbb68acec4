package middleware

import (
	"net"
	"net/http"
	"strconv"

	"vidtube/internal/service"
	"vidtube/pkg/errors"
	"vidtube/pkg/logger"
)

// RateLimit rejects clients that exceed the limiter's window for scope.
// Limiter failures let the request through.
func RateLimit(limiter service.RateLimiter, scope string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			info, err := limiter.Allow(r.Context(), scope, ClientIP(r))
			if err != nil {
				log.WithError(err).WithField("scope", scope).Warn("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(info.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(info.Remaining(), 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(info.TTL.Seconds())))

			if !info.IsAllowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(info.TTL.Seconds())))
				writeErrorResponse(w, r, errors.NewRateLimitError("Too many requests, please try again later"), log)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the peer address. Forwarding headers are ignored here;
// behind a trusted proxy chi's RealIP rewrites RemoteAddr before this runs.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
