package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/phrazzld/taskmanager-api/internal/api/shared"
	"github.com/phrazzld/taskmanager-api/internal/metrics"
	"github.com/phrazzld/taskmanager-api/internal/platform/logger"
	"github.com/phrazzld/taskmanager-api/internal/ratelimit"
	"github.com/phrazzld/taskmanager-api/internal/redact"
)

// RateLimitObserver records rate limit decisions.
type RateLimitObserver interface {
	ObserveRateLimit(route, outcome string)
}

// RateLimit throttles requests per client IP. route names the limited
// endpoint in metrics and logs. Limiter errors let the request through.
func RateLimit(limiter ratelimit.Limiter, route string, observer RateLimitObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), route+"|"+clientIP(r))
			switch {
			case err != nil:
				logger.FromContext(r.Context()).Warn("rate limiter unavailable, allowing request",
					slog.String("route", route),
					slog.String("error", redact.Error(err)))
				observe(observer, route, metrics.OutcomeError)
			case !decision.Allowed:
				observe(observer, route, metrics.OutcomeBlocked)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(decision)))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later.")
				return
			default:
				observe(observer, route, metrics.OutcomeAllowed)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func observe(observer RateLimitObserver, route, outcome string) {
	if observer != nil {
		observer.ObserveRateLimit(route, outcome)
	}
}

func retryAfterSeconds(d ratelimit.Decision) int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// clientIP returns the host part of RemoteAddr, which chi's RealIP
// middleware has already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
