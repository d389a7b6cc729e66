package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"family-recipes-go/internal/ratelimit"
	"family-recipes-go/pkg/logger"
)

type Limiter interface {
	Allow(ctx context.Context, subject string) (ratelimit.Decision, error)
}

// SubjectFunc names whose budget a request spends. An empty subject skips the check.
type SubjectFunc func(r *http.Request) string

// RateLimit enforces limiter per subject. A nil limiter disables the check and
// limiter failures let the request through.
func RateLimit(limiter Limiter, subject SubjectFunc, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := subject(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.FromContext(r.Context(), log).Warn("ratelimit: check failed, allowing request", "err", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter(time.Now())))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP keys by remote address; chi's RealIP has already applied proxy headers.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func AuthenticatedUser(r *http.Request) string {
	return UserIDFromContext(r.Context())
}
