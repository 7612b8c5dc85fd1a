package api

import (
	"net/http"

	"golang.org/x/time/rate"
)

// rateLimiter is satisfied by the token bucket and by test doubles.
type rateLimiter interface {
	Allow() bool
}

// unlimitedRoutes never draw from the bucket.
var unlimitedRoutes = map[string]struct{}{
	"/config":    {},
	"/config/":   {},
	"/health":    {},
	"/health/":   {},
	"/health/db": {},
}

type tokenBucket struct {
	limiter *rate.Limiter
}

// newTokenBucketLimiter clamps non-positive settings to one request per second
// with a burst of one.
func newTokenBucketLimiter(ratePerSecond float64, burst int) rateLimiter {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (b *tokenBucket) Allow() bool {
	if b == nil || b.limiter == nil {
		return true
	}
	return b.limiter.Allow()
}

// limited reports whether r draws from the bucket.
func limited(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return true
	}
	_, exempt := unlimitedRoutes[r.URL.Path]
	return !exempt
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limited(r) || limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
