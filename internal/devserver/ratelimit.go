package devserver

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"
)

// rateLimitDetail is the 429 body detail shown to clients.
const rateLimitDetail = "Too many requests. Please wait a moment and try again."

// limitMiddleware rejects requests once the token bucket is empty.
func limitMiddleware(limiter *rate.Limiter, metrics *Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				metrics.RecordRateLimited()
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter.Limit())))
				writeDetail(w, http.StatusTooManyRequests, rateLimitDetail)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds estimates the wait until one token is refilled.
func retryAfterSeconds(limit rate.Limit) int {
	if limit == rate.Inf || limit <= 0 {
		return 1
	}
	secs := int(math.Ceil(1.0 / float64(limit)))
	if secs < 1 {
		secs = 1
	}
	return secs
}
