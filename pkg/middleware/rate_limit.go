package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"stablebook/pkg/auth"
	apperrors "stablebook/pkg/errors"
	httputil "stablebook/pkg/http"
	"stablebook/pkg/logger"
)

// CallerRateLimiter is a sliding window limiter keyed by caller id.
type CallerRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	log      *logger.Logger
	now      func() time.Time
	stopCh   chan struct{}
	once     sync.Once
}

func NewCallerRateLimiter(limit int, window time.Duration, log *logger.Logger) *CallerRateLimiter {
	limiter := &CallerRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		log:      log,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *CallerRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *CallerRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

// Allow records a request for key and reports whether it fits the window.
func (rl *CallerRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// CallerRateLimit throttles writes by authenticated callers. Reads and
// anonymous requests pass through; the handlers reject the latter on their own.
func CallerRateLimit(limiter *CallerRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := auth.CallerFromContext(r.Context())
			if caller == nil || isReadOnly(r.Method) || limiter.Allow(caller.UserID) {
				next.ServeHTTP(w, r)
				return
			}

			limiter.log.Warn("Rate limit exceeded",
				"request_id", logger.RequestID(r.Context()),
				"caller_id", caller.UserID,
				"path", r.URL.Path,
			)

			w.Header().Set("Retry-After", retryAfterSeconds(limiter.window))
			_ = httputil.WriteError(w, apperrors.TooManyRequests("Rate limit exceeded"))
		})
	}
}

func retryAfterSeconds(window time.Duration) string {
	seconds := int(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func isReadOnly(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
