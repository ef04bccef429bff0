package ratelimit

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Limiter provides rate limiting functionality
type Limiter struct {
	limiter *limiter.Limiter
	methods []string
	hits    int64
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	// Methods that are limited; others pass through untouched.
	Methods []string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
		Methods:           []string{http.MethodPost},
	}
}

// NewLimiter creates a new rate limiter backed by an in-memory store
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = def.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	if len(config.Methods) == 0 {
		config.Methods = def.Methods
	}

	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "budget",
		CleanUpInterval: config.CleanupInterval,
	})
	rate := limiter.Rate{Period: time.Minute, Limit: int64(config.RequestsPerMinute)}

	return &Limiter{
		limiter: limiter.New(store, rate),
		methods: config.Methods,
	}
}

// Allow consumes one request for key and reports whether it fits the budget.
// The returned context carries the remaining quota and reset time.
func (rl *Limiter) Allow(ctx context.Context, key string) (bool, limiter.Context, error) {
	lc, err := rl.limiter.Get(ctx, key)
	if err != nil {
		return false, limiter.Context{}, err
	}
	if lc.Reached {
		atomic.AddInt64(&rl.hits, 1)
		return false, lc, nil
	}
	return true, lc, nil
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits int64
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{TotalHits: atomic.LoadInt64(&rl.hits)}
}

// Middleware creates HTTP middleware for rate limiting. Store failures let
// the request through.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(rl.methods, r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ok, lc, err := rl.Allow(r.Context(), extractIP(r))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))

			if !ok {
				if onLimit != nil {
					onLimit(w, r)
				} else {
					w.Header().Set("Retry-After", "60")
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
