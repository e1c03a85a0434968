package strava

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrDailyLimit is returned when the daily request budget is spent.
// Waiting for the next day inside a sync run is never worth it.
var ErrDailyLimit = errors.New("strava daily rate limit reached")

// Strava rate limits:
// - 100 requests per 15 minutes
// - 1000 requests per day
const (
	DefaultShortLimit = 100
	DefaultDailyLimit = 1000
	ShortWindow       = 15 * time.Minute
	MinRequestGap     = 150 * time.Millisecond
)

// window is a fixed request budget that resets at resetsAt
type window struct {
	limit    int
	usage    int
	resetsAt time.Time
}

func (w *window) roll(now time.Time, next func(time.Time) time.Time) {
	if !now.Before(w.resetsAt) {
		w.usage = 0
		w.resetsAt = next(now)
	}
}

func (w *window) exhausted() bool {
	return w.usage >= w.limit
}

func nextShortReset(now time.Time) time.Time {
	return now.Add(ShortWindow)
}

func nextDailyReset(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// RateLimiter keeps requests within Strava's short and daily budgets
type RateLimiter struct {
	mu sync.Mutex

	short window
	daily window

	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewRateLimiter creates a new rate limiter with Strava's limits
func NewRateLimiter() *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		short:       window{limit: DefaultShortLimit, resetsAt: nextShortReset(now)},
		daily:       window{limit: DefaultDailyLimit, resetsAt: nextDailyReset(now)},
		minInterval: MinRequestGap,
		now:         time.Now,
	}
}

// Wait blocks until a request fits the short window and the minimum gap.
// It fails fast with ErrDailyLimit instead of sleeping until tomorrow.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := r.now()
		r.short.roll(now, nextShortReset)
		r.daily.roll(now, nextDailyReset)

		if r.daily.exhausted() {
			r.mu.Unlock()
			return ErrDailyLimit
		}

		var wait time.Duration
		switch {
		case r.short.exhausted():
			wait = r.short.resetsAt.Sub(now)
		case now.Sub(r.lastRequest) < r.minInterval:
			wait = r.minInterval - now.Sub(r.lastRequest)
		default:
			r.short.usage++
			r.daily.usage++
			r.lastRequest = now
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// UpdateFromHeaders updates rate limit state from Strava response headers
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strava returns: X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512"
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.usage, r.daily.usage = short, daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit, r.daily.limit = short, daily
	}
}

// Status returns the remaining requests in each window
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.limit - r.short.usage, r.daily.limit - r.daily.usage
}

func parsePair(v string) (int, int, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
