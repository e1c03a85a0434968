package strava

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestUpdateFromHeaders(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set("X-RateLimit-Limit", "200,2000")
	h.Set("X-RateLimit-Usage", "34,512")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	if short != 166 || daily != 1488 {
		t.Errorf("Status() = %d, %d; want 166, 1488", short, daily)
	}
}

func TestUpdateFromHeadersIgnoresGarbage(t *testing.T) {
	r := NewRateLimiter()

	h := http.Header{}
	h.Set("X-RateLimit-Usage", "lots")
	r.UpdateFromHeaders(h)

	short, daily := r.Status()
	if short != DefaultShortLimit || daily != DefaultDailyLimit {
		t.Errorf("Status() = %d, %d; want defaults", short, daily)
	}
}

func TestWaitCountsRequests(t *testing.T) {
	r := NewRateLimiter()
	r.minInterval = 0

	for i := 0; i < 3; i++ {
		if err := r.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error: %v", err)
		}
	}

	short, daily := r.Status()
	if short != DefaultShortLimit-3 || daily != DefaultDailyLimit-3 {
		t.Errorf("Status() = %d, %d", short, daily)
	}
}

func TestWaitDailyLimit(t *testing.T) {
	r := NewRateLimiter()
	r.daily.usage = r.daily.limit

	if err := r.Wait(context.Background()); !errors.Is(err, ErrDailyLimit) {
		t.Errorf("Wait() error = %v, want ErrDailyLimit", err)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	r := NewRateLimiter()
	r.short.usage = r.short.limit

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := r.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}

func TestWindowRollsOver(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRateLimiter()
	r.minInterval = 0
	r.now = func() time.Time { return now }
	r.short = window{limit: 1, usage: 1, resetsAt: now.Add(-time.Second)}

	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if r.short.usage != 1 {
		t.Errorf("short usage = %d, want 1 after reset", r.short.usage)
	}
	if !r.short.resetsAt.Equal(now.Add(ShortWindow)) {
		t.Errorf("short resetsAt = %v", r.short.resetsAt)
	}
}
