package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Budget is the single source of truth for the outbound call allowance shared
// by every worker. A token bucket smooths calls to the per-minute limit and a
// rolling counter enforces the per-day ceiling. Acquire blocks until a call is
// permitted or the context is cancelled; it never fails the caller outright.
type Budget struct {
	limiter *rate.Limiter

	mu        sync.Mutex
	day       time.Time
	usedToday int
	dailyCap  int

	now func() time.Time // injectable clock for tests
}

// New creates a Budget allowing callsPerMinute with a burst of callsPerMinute
// and at most callsPerDay calls per calendar day (UTC).
func New(callsPerMinute, callsPerDay int) *Budget {
	return &Budget{
		limiter:  rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute),
		dailyCap: callsPerDay,
		now:      time.Now,
	}
}

// Acquire consumes one call from the budget, blocking while the per-minute
// bucket is empty or the daily ceiling is reached. The daily counter resets at
// UTC midnight. Returns only the context error on cancellation.
func (b *Budget) Acquire(ctx context.Context) error {
	for {
		if b.tryReserveDaily() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute):
			// Re-check after the wait; the day may have rolled over.
		}
	}

	if err := b.limiter.Wait(ctx); err != nil {
		b.releaseDaily()
		return err
	}

	return nil
}

// Remaining returns how many calls are left in today's allowance.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollDayLocked()
	return b.dailyCap - b.usedToday
}

// tryReserveDaily reserves one call against the daily ceiling.
func (b *Budget) tryReserveDaily() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollDayLocked()
	if b.usedToday >= b.dailyCap {
		return false
	}
	b.usedToday++
	return true
}

// releaseDaily hands back a reservation that was never spent.
func (b *Budget) releaseDaily() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.usedToday > 0 {
		b.usedToday--
	}
}

// rollDayLocked resets the counter when the UTC day changes.
func (b *Budget) rollDayLocked() {
	today := b.now().UTC().Truncate(24 * time.Hour)
	if !today.Equal(b.day) {
		b.day = today
		b.usedToday = 0
	}
}
