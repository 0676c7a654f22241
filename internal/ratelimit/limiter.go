// Package ratelimit tracks per-kind daily action counters against configured
// budgets. It is pure state: no I/O, safe for concurrent use.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Kind identifies a budgeted action type.
type Kind string

const (
	KindConnection Kind = "connection"
	KindMessage    Kind = "message"
)

// Limiter counts actions performed since the last calendar-day boundary and
// answers whether a kind's budget is exhausted. The day boundary is detected
// lazily: every guarded operation compares the counter epoch's date with the
// clock and zeroes the counters on a crossing, so no background timer is
// needed.
type Limiter struct {
	mu      sync.Mutex
	enabled bool
	budgets map[Kind]int
	counts  map[Kind]int
	day     string // calendar date (2006-01-02) the counters belong to
	now     func() time.Time
}

// New builds a Limiter. Budgets must have been validated by config already;
// New still rejects non-positive values so a limiter can never be constructed
// in a state where RemainingBudget underflows.
func New(connectionsPerDay, messagesPerDay int, enabled bool) (*Limiter, error) {
	if connectionsPerDay < 1 || messagesPerDay < 1 {
		return nil, fmt.Errorf("ratelimit: budgets must be >= 1, got connections=%d messages=%d",
			connectionsPerDay, messagesPerDay)
	}
	l := &Limiter{
		enabled: enabled,
		budgets: map[Kind]int{KindConnection: connectionsPerDay, KindMessage: messagesPerDay},
		counts:  map[Kind]int{},
		now:     time.Now,
	}
	l.day = l.now().Format(time.DateOnly)
	return l, nil
}

// WithClock overrides the limiter's clock. Test hook.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	l.day = now().Format(time.DateOnly)
	return l
}

// RecordAction increments today's counter for kind. It never fails; recording
// past the budget is allowed (the caller should have checked IsExhausted, but
// an overshoot only floors RemainingBudget at zero).
func (l *Limiter) RecordAction(kind Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay()
	l.counts[kind]++
}

// Seed loads actions already performed today, typically counted from the
// store at startup so budgets survive a process restart within a day.
func (l *Limiter) Seed(kind Kind, n int) {
	if n < 0 {
		n = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay()
	l.counts[kind] = n
}

// RemainingBudget returns the configured daily max for kind minus today's
// count, floored at zero.
func (l *Limiter) RemainingBudget(kind Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollDay()
	rem := l.budgets[kind] - l.counts[kind]
	if rem < 0 {
		rem = 0
	}
	return rem
}

// IsExhausted reports whether kind's budget is spent for today. Always false
// when rate limiting is disabled.
func (l *Limiter) IsExhausted(kind Kind) bool {
	if !l.Enabled() {
		return false
	}
	return l.RemainingBudget(kind) == 0
}

// Enabled reports whether budgets are enforced at all.
func (l *Limiter) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Reset zeroes all counters immediately.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts = map[Kind]int{}
	l.day = l.now().Format(time.DateOnly)
}

// rollDay zeroes the counters when the calendar date has changed since they
// were last touched. Callers must hold l.mu.
func (l *Limiter) rollDay() {
	today := l.now().Format(time.DateOnly)
	if today != l.day {
		l.counts = map[Kind]int{}
		l.day = today
	}
}
