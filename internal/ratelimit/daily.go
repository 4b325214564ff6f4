// Package ratelimit bounds anonymous free-tier usage with a keyed
// check-and-increment counter that resets at local midnight.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is the contract the orchestrator depends on. The in-process
// implementation below is a soft abuse-limiter only; a deployment with
// multiple instances can back the same interface with a shared counter store.
type Limiter interface {
	// TryAcquire consumes one unit for key if the daily cap allows it and
	// reports the remaining allowance after the call.
	TryAcquire(key string) (ok bool, remaining int)
	// Usage reports consumption for key without consuming.
	Usage(key string) (used, max int)
}

type entry struct {
	date  string
	count int
}

type DailyLimiter struct {
	mu       sync.Mutex
	maxDaily int
	counts   map[string]*entry
	now      func() time.Time
}

func NewDailyLimiter(maxDaily int) *DailyLimiter {
	return &DailyLimiter{
		maxDaily: maxDaily,
		counts:   make(map[string]*entry),
		now:      time.Now,
	}
}

var _ Limiter = (*DailyLimiter)(nil)

func (l *DailyLimiter) TryAcquire(key string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.current(key)
	if e.count >= l.maxDaily {
		return false, 0
	}
	e.count++
	return true, l.maxDaily - e.count
}

func (l *DailyLimiter) Usage(key string) (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.current(key)
	return e.count, l.maxDaily
}

// current returns the live entry for key, rolling the counter over when the
// calendar day has changed. Callers must hold l.mu.
func (l *DailyLimiter) current(key string) *entry {
	today := l.now().Format("2006-01-02")
	e, ok := l.counts[key]
	if !ok || e.date != today {
		e = &entry{date: today}
		l.counts[key] = e
	}
	return e
}
