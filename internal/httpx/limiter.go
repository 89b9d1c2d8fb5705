package httpx

import (
	"context"
	"sync"
	"time"
)

// Limiter is a crude request budget: after Requests calls it pauses for
// Window before letting the next one through. The UCAS services API has no
// documented quota, but bursts past ~10 requests start drawing 429s, so
// calls are issued sequentially under this budget.
type Limiter struct {
	Requests int
	Window   time.Duration

	mux     sync.Mutex
	counter int
}

// NewLimiter returns a limiter allowing n requests per window.
func NewLimiter(n int, window time.Duration) *Limiter {
	return &Limiter{Requests: n, Window: window}
}

// Wait counts one request and sleeps when the budget is spent.
// A nil limiter never waits.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.Requests <= 0 {
		return nil
	}

	l.mux.Lock()
	l.counter++
	pause := l.counter > l.Requests
	if pause {
		l.counter = 0
	}
	l.mux.Unlock()

	if !pause {
		return nil
	}

	t := time.NewTimer(l.Window)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
