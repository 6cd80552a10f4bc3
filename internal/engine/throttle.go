package engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Sleeper pauses between requests. Sleep returns early with ctx.Err() when
// the context is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Throttle spaces out requests by a politeness delay drawn uniformly from
// [min, max]. The delay is drawn once and reused unless perRequest is set.
type Throttle struct {
	min, max   time.Duration
	perRequest bool

	mu      sync.Mutex
	delay   time.Duration
	sleeper Sleeper
}

// NewThrottle creates a Throttle that sleeps on a real timer.
func NewThrottle(min, max time.Duration, perRequest bool) *Throttle {
	t := &Throttle{min: min, max: max, perRequest: perRequest, sleeper: timerSleeper{}}
	t.delay = t.draw()
	return t
}

// SetSleeper replaces the sleeper, typically with a no-op in tests.
func (t *Throttle) SetSleeper(s Sleeper) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sleeper = s
}

// Delay returns the duration the next Wait will sleep.
func (t *Throttle) Delay() time.Duration {
	if t.perRequest {
		return t.draw()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delay
}

// Wait sleeps for the politeness delay.
func (t *Throttle) Wait(ctx context.Context) error {
	d := t.Delay()
	t.mu.Lock()
	s := t.sleeper
	t.mu.Unlock()
	return s.Sleep(ctx, d)
}

func (t *Throttle) draw() time.Duration {
	if t.max <= t.min {
		return t.min
	}
	return t.min + time.Duration(rand.Int64N(int64(t.max-t.min)+1))
}
