// SPDX-License-Identifier: MPL-2.0

// Package clock abstracts time so that cache freshness and retry backoff can
// be driven deterministically in tests.
package clock

import (
	"context"
	"sync"
	"time"
)

type (
	// Clock abstracts time operations.
	// Production code uses RealClock; tests use FakeClock.
	Clock interface {
		// Now returns the current time.
		Now() time.Time

		// After waits for the duration to elapse and then returns the current time.
		// For FakeClock, returns when Advance() moves past the target.
		After(d time.Duration) <-chan time.Time

		// Since returns the time elapsed since t.
		Since(t time.Time) time.Duration
	}

	// RealClock implements Clock using actual system time.
	RealClock struct{}

	// FakeClock implements Clock with manually controlled time for testing.
	// Time only advances when Advance() or Set() is called, or on every
	// After() call when auto-advance is enabled.
	FakeClock struct {
		current     time.Time
		mu          sync.Mutex
		waiters     []waiter
		autoAdvance bool
		slept       time.Duration
	}

	// waiter tracks a pending After() call.
	waiter struct {
		target time.Time
		ch     chan time.Time
	}
)

// Sleep blocks until d has elapsed on c or ctx is done, whichever is first.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// After returns a channel that receives the time after duration d.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Since returns the time elapsed since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// NewFakeClock creates a FakeClock initialized to the given time.
// If initial is zero, defaults to a fixed reference time for reproducibility.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeClock{current: initial}
}

// NewAutoAdvancingClock creates a FakeClock whose After() immediately moves
// time forward by the requested duration. Sleeps complete instantly while
// still being observable through Slept().
func NewAutoAdvancingClock(initial time.Time) *FakeClock {
	c := NewFakeClock(initial)
	c.autoAdvance = true
	return c
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives the time when the target time is reached.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}

	c.slept += d
	target := c.current.Add(d)
	c.waiters = append(c.waiters, waiter{target: target, ch: ch})
	if c.autoAdvance && c.current.Before(target) {
		c.current = target
	}
	c.notifyWaiters()
	return ch
}

// Since returns the fake time elapsed since t.
func (c *FakeClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Slept returns the total duration requested through After().
func (c *FakeClock) Slept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// Advance moves the fake time forward by d.
// This triggers any After() channels waiting for times before the new current.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	c.notifyWaiters()
}

// Set sets the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.notifyWaiters()
}

// notifyWaiters notifies all waiters whose target time has been reached.
// Must be called with mu held.
func (c *FakeClock) notifyWaiters() {
	remaining := c.waiters[:0]
	for _, w := range c.waiters {
		if !c.current.Before(w.target) {
			select {
			case w.ch <- c.current:
			default:
			}
		} else {
			remaining = append(remaining, w)
		}
	}
	c.waiters = remaining
}
