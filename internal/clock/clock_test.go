// SPDX-License-Identifier: MPL-2.0

package clock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRealClock_After(t *testing.T) {
	t.Parallel()

	ch := RealClock{}.After(1 * time.Millisecond)

	select {
	case <-ch:
	case <-time.After(100 * time.Millisecond):
		t.Error("RealClock.After() did not fire within 100ms")
	}
}

func TestFakeClock_DefaultTime(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	expected := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := c.Now(); !got.Equal(expected) {
		t.Errorf("FakeClock.Now() with zero time = %v, want %v", got, expected)
	}
}

func TestFakeClock_AdvanceAndSince(t *testing.T) {
	t.Parallel()

	initial := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(initial)

	c.Advance(90 * time.Second)

	if got := c.Since(initial); got != 90*time.Second {
		t.Errorf("Since() after Advance(90s) = %v, want 90s", got)
	}
}

func TestFakeClock_After_FiresOnAdvance(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	ch := c.After(10 * time.Minute)

	select {
	case <-ch:
		t.Fatal("After(10m) fired before Advance")
	default:
	}

	c.Advance(15 * time.Minute)

	select {
	case <-ch:
	default:
		t.Error("After(10m) should fire after Advance(15m)")
	}
}

func TestFakeClock_After_FiresOnSet(t *testing.T) {
	t.Parallel()

	initial := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(initial)
	ch := c.After(1 * time.Hour)

	c.Set(initial.Add(2 * time.Hour))

	select {
	case <-ch:
	default:
		t.Error("After() should fire after Set() past target")
	}
}

func TestAutoAdvancingClock(t *testing.T) {
	t.Parallel()

	initial := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewAutoAdvancingClock(initial)

	select {
	case <-c.After(30 * time.Second):
	default:
		t.Fatal("auto-advancing After() did not fire immediately")
	}

	if got := c.Since(initial); got != 30*time.Second {
		t.Errorf("time moved by %v, want 30s", got)
	}
	if got := c.Slept(); got != 30*time.Second {
		t.Errorf("Slept() = %v, want 30s", got)
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	t.Run("completes on clock", func(t *testing.T) {
		t.Parallel()
		c := NewAutoAdvancingClock(time.Time{})
		if err := Sleep(t.Context(), c, time.Minute); err != nil {
			t.Fatalf("Sleep() returned error: %v", err)
		}
		if c.Slept() != time.Minute {
			t.Errorf("Slept() = %v, want 1m", c.Slept())
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		t.Parallel()
		c := NewFakeClock(time.Time{})
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		if err := Sleep(ctx, c, time.Hour); !errors.Is(err, context.Canceled) {
			t.Errorf("Sleep() error = %v, want context.Canceled", err)
		}
	})
}

func TestFakeClock_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	var wg sync.WaitGroup

	for range 10 {
		wg.Go(func() {
			for range 100 {
				_ = c.Now()
			}
		})
	}

	wg.Go(func() {
		for range 50 {
			c.Advance(1 * time.Millisecond)
		}
	})

	wg.Wait()
}

func TestClock_Interface(t *testing.T) {
	t.Parallel()

	var _ Clock = RealClock{}
	var _ Clock = &FakeClock{}
}
