// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultLoginLock returns the process-wide login lock, creating it on first use.
var DefaultLoginLock = sync.OnceValue(NewLoginLock)

// LoginLock serializes interactive re-authentication. At most one login
// sub-invocation runs at a time; other callers wait for it and then retry
// with the refreshed credentials.
//
// The lock has no timeout of its own. A hung login blocks waiters until
// their context is canceled.
type LoginLock struct {
	sem *semaphore.Weighted
	// generation counts completed logins. A caller that saw credentials
	// fail under generation g skips logging in again once it has moved on.
	generation atomic.Uint64
}

// NewLoginLock creates an unlocked LoginLock.
func NewLoginLock() *LoginLock {
	return &LoginLock{sem: semaphore.NewWeighted(1)}
}

// TryAcquire takes the lock if it is free.
func (l *LoginLock) TryAcquire() bool {
	return l.sem.TryAcquire(1)
}

// Acquire blocks until the lock is free or ctx is done.
func (l *LoginLock) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release frees the lock.
func (l *LoginLock) Release() {
	l.sem.Release(1)
}

// Generation returns the number of completed logins.
func (l *LoginLock) Generation() uint64 {
	return l.generation.Load()
}

func (l *LoginLock) markLoggedIn() {
	l.generation.Add(1)
}
