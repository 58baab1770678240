// Package lock provides a mutex that can be acquired either by blocking or by
// waiting on a context. Both forms contend for the same exclusive state.
package lock

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Mutex is a mutual exclusion lock with blocking and context-aware acquisition.
// The zero value is not usable, use New.
type Mutex struct {
	sem *semaphore.Weighted
}

// New creates an unlocked Mutex
func New() *Mutex {
	return &Mutex{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the mutex is acquired
func (m *Mutex) Lock() {
	_ = m.sem.Acquire(context.Background(), 1)
}

// LockContext waits until the mutex is acquired or ctx is done.
func (m *Mutex) LockContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.sem.Acquire(ctx, 1)
}

// TryLock acquires the mutex if it is free
func (m *Mutex) TryLock() bool {
	return m.sem.TryAcquire(1)
}

// Unlock releases the mutex. It panics when the mutex is not locked.
func (m *Mutex) Unlock() {
	m.sem.Release(1)
}
