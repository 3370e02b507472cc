package inventory

import (
	"context"
	"sync"
)

// lockTable hands out one exclusive lock per bus ID so that booking and
// cancellation for the same bus never interleave while operations on
// different buses proceed in parallel. Locks are implemented as buffered
// channels rather than sync.Mutex so that a blocked acquirer can give up
// when its context deadline elapses. Entries are refcounted and removed
// once the last holder or waiter is gone, keeping the table bounded by
// the number of buses currently in flight.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*busLock
}

type busLock struct {
	ch   chan struct{} // capacity 1; holding the token means holding the lock
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*busLock)}
}

// acquire blocks until the exclusive scope for busID is held or ctx is
// done. On success it returns a release function that must be called
// exactly once. On context expiry it returns ErrTimeout and the caller
// holds nothing.
func (t *lockTable) acquire(ctx context.Context, busID string) (func(), error) {
	t.mu.Lock()
	l, ok := t.locks[busID]
	if !ok {
		l = &busLock{ch: make(chan struct{}, 1)}
		t.locks[busID] = l
	}
	l.refs++
	t.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			t.unref(busID, l)
		}, nil
	case <-ctx.Done():
		t.unref(busID, l)
		return nil, ErrTimeout
	}
}

func (t *lockTable) unref(busID string, l *busLock) {
	t.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, busID)
	}
	t.mu.Unlock()
}
