package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockTableSerializesSameBus(t *testing.T) {
	lt := newLockTable()
	ctx := context.Background()

	release, err := lt.acquire(ctx, "BUS1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r2, err := lt.acquire(ctx, "BUS1")
		if err == nil {
			close(acquired)
			r2()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}

func TestLockTableIndependentBuses(t *testing.T) {
	lt := newLockTable()
	ctx := context.Background()

	r1, err := lt.acquire(ctx, "BUS1")
	require.NoError(t, err)
	defer r1()

	// A different bus must not be blocked.
	done := make(chan struct{})
	go func() {
		r2, err := lt.acquire(ctx, "BUS2")
		if err == nil {
			r2()
			close(done)
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquire on an unrelated bus blocked")
	}
}

func TestLockTableContextExpiry(t *testing.T) {
	lt := newLockTable()

	release, err := lt.acquire(context.Background(), "BUS1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = lt.acquire(ctx, "BUS1")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLockTableEntriesAreReclaimed(t *testing.T) {
	lt := newLockTable()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := lt.acquire(ctx, "BUS1")
			if err == nil {
				r()
			}
		}()
	}
	wg.Wait()

	lt.mu.Lock()
	defer lt.mu.Unlock()
	assert.Empty(t, lt.locks)
}
