package dropship

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Throttler bounds the number of concurrent outbound platform calls from one
// process instance. Waiters are admitted in arrival order. The limit is
// per-instance; instances do not coordinate on it.
type Throttler struct {
	sem *semaphore.Weighted
}

// NewThrottler creates a throttler admitting at most maxConcurrent calls.
func NewThrottler(maxConcurrent int) *Throttler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Throttler{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Acquire blocks until a slot is available or ctx is done. On success it
// returns a release function that must be called on every exit path of the
// guarded operation; calling it more than once is safe.
func (t *Throttler) Acquire(ctx context.Context) (func(), error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() { t.sem.Release(1) })
	}, nil
}
