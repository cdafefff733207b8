package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is an in-process keyed mutex for single replica deployments.
type MemoryLocker struct {
	wait time.Duration

	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemoryLocker builds a keyed mutex. See Locker for wait semantics.
func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	return &MemoryLocker{wait: wait, slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Acquire blocks until key is free, the wait elapses, or ctx is done.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (Release, error) {
	ch := l.slot(key)

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, ErrTimeout
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() { <-ch })
		return nil
	}, nil
}
