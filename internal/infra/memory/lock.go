package memory

import (
	"context"
	"sync"
)

// KeyedLock is an in-process implementation of app.Locker: one
// single-slot semaphore per key. It only protects against concurrent
// requests within the same process; use the redis lock when multiple
// instances share the stores.
type KeyedLock struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{slots: make(map[string]chan struct{})}
}

func (l *KeyedLock) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
