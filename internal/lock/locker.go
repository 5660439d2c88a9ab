package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned when a lock could not be obtained before the
// context expired.
var ErrNotAcquired = errors.New("lock: not acquired")

// Locker serialises critical sections identified by key.
type Locker interface {
	// Acquire blocks until key is held or ctx is done. The returned release
	// func is safe to call more than once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LocalLocker is an in-process keyed mutex. It is sufficient when a single
// replica serves a farm.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	held chan struct{}
	refs int
}

// NewLocalLocker builds an empty keyed mutex.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Acquire implements Locker.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{held: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.held <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, s)
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.held
			l.unref(key, s)
		})
	}, nil
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys currently have waiters or holders.
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
