// Package loader loads a value once and shares it.
//
// Concurrent callers of Get share a single in-flight load. A successful value
// is kept until Reset; a failure is returned to every waiter and forgotten, so
// the next Get tries again.
package loader

import (
	"context"
	"errors"
	"sync"
)

// ErrNilLoad is returned when a Loader has no load function.
var ErrNilLoad = errors.New("loader: load function is nil")

// LoadFunc produces the value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

type call[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Loader memoizes the result of a LoadFunc.
type Loader[T any] struct {
	load LoadFunc[T]

	mu      sync.Mutex
	loaded  bool
	value   T
	pending *call[T]
	epoch   uint64
}

// New returns a Loader backed by load.
func New[T any](load LoadFunc[T]) *Loader[T] {
	return &Loader[T]{load: load}
}

// Get returns the loaded value, loading it if needed. A cancelled ctx stops
// this caller from waiting but does not abort a load other callers share.
func (l *Loader[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if l.load == nil {
		return zero, ErrNilLoad
	}

	l.mu.Lock()
	if l.loaded {
		v := l.value
		l.mu.Unlock()
		return v, nil
	}
	c := l.pending
	if c == nil {
		c = &call[T]{done: make(chan struct{})}
		l.pending = c
		go l.run(c, l.epoch)
	}
	l.mu.Unlock()

	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (l *Loader[T]) run(c *call[T], epoch uint64) {
	c.value, c.err = l.load(context.Background())

	l.mu.Lock()
	if l.pending == c {
		l.pending = nil
	}
	// A Reset while loading means this result belongs to the old epoch.
	if c.err == nil && epoch == l.epoch {
		l.value = c.value
		l.loaded = true
	}
	l.mu.Unlock()
	close(c.done)
}

// Loaded reports whether a value is cached.
func (l *Loader[T]) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Reset drops the cached value. A load already in flight still answers its
// waiters but is not cached.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.value = zero
	l.loaded = false
	l.pending = nil
	l.epoch++
}
