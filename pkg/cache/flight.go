package cache

import (
	"context"
	"sync"

	"github.com/matzehuels/esmap/pkg/observability"
)

// FetchFunc produces the value for key. ctx is cancelled when the owning
// Flight is cleared.
type FetchFunc[V any] func(ctx context.Context, key string) (V, error)

// Flight memoizes a FetchFunc by key with single-flight semantics.
// It is safe for concurrent use.
type Flight[V any] struct {
	name  string
	fetch FetchFunc[V]

	mu      sync.Mutex
	entries map[string]*call[V]
}

// call is one pending or completed fetch. val and err are written once,
// before done is closed.
type call[V any] struct {
	done   chan struct{}
	val    V
	err    error
	cancel context.CancelFunc
}

// NewFlight creates an empty Flight. name labels the instance in
// observability events.
func NewFlight[V any](name string, fetch FetchFunc[V]) *Flight[V] {
	return &Flight[V]{
		name:    name,
		fetch:   fetch,
		entries: make(map[string]*call[V]),
	}
}

// Get returns the result for key, starting a fetch if none exists.
// Callers that arrive while a fetch is in flight wait for that same fetch.
// A cancelled ctx always yields ctx.Err(), even for a completed entry.
func (f *Flight[V]) Get(ctx context.Context, key string) (V, error) {
	if err := ctx.Err(); err != nil {
		var zero V
		return zero, err
	}
	c := f.lookup(ctx, key)
	select {
	case <-c.done:
		return c.val, c.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (f *Flight[V]) lookup(ctx context.Context, key string) *call[V] {
	f.mu.Lock()
	if c, ok := f.entries[key]; ok {
		f.mu.Unlock()
		observability.Cache().OnCacheHit(ctx, f.name)
		return c
	}

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &call[V]{done: make(chan struct{}), cancel: cancel}
	f.entries[key] = c
	f.mu.Unlock()

	observability.Cache().OnCacheMiss(ctx, f.name)
	go func() {
		defer close(c.done)
		c.val, c.err = f.fetch(fetchCtx, key)
	}()
	return c
}

// Clear cancels every stored fetch and discards all entries. It does not
// wait for fetches to observe the cancellation; callers already blocked in
// Get still receive whatever their fetch returns.
func (f *Flight[V]) Clear() {
	f.mu.Lock()
	n := len(f.entries)
	for _, c := range f.entries {
		c.cancel()
	}
	f.entries = make(map[string]*call[V])
	f.mu.Unlock()

	observability.Cache().OnCacheClear(f.name, n)
}

// Len returns the number of stored entries, pending or completed.
func (f *Flight[V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
