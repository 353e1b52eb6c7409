package memory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"

	"github.com/picatz/chatgpt/internal/history"
)

var _ history.Backend[string, string] = (*Backend[string, string])(nil)

// Backend keeps entries in a slice sorted by key.
type Backend[K cmp.Ordered, V any] struct {
	mu    sync.RWMutex
	store []history.Entry[K, V]
}

// NewBackend creates a new in-memory storage backend.
func NewBackend[K cmp.Ordered, V any]() *Backend[K, V] {
	return &Backend[K, V]{}
}

func (b *Backend[K, V]) search(key K) (int, bool) {
	return slices.BinarySearchFunc(b.store, key, func(e history.Entry[K, V], k K) int {
		return cmp.Compare(e.Key, k)
	})
}

// Get retrieves a value by its key.
func (b *Backend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if i, ok := b.search(key); ok {
		return b.store[i].Value, true, nil
	}
	var zero V
	return zero, false, nil
}

// Set stores a value, replacing any previous value for the key.
func (b *Backend[K, V]) Set(ctx context.Context, key K, value V) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.search(key)
	if ok {
		b.store[i].Value = value
		return nil
	}
	b.store = slices.Insert(b.store, i, history.Entry[K, V]{Key: key, Value: value})
	return nil
}

// Delete removes a key. Missing keys are ignored.
func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i, ok := b.search(key); ok {
		b.store = slices.Delete(b.store, i, i+1)
	}
	return nil
}

// List returns a page of entries. The page is copied, so the iterator stays
// valid while the backend changes.
func (b *Backend[K, V]) List(ctx context.Context, opts history.ListOptions[K]) (iter.Seq2[K, V], *K, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	limit := opts.PageSize()

	var page []history.Entry[K, V]
	var next *K

	if !opts.Reverse {
		start := 0
		if opts.Start != nil {
			start, _ = b.search(*opts.Start)
		}
		end := min(start+limit, len(b.store))
		page = slices.Clone(b.store[start:end])
		if end < len(b.store) {
			next = &b.store[end].Key
		}
	} else {
		// start is one past the first entry of the page.
		start := len(b.store)
		if opts.Start != nil {
			i, found := b.search(*opts.Start)
			start = i
			if found {
				start++
			}
		}
		end := max(start-limit, 0)
		for i := start - 1; i >= end; i-- {
			page = append(page, b.store[i])
		}
		if end > 0 {
			next = &b.store[end-1].Key
		}
	}

	if next != nil {
		k := *next
		next = &k
	}

	return history.Seq(page), next, nil
}

// Flush is a no-op for the in-memory backend.
func (b *Backend[K, V]) Flush(context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (b *Backend[K, V]) Close(context.Context) error {
	return nil
}
