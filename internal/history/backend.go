// Package history persists chat exchanges for the command line client.
//
// Storage is pluggable through [Backend]. The memory package keeps entries
// in a sorted slice, and the pebble package stores them in a [pebble]
// database on disk or in memory.
//
// [pebble]: https://github.com/cockroachdb/pebble
package history

import (
	"context"
	"iter"
)

// DefaultPageSize is used when ListOptions.Limit is zero.
const DefaultPageSize = 25

type Entry[K, V any] struct {
	Key   K
	Value V
}

// ListOptions controls one page of a List call.
type ListOptions[K any] struct {
	// Limit is the page size. Zero means DefaultPageSize.
	Limit int

	// Start is the first key of the page, inclusive. It is usually the
	// token returned by the previous page.
	Start *K

	// Reverse lists keys in descending order.
	Reverse bool
}

// PageSize returns the page size after defaults are applied.
func (o ListOptions[K]) PageSize() int {
	if o.Limit <= 0 {
		return DefaultPageSize
	}
	return o.Limit
}

// Backend is an ordered key-value store.
//
// List returns one page of entries in key order and the key that starts the
// next page, or nil when there is none.
type Backend[K, V any] interface {
	Get(ctx context.Context, key K) (value V, found bool, err error)
	Set(ctx context.Context, key K, value V) error
	Delete(ctx context.Context, key K) error
	List(ctx context.Context, opts ListOptions[K]) (entries iter.Seq2[K, V], next *K, err error)
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// Seq returns an iterator over a page of entries.
func Seq[K, V any](entries []Entry[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}
