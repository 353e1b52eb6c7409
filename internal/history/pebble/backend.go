package pebble

import (
	"bytes"
	"context"
	"iter"

	"github.com/cockroachdb/pebble"
	"github.com/picatz/chatgpt/internal/history"
	"github.com/pkg/errors"
)

var _ history.Backend[string, any] = (*Backend[string, any])(nil)

// Backend is a storage backend that uses Pebble as the underlying storage
// engine.
//
// Pebble can use an in-memory filesystem or a directory on disk, depending on
// the options provided. The command line client uses a directory on disk.
type Backend[K comparable, V any] struct {
	db    *pebble.DB
	codec history.Codec[K, V]
}

// NewBackend opens, or creates, the Pebble database in dirname.
func NewBackend[K comparable, V any](dirname string, opts *pebble.Options, codec history.Codec[K, V]) (*Backend[K, V], error) {
	db, err := pebble.Open(dirname, opts)
	if err != nil {
		return nil, errors.Wrap(err, "open pebble database")
	}

	return &Backend[K, V]{db: db, codec: codec}, nil
}

// Get retrieves a value by its key.
func (b *Backend[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	var zero V

	keyBytes, err := b.codec.EncodeKey(key)
	if err != nil {
		return zero, false, errors.Wrap(err, "encode key")
	}

	valueBytes, closer, err := b.db.Get(keyBytes)
	if errors.Is(err, pebble.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, errors.Wrap(err, "get value")
	}
	defer closer.Close()

	value, err := b.codec.DecodeValue(valueBytes)
	if err != nil {
		return zero, false, err
	}

	return value, true, nil
}

// Set stores a key-value pair.
func (b *Backend[K, V]) Set(ctx context.Context, key K, value V) error {
	keyBytes, err := b.codec.EncodeKey(key)
	if err != nil {
		return errors.Wrap(err, "encode key")
	}

	valueBytes, err := b.codec.EncodeValue(value)
	if err != nil {
		return err
	}

	return errors.Wrap(b.db.Set(keyBytes, valueBytes, pebble.NoSync), "set value")
}

// Delete removes a key-value pair.
func (b *Backend[K, V]) Delete(ctx context.Context, key K) error {
	keyBytes, err := b.codec.EncodeKey(key)
	if err != nil {
		return errors.Wrap(err, "encode key")
	}

	return errors.Wrap(b.db.Delete(keyBytes, pebble.NoSync), "delete key")
}

// List returns one page of entries in key order, or in reverse order when
// opts.Reverse is set.
func (b *Backend[K, V]) List(ctx context.Context, opts history.ListOptions[K]) (iter.Seq2[K, V], *K, error) {
	var start []byte
	if opts.Start != nil {
		k, err := b.codec.EncodeKey(*opts.Start)
		if err != nil {
			return nil, nil, errors.Wrap(err, "encode start key")
		}
		start = k
	}

	it, err := b.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, nil, errors.Wrap(err, "create iterator")
	}
	defer it.Close()

	var valid bool
	switch {
	case !opts.Reverse && start == nil:
		valid = it.First()
	case !opts.Reverse:
		valid = it.SeekGE(start)
	case start == nil:
		valid = it.Last()
	default:
		// The last key <= start.
		valid = it.SeekLT(append(bytes.Clone(start), 0))
	}

	step := it.Next
	if opts.Reverse {
		step = it.Prev
	}

	var (
		limit = opts.PageSize()
		page  []history.Entry[K, V]
		next  *K
	)

	for ; valid; valid = step() {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(err, "list stopped")
		}

		k, err := b.codec.DecodeKey(it.Key())
		if err != nil {
			return nil, nil, errors.Wrap(err, "decode key")
		}

		if len(page) == limit {
			next = &k
			break
		}

		v, err := b.codec.DecodeValue(it.Value())
		if err != nil {
			return nil, nil, err
		}

		page = append(page, history.Entry[K, V]{Key: k, Value: v})
	}

	if err := it.Error(); err != nil {
		return nil, nil, errors.Wrap(err, "iterate")
	}

	return history.Seq(page), next, nil
}

// Flush writes the memtable to disk.
func (b *Backend[K, V]) Flush(ctx context.Context) error {
	return errors.Wrap(b.db.Flush(), "flush pebble database")
}

// Close closes the database.
func (b *Backend[K, V]) Close(ctx context.Context) error {
	return errors.Wrap(b.db.Close(), "close pebble database")
}
