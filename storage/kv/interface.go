package kv

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that an expected item is absent
	// entirely. It is distinct from a malformed-item error:
	// a present item with missing or mistyped attributes is
	// data corruption, not a missing item.
	ErrNotFound = errors.New("item not found")
)

// Plugin represents a kv storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewStore returns an instance of the plugin store
	NewStore(options PluginOptions) (Store, error)
	// NewTempStore returns an instance of the plugin store
	// initialized with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// store without knowing how to initialize it
	NewTempStore() (Store, error)
}

// PluginOptions is a generic structure for plugin configuration
type PluginOptions map[string]interface{}

// Store is a flat, sorted byte-key/byte-value store. Implementations
// must be safe for use by many concurrent callers: a store handle
// holds no per-call mutable state and has no exclusive owner, so any
// number of derived contexts may share one store.
type Store interface {
	// Name identifies the backend ("dynamodb", "bolt", "memory").
	// It is used when rendering errors at the framework boundary.
	Name() string
	// ReadValue reads the value stored under key. It returns nil
	// if no item exists under key. An item stored without a value
	// attribute or with a value of the wrong stored type is an
	// error, never a silent nil.
	ReadValue(ctx context.Context, key []byte) ([]byte, error)
	// FindKeysByPrefix returns the set of stored keys beginning
	// with keyPrefix, in ascending lexicographic order. Keys are
	// yielded as suffixes past keyPrefix; the caller re-joins the
	// prefix when it needs full keys.
	FindKeysByPrefix(ctx context.Context, keyPrefix []byte) (Keys, error)
	// FindKeyValuesByPrefix is FindKeysByPrefix but yields the
	// stored value alongside each key suffix.
	FindKeyValuesByPrefix(ctx context.Context, keyPrefix []byte) (KeyValues, error)
	// WriteBatch applies a batch of writes. The batch is simplified
	// first, then applied in backend-sized chunks, deletes before
	// puts. WriteBatch is not atomic: on failure an arbitrary
	// prefix of chunks may already be applied. An empty batch is a
	// no-op success.
	WriteBatch(ctx context.Context, batch *Batch) error
}

// Keys is a lazy sequence of keys produced by a prefix search
type Keys interface {
	// Iterator returns a cursor positioned before the first key.
	// The sequence is forward-only and finite.
	Iterator() KeyIterator
}

// KeyValues is a lazy sequence of key-value pairs produced by
// a prefix search
type KeyValues interface {
	// Iterator returns a cursor positioned before the first pair
	Iterator() Iterator
}

// KeyIterator iterates over a set of keys. It must only be used
// by one goroutine at a time. Advancing the iterator may perform
// a network round-trip when the current result page is exhausted,
// so callers must tolerate unbounded latency in Next.
type KeyIterator interface {
	// Next advances the iterator to the next key. A fresh
	// iterator must call Next once to advance to the first
	// key. Next returns false if there is no next key or if
	// it encounters an error.
	Next() bool
	// Key returns the current key
	Key() []byte
	// Error returns the error, if any. Results yielded before
	// the error remain valid.
	Error() error
}

// Iterator iterates over a set of key-value pairs. The same
// single-goroutine and suspension rules as KeyIterator apply.
type Iterator interface {
	// Next advances the iterator to the next pair
	Next() bool
	// Key returns the current key
	Key() []byte
	// Value returns the current value
	Value() []byte
	// Error returns the error, if any
	Error() error
}

// BackendError is the single opaque error surfaced to the view
// framework. It carries the backend's identity and the rendered
// cause; callers are not expected to recover from it beyond
// idempotent resubmission.
type BackendError struct {
	Backend string
	Err     error
}

func (err *BackendError) Error() string {
	return fmt.Sprintf("%s backend error: %s", err.Backend, err.Err.Error())
}

func (err *BackendError) Unwrap() error {
	return err.Err
}
