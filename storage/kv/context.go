package kv

import (
	"context"

	"github.com/scopekv/scopekv/storage/kv/keys"
)

// Context is the caller-facing handle combining a store, a base
// key prefix and an opaque caller-defined payload. Every key the
// context derives is prefixed with the base key, so contexts with
// distinct base keys act as logically isolated sub-stores within
// one physical store.
//
// The store is shared by reference: it has no exclusive owner and
// holds no per-call mutable state, so any number of contexts
// derived from one another may issue operations concurrently.
type Context struct {
	store   Store
	baseKey []byte
	extra   interface{}
}

// NewContext creates a context rooted at baseKey
func NewContext(store Store, baseKey []byte, extra interface{}) *Context {
	return &Context{
		store:   store,
		baseKey: keys.Copy(baseKey),
		extra:   extra,
	}
}

// Store returns the shared backend store
func (kvContext *Context) Store() Store {
	return kvContext.store
}

// BaseKey returns the context's base key prefix. The prefix is
// immutable for the lifetime of the context, so the caller gets
// an independent copy.
func (kvContext *Context) BaseKey() []byte {
	return keys.Copy(kvContext.baseKey)
}

// Extra returns the caller-defined payload
func (kvContext *Context) Extra() interface{} {
	return kvContext.extra
}

// DeriveKey serializes scope canonically and appends it to the
// base key, producing a fully qualified key for a single logical
// item.
func (kvContext *Context) DeriveKey(scope interface{}) ([]byte, error) {
	encoded, err := MarshalScope(scope)

	if err != nil {
		return nil, kvContext.wrapError(err)
	}

	return keys.Join(kvContext.baseKey, encoded), nil
}

// CloneWithSubScope returns a child context sharing this context's
// store, rooted at DeriveKey(scope), with the payload replaced by
// newExtra.
func (kvContext *Context) CloneWithSubScope(scope interface{}, newExtra interface{}) (*Context, error) {
	baseKey, err := kvContext.DeriveKey(scope)

	if err != nil {
		return nil, err
	}

	return &Context{
		store:   kvContext.store,
		baseKey: baseKey,
		extra:   newExtra,
	}, nil
}

// ReadValue reads the value stored under the context-relative key.
// It returns nil if no item exists.
func (kvContext *Context) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	value, err := kvContext.store.ReadValue(ctx, keys.Join(kvContext.baseKey, key))

	if err != nil {
		return nil, kvContext.wrapError(err)
	}

	return value, nil
}

// ReadRequiredValue is ReadValue for items that must exist: an
// absent item is reported as ErrNotFound instead of a nil value.
func (kvContext *Context) ReadRequiredValue(ctx context.Context, key []byte) ([]byte, error) {
	value, err := kvContext.ReadValue(ctx, key)

	if err != nil {
		return nil, err
	}

	if value == nil {
		return nil, kvContext.wrapError(ErrNotFound)
	}

	return value, nil
}

// FindKeysByPrefix searches for stored keys beginning with the
// context-relative prefix. Yielded keys are suffixes past the
// full prefix.
func (kvContext *Context) FindKeysByPrefix(ctx context.Context, keyPrefix []byte) (Keys, error) {
	found, err := kvContext.store.FindKeysByPrefix(ctx, keys.Join(kvContext.baseKey, keyPrefix))

	if err != nil {
		return nil, kvContext.wrapError(err)
	}

	return found, nil
}

// FindKeyValuesByPrefix is FindKeysByPrefix but yields values too
func (kvContext *Context) FindKeyValuesByPrefix(ctx context.Context, keyPrefix []byte) (KeyValues, error) {
	found, err := kvContext.store.FindKeyValuesByPrefix(ctx, keys.Join(kvContext.baseKey, keyPrefix))

	if err != nil {
		return nil, kvContext.wrapError(err)
	}

	return found, nil
}

// WriteBatch applies batch with every operation key prefixed by
// the context's base key. The same non-atomicity as Store.WriteBatch
// applies.
func (kvContext *Context) WriteBatch(ctx context.Context, batch *Batch) error {
	prefixed := NewBatch()

	for _, op := range batch.Operations() {
		switch op := op.(type) {
		case Put:
			prefixed.Put(keys.Join(kvContext.baseKey, op.Key), op.Value)
		case Delete:
			prefixed.Delete(keys.Join(kvContext.baseKey, op.Key))
		case DeletePrefix:
			prefixed.DeletePrefix(keys.Join(kvContext.baseKey, op.KeyPrefix))
		}
	}

	if err := kvContext.store.WriteBatch(ctx, prefixed); err != nil {
		return kvContext.wrapError(err)
	}

	return nil
}

func (kvContext *Context) wrapError(err error) error {
	return &BackendError{Backend: kvContext.store.Name(), Err: err}
}
