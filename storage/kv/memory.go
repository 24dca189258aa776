package kv

import (
	"context"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/scopekv/scopekv/storage/kv/keys"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory implementation of the Store
// interface backed by an ordered map. It is meant for tests
// and ephemeral state; prefix searches materialize their
// results eagerly under the read lock.
type MemoryStore struct {
	mu    sync.RWMutex
	items *treemap.Map
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: treemap.NewWith(bytesComparator)}
}

// Name implements Store.Name
func (store *MemoryStore) Name() string {
	return "memory"
}

// ReadValue implements Store.ReadValue
func (store *MemoryStore) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.items.Get(key)

	if !ok {
		return nil, nil
	}

	return keys.Copy(value.([]byte)), nil
}

// FindKeysByPrefix implements Store.FindKeysByPrefix
func (store *MemoryStore) FindKeysByPrefix(ctx context.Context, keyPrefix []byte) (Keys, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var found [][]byte

	for _, key := range store.keysWithPrefix(keyPrefix) {
		found = append(found, keys.Copy(key[len(keyPrefix):]))
	}

	return SliceKeys(found), nil
}

// FindKeyValuesByPrefix implements Store.FindKeyValuesByPrefix
func (store *MemoryStore) FindKeyValuesByPrefix(ctx context.Context, keyPrefix []byte) (KeyValues, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	var found []KeyValue

	for _, key := range store.keysWithPrefix(keyPrefix) {
		value, _ := store.items.Get(key)
		found = append(found, KeyValue{
			Key:   keys.Copy(key[len(keyPrefix):]),
			Value: keys.Copy(value.([]byte)),
		})
	}

	return SliceKeyValues(found), nil
}

// WriteBatch implements Store.WriteBatch. The batch is applied
// under one lock acquisition, which is stronger than the contract
// requires.
func (store *MemoryStore) WriteBatch(ctx context.Context, batch *Batch) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	for _, op := range batch.Simplify().Operations() {
		switch op := op.(type) {
		case Put:
			// The treemap holds bare byte slices; the named key type
			// would fail the comparator's type assertions.
			store.items.Put([]byte(keys.Copy(op.Key)), []byte(keys.Copy(op.Value)))
		case Delete:
			store.items.Remove(op.Key)
		case DeletePrefix:
			for _, key := range store.keysWithPrefix(op.KeyPrefix) {
				store.items.Remove(key)
			}
		}
	}

	return nil
}

// keysWithPrefix returns the full stored keys beginning with
// keyPrefix in ascending order. Callers must hold the lock.
func (store *MemoryStore) keysWithPrefix(keyPrefix []byte) [][]byte {
	var matched [][]byte

	iter := store.items.Iterator()
	for iter.Next() {
		key := iter.Key().([]byte)

		if keys.Compare(key, keyPrefix) < 0 {
			continue
		}

		if !keys.HasPrefix(key, keyPrefix) {
			break
		}

		matched = append(matched, key)
	}

	return matched
}
