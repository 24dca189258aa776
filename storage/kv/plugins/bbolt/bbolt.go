// Package bbolt implements the kv store contract on a local
// bbolt file. It mirrors the remote adapter's behavior so tests
// and single-node deployments can run without a DynamoDB
// endpoint: the same flat sorted key space, prefix searches and
// batched writes.
package bbolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/scopekv/scopekv/storage/kv"
	"github.com/scopekv/scopekv/storage/kv/keys"
)

const (
	// DriverName is the plugin name of this store
	DriverName = "bolt"
)

// All items live in one bucket, the analog of the remote
// adapter's single partition.
var bucketName = []byte{0}

var _ kv.Store = (*Store)(nil)

// Store implements kv.Store on a bbolt database file
type Store struct {
	db *bolt.DB
}

// New opens (or creates) a bbolt store at path
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0666, nil)

	if err != nil {
		return nil, fmt.Errorf("could not open bolt store at %s: %w", path, err)
	}

	if err := db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists(bucketName)

		return err
	}); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not ensure root bucket exists: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database file
func (store *Store) Close() error {
	return store.db.Close()
}

// Delete closes then deletes the store and all its contents
func (store *Store) Delete() error {
	path := store.db.Path()

	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("could not remove path %s: %w", path, err)
	}

	return nil
}

// Name implements kv.Store.Name
func (store *Store) Name() string {
	return DriverName
}

// ReadValue implements kv.Store.ReadValue
func (store *Store) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte

	err := store.db.View(func(txn *bolt.Tx) error {
		stored := txn.Bucket(bucketName).Get(key)

		if stored != nil {
			value = keys.Copy(stored)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("could not read value: %w", err)
	}

	return value, nil
}

// FindKeysByPrefix implements kv.Store.FindKeysByPrefix. Results
// materialize eagerly under one read transaction.
func (store *Store) FindKeysByPrefix(ctx context.Context, keyPrefix []byte) (kv.Keys, error) {
	var found [][]byte

	err := store.db.View(func(txn *bolt.Tx) error {
		cursor := txn.Bucket(bucketName).Cursor()

		for key, _ := cursor.Seek(keyPrefix); key != nil && keys.HasPrefix(key, keyPrefix); key, _ = cursor.Next() {
			found = append(found, keys.Copy(key[len(keyPrefix):]))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("could not search keys: %w", err)
	}

	return kv.SliceKeys(found), nil
}

// FindKeyValuesByPrefix implements kv.Store.FindKeyValuesByPrefix
func (store *Store) FindKeyValuesByPrefix(ctx context.Context, keyPrefix []byte) (kv.KeyValues, error) {
	var found []kv.KeyValue

	err := store.db.View(func(txn *bolt.Tx) error {
		cursor := txn.Bucket(bucketName).Cursor()

		for key, value := cursor.Seek(keyPrefix); key != nil && keys.HasPrefix(key, keyPrefix); key, value = cursor.Next() {
			found = append(found, kv.KeyValue{
				Key:   keys.Copy(key[len(keyPrefix):]),
				Value: keys.Copy(value),
			})
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("could not search key-values: %w", err)
	}

	return kv.SliceKeyValues(found), nil
}

// WriteBatch implements kv.Store.WriteBatch. Locally the whole
// batch commits in one transaction, which is stronger than the
// contract requires.
func (store *Store) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	err := store.db.Update(func(txn *bolt.Tx) error {
		bucket := txn.Bucket(bucketName)

		for _, op := range batch.Simplify().Operations() {
			switch op := op.(type) {
			case kv.Put:
				if err := bucket.Put(op.Key, op.Value); err != nil {
					return err
				}
			case kv.Delete:
				if err := bucket.Delete(op.Key); err != nil {
					return err
				}
			case kv.DeletePrefix:
				cursor := bucket.Cursor()

				var matched [][]byte

				for key, _ := cursor.Seek(op.KeyPrefix); key != nil && keys.HasPrefix(key, op.KeyPrefix); key, _ = cursor.Next() {
					matched = append(matched, keys.Copy(key))
				}

				for _, key := range matched {
					if err := bucket.Delete(key); err != nil {
						return err
					}
				}
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("could not write batch: %w", err)
	}

	return nil
}

// Plugins returns the kv plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&Plugin{},
	}
}

// Plugin is the kv storage plugin for bbolt
type Plugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// NewStore implements kv.Plugin.NewStore. The only required
// option is "path", the database file path.
func (plugin *Plugin) NewStore(options kv.PluginOptions) (kv.Store, error) {
	path, ok := options["path"]

	if !ok {
		return nil, fmt.Errorf("\"path\" is required")
	}

	pathString, ok := path.(string)

	if !ok {
		return nil, fmt.Errorf("\"path\" must be a string")
	}

	return New(pathString)
}

// NewTempStore implements kv.Plugin.NewTempStore
func (plugin *Plugin) NewTempStore() (kv.Store, error) {
	return plugin.NewStore(kv.PluginOptions{
		"path": filepath.Join(os.TempDir(), fmt.Sprintf("bolt-%s", uuid.New().String())),
	})
}
