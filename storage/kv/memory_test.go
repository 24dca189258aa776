package kv_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scopekv/scopekv/storage/kv"
)

func TestMemoryStorePrefixScan(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	batch := kv.NewBatch()

	for i := 0; i < 10; i++ {
		batch.Put([]byte(fmt.Sprintf("key/%02d", i)), []byte(fmt.Sprintf("value %d", i)))
	}

	batch.Put([]byte("other"), []byte("ignored"))

	if err := store.WriteBatch(ctx, batch); err != nil {
		t.Fatalf("could not write batch: %s", err.Error())
	}

	found, err := store.FindKeysByPrefix(ctx, []byte("key/"))

	if err != nil {
		t.Fatalf("could not search keys: %s", err.Error())
	}

	collected, err := kv.CollectKeys(found)

	if err != nil {
		t.Fatalf("could not collect keys: %s", err.Error())
	}

	var expected [][]byte

	for i := 0; i < 10; i++ {
		expected = append(expected, []byte(fmt.Sprintf("%02d", i)))
	}

	if diff := cmp.Diff(expected, collected); diff != "" {
		t.Fatalf("keys differ (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreKeyValueScan(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	if err := store.WriteBatch(ctx, kv.NewBatch().
		Put([]byte("a/1"), []byte("v1")).
		Put([]byte("a/2"), []byte("v2")).
		Put([]byte("b/1"), []byte("v3")),
	); err != nil {
		t.Fatalf("could not write batch: %s", err.Error())
	}

	found, err := store.FindKeyValuesByPrefix(ctx, []byte("a/"))

	if err != nil {
		t.Fatalf("could not search key-values: %s", err.Error())
	}

	collected, err := kv.CollectKeyValues(found)

	if err != nil {
		t.Fatalf("could not collect key-values: %s", err.Error())
	}

	expected := []kv.KeyValue{
		{Key: []byte("1"), Value: []byte("v1")},
		{Key: []byte("2"), Value: []byte("v2")},
	}

	if diff := cmp.Diff(expected, collected); diff != "" {
		t.Fatalf("key-values differ (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreDeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	if err := store.WriteBatch(ctx, kv.NewBatch().
		Put([]byte("a/1"), []byte("v1")).
		Put([]byte("a/2"), []byte("v2")).
		Put([]byte("b/1"), []byte("v3")),
	); err != nil {
		t.Fatalf("could not write batch: %s", err.Error())
	}

	if err := store.WriteBatch(ctx, kv.NewBatch().DeletePrefix([]byte("a/"))); err != nil {
		t.Fatalf("could not delete prefix: %s", err.Error())
	}

	found, err := store.FindKeysByPrefix(ctx, nil)

	if err != nil {
		t.Fatalf("could not search keys: %s", err.Error())
	}

	collected, err := kv.CollectKeys(found)

	if err != nil {
		t.Fatalf("could not collect keys: %s", err.Error())
	}

	expected := [][]byte{[]byte("b/1")}

	if diff := cmp.Diff(expected, collected); diff != "" {
		t.Fatalf("keys differ (-want +got):\n%s", diff)
	}
}

func TestMemoryStoreDeletePrefixNoMatches(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	if err := store.WriteBatch(ctx, kv.NewBatch().Put([]byte("a"), []byte("v"))); err != nil {
		t.Fatalf("could not write batch: %s", err.Error())
	}

	if err := store.WriteBatch(ctx, kv.NewBatch().DeletePrefix([]byte("missing/"))); err != nil {
		t.Fatalf("expected a prefix delete with no matches to succeed: %s", err.Error())
	}

	value, err := store.ReadValue(ctx, []byte("a"))

	if err != nil {
		t.Fatalf("could not read value: %s", err.Error())
	}

	if !bytes.Equal(value, []byte("v")) {
		t.Fatalf("expected the unrelated key to survive")
	}
}

func TestMemoryStoreDeleteAfterPutUnderCoveringPrefix(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	if err := store.WriteBatch(ctx, kv.NewBatch().
		DeletePrefix([]byte("a/")).
		Put([]byte("a/1"), []byte("v")).
		Delete([]byte("a/1")),
	); err != nil {
		t.Fatalf("could not write batch: %s", err.Error())
	}

	value, err := store.ReadValue(ctx, []byte("a/1"))

	if err != nil {
		t.Fatalf("could not read value: %s", err.Error())
	}

	if value != nil {
		t.Fatalf("expected the key to be absent after the trailing delete, got %v", value)
	}
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	if err := store.WriteBatch(ctx, kv.NewBatch().
		Put([]byte("k"), []byte("v1")).
		Delete([]byte("k")).
		Put([]byte("k"), []byte("v2")),
	); err != nil {
		t.Fatalf("could not write batch: %s", err.Error())
	}

	value, err := store.ReadValue(ctx, []byte("k"))

	if err != nil {
		t.Fatalf("could not read value: %s", err.Error())
	}

	if !bytes.Equal(value, []byte("v2")) {
		t.Fatalf("expected v2, got %v", value)
	}
}
