package kv

import (
	"bytes"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/scopekv/scopekv/storage/kv/keys"
)

// Op is a single write operation within a batch
type Op interface {
	isOp()
}

// Put stores Value under Key, overwriting any previous value
type Put struct {
	Key   []byte
	Value []byte
}

// Delete removes the item stored under Key. Deleting an absent
// key has no effect.
type Delete struct {
	Key []byte
}

// DeletePrefix removes every item whose key begins with KeyPrefix
type DeletePrefix struct {
	KeyPrefix []byte
}

func (Put) isOp()          {}
func (Delete) isOp()       {}
func (DeletePrefix) isOp() {}

// Batch is an ordered list of write operations. The zero value
// is an empty batch ready for use.
type Batch struct {
	ops []Op
}

// NewBatch returns an empty batch
func NewBatch() *Batch {
	return &Batch{}
}

// Put appends a put operation to the batch
func (batch *Batch) Put(key, value []byte) *Batch {
	batch.ops = append(batch.ops, Put{Key: key, Value: value})

	return batch
}

// Delete appends a delete operation to the batch
func (batch *Batch) Delete(key []byte) *Batch {
	batch.ops = append(batch.ops, Delete{Key: key})

	return batch
}

// DeletePrefix appends a prefix-delete operation to the batch
func (batch *Batch) DeletePrefix(keyPrefix []byte) *Batch {
	batch.ops = append(batch.ops, DeletePrefix{KeyPrefix: keyPrefix})

	return batch
}

// Operations returns the operations in the batch in order
func (batch *Batch) Operations() []Op {
	return batch.ops
}

// Len returns the number of operations in the batch
func (batch *Batch) Len() int {
	return len(batch.ops)
}

func bytesComparator(a, b interface{}) int {
	return bytes.Compare(a.([]byte), b.([]byte))
}

// Simplify collapses conflicting and redundant operations.
// The policy is last write wins per key: a later put or delete
// replaces an earlier one, and a later prefix delete absorbs
// every earlier operation on a covered key as well as any
// subsumed prefix. A put recorded after a covering prefix
// delete survives because stores apply deletes before puts.
//
// The simplified batch lists prefix deletes first, then per-key
// operations, each group in ascending key order, so the result
// is deterministic regardless of input order.
func (batch *Batch) Simplify() *Batch {
	ops := treemap.NewWith(bytesComparator)
	prefixes := treemap.NewWith(bytesComparator)

	// The recorded prefixes are kept mutually prefix-free, so a
	// floor lookup is enough to decide coverage.
	covered := func(key []byte) bool {
		floorKey, _ := prefixes.Floor(key)

		if floorKey == nil {
			return false
		}

		return keys.HasPrefix(key, floorKey.([]byte))
	}

	for _, op := range batch.ops {
		switch op := op.(type) {
		case Put:
			ops.Put(op.Key, op)
		case Delete:
			// A pending put on the key is evicted even when a
			// recorded prefix delete already covers the key:
			// leaving it would resurrect the key after the
			// prefix delete is applied.
			if covered(op.Key) {
				ops.Remove(op.Key)

				continue
			}

			ops.Put(op.Key, op)
		case DeletePrefix:
			removeCoveredKeys(ops, op.KeyPrefix)

			if covered(op.KeyPrefix) {
				continue
			}

			removeCoveredKeys(prefixes, op.KeyPrefix)
			prefixes.Put(op.KeyPrefix, op)
		}
	}

	simplified := NewBatch()

	prefixIter := prefixes.Iterator()
	for prefixIter.Next() {
		simplified.ops = append(simplified.ops, prefixIter.Value().(Op))
	}

	opIter := ops.Iterator()
	for opIter.Next() {
		simplified.ops = append(simplified.ops, opIter.Value().(Op))
	}

	return simplified
}

func removeCoveredKeys(m *treemap.Map, keyPrefix []byte) {
	var coveredKeys [][]byte

	ceilingKey, _ := m.Ceiling(keyPrefix)

	if ceilingKey == nil {
		return
	}

	iter := m.Iterator()
	for iter.Next() {
		key := iter.Key().([]byte)

		if keys.Compare(key, ceilingKey.([]byte)) < 0 {
			continue
		}

		if !keys.HasPrefix(key, keyPrefix) {
			break
		}

		coveredKeys = append(coveredKeys, key)
	}

	for _, key := range coveredKeys {
		m.Remove(key)
	}
}
