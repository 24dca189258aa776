package kv

// KeyValue is a single key-value pair
type KeyValue struct {
	Key   []byte
	Value []byte
}

// SliceKeys adapts an in-memory slice of keys to the Keys
// capability. It is used by stores whose prefix searches
// materialize eagerly (memory, bolt) and by tests.
func SliceKeys(ks [][]byte) Keys {
	return sliceKeys(ks)
}

type sliceKeys [][]byte

func (s sliceKeys) Iterator() KeyIterator {
	return &sliceKeyIterator{keys: s, pos: -1}
}

type sliceKeyIterator struct {
	keys [][]byte
	pos  int
}

func (iter *sliceKeyIterator) Next() bool {
	if iter.pos+1 >= len(iter.keys) {
		return false
	}

	iter.pos++

	return true
}

func (iter *sliceKeyIterator) Key() []byte {
	return iter.keys[iter.pos]
}

func (iter *sliceKeyIterator) Error() error {
	return nil
}

// SliceKeyValues adapts an in-memory slice of pairs to the
// KeyValues capability.
func SliceKeyValues(kvs []KeyValue) KeyValues {
	return sliceKeyValues(kvs)
}

type sliceKeyValues []KeyValue

func (s sliceKeyValues) Iterator() Iterator {
	return &sliceKeyValueIterator{pairs: s, pos: -1}
}

type sliceKeyValueIterator struct {
	pairs []KeyValue
	pos   int
}

func (iter *sliceKeyValueIterator) Next() bool {
	if iter.pos+1 >= len(iter.pairs) {
		return false
	}

	iter.pos++

	return true
}

func (iter *sliceKeyValueIterator) Key() []byte {
	return iter.pairs[iter.pos].Key
}

func (iter *sliceKeyValueIterator) Value() []byte {
	return iter.pairs[iter.pos].Value
}

func (iter *sliceKeyValueIterator) Error() error {
	return nil
}

// CollectKeys drains a Keys sequence into an owned slice
func CollectKeys(ks Keys) ([][]byte, error) {
	var collected [][]byte

	iter := ks.Iterator()
	for iter.Next() {
		collected = append(collected, iter.Key())
	}

	if err := iter.Error(); err != nil {
		return nil, err
	}

	return collected, nil
}

// CollectKeyValues drains a KeyValues sequence into an owned slice
func CollectKeyValues(kvs KeyValues) ([]KeyValue, error) {
	var collected []KeyValue

	iter := kvs.Iterator()
	for iter.Next() {
		collected = append(collected, KeyValue{Key: iter.Key(), Value: iter.Value()})
	}

	if err := iter.Error(); err != nil {
		return nil, err
	}

	return collected, nil
}
