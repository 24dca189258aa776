package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/scopekv/scopekv/storage/kv"
)

// A prefix search is a range query within the single partition:
// "partition equals dummy AND key begins_with prefix", sorted by
// key. The service bounds each response to a page plus an optional
// continuation token; the iterators below exhaust the current page
// before fetching the next one, so crossing a page boundary inside
// Next is a network round-trip. The sequence ends when a page is
// exhausted and no continuation token was returned.
func (store *Store) newQueryPaginator(projection string, keyPrefix []byte) *dynamodb.QueryPaginator {
	return dynamodb.NewQueryPaginator(store.api, &dynamodb.QueryInput{
		TableName:              aws.String(store.table.String()),
		ProjectionExpression:   aws.String(projection),
		KeyConditionExpression: aws.String(partitionAttribute + " = :partition AND begins_with(" + keyAttribute + ", :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":partition": &types.AttributeValueMemberB{Value: dummyPartitionKey},
			":prefix":    &types.AttributeValueMemberB{Value: keyPrefix},
		},
	})
}

var _ kv.Keys = keySet{}

// keySet is the Keys capability for one prefix search. Each call
// to Iterator starts a fresh query.
type keySet struct {
	ctx       context.Context
	store     *Store
	keyPrefix []byte
}

func (s keySet) Iterator() kv.KeyIterator {
	return &keyIterator{
		ctx:       s.ctx,
		paginator: s.store.newQueryPaginator(keyAttribute, s.keyPrefix),
		prefixLen: len(s.keyPrefix),
	}
}

var _ kv.KeyIterator = (*keyIterator)(nil)

type keyIterator struct {
	ctx       context.Context
	paginator *dynamodb.QueryPaginator
	items     []map[string]types.AttributeValue
	pos       int
	prefixLen int
	key       []byte
	err       error
}

func (iter *keyIterator) Next() bool {
	if iter.err != nil {
		return false
	}

	for iter.pos >= len(iter.items) {
		if !iter.paginator.HasMorePages() {
			iter.key = nil

			return false
		}

		page, err := iter.paginator.NextPage(iter.ctx)

		if err != nil {
			iter.err = fmt.Errorf("could not query page of keys: %w", err)
			iter.key = nil

			return false
		}

		iter.items = page.Items
		iter.pos = 0
	}

	key, err := extractKey(iter.prefixLen, iter.items[iter.pos])
	iter.pos++

	if err != nil {
		iter.err = err
		iter.key = nil

		return false
	}

	iter.key = key

	return true
}

func (iter *keyIterator) Key() []byte {
	return iter.key
}

func (iter *keyIterator) Error() error {
	return iter.err
}

var _ kv.KeyValues = keyValueSet{}

// keyValueSet is the KeyValues capability for one prefix search
type keyValueSet struct {
	ctx       context.Context
	store     *Store
	keyPrefix []byte
}

func (s keyValueSet) Iterator() kv.Iterator {
	return &keyValueIterator{
		ctx:       s.ctx,
		paginator: s.store.newQueryPaginator(keyValueAttributes, s.keyPrefix),
		prefixLen: len(s.keyPrefix),
	}
}

var _ kv.Iterator = (*keyValueIterator)(nil)

type keyValueIterator struct {
	ctx       context.Context
	paginator *dynamodb.QueryPaginator
	items     []map[string]types.AttributeValue
	pos       int
	prefixLen int
	key       []byte
	value     []byte
	err       error
}

func (iter *keyValueIterator) Next() bool {
	if iter.err != nil {
		return false
	}

	for iter.pos >= len(iter.items) {
		if !iter.paginator.HasMorePages() {
			iter.key = nil
			iter.value = nil

			return false
		}

		page, err := iter.paginator.NextPage(iter.ctx)

		if err != nil {
			iter.err = fmt.Errorf("could not query page of key-values: %w", err)
			iter.key = nil
			iter.value = nil

			return false
		}

		iter.items = page.Items
		iter.pos = 0
	}

	key, value, err := extractKeyValue(iter.prefixLen, iter.items[iter.pos])
	iter.pos++

	if err != nil {
		iter.err = err
		iter.key = nil
		iter.value = nil

		return false
	}

	iter.key = key
	iter.value = value

	return true
}

func (iter *keyValueIterator) Key() []byte {
	return iter.key
}

func (iter *keyValueIterator) Value() []byte {
	return iter.value
}

func (iter *keyValueIterator) Error() error {
	return iter.err
}
