package dynamodb

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/emirpasic/gods/maps/treemap"
)

// fakeAPI is an in-memory stand-in for the DynamoDB API. It
// enforces the service behaviors the adapter is built around:
// query results come back in pages of at most pageSize items with
// a continuation token, batch writes reject more than 25 items
// per request, and creating an existing table reports a
// resource-in-use conflict.
type fakeAPI struct {
	mu       sync.Mutex
	items    *treemap.Map
	pageSize int
	created  bool
	queryErr error
}

var _ API = (*fakeAPI)(nil)

func newFakeAPI(pageSize int) *fakeAPI {
	return &fakeAPI{
		items: treemap.NewWith(func(a, b interface{}) int {
			return bytes.Compare(a.([]byte), b.([]byte))
		}),
		pageSize: pageSize,
	}
}

// setRawItem stores an item map verbatim, bypassing the adapter's
// codec. Tests use it to plant malformed items.
func (fake *fakeAPI) setRawItem(key []byte, item map[string]types.AttributeValue) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	fake.items.Put(key, item)
}

func (fake *fakeAPI) CreateTable(ctx context.Context, params *awssdk.CreateTableInput, optFns ...func(*awssdk.Options)) (*awssdk.CreateTableOutput, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if fake.created {
		return nil, &types.ResourceInUseException{Message: aws.String("table already exists")}
	}

	fake.created = true

	return &awssdk.CreateTableOutput{}, nil
}

func (fake *fakeAPI) GetItem(ctx context.Context, params *awssdk.GetItemInput, optFns ...func(*awssdk.Options)) (*awssdk.GetItemOutput, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	key := params.Key[keyAttribute].(*types.AttributeValueMemberB).Value
	item, ok := fake.items.Get(key)

	if !ok {
		return &awssdk.GetItemOutput{}, nil
	}

	return &awssdk.GetItemOutput{Item: copyItem(item.(map[string]types.AttributeValue))}, nil
}

func (fake *fakeAPI) Query(ctx context.Context, params *awssdk.QueryInput, optFns ...func(*awssdk.Options)) (*awssdk.QueryOutput, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	if fake.queryErr != nil {
		return nil, fake.queryErr
	}

	prefix := params.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberB).Value

	var startKey []byte

	if params.ExclusiveStartKey != nil {
		startKey = params.ExclusiveStartKey[keyAttribute].(*types.AttributeValueMemberB).Value
	}

	keyOnly := params.ProjectionExpression != nil && *params.ProjectionExpression == keyAttribute

	output := &awssdk.QueryOutput{}

	var lastKey []byte
	more := false

	iter := fake.items.Iterator()
	for iter.Next() {
		key := iter.Key().([]byte)

		if startKey != nil && bytes.Compare(key, startKey) <= 0 {
			continue
		}

		if !bytes.HasPrefix(key, prefix) {
			if bytes.Compare(key, prefix) > 0 {
				break
			}

			continue
		}

		if len(output.Items) == fake.pageSize {
			more = true

			break
		}

		item := copyItem(iter.Value().(map[string]types.AttributeValue))

		if keyOnly {
			delete(item, partitionAttribute)
			delete(item, valueAttribute)
		} else {
			delete(item, partitionAttribute)
		}

		output.Items = append(output.Items, item)
		lastKey = key
	}

	if more {
		output.LastEvaluatedKey = buildKey(lastKey)
	}

	return output, nil
}

func (fake *fakeAPI) BatchWriteItem(ctx context.Context, params *awssdk.BatchWriteItemInput, optFns ...func(*awssdk.Options)) (*awssdk.BatchWriteItemOutput, error) {
	fake.mu.Lock()
	defer fake.mu.Unlock()

	for _, requests := range params.RequestItems {
		if len(requests) > maxBatchWriteItems {
			return nil, fmt.Errorf("ValidationException: too many items requested for the BatchWriteItem call: %d", len(requests))
		}

		for _, request := range requests {
			switch {
			case request.DeleteRequest != nil:
				key := request.DeleteRequest.Key[keyAttribute].(*types.AttributeValueMemberB).Value
				fake.items.Remove(key)
			case request.PutRequest != nil:
				key := request.PutRequest.Item[keyAttribute].(*types.AttributeValueMemberB).Value
				fake.items.Put(key, copyItem(request.PutRequest.Item))
			}
		}
	}

	return &awssdk.BatchWriteItemOutput{}, nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	copied := make(map[string]types.AttributeValue, len(item))

	for name, attr := range item {
		copied[name] = attr
	}

	return copied
}
