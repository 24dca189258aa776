package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/scopekv/scopekv/storage/kv"
	"github.com/scopekv/scopekv/storage/kv/keys"
	"github.com/scopekv/scopekv/utils/log"
)

// BatchWriteItem accepts at most 25 items per request.
// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_BatchWriteItem.html
const maxBatchWriteItems = 25

// WriteBatch implements kv.Store.WriteBatch.
//
// The batch is simplified, prefix deletes are expanded into
// concrete key deletes via a key-only scan, and the surviving
// operations are submitted in chunks of at most 25 items, deletes
// before puts, one network call per chunk. Chunks are submitted
// sequentially and are not rolled back on a later chunk's failure:
// a failed call may leave an arbitrary prefix of chunks applied.
// Callers recover by resubmitting the same batch.
func (store *Store) WriteBatch(ctx context.Context, batch *kv.Batch) error {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "WriteBatch"))

	// Deletes and puts are kept in separate lists because
	// expanding DeletePrefix only ever produces more deletes.
	var deleteList [][]byte
	var insertList []kv.KeyValue

	for _, op := range batch.Simplify().Operations() {
		switch op := op.(type) {
		case kv.Delete:
			deleteList = append(deleteList, op.Key)
		case kv.Put:
			insertList = append(insertList, kv.KeyValue{Key: op.Key, Value: op.Value})
		case kv.DeletePrefix:
			// All matching keys are read before any delete for
			// this prefix is issued.
			iter := keySet{ctx: ctx, store: store, keyPrefix: op.KeyPrefix}.Iterator()

			for iter.Next() {
				deleteList = append(deleteList, keys.Join(op.KeyPrefix, iter.Key()))
			}

			if err := iter.Error(); err != nil {
				return err
			}
		}
	}

	logger.Debug("batch simplified", zap.Int("deletes", len(deleteList)), zap.Int("puts", len(insertList)))

	for start := 0; start < len(deleteList); start += maxBatchWriteItems {
		chunk := deleteList[start:min(start+maxBatchWriteItems, len(deleteList))]
		requests := make([]types.WriteRequest, len(chunk))

		for i, key := range chunk {
			requests[i] = types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: buildKey(key)},
			}
		}

		if err := store.submitChunk(ctx, requests); err != nil {
			return fmt.Errorf("could not submit delete chunk: %w", err)
		}
	}

	for start := 0; start < len(insertList); start += maxBatchWriteItems {
		chunk := insertList[start:min(start+maxBatchWriteItems, len(insertList))]
		requests := make([]types.WriteRequest, len(chunk))

		for i, item := range chunk {
			requests[i] = types.WriteRequest{
				PutRequest: &types.PutRequest{Item: buildKeyValue(item.Key, item.Value)},
			}
		}

		if err := store.submitChunk(ctx, requests); err != nil {
			return fmt.Errorf("could not submit put chunk: %w", err)
		}
	}

	return nil
}

func (store *Store) submitChunk(ctx context.Context, requests []types.WriteRequest) error {
	out, err := store.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			store.table.String(): requests,
		},
	})

	if err != nil {
		return err
	}

	// The adapter never retries on its own. Unprocessed items are
	// surfaced so the caller can resubmit the batch idempotently.
	if unprocessed := len(out.UnprocessedItems[store.table.String()]); unprocessed > 0 {
		return fmt.Errorf("batch write left %d of %d items unprocessed", unprocessed, len(requests))
	}

	return nil
}
