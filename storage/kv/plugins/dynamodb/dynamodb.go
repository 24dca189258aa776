// Package dynamodb maps the kv store contract onto DynamoDB.
//
// Every item shares one fixed partition key so that the sort key,
// which holds the logical key, is range-scannable in sorted order.
// Prefix searches page through query results with continuation
// tokens and batched writes are chunked to the service's 25-item
// request limit. Each operation round-trips to the service; there
// is no caching and no retrying inside the adapter.
package dynamodb

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopekv/scopekv/storage/kv"
	"github.com/scopekv/scopekv/utils/log"
)

const (
	// DriverName is the plugin name of this store
	DriverName = "dynamodb"

	// localStackEndpointVar holds the endpoint address of a local
	// DynamoDB emulator
	localStackEndpointVar = "LOCALSTACK_ENDPOINT"
)

var _ kv.Store = (*Store)(nil)

// Store implements kv.Store on a single DynamoDB table. A Store
// holds no per-call mutable state, so one instance is safely
// shared by any number of concurrent callers and derived contexts.
type Store struct {
	api    API
	table  TableName
	logger *zap.Logger
}

// New creates a Store from the ambient AWS configuration
// (environment-provided credentials, region and endpoint),
// ensuring the table exists.
func New(ctx context.Context, table TableName) (*Store, TableStatus, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)

	if err != nil {
		return nil, TableExisting, fmt.Errorf("could not load AWS configuration: %w", err)
	}

	return FromConfig(ctx, cfg, table)
}

// FromConfig creates a Store from the given AWS configuration,
// ensuring the table exists. The returned TableStatus reports
// whether this call created the table.
func FromConfig(ctx context.Context, cfg aws.Config, table TableName) (*Store, TableStatus, error) {
	return newStore(ctx, dynamodb.NewFromConfig(cfg), table)
}

// WithLocalStack creates a Store against a LocalStack instance.
// It requires the LOCALSTACK_ENDPOINT environment variable to hold
// the endpoint address to connect to.
func WithLocalStack(ctx context.Context, table TableName) (*Store, TableStatus, error) {
	endpoint := os.Getenv(localStackEndpointVar)

	if endpoint == "" {
		return nil, TableExisting, ErrNoLocalStackEndpoint
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)

	if err != nil {
		return nil, TableExisting, fmt.Errorf("could not load AWS configuration: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(options *dynamodb.Options) {
		options.BaseEndpoint = aws.String(endpoint)
	})

	return newStore(ctx, client, table)
}

func newStore(ctx context.Context, api API, table TableName) (*Store, TableStatus, error) {
	store := &Store{
		api:    api,
		table:  table,
		logger: zap.L().With(zap.String("store", DriverName), zap.String("table", table.String())),
	}

	status, err := store.createTableIfNeeded(ctx)

	if err != nil {
		return nil, status, err
	}

	return store, status, nil
}

// Name implements kv.Store.Name
func (store *Store) Name() string {
	return DriverName
}

// ReadValue implements kv.Store.ReadValue
func (store *Store) ReadValue(ctx context.Context, key []byte) ([]byte, error) {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "ReadValue"))

	out, err := store.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(store.table.String()),
		Key:       buildKey(key),
	})

	if err != nil {
		return nil, fmt.Errorf("could not get item: %w", err)
	}

	if out.Item == nil {
		logger.Debug("item absent", zap.Binary("key", key))

		return nil, nil
	}

	return extractValueOwned(out.Item)
}

// FindKeysByPrefix implements kv.Store.FindKeysByPrefix. The
// returned sequence is lazy: each page is fetched as the iterator
// crosses into it.
func (store *Store) FindKeysByPrefix(ctx context.Context, keyPrefix []byte) (kv.Keys, error) {
	return keySet{ctx: ctx, store: store, keyPrefix: keyPrefix}, nil
}

// FindKeyValuesByPrefix implements kv.Store.FindKeyValuesByPrefix
func (store *Store) FindKeyValuesByPrefix(ctx context.Context, keyPrefix []byte) (kv.KeyValues, error) {
	return keyValueSet{ctx: ctx, store: store, keyPrefix: keyPrefix}, nil
}

// NewContext creates a scoped context rooted at baseKey on a table
// reachable through the ambient AWS configuration.
func NewContext(ctx context.Context, table TableName, baseKey []byte, extra interface{}) (*kv.Context, TableStatus, error) {
	store, status, err := New(ctx, table)

	if err != nil {
		return nil, status, err
	}

	return kv.NewContext(store, baseKey, extra), status, nil
}

// NewContextFromConfig creates a scoped context from the given AWS
// configuration.
func NewContextFromConfig(ctx context.Context, cfg aws.Config, table TableName, baseKey []byte, extra interface{}) (*kv.Context, TableStatus, error) {
	store, status, err := FromConfig(ctx, cfg, table)

	if err != nil {
		return nil, status, err
	}

	return kv.NewContext(store, baseKey, extra), status, nil
}

// NewContextWithLocalStack creates a scoped context against a
// LocalStack instance.
func NewContextWithLocalStack(ctx context.Context, table TableName, baseKey []byte, extra interface{}) (*kv.Context, TableStatus, error) {
	store, status, err := WithLocalStack(ctx, table)

	if err != nil {
		return nil, status, err
	}

	return kv.NewContext(store, baseKey, extra), status, nil
}

// Plugins returns the kv plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&Plugin{},
	}
}

// Plugin is the kv storage plugin for DynamoDB
type Plugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *Plugin) Name() string {
	return DriverName
}

// NewStore implements kv.Plugin.NewStore. The only required
// option is "table", the table name.
func (plugin *Plugin) NewStore(options kv.PluginOptions) (kv.Store, error) {
	name, ok := options["table"]

	if !ok {
		return nil, fmt.Errorf("\"table\" is required")
	}

	nameString, ok := name.(string)

	if !ok {
		return nil, fmt.Errorf("\"table\" must be a string")
	}

	table, err := NewTableName(nameString)

	if err != nil {
		return nil, err
	}

	store, _, err := New(context.Background(), table)

	if err != nil {
		return nil, err
	}

	return store, nil
}

// NewTempStore implements kv.Plugin.NewTempStore. It requires a
// LocalStack endpoint; callers without one should skip this plugin.
func (plugin *Plugin) NewTempStore() (kv.Store, error) {
	table, err := NewTableName(fmt.Sprintf("scopekv-test-%s", uuid.New().String()))

	if err != nil {
		return nil, err
	}

	store, _, err := WithLocalStack(context.Background(), table)

	if err != nil {
		return nil, err
	}

	return store, nil
}
