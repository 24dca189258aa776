package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Sizing hint for newly created tables. Callers needing more
// throughput resize out of band.
const (
	tableReadCapacityUnits  = 10
	tableWriteCapacityUnits = 10
)

// TableName is a validated DynamoDB table name. Once constructed
// it is immutable.
type TableName struct {
	name string
}

// NewTableName validates name and wraps it. Valid names are 3 to
// 63 characters of lowercase letters, numbers, periods, hyphens
// and underscores.
func NewTableName(name string) (TableName, error) {
	if len(name) < 3 {
		return TableName{}, ErrTableNameTooShort
	}

	if len(name) > 63 {
		return TableName{}, ErrTableNameTooLong
	}

	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-' || c == '_':
		default:
			return TableName{}, ErrTableNameInvalidCharacter
		}
	}

	return TableName{name: name}, nil
}

// String returns the wrapped table name
func (table TableName) String() string {
	return table.name
}

// TableStatus is the outcome of ensuring a table exists
type TableStatus int

const (
	// TableNew means the call created the table
	TableNew TableStatus = iota
	// TableExisting means the table was already present
	TableExisting
)

func (status TableStatus) String() string {
	if status == TableNew {
		return "new"
	}

	return "existing"
}

// createTableIfNeeded creates the storage table if it doesn't exist.
//
// Creation is idempotent under concurrent initialization: the
// service reporting that the table already exists is success with
// status TableExisting, not an error.
func (store *Store) createTableIfNeeded(ctx context.Context) (TableStatus, error) {
	_, err := store.api.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(store.table.String()),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String(partitionAttribute),
				AttributeType: types.ScalarAttributeTypeB,
			},
			{
				AttributeName: aws.String(keyAttribute),
				AttributeType: types.ScalarAttributeTypeB,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String(partitionAttribute),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String(keyAttribute),
				KeyType:       types.KeyTypeRange,
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(tableReadCapacityUnits),
			WriteCapacityUnits: aws.Int64(tableWriteCapacityUnits),
		},
	})

	if err != nil {
		var inUse *types.ResourceInUseException

		if errors.As(err, &inUse) {
			store.logger.Debug("table already exists")

			return TableExisting, nil
		}

		return TableExisting, &CreateTableError{Err: err}
	}

	store.logger.Debug("table created", zap.Int("read_capacity", tableReadCapacityUnits), zap.Int("write_capacity", tableWriteCapacityUnits))

	return TableNew, nil
}
