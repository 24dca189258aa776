package dynamodb

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// The table schema is two binary key attributes plus one binary
// value attribute. The partition attribute always holds the same
// dummy byte so that every item lives in one partition, which is
// what makes sorted range queries over the key attribute possible.
const (
	partitionAttribute = "item_partition"
	keyAttribute       = "item_key"
	valueAttribute     = "item_value"
	keyValueAttributes = keyAttribute + ", " + valueAttribute
)

var dummyPartitionKey = []byte{0}

// buildKey builds the two-attribute representation of a key for
// lookups and deletes.
func buildKey(key []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		partitionAttribute: &types.AttributeValueMemberB{Value: dummyPartitionKey},
		keyAttribute:       &types.AttributeValueMemberB{Value: key},
	}
}

// buildKeyValue builds the three-attribute representation of an
// item for puts.
func buildKeyValue(key, value []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		partitionAttribute: &types.AttributeValueMemberB{Value: dummyPartitionKey},
		keyAttribute:       &types.AttributeValueMemberB{Value: key},
		valueAttribute:     &types.AttributeValueMemberB{Value: value},
	}
}

// extractKey extracts the key attribute from an item, returning
// the suffix past prefixLen bytes. The search prefix is re-supplied
// by the caller and not repeated in results.
func extractKey(prefixLen int, item map[string]types.AttributeValue) ([]byte, error) {
	attr, ok := item[keyAttribute]

	if !ok {
		return nil, ErrMissingKeyAttribute
	}

	blob, ok := attr.(*types.AttributeValueMemberB)

	if !ok {
		return nil, &WrongKeyTypeError{StoredType: typeDescription(attr)}
	}

	return blob.Value[prefixLen:], nil
}

// extractValue extracts the value attribute from an item
func extractValue(item map[string]types.AttributeValue) ([]byte, error) {
	attr, ok := item[valueAttribute]

	if !ok {
		return nil, ErrMissingValueAttribute
	}

	blob, ok := attr.(*types.AttributeValueMemberB)

	if !ok {
		return nil, &WrongValueTypeError{StoredType: typeDescription(attr)}
	}

	return blob.Value, nil
}

// extractValueOwned is extractValue but removes the value
// attribute from the item map so the blob is not aliased by it.
func extractValueOwned(item map[string]types.AttributeValue) ([]byte, error) {
	value, err := extractValue(item)

	if err != nil {
		return nil, err
	}

	delete(item, valueAttribute)

	return value, nil
}

// extractKeyValue extracts the key and value attributes from an item
func extractKeyValue(prefixLen int, item map[string]types.AttributeValue) ([]byte, []byte, error) {
	key, err := extractKey(prefixLen, item)

	if err != nil {
		return nil, nil, err
	}

	value, err := extractValue(item)

	if err != nil {
		return nil, nil, err
	}

	return key, value, nil
}

// typeDescription names the stored type of an attribute value for
// malformed-item errors. It must only be called for attributes that
// already failed the binary-blob check.
func typeDescription(attr types.AttributeValue) string {
	switch attr.(type) {
	case *types.AttributeValueMemberB:
		panic("describing the type of a correctly stored binary blob")
	case *types.AttributeValueMemberBOOL:
		return "a boolean"
	case *types.AttributeValueMemberBS:
		return "a list of binary blobs"
	case *types.AttributeValueMemberL:
		return "a list"
	case *types.AttributeValueMemberM:
		return "a map"
	case *types.AttributeValueMemberN:
		return "a number"
	case *types.AttributeValueMemberNS:
		return "a list of numbers"
	case *types.AttributeValueMemberNULL:
		return "a null value"
	case *types.AttributeValueMemberS:
		return "a string"
	case *types.AttributeValueMemberSS:
		return "a list of strings"
	default:
		return "an unknown type"
	}
}
