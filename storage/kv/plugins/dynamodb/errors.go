package dynamodb

import (
	"errors"
	"fmt"
)

// Malformed stored items indicate data corruption or schema
// drift. They are always propagated and never retried.
var (
	// ErrMissingKeyAttribute indicates that a stored item has no
	// key attribute
	ErrMissingKeyAttribute = errors.New("stored key attribute is missing")
	// ErrMissingValueAttribute indicates that a stored item has
	// no value attribute
	ErrMissingValueAttribute = errors.New("stored value attribute is missing")
)

// Table name validation failures. These are reported at
// construction time, before any network call.
var (
	// ErrTableNameTooShort indicates a table name shorter than 3 characters
	ErrTableNameTooShort = errors.New("table name must have at least 3 characters")
	// ErrTableNameTooLong indicates a table name longer than 63 characters
	ErrTableNameTooLong = errors.New("table name must have at most 63 characters")
	// ErrTableNameInvalidCharacter indicates a character outside the
	// allowed set
	ErrTableNameInvalidCharacter = errors.New("table name must only contain lowercase letters, numbers, periods, hyphens and underscores")
)

// ErrNoLocalStackEndpoint indicates that the LOCALSTACK_ENDPOINT
// environment variable is not set
var ErrNoLocalStackEndpoint = errors.New("LOCALSTACK_ENDPOINT environment variable is not set")

// WrongKeyTypeError indicates that a stored key attribute has the
// wrong stored type. StoredType names the actual type to aid
// diagnosis.
type WrongKeyTypeError struct {
	StoredType string
}

func (err *WrongKeyTypeError) Error() string {
	return fmt.Sprintf("key was stored as %s, but it was expected to be stored as a binary blob", err.StoredType)
}

// WrongValueTypeError indicates that a stored value attribute has
// the wrong stored type
type WrongValueTypeError struct {
	StoredType string
}

func (err *WrongValueTypeError) Error() string {
	return fmt.Sprintf("value was stored as %s, but it was expected to be stored as a binary blob", err.StoredType)
}

// CreateTableError indicates that table creation failed for a
// reason other than the table already existing
type CreateTableError struct {
	Err error
}

func (err *CreateTableError) Error() string {
	return fmt.Sprintf("could not create table: %s", err.Err.Error())
}

func (err *CreateTableError) Unwrap() error {
	return err.Err
}
