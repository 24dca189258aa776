package kv

import (
	"fmt"

	"github.com/ugorji/go/codec"
)

// Scope discriminators are serialized as canonical CBOR. The
// encoding is deterministic (map keys are sorted) and a single
// CBOR item is self-delimiting, so no serialized scope value can
// be a byte-prefix of the serialization of a different value.
// Contexts rely on that prefix freedom: derived base keys are
// built by concatenation, and an aliasing encoding would let two
// distinct sub-scopes leak into each other's prefix scans.
var scopeHandle = newScopeHandle()

func newScopeHandle() *codec.CborHandle {
	handle := new(codec.CborHandle)
	handle.Canonical = true

	return handle
}

// MarshalScope serializes a scope discriminator into its
// canonical self-delimiting form.
func MarshalScope(scope interface{}) ([]byte, error) {
	var encoded []byte

	if err := codec.NewEncoderBytes(&encoded, scopeHandle).Encode(scope); err != nil {
		return nil, fmt.Errorf("could not serialize scope value: %w", err)
	}

	return encoded, nil
}

// UnmarshalScope deserializes a scope discriminator previously
// produced by MarshalScope.
func UnmarshalScope(encoded []byte, scope interface{}) error {
	if err := codec.NewDecoderBytes(encoded, scopeHandle).Decode(scope); err != nil {
		return fmt.Errorf("could not deserialize scope value: %w", err)
	}

	return nil
}
