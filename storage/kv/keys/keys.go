package keys

import (
	"bytes"
)

// Key is a single key
type Key []byte

// Compare compares two keys
// -1 means a < b
// 1 means a > b
// 0 means a = b
func Compare(a, b Key) int {
	return bytes.Compare(a, b)
}

// HasPrefix returns true if key begins with prefix. Every
// key begins with the empty prefix.
func HasPrefix(key Key, prefix Key) bool {
	return bytes.HasPrefix(key, prefix)
}

// Join concatenates prefix and suffix into a new key. The
// inputs are not modified.
func Join(prefix Key, suffix Key) Key {
	if len(prefix) == 0 && len(suffix) == 0 {
		return Key{}
	}

	joined := make(Key, 0, len(prefix)+len(suffix))
	joined = append(joined, prefix...)
	joined = append(joined, suffix...)

	return joined
}

// Copy returns an independently owned copy of key
func Copy(key Key) Key {
	c := make(Key, len(key))

	copy(c, key)

	return c
}
