package unitrie

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/crypto/hash"
	"github.com/nspcc-dev/unitrie/pkg/util"
)

// MaxInlineValueSize is the maximum length of a value kept inside the node
// encoding. Longer values are stored separately and referenced by hash and
// length.
const MaxInlineValueSize = 32

type valueKind byte

const (
	emptyValue valueKind = iota
	inlineValue
	longValue
)

// ValueLoader fetches a long value by its keccak256 hash, it returns false if
// the value is not known.
type ValueLoader func(util.Uint256) ([]byte, bool)

// ValueWrapper is a node value representation. It's either empty, an inline
// value of up to MaxInlineValueSize bytes or a long value reference
// (hash + length). The form depends on value length only.
type ValueWrapper struct {
	kind   valueKind
	inline []byte
	hash   util.Uint256
	length uint32
}

// EmptyValue is a ValueWrapper holding no value.
var EmptyValue = ValueWrapper{}

// NewValueWrapper wraps the given value. Empty (or nil) value produces
// EmptyValue. The value is not copied.
func NewValueWrapper(value []byte) ValueWrapper {
	switch {
	case len(value) == 0:
		return EmptyValue
	case len(value) <= MaxInlineValueSize:
		return ValueWrapper{kind: inlineValue, inline: value}
	default:
		return newLongValue(hash.Keccak256(value), uint32(len(value)))
	}
}

func newLongValue(h util.Uint256, length uint32) ValueWrapper {
	return ValueWrapper{kind: longValue, hash: h, length: length}
}

// IsEmpty returns true if there is no value.
func (v ValueWrapper) IsEmpty() bool {
	return v.kind == emptyValue
}

// IsLong returns true if the value is stored by reference.
func (v ValueWrapper) IsLong() bool {
	return v.kind == longValue
}

// Len returns the length of the wrapped value.
func (v ValueWrapper) Len() int {
	switch v.kind {
	case inlineValue:
		return len(v.inline)
	case longValue:
		return int(v.length)
	default:
		return 0
	}
}

// Hash returns the long value hash, the second result is false for empty and
// inline values.
func (v ValueWrapper) Hash() (util.Uint256, bool) {
	return v.hash, v.kind == longValue
}

// SolveValue returns the wrapped value. Long values are fetched through the
// loader, false is returned if the loader doesn't have it (or if there is no
// value at all).
func (v ValueWrapper) SolveValue(loader ValueLoader) ([]byte, bool) {
	switch v.kind {
	case inlineValue:
		return v.inline, true
	case longValue:
		if loader == nil {
			return nil, false
		}
		return loader(v.hash)
	default:
		return nil, false
	}
}

// WrappedValueIs checks whether the given value is the one wrapped.
func (v ValueWrapper) WrappedValueIs(value []byte) bool {
	switch v.kind {
	case inlineValue:
		return bytes.Equal(v.inline, value)
	case longValue:
		return len(value) == int(v.length) && hash.Keccak256(value) == v.hash
	default:
		return len(value) == 0
	}
}

// Equals checks whether two wrappers represent the same value.
func (v ValueWrapper) Equals(other ValueWrapper) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case inlineValue:
		return bytes.Equal(v.inline, other.inline)
	case longValue:
		return v.hash == other.hash && v.length == other.length
	default:
		return true
	}
}

// String implements fmt.Stringer.
func (v ValueWrapper) String() string {
	switch v.kind {
	case inlineValue:
		return fmt.Sprintf("inline(%x)", v.inline)
	case longValue:
		return fmt.Sprintf("long(%s, %d)", v.hash.StringBE(), v.length)
	default:
		return "empty"
	}
}
