package util

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Uint160Size is the size of Uint160 in bytes.
const Uint160Size = 20

// Uint160 is a 20 byte long unsigned integer, the size of an account
// address.
type Uint160 [Uint160Size]uint8

// Uint160DecodeStringBE attempts to decode the given string (optionally
// 0x-prefixed) into a Uint160.
func Uint160DecodeStringBE(s string) (Uint160, error) {
	var u Uint160
	s = strings.TrimPrefix(s, "0x")
	if len(s) != Uint160Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint160Size*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}
	return Uint160DecodeBytesBE(b)
}

// Uint160DecodeBytesBE attempts to decode the given bytes into a Uint160.
func Uint160DecodeBytesBE(b []byte) (u Uint160, err error) {
	if len(b) != Uint160Size {
		return u, fmt.Errorf("expected byte size of %d got %d", Uint160Size, len(b))
	}
	copy(u[:], b)
	return
}

// BytesBE returns a byte slice representation of u.
func (u Uint160) BytesBE() []byte {
	return u[:]
}

// StringBE returns string representation of u.
func (u Uint160) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// String implements the stringer interface.
func (u Uint160) String() string {
	return u.StringBE()
}

// Equals returns true if both Uint160 values are the same.
func (u Uint160) Equals(other Uint160) bool {
	return u == other
}
