package util

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Uint256Size is the size of Uint256 in bytes.
const Uint256Size = 32

// Uint256 is a 32 byte long unsigned integer. Trie node hashes and long
// value hashes are Uint256 in big-endian (natural Keccak output) order.
type Uint256 [Uint256Size]uint8

// Uint256DecodeStringBE attempts to decode the given string (in BE
// representation, optionally 0x-prefixed) into a Uint256.
func Uint256DecodeStringBE(s string) (u Uint256, err error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) != Uint256Size*2 {
		return u, fmt.Errorf("expected string size of %d got %d", Uint256Size*2, len(s))
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return u, err
	}

	copy(u[:], b)
	return u, nil
}

// Uint256DecodeBytesBE attempts to decode the given bytes (in BE
// representation) into a Uint256.
func Uint256DecodeBytesBE(b []byte) (u Uint256, err error) {
	if len(b) != Uint256Size {
		return u, fmt.Errorf("expected []byte of size %d got %d", Uint256Size, len(b))
	}
	copy(u[:], b)
	return u, nil
}

// BytesBE returns a byte slice representation of u.
func (u Uint256) BytesBE() []byte {
	return u[:]
}

// Equals returns true if both Uint256 values are the same.
func (u Uint256) Equals(other Uint256) bool {
	return u == other
}

// StringBE produces string representation of Uint256 with BE byte order.
func (u Uint256) StringBE() string {
	return hex.EncodeToString(u.BytesBE())
}

// String implements the stringer interface.
func (u Uint256) String() string {
	return u.StringBE()
}
