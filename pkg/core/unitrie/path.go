package unitrie

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/util/slice"
)

// ErrInvalidPath is returned for paths containing anything but 0 and 1.
var ErrInvalidPath = errors.New("invalid path")

// encodedPathLen returns the number of bytes needed to pack the given number
// of bits.
func encodedPathLen(bits int) int {
	return (bits + 7) / 8
}

// EncodePath packs a bit path (one 0/1 value per byte) into bytes, most
// significant bit first. The last byte is zero-padded.
func EncodePath(path []byte) []byte {
	res := make([]byte, encodedPathLen(len(path)))
	for i, b := range path {
		if b != 0 {
			res[i/8] |= 0x80 >> (i % 8)
		}
	}
	return res
}

// DecodePath expands the first bitLength bits of the packed path. bitLength
// is clamped to [0, len(encoded)*8].
func DecodePath(encoded []byte, bitLength int) []byte {
	if bitLength > len(encoded)*8 {
		bitLength = len(encoded) * 8
	}
	if bitLength < 0 {
		bitLength = 0
	}
	res := make([]byte, bitLength)
	for i := range res {
		res[i] = (encoded[i/8] >> (7 - i%8)) & 1
	}
	return res
}

// decodeShortPath expands a path of at most 8 bits kept in a single byte.
func decodeShortPath(b byte, bitLength int) []byte {
	res := make([]byte, bitLength)
	for i := range res {
		res[i] = (b >> (7 - i)) & 1
	}
	return res
}

// KeyToPath converts a byte key into a bit path, 8 bits per byte.
func KeyToPath(key []byte) []byte {
	return DecodePath(key, len(key)*8)
}

// PathToKey packs a bit path back into a byte key.
func PathToKey(path []byte) []byte {
	return EncodePath(path)
}

func validatePath(path []byte) error {
	for i, b := range path {
		if b > 1 {
			return fmt.Errorf("%w: bit %d is %d", ErrInvalidPath, i, b)
		}
	}
	return nil
}

// lcp returns the length of the longest common prefix of a and b.
func lcp(a, b []byte) int {
	if len(a) > len(b) {
		return lcp(b, a)
	}

	var i int
	for i = 0; i < len(a); i++ {
		if a[i] != b[i] {
			break
		}
	}
	return i
}

// concatPath returns prefix ++ [bit] ++ suffix as a fresh slice.
func concatPath(prefix []byte, bit byte, suffix []byte) []byte {
	return slice.Concat(prefix, []byte{bit}, suffix)
}
