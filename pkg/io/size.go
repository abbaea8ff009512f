package io

import "errors"

// MaxUint24 is the biggest value that can be written with WriteU24BE.
const MaxUint24 = 1<<24 - 1

// ErrUint24Overflow is set by WriteU24BE when the value doesn't fit
// into three bytes.
var ErrUint24Overflow = errors.New("value exceeds 24 bits")

// GetVarSize returns the number of bytes WriteVarUint uses for value.
func GetVarSize(value uint64) int {
	if value < 0xFD {
		return 1 // uint8
	} else if value <= 0xFFFF {
		return 3 // byte + uint16
	} else if value <= 0xFFFFFFFF {
		return 5 // byte + uint32
	}
	return 9 // byte + uint64
}
