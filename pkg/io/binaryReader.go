package io

import (
	"encoding/binary"
	"io"
)

// BinReader is a reader over an in-memory byte slice that keeps the first
// error encountered, so a struct with many fields can be decoded with a
// single error check at the end. It also tracks the current position, which
// lets decoders detect trailing data.
type BinReader struct {
	data []byte
	pos  int
	Err  error
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	return &BinReader{data: b}
}

// Len returns the number of unread bytes.
func (r *BinReader) Len() int {
	return len(r.data) - r.pos
}

// ReadU64LE reads a little-endian encoded uint64 value.
func (r *BinReader) ReadU64LE() uint64 {
	if b := r.next(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// ReadU32LE reads a little-endian encoded uint32 value.
func (r *BinReader) ReadU32LE() uint32 {
	if b := r.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

// ReadU24BE reads a big-endian encoded 24-bit unsigned value.
func (r *BinReader) ReadU24BE() uint32 {
	if b := r.next(3); b != nil {
		return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	}
	return 0
}

// ReadU16LE reads a little-endian encoded uint16 value.
func (r *BinReader) ReadU16LE() uint16 {
	if b := r.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

// ReadB reads a single byte.
func (r *BinReader) ReadB() byte {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}

// ReadVarUint reads a variable-length-encoded integer.
func (r *BinReader) ReadVarUint() uint64 {
	if r.Err != nil {
		return 0
	}

	var b = r.ReadB()

	if b == 0xfd {
		return uint64(r.ReadU16LE())
	}
	if b == 0xfe {
		return uint64(r.ReadU32LE())
	}
	if b == 0xff {
		return r.ReadU64LE()
	}

	return uint64(b)
}

// ReadBytes fills the given slice with data from the reader.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}

	n := copy(buf, r.data[r.pos:])
	r.pos += n
	if n < len(buf) {
		if n == 0 {
			r.Err = io.EOF
		} else {
			r.Err = io.ErrUnexpectedEOF
		}
	}
}

// ReadSlice returns the next n bytes without copying them. The result
// aliases the underlying buffer.
func (r *BinReader) ReadSlice(n int) []byte {
	return r.next(n)
}

// ReadRest returns all unread bytes without copying them.
func (r *BinReader) ReadRest() []byte {
	if r.Err != nil {
		return nil
	}
	b := r.data[r.pos:]
	r.pos = len(r.data)
	return b
}

func (r *BinReader) next(n int) []byte {
	if r.Err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		if r.pos == len(r.data) {
			r.Err = io.EOF
		} else {
			r.Err = io.ErrUnexpectedEOF
		}
		return nil
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b
}
