package unitrie

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/io"
	"github.com/nspcc-dev/unitrie/pkg/util"
	"github.com/nspcc-dev/unitrie/pkg/util/slice"
)

// Node encoding flags.
const (
	flagMarker        byte = 0x40
	flagLongValue     byte = 0x20
	flagPath          byte = 0x10
	flagLeft          byte = 0x08
	flagRight         byte = 0x04
	flagLeftEmbedded  byte = 0x02
	flagRightEmbedded byte = 0x01
	flagReserved      byte = 0x80
)

// Path length header ranges with a single byte form.
const (
	shortPathMax  = 32
	hashPathMin   = 160
	hashPathMax   = 382
	hashPathShift = 128
	longPathMark  = 0xff
)

// childRef is the part of the child that goes into the parent encoding.
type childRef struct {
	present  bool
	embedded []byte
	hash     util.Uint256
	size     uint64
}

func makeChildRef(n Node) (childRef, error) {
	if isNull(n) {
		return childRef{}, nil
	}
	r, err := resolve(n)
	if err != nil {
		return childRef{}, err
	}
	c, ok := r.(*BranchNode)
	if !ok {
		return childRef{}, fmt.Errorf("%w: child %s is an empty node", ErrInvalidEncoding, n.Hash().StringBE())
	}
	ref := childRef{present: true, size: c.IntrinsicSize()}
	if c.IsReferencedByHash() {
		ref.hash = c.Hash()
	} else {
		ref.embedded = c.encoding
	}
	return ref, nil
}

func (c childRef) encodedLen() int {
	switch {
	case !c.present:
		return 0
	case c.embedded != nil:
		return 1 + len(c.embedded)
	default:
		return util.Uint256Size
	}
}

func (c childRef) encodeBinary(w *io.BinWriter) {
	switch {
	case !c.present:
	case c.embedded != nil:
		w.WriteB(byte(len(c.embedded)))
		w.WriteBytes(c.embedded)
	default:
		w.WriteBytes(c.hash[:])
	}
}

// encodeNode serializes branch node components, it returns the encoding and
// the children aggregate size. Stored children are resolved to get their
// sizes.
func encodeNode(path []byte, value ValueWrapper, left, right Node) ([]byte, uint64, error) {
	l, err := makeChildRef(left)
	if err != nil {
		return nil, 0, err
	}
	r, err := makeChildRef(right)
	if err != nil {
		return nil, 0, err
	}

	flags := flagMarker
	if value.IsLong() {
		flags |= flagLongValue
	}
	if len(path) > 0 {
		flags |= flagPath
	}
	if l.present {
		flags |= flagLeft
		if l.embedded != nil {
			flags |= flagLeftEmbedded
		}
	}
	if r.present {
		flags |= flagRight
		if r.embedded != nil {
			flags |= flagRightEmbedded
		}
	}

	w := io.NewBufBinWriter()
	w.Grow(1 + 1 + 9 + encodedPathLen(len(path)) + l.encodedLen() + r.encodedLen() + 9 + util.Uint256Size + 3)
	w.WriteB(flags)
	if len(path) > 0 {
		encodePathHeader(w.BinWriter, len(path))
		w.WriteBytes(EncodePath(path))
	}
	l.encodeBinary(w.BinWriter)
	r.encodeBinary(w.BinWriter)

	var childrenSize uint64
	if l.present || r.present {
		childrenSize = l.size + r.size
		w.WriteVarUint(childrenSize)
	}

	switch {
	case value.IsLong():
		w.WriteBytes(value.hash[:])
		w.WriteU24BE(value.length)
	case !value.IsEmpty():
		w.WriteBytes(value.inline)
	}
	if w.Err != nil {
		return nil, 0, w.Err
	}
	return w.Bytes(), childrenSize, nil
}

func encodePathHeader(w *io.BinWriter, bits int) {
	switch {
	case bits >= 1 && bits <= shortPathMax:
		w.WriteB(byte(bits - 1))
	case bits >= hashPathMin && bits <= hashPathMax:
		w.WriteB(byte(bits - hashPathShift))
	default:
		w.WriteB(longPathMark)
		w.WriteVarUint(uint64(bits))
	}
}

// DecodeNode decodes a node from its encoding. Hash-referenced children are
// returned as StoredNodes bound to the loader. Any format violation is
// reported as ErrInvalidEncoding.
func DecodeNode(data []byte, loader NodeLoader) (Node, error) {
	if bytes.Equal(data, nullEncoding) {
		return Null, nil
	}
	return decodeBranch(slice.Copy(data), loader)
}

// decodeBranch decodes a BranchNode, the node keeps data as its encoding.
func decodeBranch(data []byte, loader NodeLoader) (*BranchNode, error) {
	r := io.NewBinReaderFromBuf(data)
	flags := r.ReadB()
	if r.Err != nil {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidEncoding)
	}
	if flags&flagMarker == 0 || flags&flagReserved != 0 {
		return nil, fmt.Errorf("%w: bad flags %08b", ErrInvalidEncoding, flags)
	}
	var (
		hasLeft       = flags&flagLeft != 0
		hasRight      = flags&flagRight != 0
		leftEmbedded  = flags&flagLeftEmbedded != 0
		rightEmbedded = flags&flagRightEmbedded != 0
	)
	if (leftEmbedded && !hasLeft) || (rightEmbedded && !hasRight) {
		return nil, fmt.Errorf("%w: embedded flag for absent child", ErrInvalidEncoding)
	}

	var (
		path []byte
		err  error
	)
	if flags&flagPath != 0 {
		path, err = readPath(r)
		if err != nil {
			return nil, err
		}
	}
	left, err := readChild(r, hasLeft, leftEmbedded, loader)
	if err != nil {
		return nil, err
	}
	right, err := readChild(r, hasRight, rightEmbedded, loader)
	if err != nil {
		return nil, err
	}

	var childrenSize uint64
	if hasLeft || hasRight {
		childrenSize, err = readCanonicalVarUint(r)
		if err != nil {
			return nil, err
		}
	}

	var value ValueWrapper
	if flags&flagLongValue != 0 {
		var h util.Uint256
		r.ReadBytes(h[:])
		length := r.ReadU24BE()
		if r.Err == nil && length <= MaxInlineValueSize {
			return nil, fmt.Errorf("%w: long value of %d bytes", ErrInvalidEncoding, length)
		}
		value = newLongValue(h, length)
	} else if rest := r.ReadRest(); len(rest) > MaxInlineValueSize {
		return nil, fmt.Errorf("%w: inline value of %d bytes", ErrInvalidEncoding, len(rest))
	} else {
		value = NewValueWrapper(rest)
	}
	if r.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, r.Err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, r.Len())
	}
	if value.IsEmpty() && !(hasLeft && hasRight) {
		return nil, fmt.Errorf("%w: valueless node with less than two children", ErrInvalidEncoding)
	}

	b := &BranchNode{
		value:        value,
		left:         left,
		right:        right,
		encoding:     data,
		childrenSize: childrenSize,
	}
	b.setPath(path)
	return b, nil
}

func readPath(r *io.BinReader) ([]byte, error) {
	var bits uint64

	h := r.ReadB()
	switch {
	case h < shortPathMax:
		bits = uint64(h) + 1
	case h < longPathMark:
		bits = uint64(h) + hashPathShift
	default:
		var err error
		bits, err = readCanonicalVarUint(r)
		if err != nil {
			return nil, err
		}
		if bits == 0 || bits <= shortPathMax || (bits >= hashPathMin && bits <= hashPathMax) {
			return nil, fmt.Errorf("%w: non-canonical path length %d", ErrInvalidEncoding, bits)
		}
	}
	if r.Err != nil {
		return nil, fmt.Errorf("%w: path: %v", ErrInvalidEncoding, r.Err)
	}
	if bits > uint64(r.Len())*8 {
		return nil, fmt.Errorf("%w: path of %d bits exceeds data", ErrInvalidEncoding, bits)
	}
	enc := r.ReadSlice(encodedPathLen(int(bits)))
	if pad := bits % 8; pad != 0 && enc[len(enc)-1]&(0xff>>pad) != 0 {
		return nil, fmt.Errorf("%w: non-zero path padding", ErrInvalidEncoding)
	}
	return DecodePath(enc, int(bits)), nil
}

func readChild(r *io.BinReader, present, embedded bool, loader NodeLoader) (Node, error) {
	if !present {
		return Null, nil
	}
	if embedded {
		l := int(r.ReadB())
		data := r.ReadSlice(l)
		if r.Err != nil {
			return nil, fmt.Errorf("%w: embedded child: %v", ErrInvalidEncoding, r.Err)
		}
		if l > MaxEmbeddedNodeSize {
			return nil, fmt.Errorf("%w: embedded child of %d bytes", ErrInvalidEncoding, l)
		}
		return decodeBranch(data, loader)
	}
	var h util.Uint256
	r.ReadBytes(h[:])
	if r.Err != nil {
		return nil, fmt.Errorf("%w: child hash: %v", ErrInvalidEncoding, r.Err)
	}
	return NewStoredNode(h, loader), nil
}

// readCanonicalVarUint reads a varint rejecting non-minimal forms.
func readCanonicalVarUint(r *io.BinReader) (uint64, error) {
	before := r.Len()
	v := r.ReadVarUint()
	if r.Err != nil {
		return 0, fmt.Errorf("%w: varint: %v", ErrInvalidEncoding, r.Err)
	}
	if before-r.Len() != io.GetVarSize(v) {
		return 0, fmt.Errorf("%w: non-canonical varint", ErrInvalidEncoding)
	}
	return v, nil
}

// decodePathFromEncoding extracts the path from a valid node encoding.
func decodePathFromEncoding(data []byte) ([]byte, error) {
	r := io.NewBinReaderFromBuf(data)
	if r.ReadB()&flagPath == 0 {
		return []byte{}, nil
	}
	return readPath(r)
}
