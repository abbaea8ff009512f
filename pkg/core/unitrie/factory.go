package unitrie

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/util"
	"github.com/nspcc-dev/unitrie/pkg/util/slice"
)

// nodeFactory creates branch nodes keeping canonical form and remembers every
// node and long value it has created until they're flushed.
type nodeFactory struct {
	pending map[*BranchNode]struct{}
	values  map[util.Uint256][]byte
}

func newNodeFactory() nodeFactory {
	return nodeFactory{
		pending: make(map[*BranchNode]struct{}),
		values:  make(map[util.Uint256][]byte),
	}
}

func (f *nodeFactory) isPending(b *BranchNode) bool {
	_, ok := f.pending[b]
	return ok
}

func (f *nodeFactory) reset() {
	f.pending = make(map[*BranchNode]struct{})
	f.values = make(map[util.Uint256][]byte)
}

// wrapValue wraps a new value remembering it if it's long.
func (f *nodeFactory) wrapValue(value []byte) ValueWrapper {
	v := NewValueWrapper(value)
	switch {
	case v.IsLong():
		f.values[v.hash] = slice.Copy(value)
	case !v.IsEmpty():
		v.inline = slice.Copy(value)
	}
	return v
}

func (f *nodeFactory) newBranch(path []byte, value ValueWrapper, left, right Node) (*BranchNode, error) {
	enc, childrenSize, err := encodeNode(path, value, left, right)
	if err != nil {
		return nil, err
	}
	b := &BranchNode{
		value:        value,
		left:         left,
		right:        right,
		encoding:     enc,
		childrenSize: childrenSize,
	}
	b.setPath(slice.Copy(path))
	f.pending[b] = struct{}{}
	return b, nil
}

func (f *nodeFactory) newLeaf(path []byte, value []byte) (*BranchNode, error) {
	return f.newBranch(path, f.wrapValue(value), Null, Null)
}

// newBranchWithChild creates a node at path holding value and the single
// child at the given bit.
func (f *nodeFactory) newBranchWithChild(path []byte, value ValueWrapper, bit byte, child Node) (*BranchNode, error) {
	if bit == 0 {
		return f.newBranch(path, value, child, Null)
	}
	return f.newBranch(path, value, Null, child)
}

// replaceValue returns b if it already holds value.
func (f *nodeFactory) replaceValue(b *BranchNode, value []byte) (Node, error) {
	if b.value.WrappedValueIs(value) {
		return b, nil
	}
	return f.newBranch(b.Path(), f.wrapValue(value), b.left, b.right)
}

// removeValue drops the value of b, the result is coalesced.
func (f *nodeFactory) removeValue(b *BranchNode) (Node, error) {
	if b.value.IsEmpty() {
		return b, nil
	}
	nb, err := f.newBranch(b.Path(), EmptyValue, b.left, b.right)
	if err != nil {
		return nil, err
	}
	return f.coalesce(nb)
}

// replacePath returns b if it already has the path.
func (f *nodeFactory) replacePath(b *BranchNode, path []byte) (*BranchNode, error) {
	if bytes.Equal(b.Path(), path) {
		return b, nil
	}
	return f.newBranch(path, b.value, b.left, b.right)
}

// replaceChild returns b if child is already there, the result is
// coalesced otherwise.
func (f *nodeFactory) replaceChild(b *BranchNode, bit byte, child Node) (Node, error) {
	var (
		nb  *BranchNode
		err error
	)
	if bit == 0 {
		if child == b.left {
			return b, nil
		}
		nb, err = f.newBranch(b.Path(), b.value, child, b.right)
	} else {
		if child == b.right {
			return b, nil
		}
		nb, err = f.newBranch(b.Path(), b.value, b.left, child)
	}
	if err != nil {
		return nil, err
	}
	return f.coalesce(nb)
}

// coalesce brings b into canonical form: a node with a value or with two
// children is kept, a node with neither becomes Null and a valueless node
// with a single child is merged with this child.
func (f *nodeFactory) coalesce(b *BranchNode) (Node, error) {
	if !b.value.IsEmpty() {
		return b, nil
	}
	hasLeft, hasRight := !isNull(b.left), !isNull(b.right)
	if hasLeft && hasRight {
		return b, nil
	}
	if !hasLeft && !hasRight {
		return Null, nil
	}

	var (
		bit   byte
		child = b.left
	)
	if hasRight {
		bit, child = 1, b.right
	}
	r, err := resolve(child)
	if err != nil {
		return nil, err
	}
	c, ok := r.(*BranchNode)
	if !ok {
		return nil, fmt.Errorf("%w: child %s is an empty node", ErrInvalidEncoding, child.Hash().StringBE())
	}
	return f.newBranch(concatPath(b.Path(), bit, c.Path()), c.value, c.left, c.right)
}

// adopt registers all in-memory nodes of the subtree as not yet persisted.
func (f *nodeFactory) adopt(n Node) {
	b, ok := n.(*BranchNode)
	if !ok || f.isPending(b) {
		return
	}
	f.pending[b] = struct{}{}
	f.adopt(b.left)
	f.adopt(b.right)
}
