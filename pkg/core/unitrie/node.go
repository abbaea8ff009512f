package unitrie

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nspcc-dev/unitrie/pkg/crypto/hash"
	"github.com/nspcc-dev/unitrie/pkg/util"
)

// MaxEmbeddedNodeSize is the maximum encoding length of a node that is
// embedded into its parent. Larger nodes are referenced by hash.
const MaxEmbeddedNodeSize = 44

// nullEncoding is the serialized form of an empty trie.
var nullEncoding = []byte{0x80}

// EmptyRootHash is the state root of an empty trie, keccak256(0x80).
var EmptyRootHash = hash.Keccak256(nullEncoding)

// Node represents common interface of all UniTrie nodes. It's implemented by
// NullNode, *BranchNode and *StoredNode only.
type Node interface {
	// Hash returns keccak256 of the node encoding.
	Hash() util.Uint256
	uniNode()
}

// NodeLoader resolves node hash into a decoded node.
type NodeLoader interface {
	LoadNode(util.Uint256) (Node, error)
}

// NullNode is an empty subtree.
type NullNode struct{}

// Null is the only NullNode value used.
var Null Node = NullNode{}

var (
	_ Node = NullNode{}
	_ Node = (*BranchNode)(nil)
	_ Node = (*StoredNode)(nil)
)

func (NullNode) uniNode() {}

// Hash implements Node interface.
func (NullNode) Hash() util.Uint256 { return EmptyRootHash }

// Bytes returns the Null node encoding.
func (NullNode) Bytes() []byte { return nullEncoding }

// BranchNode is a trie node with a path, an optional value and two (possibly
// Null) children. A BranchNode with two Null children is a leaf. BranchNode
// is never modified after creation, only derived caches are filled lazily.
type BranchNode struct {
	// Paths of up to 8 bits are packed into path0, longer ones are
	// decoded from the encoding on demand.
	path0    byte
	pathLen  int
	longPath atomic.Pointer[[]byte]

	value        ValueWrapper
	left         Node
	right        Node
	encoding     []byte
	childrenSize uint64

	hashOnce sync.Once
	hash     util.Uint256
}

func (*BranchNode) uniNode() {}

func (b *BranchNode) setPath(path []byte) {
	b.pathLen = len(path)
	if len(path) <= 8 {
		if len(path) > 0 {
			b.path0 = EncodePath(path)[0]
		}
		return
	}
	b.longPath.Store(&path)
}

// Path returns node path as a bit slice, it must not be modified.
func (b *BranchNode) Path() []byte {
	if b.pathLen <= 8 {
		return decodeShortPath(b.path0, b.pathLen)
	}
	if p := b.longPath.Load(); p != nil {
		return *p
	}
	// Encoding is valid by construction.
	p, err := decodePathFromEncoding(b.encoding)
	if err != nil {
		panic(err)
	}
	b.longPath.Store(&p)
	return p
}

// PathLen returns the number of bits in the node path.
func (b *BranchNode) PathLen() int {
	return b.pathLen
}

// dropCaches clears recomputable caches.
func (b *BranchNode) dropCaches() {
	b.longPath.Store(nil)
}

// Value returns the node value.
func (b *BranchNode) Value() ValueWrapper {
	return b.value
}

// Left returns the left (0) child.
func (b *BranchNode) Left() Node {
	return b.left
}

// Right returns the right (1) child.
func (b *BranchNode) Right() Node {
	return b.right
}

// Child returns the child at the given bit.
func (b *BranchNode) Child(bit byte) Node {
	if bit == 0 {
		return b.left
	}
	return b.right
}

// IsLeaf returns true if both children are Null.
func (b *BranchNode) IsLeaf() bool {
	return isNull(b.left) && isNull(b.right)
}

// Bytes returns the node encoding, it must not be modified.
func (b *BranchNode) Bytes() []byte {
	return b.encoding
}

// Hash implements Node interface.
func (b *BranchNode) Hash() util.Uint256 {
	b.hashOnce.Do(func() {
		b.hash = hash.Keccak256(b.encoding)
	})
	return b.hash
}

// ChildrenSize returns the sum of children intrinsic sizes.
func (b *BranchNode) ChildrenSize() uint64 {
	return b.childrenSize
}

// IntrinsicSize returns the size of the subtree rooted at this node: its
// encoding, its long value and the children subtrees.
func (b *BranchNode) IntrinsicSize() uint64 {
	var valueSize uint64
	if b.value.IsLong() {
		valueSize = uint64(b.value.Len())
	}
	return valueSize + b.childrenSize + uint64(len(b.encoding))
}

// IsReferencedByHash returns true if the node can't be embedded into its
// parent.
func (b *BranchNode) IsReferencedByHash() bool {
	return len(b.encoding) > MaxEmbeddedNodeSize
}

// withChildren returns a copy of b with children replaced by equivalent ones
// (having the same hashes and sizes), so the encoding is reused as is.
func (b *BranchNode) withChildren(left, right Node) *BranchNode {
	n := &BranchNode{
		path0:        b.path0,
		pathLen:      b.pathLen,
		value:        b.value,
		left:         left,
		right:        right,
		encoding:     b.encoding,
		childrenSize: b.childrenSize,
	}
	if p := b.longPath.Load(); p != nil {
		n.longPath.Store(p)
	}
	return n
}

// String implements fmt.Stringer.
func (b *BranchNode) String() string {
	return fmt.Sprintf("branch(path=%x/%d, cs=%d, val=%s)", EncodePath(b.Path()), b.pathLen, b.childrenSize, b.value)
}

// StoredNode is a node known by its hash only. It's resolved through the
// loader on first access and the result is cached.
type StoredNode struct {
	hash     util.Uint256
	loader   NodeLoader
	resolved atomic.Pointer[resolvedNode]
}

type resolvedNode struct {
	n Node
}

// NewStoredNode returns a lazy node for the given hash.
func NewStoredNode(h util.Uint256, loader NodeLoader) *StoredNode {
	return &StoredNode{hash: h, loader: loader}
}

func (*StoredNode) uniNode() {}

// Hash implements Node interface.
func (s *StoredNode) Hash() util.Uint256 {
	return s.hash
}

// IsResolved returns true if the node was already loaded.
func (s *StoredNode) IsResolved() bool {
	return s.resolved.Load() != nil
}

// Resolve loads and decodes the node. Errors wrap ErrMissingNode if the node
// is not known to the loader and ErrInvalidEncoding if it can't be decoded.
func (s *StoredNode) Resolve() (Node, error) {
	if r := s.resolved.Load(); r != nil {
		return r.n, nil
	}
	if s.loader == nil {
		return nil, fmt.Errorf("%w: %s (no loader)", ErrMissingNode, s.hash.StringBE())
	}
	n, err := s.loader.LoadNode(s.hash)
	if err != nil {
		return nil, err
	}
	s.resolved.Store(&resolvedNode{n: n})
	return n, nil
}

// dropCaches forgets the resolved node.
func (s *StoredNode) dropCaches() {
	s.resolved.Store(nil)
}

// resolve returns the node itself for Null and BranchNode and the loaded one
// for StoredNode.
func resolve(n Node) (Node, error) {
	if s, ok := n.(*StoredNode); ok {
		return s.Resolve()
	}
	return n, nil
}

func isNull(n Node) bool {
	_, ok := n.(NullNode)
	return ok
}
