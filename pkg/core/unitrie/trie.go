package unitrie

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/io"
	"github.com/nspcc-dev/unitrie/pkg/util"
	"github.com/nspcc-dev/unitrie/pkg/util/slice"
)

// Trie is a binary path-compressed Merkle trie. Trie versions are persistent:
// Put and Delete never modify existing nodes, they build a new root sharing
// untouched subtrees with the previous one. A single Trie must not be
// mutated concurrently.
type Trie struct {
	store *TrieStore
	root  Node
	f     nodeFactory
}

var (
	// ErrNotFound is returned when requested trie item is missing.
	ErrNotFound = errors.New("item not found")
	// ErrNilValue is returned on an attempt to put nil value, Delete should
	// be used to remove items.
	ErrNilValue = errors.New("nil value")
	// ErrValueTooLong is returned for values exceeding the maximum long value
	// length.
	ErrValueTooLong = errors.New("value is too long")
	// ErrInvalidEncoding is returned when node bytes violate the encoding
	// format.
	ErrInvalidEncoding = errors.New("invalid node encoding")
	// ErrMissingNode is returned when a hash-referenced node can't be found
	// in the store.
	ErrMissingNode = errors.New("missing trie node")
	// ErrMissingValue is returned when a long value can't be found in the
	// store.
	ErrMissingValue = errors.New("missing trie value")
)

// NewTrie returns a new trie with the given root (nil means an empty trie).
// In-memory nodes of the root are considered new and are persisted on Flush.
// store may be nil for purely in-memory tries.
func NewTrie(root Node, store *TrieStore) *Trie {
	if root == nil {
		root = Null
	}
	t := &Trie{
		store: store,
		root:  root,
		f:     newNodeFactory(),
	}
	t.f.adopt(root)
	return t
}

// NewTrieFromHash returns a trie with the persisted root of the given hash,
// the root is resolved lazily.
func NewTrieFromHash(h util.Uint256, store *TrieStore) *Trie {
	if h == EmptyRootHash {
		return NewTrie(Null, store)
	}
	var loader NodeLoader
	if store != nil {
		loader = store
	}
	return NewTrie(NewStoredNode(h, loader), store)
}

// Root returns the current root node.
func (t *Trie) Root() Node {
	return t.root
}

// StateRoot returns the root hash of t.
func (t *Trie) StateRoot() util.Uint256 {
	return t.root.Hash()
}

// Get returns the value for the provided key in t.
func (t *Trie) Get(key []byte) ([]byte, error) {
	return t.GetPath(KeyToPath(key))
}

// GetPath returns the value for the provided bit path in t.
func (t *Trie) GetPath(path []byte) ([]byte, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	b, err := t.getFromNode(t.root, path)
	if err != nil {
		return nil, err
	}
	return t.solveValue(b)
}

func (t *Trie) solveValue(b *BranchNode) ([]byte, error) {
	val, ok := b.value.SolveValue(t.loadValue)
	if !ok {
		h, _ := b.value.Hash()
		return nil, fmt.Errorf("%w: %s", ErrMissingValue, h.StringBE())
	}
	return slice.Copy(val), nil
}

// loadValue looks for long values created by t first and then in the store.
func (t *Trie) loadValue(h util.Uint256) ([]byte, bool) {
	if v, ok := t.f.values[h]; ok {
		return v, true
	}
	if t.store == nil {
		return nil, false
	}
	return t.store.GetValue(h)
}

// getFromNode returns the node with a value located exactly at path.
func (t *Trie) getFromNode(curr Node, path []byte) (*BranchNode, error) {
	for {
		n, err := resolve(curr)
		if err != nil {
			return nil, err
		}
		b, ok := n.(*BranchNode)
		if !ok {
			return nil, ErrNotFound
		}
		p := b.Path()
		c := lcp(path, p)
		switch {
		case c < len(p):
			return nil, ErrNotFound
		case c == len(path):
			if b.value.IsEmpty() {
				return nil, ErrNotFound
			}
			return b, nil
		}
		curr = b.Child(path[c])
		path = path[c+1:]
	}
}

// Put puts the key-value pair into t. nil value is an error, empty value
// removes the key.
func (t *Trie) Put(key, value []byte) error {
	return t.PutPath(KeyToPath(key), value)
}

// PutPath puts the value into t at the given bit path. nil value is an
// error, empty value removes the path.
func (t *Trie) PutPath(path, value []byte) error {
	switch {
	case value == nil:
		return ErrNilValue
	case len(value) == 0:
		return t.DeletePath(path)
	case len(value) > io.MaxUint24:
		return fmt.Errorf("%w: %d bytes", ErrValueTooLong, len(value))
	}
	if err := validatePath(path); err != nil {
		return err
	}
	r, err := t.putIntoNode(t.root, path, value)
	if err != nil {
		return err
	}
	t.root = r
	return nil
}

// putIntoNode puts the value into the subtree rooted at curr. The result is
// curr itself if nothing has changed.
func (t *Trie) putIntoNode(curr Node, path, value []byte) (Node, error) {
	n, err := resolve(curr)
	if err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case NullNode:
		return t.f.newLeaf(path, value)
	case *BranchNode:
		r, err := t.putIntoBranch(n, path, value)
		if err != nil {
			return nil, err
		}
		if r == Node(n) {
			return curr, nil
		}
		return r, nil
	default:
		panic("invalid UniTrie node type")
	}
}

func (t *Trie) putIntoBranch(b *BranchNode, path, value []byte) (Node, error) {
	p := b.Path()
	c := lcp(path, p)
	switch {
	case c == len(path) && c == len(p):
		return t.f.replaceValue(b, value)
	case c < len(p):
		// Split: b goes one level down under the common part.
		updated, err := t.f.replacePath(b, p[c+1:])
		if err != nil {
			return nil, err
		}
		bit := p[c]
		if c == len(path) {
			return t.f.newBranchWithChild(path, t.f.wrapValue(value), bit, updated)
		}
		leaf, err := t.f.newLeaf(path[c+1:], value)
		if err != nil {
			return nil, err
		}
		if bit == 0 {
			return t.f.newBranch(path[:c], EmptyValue, updated, leaf)
		}
		return t.f.newBranch(path[:c], EmptyValue, leaf, updated)
	default:
		bit := path[c]
		child, err := t.putIntoNode(b.Child(bit), path[c+1:], value)
		if err != nil {
			return nil, err
		}
		return t.f.replaceChild(b, bit, child)
	}
}

// Delete removes the key from t, it's not an error if the key is missing.
func (t *Trie) Delete(key []byte) error {
	return t.DeletePath(KeyToPath(key))
}

// DeletePath removes the bit path from t, it's not an error if the path is
// missing.
func (t *Trie) DeletePath(path []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}
	r, err := t.deleteFromNode(t.root, path)
	if err != nil {
		return err
	}
	t.root = r
	return nil
}

// deleteFromNode removes the value at path from the subtree rooted at curr.
// The result is curr itself if nothing has changed.
func (t *Trie) deleteFromNode(curr Node, path []byte) (Node, error) {
	n, err := resolve(curr)
	if err != nil {
		return nil, err
	}
	switch n := n.(type) {
	case NullNode:
		return curr, nil
	case *BranchNode:
		r, err := t.deleteFromBranch(n, path)
		if err != nil {
			return nil, err
		}
		if r == Node(n) {
			return curr, nil
		}
		return r, nil
	default:
		panic("invalid UniTrie node type")
	}
}

func (t *Trie) deleteFromBranch(b *BranchNode, path []byte) (Node, error) {
	p := b.Path()
	c := lcp(path, p)
	switch {
	case c == len(path) && c == len(p):
		return t.f.removeValue(b)
	case c < len(p):
		return b, nil
	default:
		bit := path[c]
		child, err := t.deleteFromNode(b.Child(bit), path[c+1:])
		if err != nil {
			return nil, err
		}
		return t.f.replaceChild(b, bit, child)
	}
}

// Flush puts every new node reachable from the root that is referenced by
// hash (and the root itself) with all of their new long values into the
// store. Embedded nodes are a part of their parent encoding and are not
// stored separately.
func (t *Trie) Flush() error {
	if t.store == nil {
		return errors.New("trie has no store")
	}
	var (
		nodes  = make(map[util.Uint256][]byte)
		values = make(map[util.Uint256][]byte)
		all    = make(map[util.Uint256][]byte)
	)
	if b, ok := t.root.(*BranchNode); ok && t.f.isPending(b) {
		nodes[b.Hash()] = b.encoding
		t.collectNew(b, nodes, values)
	}
	for h, v := range nodes {
		all[h] = v
	}
	for h, v := range values {
		all[h] = v
	}
	if err := t.store.PutBatch(all); err != nil {
		return fmt.Errorf("failed to flush trie: %w", err)
	}
	if b, ok := t.root.(*BranchNode); ok {
		t.store.cacheNode(b.Hash(), b.encoding)
	}
	updateFlushMetrics(len(nodes), len(values))
	t.f.reset()
	return nil
}

func (t *Trie) collectNew(b *BranchNode, nodes, values map[util.Uint256][]byte) {
	if h, ok := b.value.Hash(); ok {
		if v, ok := t.f.values[h]; ok {
			values[h] = v
		}
	}
	for _, child := range []Node{b.left, b.right} {
		c, ok := child.(*BranchNode)
		if !ok || !t.f.isPending(c) {
			continue
		}
		if c.IsReferencedByHash() {
			nodes[c.Hash()] = c.encoding
		}
		t.collectNew(c, nodes, values)
	}
}

// Collapse replaces every persisted hash-referenced node deeper than depth
// (root has depth 0) by an unresolved StoredNode, so that it can be
// garbage-collected and loaded again when needed.
func (t *Trie) Collapse(depth int) {
	if t.store == nil {
		return
	}
	b, ok := t.root.(*BranchNode)
	if !ok {
		return
	}
	t.root = t.collapseChildren(b, 1, depth)
}

func (t *Trie) collapse(n Node, level, depth int) Node {
	b, ok := n.(*BranchNode)
	if !ok {
		return n
	}
	if level > depth && b.IsReferencedByHash() && !t.f.isPending(b) {
		return NewStoredNode(b.Hash(), t.store)
	}
	return t.collapseChildren(b, level+1, depth)
}

func (t *Trie) collapseChildren(b *BranchNode, level, depth int) *BranchNode {
	left := t.collapse(b.left, level, depth)
	right := t.collapse(b.right, level, depth)
	if left == b.left && right == b.right {
		return b
	}
	nb := b.withChildren(left, right)
	if t.f.isPending(b) {
		t.f.pending[nb] = struct{}{}
	}
	return nb
}
