package unitrie

import (
	"errors"
)

var errStop = errors.New("stop")

// VisitAll calls visit for every branch node reachable from the root in
// pre-order, stored nodes are resolved. Embedded nodes are visited as well.
// It stops on the first error returned by visit.
func (t *Trie) VisitAll(visit func(*BranchNode) error) error {
	return visitNode(t.root, visit)
}

func visitNode(curr Node, visit func(*BranchNode) error) error {
	n, err := resolve(curr)
	if err != nil {
		return err
	}
	b, ok := n.(*BranchNode)
	if !ok {
		return nil
	}
	if err := visit(b); err != nil {
		return err
	}
	if err := visitNode(b.left, visit); err != nil {
		return err
	}
	return visitNode(b.right, visit)
}

// Traverse calls process for every value in t in pre-order (which is also
// lexicographical order of paths) passing the full bit path and the value.
// Traversal stops when process returns true. Slices passed to process must
// not be retained.
func (t *Trie) Traverse(process func(path, value []byte) bool) error {
	err := t.traverse(t.root, nil, process)
	if errors.Is(err, errStop) {
		return nil
	}
	return err
}

func (t *Trie) traverse(curr Node, prefix []byte, process func(path, value []byte) bool) error {
	n, err := resolve(curr)
	if err != nil {
		return err
	}
	b, ok := n.(*BranchNode)
	if !ok {
		return nil
	}
	path := append(prefix, b.Path()...)
	if !b.value.IsEmpty() {
		val, err := t.solveValue(b)
		if err != nil {
			return err
		}
		if process(path, val) {
			return errStop
		}
	}
	if err := t.traverse(b.left, append(path, 0), process); err != nil {
		return err
	}
	return t.traverse(b.right, append(path, 1), process)
}
