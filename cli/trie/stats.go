package trie

import (
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/core/storage"
	"github.com/nspcc-dev/unitrie/pkg/core/unitrie"
	"github.com/urfave/cli"
)

// PathStats holds path length statistics of trie branches (nodes with at
// least one child).
type PathStats struct {
	Nodes    int
	Values   int
	Branches int
	Min      int
	Max      int
	Avg      float64
}

func (s *PathStats) consume(b *unitrie.BranchNode) error {
	s.Nodes++
	if !b.Value().IsEmpty() {
		s.Values++
	}
	if b.IsLeaf() {
		return nil
	}
	l := b.PathLen()
	if s.Branches == 0 || l < s.Min {
		s.Min = l
	}
	if l > s.Max {
		s.Max = l
	}
	s.Branches++
	s.Avg += (float64(l) - s.Avg) / float64(s.Branches)
	return nil
}

// String implements fmt.Stringer.
func (s PathStats) String() string {
	return fmt.Sprintf("Total nodes = %d, Values = %d, Branches = %d, Min len = %d, Max len = %d, Path Avg = %.3f",
		s.Nodes, s.Values, s.Branches, s.Min, s.Max, s.Avg)
}

// CollectStats walks the whole trie gathering path statistics.
func CollectStats(tr *unitrie.Trie) (PathStats, error) {
	var s PathStats
	err := tr.VisitAll(s.consume)
	return s, err
}

// countStored returns the number of trie entries (hash-referenced nodes and
// long values) in the store.
func countStored(s storage.Store) int {
	var n int
	s.Seek(storage.SeekRange{Prefix: storage.DataUniTrie.Bytes()}, func(_, _ []byte) bool {
		n++
		return true
	})
	return n
}

func stats(ctx *cli.Context) error {
	if len(ctx.Args()) != 0 {
		return cli.NewExitError("no arguments expected", 1)
	}
	return withDB(ctx, func(d *db) error {
		s, err := CollectStats(d.trie)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Root: %s\n", d.trie.StateRoot().StringBE())
		fmt.Fprintf(ctx.App.Writer, "Stats: %s\n", s)
		fmt.Fprintf(ctx.App.Writer, "Stored entries: %d\n", countStored(d.store))
		return nil
	})
}
