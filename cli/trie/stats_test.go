package trie

import (
	"testing"

	"github.com/nspcc-dev/unitrie/pkg/core/unitrie"
	"github.com/stretchr/testify/require"
)

func TestCollectStats(t *testing.T) {
	tr := unitrie.NewTrie(nil, nil)
	s, err := CollectStats(tr)
	require.NoError(t, err)
	require.Equal(t, PathStats{}, s)

	require.NoError(t, tr.PutPath([]byte{1, 0, 1}, []byte("x")))
	require.NoError(t, tr.PutPath([]byte{1, 0, 0}, []byte("y")))
	require.NoError(t, tr.PutPath([]byte{0}, []byte("z")))

	s, err = CollectStats(tr)
	require.NoError(t, err)
	// Root at [] with children [] (z) and [0] with two leaves.
	require.Equal(t, PathStats{Nodes: 5, Values: 3, Branches: 2, Min: 0, Max: 1, Avg: 0.5}, s)
}
