package unitrie

import (
	"testing"

	"github.com/nspcc-dev/unitrie/internal/random"
	"github.com/stretchr/testify/require"
)

func TestEncodePath(t *testing.T) {
	testCases := []struct {
		path    []byte
		encoded []byte
	}{
		{[]byte{}, []byte{}},
		{[]byte{1}, []byte{0x80}},
		{[]byte{0, 1}, []byte{0x40}},
		{[]byte{1, 0, 1}, []byte{0xA0}},
		{[]byte{1, 1, 1, 1, 1, 1, 1, 1}, []byte{0xFF}},
		{[]byte{1, 0, 1, 0, 0, 0, 0, 1, 0, 1}, []byte{0xA1, 0x40}},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.encoded, EncodePath(tc.path))
		require.Equal(t, tc.path, DecodePath(tc.encoded, len(tc.path)))
		if len(tc.path) <= 8 && len(tc.path) > 0 {
			require.Equal(t, tc.path, decodeShortPath(tc.encoded[0], len(tc.path)))
		}
	}
}

func TestDecodePathShortInput(t *testing.T) {
	require.Equal(t, []byte{1, 0, 1, 0, 0, 0, 0, 0}, DecodePath([]byte{0xA0}, 12))
	require.Equal(t, []byte{}, DecodePath(nil, 3))
	require.Equal(t, []byte{}, DecodePath([]byte{0xFF}, -1))
}

func TestKeyToPath(t *testing.T) {
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0, 0, 0}, KeyToPath([]byte{0x01, 0x80}))

	key := random.Bytes(37)
	require.Equal(t, key, PathToKey(KeyToPath(key)))
}

func TestLCP(t *testing.T) {
	require.Equal(t, 0, lcp(nil, []byte{1}))
	require.Equal(t, 0, lcp([]byte{0}, []byte{1}))
	require.Equal(t, 2, lcp([]byte{1, 0, 1}, []byte{1, 0, 0}))
	require.Equal(t, 2, lcp([]byte{1, 0}, []byte{1, 0, 0}))
	require.Equal(t, 3, lcp([]byte{1, 0, 1}, []byte{1, 0, 1}))
}

func TestValidatePath(t *testing.T) {
	require.NoError(t, validatePath([]byte{0, 1, 1}))
	require.ErrorIs(t, validatePath([]byte{0, 2}), ErrInvalidPath)
}
