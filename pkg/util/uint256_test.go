package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint256DecodeStringBE(t *testing.T) {
	hexStr := "56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"
	val, err := Uint256DecodeStringBE(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, val.StringBE())
	assert.Equal(t, byte(0x56), val[0])

	prefixed, err := Uint256DecodeStringBE("0x" + hexStr)
	require.NoError(t, err)
	assert.Equal(t, val, prefixed)

	_, err = Uint256DecodeStringBE(hexStr[1:])
	require.Error(t, err)

	_, err = Uint256DecodeStringBE("zz" + hexStr[2:])
	require.Error(t, err)
}

func TestUint256DecodeBytesBE(t *testing.T) {
	b := make([]byte, Uint256Size)
	b[31] = 7
	val, err := Uint256DecodeBytesBE(b)
	require.NoError(t, err)
	require.Equal(t, b, val.BytesBE())

	_, err = Uint256DecodeBytesBE(b[1:])
	require.Error(t, err)
}

func TestUint256Equals(t *testing.T) {
	a := Uint256{1}
	b := Uint256{2}
	require.True(t, a.Equals(Uint256{1}))
	require.False(t, a.Equals(b))
	require.Equal(t, "01"+strings.Repeat("00", Uint256Size-1), a.String())
}
