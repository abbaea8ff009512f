package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint160DecodeStringBE(t *testing.T) {
	hexStr := "71c7656ec7ab88b098defb751b7401b5f6d8976f"
	val, err := Uint160DecodeStringBE(hexStr)
	require.NoError(t, err)
	require.Equal(t, hexStr, val.StringBE())
	require.Equal(t, hexStr, val.String())

	prefixed, err := Uint160DecodeStringBE("0x" + hexStr)
	require.NoError(t, err)
	require.True(t, val.Equals(prefixed))

	_, err = Uint160DecodeStringBE(hexStr[2:])
	require.Error(t, err)
	_, err = Uint160DecodeStringBE("qq" + hexStr[2:])
	require.Error(t, err)
}

func TestUint160DecodeBytesBE(t *testing.T) {
	b := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	val, err := Uint160DecodeBytesBE(b)
	require.NoError(t, err)
	require.Equal(t, b, val.BytesBE())

	_, err = Uint160DecodeBytesBE(b[1:])
	require.Error(t, err)
}

