package unitrie

import (
	"testing"

	"github.com/nspcc-dev/unitrie/pkg/crypto/hash"
	"github.com/nspcc-dev/unitrie/pkg/util"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T) util.Uint160 {
	addr, err := util.Uint160DecodeStringBE("71c7656ec7ab88b098defb751b7401b5f6d8976f")
	require.NoError(t, err)
	return addr
}

func TestAccountKey(t *testing.T) {
	addr := testAddress(t)
	key := AccountKey(addr)
	require.Equal(t, AccountKeySize, len(key))
	require.Equal(t, byte(0), key[0])
	h := hash.Keccak256(addr.BytesBE())
	require.Equal(t, h[:SecureKeyPrefixSize], key[1:1+SecureKeyPrefixSize])
	require.Equal(t, addr.BytesBE(), key[1+SecureKeyPrefixSize:])

	code := AccountCodeKey(addr)
	require.Equal(t, AccountKeySize+1, len(code))
	require.Equal(t, key, code[:AccountKeySize])
	require.Equal(t, byte(0x80), code[AccountKeySize])

	prefix := AccountStoragePrefixKey(addr)
	require.Equal(t, AccountKeySize+1, len(prefix))
	require.Equal(t, key, prefix[:AccountKeySize])
	require.Equal(t, byte(0), prefix[AccountKeySize])

	// Keys must not share the backing array.
	code[0] = 0xff
	require.Equal(t, byte(0), AccountStoragePrefixKey(addr)[0])
}

func TestAccountStorageKey(t *testing.T) {
	addr := testAddress(t)
	prefix := AccountStoragePrefixKey(addr)

	testCases := map[string]struct {
		sub      []byte
		stripped []byte
	}{
		"all zero":      {make([]byte, 10), []byte{0}},
		"leading zeros": {[]byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6}, []byte{1, 2, 3, 4, 5, 6}},
		"no zeros":      {[]byte{1, 2, 3, 4, 5, 6}, []byte{1, 2, 3, 4, 5, 6}},
		"empty":         {[]byte{}, []byte{0}},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			key := AccountStorageKey(addr, tc.sub)
			require.Equal(t, len(prefix)+SecureKeyPrefixSize+len(tc.stripped), len(key))
			require.Equal(t, prefix, key[:len(prefix)])
			h := hash.Keccak256(tc.sub)
			require.Equal(t, h[:SecureKeyPrefixSize], key[len(prefix):len(prefix)+SecureKeyPrefixSize])
			require.Equal(t, tc.stripped, key[len(prefix)+SecureKeyPrefixSize:])
		})
	}
	require.Equal(t, 43, len(AccountStorageKey(addr, make([]byte, 10))))
	require.Equal(t, 48, len(AccountStorageKey(addr, []byte{0, 0, 0, 0, 1, 2, 3, 4, 5, 6})))
	require.Equal(t, 48, len(AccountStorageKey(addr, []byte{1, 2, 3, 4, 5, 6})))
	// Same stripped bytes, different hashes.
	require.NotEqual(t, AccountStorageKey(addr, []byte{0, 1}), AccountStorageKey(addr, []byte{1}))
}

func TestAccountKeysInTrie(t *testing.T) {
	addr := testAddress(t)
	tr := NewTrie(nil, nil)
	require.NoError(t, tr.Put(AccountKey(addr), []byte("account")))
	require.NoError(t, tr.Put(AccountCodeKey(addr), []byte("code")))
	require.NoError(t, tr.Put(AccountStorageKey(addr, []byte{1}), []byte("cell")))

	tr.testHas(t, AccountKey(addr), []byte("account"))
	tr.testHas(t, AccountCodeKey(addr), []byte("code"))
	tr.testHas(t, AccountStorageKey(addr, []byte{1}), []byte("cell"))

	var n int
	prefix := KeyToPath(AccountStoragePrefixKey(addr))
	require.NoError(t, tr.Traverse(func(path, _ []byte) bool {
		if len(path) >= len(prefix) && string(path[:len(prefix)]) == string(prefix) {
			n++
		}
		return false
	}))
	require.Equal(t, 1, n)
}
