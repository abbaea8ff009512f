package unitrie

import (
	"github.com/nspcc-dev/unitrie/pkg/crypto/hash"
	"github.com/nspcc-dev/unitrie/pkg/util"
)

// Key mapper constants.
const (
	// SecureKeyPrefixSize is the number of hash bytes put before the raw
	// key to spread keys uniformly.
	SecureKeyPrefixSize = 10
	// AccountKeySize is the size of account keys.
	AccountKeySize = 1 + SecureKeyPrefixSize + util.Uint160Size

	domainPrefix  byte = 0x00
	storagePrefix byte = 0x00
	codePrefix    byte = 0x80
)

// secureKey returns keccak256(key)[:SecureKeyPrefixSize] ++ key appended to
// dst.
func secureKey(dst []byte, key []byte) []byte {
	h := hash.Keccak256(key)
	dst = append(dst, h[:SecureKeyPrefixSize]...)
	return append(dst, key...)
}

// AccountKey returns the trie key of the account.
func AccountKey(addr util.Uint160) []byte {
	key := make([]byte, 1, AccountKeySize+1)
	key[0] = domainPrefix
	return secureKey(key, addr.BytesBE())
}

// AccountCodeKey returns the trie key of the account code.
func AccountCodeKey(addr util.Uint160) []byte {
	return append(AccountKey(addr), codePrefix)
}

// AccountStoragePrefixKey returns the common prefix of all account storage
// keys.
func AccountStoragePrefixKey(addr util.Uint160) []byte {
	return append(AccountKey(addr), storagePrefix)
}

// AccountStorageKey returns the trie key of the account storage cell. The
// cell key is hashed as is but stored without leading zeroes (a single zero
// byte is kept for all-zero keys).
func AccountStorageKey(addr util.Uint160, sub []byte) []byte {
	h := hash.Keccak256(sub)
	stripped := sub
	for len(stripped) > 1 && stripped[0] == 0 {
		stripped = stripped[1:]
	}
	if len(stripped) == 0 {
		stripped = []byte{0}
	}
	key := AccountStoragePrefixKey(addr)
	key = append(key, h[:SecureKeyPrefixSize]...)
	return append(key, stripped...)
}
