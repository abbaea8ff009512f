/*
Package hash contains wrappers for hash functions used by the trie.
*/
package hash

import (
	"github.com/nspcc-dev/unitrie/pkg/util"
	"golang.org/x/crypto/sha3"
)

// Keccak256 hashes the incoming byte slice using the legacy (pre-NIST)
// Keccak-256 algorithm used by Ethereum-derived chains.
func Keccak256(data []byte) util.Uint256 {
	var h util.Uint256
	hasher := sha3.NewLegacyKeccak256()
	_, _ = hasher.Write(data)
	hasher.Sum(h[:0])
	return h
}
