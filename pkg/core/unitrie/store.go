package unitrie

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/unitrie/pkg/core/storage"
	"github.com/nspcc-dev/unitrie/pkg/util"
	"go.uber.org/zap"
)

// TrieStore is a content-addressed store of trie nodes and long values on top
// of storage.Store. Entries are keyed by storage.DataUniTrie prefix and
// keccak256 of the data. Node encodings may be kept in a bounded cache,
// every load decodes a fresh node, so the cache never retains subtrees
// resolved through a returned node.
type TrieStore struct {
	store storage.Store
	cache *lru.Cache
	log   *zap.Logger
}

var _ NodeLoader = (*TrieStore)(nil)

// NewTrieStore creates a TrieStore over the given store. cacheSize limits
// the number of node encodings kept in memory, 0 disables the cache.
func NewTrieStore(s storage.Store, cacheSize int, log *zap.Logger) (*TrieStore, error) {
	if log == nil {
		return nil, errors.New("empty logger")
	}
	ts := &TrieStore{
		store: s,
		log:   log,
	}
	if cacheSize > 0 {
		var err error
		ts.cache, err = lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("node cache: %w", err)
		}
	}
	return ts, nil
}

// Store returns the underlying store.
func (s *TrieStore) Store() storage.Store {
	return s.store
}

func makeStorageKey(h util.Uint256) []byte {
	return append(storage.DataUniTrie.Bytes(), h[:]...)
}

// Get returns the data stored for the hash. storage.ErrKeyNotFound is
// returned for unknown hashes.
func (s *TrieStore) Get(h util.Uint256) ([]byte, error) {
	return s.store.Get(makeStorageKey(h))
}

// Put stores the data by its hash.
func (s *TrieStore) Put(h util.Uint256, data []byte) error {
	return s.PutBatch(map[util.Uint256][]byte{h: data})
}

// PutBatch stores all the given entries at once.
func (s *TrieStore) PutBatch(entries map[util.Uint256][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	puts := make(map[string][]byte, len(entries))
	for h, data := range entries {
		puts[string(makeStorageKey(h))] = data
	}
	return s.store.PutChangeSet(puts)
}

// LoadNode implements NodeLoader. It returns an error wrapping
// ErrMissingNode if the node is not in the store and ErrInvalidEncoding if
// it can't be decoded.
func (s *TrieStore) LoadNode(h util.Uint256) (Node, error) {
	data, err := s.getNodeData(h)
	if err != nil {
		return nil, err
	}
	n, err := DecodeNode(data, s)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", h.StringBE(), err)
	}
	return n, nil
}

func (s *TrieStore) getNodeData(h util.Uint256) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(h); ok {
			nodeCacheHits.Inc()
			return data.([]byte), nil
		}
	}
	data, err := s.Get(h)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingNode, h.StringBE())
		}
		return nil, fmt.Errorf("failed to load node %s: %w", h.StringBE(), err)
	}
	nodeLoads.Inc()
	s.log.Debug("trie node loaded", zap.Stringer("hash", h), zap.Int("size", len(data)))
	s.cacheNode(h, data)
	return data, nil
}

func (s *TrieStore) cacheNode(h util.Uint256, data []byte) {
	if s.cache != nil {
		_ = s.cache.Add(h, data)
	}
}

// GetValue returns a long value by its hash, false is returned if there is
// no such value (or it can't be read).
func (s *TrieStore) GetValue(h util.Uint256) ([]byte, bool) {
	data, err := s.Get(h)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.log.Warn("failed to load trie value", zap.Stringer("hash", h), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}
