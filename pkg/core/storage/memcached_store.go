package storage

import (
	"bytes"

	"github.com/nspcc-dev/unitrie/pkg/util/slice"
)

// MemCachedStore is a wrapper around persistent store that caches all changes
// being made for them to be later flushed in one batch. Deleted keys are kept
// in the cache with nil value until Persist.
type MemCachedStore struct {
	MemoryStore

	// Persistent Store.
	ps Store
}

// MemBatch represents a changeset to be persisted.
type MemBatch struct {
	Put     []KeyValue
	Deleted []KeyValue
}

// NewMemCachedStore creates a new MemCachedStore object.
func NewMemCachedStore(lower Store) *MemCachedStore {
	return &MemCachedStore{
		MemoryStore: *NewMemoryStore(),
		ps:          lower,
	}
}

// Get implements the Store interface.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if val, ok := s.mem[string(key)]; ok {
		if val == nil {
			return nil, ErrKeyNotFound
		}
		return val, nil
	}
	return s.ps.Get(key)
}

// Put puts new KV pair into the cache, it's not persisted until Persist.
func (s *MemCachedStore) Put(key, value []byte) {
	s.mut.Lock()
	s.mem[string(key)] = slice.Copy(value)
	s.mut.Unlock()
}

// Delete drops the KV pair from the cache and marks it for deletion in the
// lower store.
func (s *MemCachedStore) Delete(key []byte) {
	s.mut.Lock()
	s.mem[string(key)] = nil
	s.mut.Unlock()
}

// PutChangeSet implements the Store interface, it stores the changes in the
// cache only.
func (s *MemCachedStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k := range puts {
		s.mem[k] = puts[k]
	}
	s.mut.Unlock()
	return nil
}

// GetBatch returns currently accumulated changeset.
func (s *MemCachedStore) GetBatch() *MemBatch {
	s.mut.RLock()
	defer s.mut.RUnlock()

	var b MemBatch
	for k, v := range s.mem {
		if v == nil {
			b.Deleted = append(b.Deleted, KeyValue{Key: []byte(k)})
		} else {
			b.Put = append(b.Put, KeyValue{Key: []byte(k), Value: v})
		}
	}
	return &b
}

// Seek implements the Store interface. Cached items take precedence over the
// lower store ones, deleted items are skipped.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	defer s.mut.RUnlock()

	var (
		memList = s.collect(rng, true)
		less    = getLessFunc(rng.Backwards)
		i       int
		done    bool
	)
	s.ps.Seek(rng, func(k, v []byte) bool {
		for ; i < len(memList) && less(memList[i].Key, k); i++ {
			if memList[i].Value != nil && !f(memList[i].Key, memList[i].Value) {
				done = true
				return false
			}
		}
		if i < len(memList) && bytes.Equal(memList[i].Key, k) {
			i++
			if memList[i-1].Value == nil {
				return true
			}
			if !f(memList[i-1].Key, memList[i-1].Value) {
				done = true
				return false
			}
			return true
		}
		if !f(k, v) {
			done = true
			return false
		}
		return true
	})
	if done {
		return
	}
	for ; i < len(memList); i++ {
		if memList[i].Value != nil && !f(memList[i].Key, memList[i].Value) {
			return
		}
	}
}

// Persist flushes all the cached changes into the lower store and returns the
// number of keys written or deleted.
func (s *MemCachedStore) Persist() (int, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	keys := len(s.mem)
	if keys == 0 {
		return 0, nil
	}
	err := s.ps.PutChangeSet(s.mem)
	if err != nil {
		return 0, err
	}
	s.mem = make(map[string][]byte)
	return keys, nil
}

// Rollback drops all the cached changes.
func (s *MemCachedStore) Rollback() {
	s.mut.Lock()
	s.mem = make(map[string][]byte)
	s.mut.Unlock()
}

// Close implements Store interface, clears up memory and closes the lower layer
// Store.
func (s *MemCachedStore) Close() error {
	// It's always successful.
	_ = s.MemoryStore.Close()
	return s.ps.Close()
}
