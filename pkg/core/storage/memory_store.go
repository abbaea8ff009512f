package storage

import (
	"bytes"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory implementation of a Store, mainly
// used for testing. Do not use MemoryStore in production.
type MemoryStore struct {
	mut sync.RWMutex
	mem map[string][]byte
}

// KeyValue represents key-value pair.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// NewMemoryStore creates a new MemoryStore object.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mem: make(map[string][]byte),
	}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if val, ok := s.mem[string(key)]; ok && val != nil {
		return val, nil
	}
	return nil, ErrKeyNotFound
}

// put puts a key-value pair into the store, it's supposed to be called
// with mutex locked. nil value removes the key.
func (s *MemoryStore) put(key string, value []byte) {
	if value == nil {
		delete(s.mem, key)
		return
	}
	s.mem[key] = value
}

// PutChangeSet implements the Store interface. Never returns an error.
func (s *MemoryStore) PutChangeSet(puts map[string][]byte) error {
	s.mut.Lock()
	for k := range puts {
		s.put(k, puts[k])
	}
	s.mut.Unlock()
	return nil
}

// Seek implements the Store interface.
func (s *MemoryStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	s.seek(rng, f)
	s.mut.RUnlock()
}

// seek is an internal unlocked implementation of Seek. Backwards seeking from
// some point is supported with corresponding SeekRange field set.
func (s *MemoryStore) seek(rng SeekRange, f func(k, v []byte) bool) {
	for _, kv := range s.collect(rng, false) {
		if !f(kv.Key, kv.Value) {
			break
		}
	}
}

// collect returns sorted matching pairs, deleted (nil) values are included
// only when withDeleted is set.
func (s *MemoryStore) collect(rng SeekRange, withDeleted bool) []KeyValue {
	sPrefix := string(rng.Prefix)
	lPrefix := len(sPrefix)
	sStart := string(rng.Start)
	lStart := len(sStart)
	var memList []KeyValue

	isKeyOK := func(key string) bool {
		return strings.HasPrefix(key, sPrefix) && (lStart == 0 || strings.Compare(key[lPrefix:], sStart) >= 0)
	}
	if rng.Backwards {
		isKeyOK = func(key string) bool {
			return strings.HasPrefix(key, sPrefix) && (lStart == 0 || strings.Compare(key[lPrefix:], sStart) <= 0)
		}
	}
	less := getLessFunc(rng.Backwards)

	for k, v := range s.mem {
		if (v != nil || withDeleted) && isKeyOK(k) {
			memList = append(memList, KeyValue{
				Key:   []byte(k),
				Value: v,
			})
		}
	}
	sort.Slice(memList, func(i, j int) bool {
		return less(memList[i].Key, memList[j].Key)
	})
	return memList
}

func getLessFunc(backwards bool) func(k1, k2 []byte) bool {
	if backwards {
		return func(k1, k2 []byte) bool {
			return bytes.Compare(k1, k2) > 0
		}
	}
	return func(k1, k2 []byte) bool {
		return bytes.Compare(k1, k2) < 0
	}
}

// Close implements Store interface and clears up memory. Never returns an
// error.
func (s *MemoryStore) Close() error {
	s.mut.Lock()
	s.mem = nil
	s.mut.Unlock()
	return nil
}
