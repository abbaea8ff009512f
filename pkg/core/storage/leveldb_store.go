package storage

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/unitrie/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBStore keeps trie nodes, long values and service records in a LevelDB
// database. Change sets are applied as a single atomic batch.
type LevelDBStore struct {
	db    *leveldb.DB
	path  string
	wopts *opt.WriteOptions
}

// NewLevelDBStore returns a new LevelDBStore object that will
// initialize the database found at the given path.
func NewLevelDBStore(cfg dbconfig.LevelDBOptions) (*LevelDBStore, error) {
	var opts = new(opt.Options)
	if cfg.ReadOnly {
		opts.ReadOnly = true
		opts.ErrorIfMissing = true
	}

	opts.Filter = filter.NewBloomFilter(10)
	if cfg.WriteBufferSize > 0 {
		opts.WriteBuffer = cfg.WriteBufferSize
	}
	if cfg.BlockCacheCapacity > 0 {
		opts.BlockCacheCapacity = cfg.BlockCacheCapacity
	}
	if cfg.OpenFilesCacheCapacity > 0 {
		opts.OpenFilesCacheCapacity = cfg.OpenFilesCacheCapacity
	}

	db, err := leveldb.OpenFile(cfg.DataDirectoryPath, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open LevelDB instance: %w", err)
	}

	return &LevelDBStore{
		path:  cfg.DataDirectoryPath,
		db:    db,
		wopts: &opt.WriteOptions{Sync: cfg.Sync},
	}, nil
}

// Get implements the Store interface.
func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		err = ErrKeyNotFound
	}
	return value, err
}

// PutChangeSet implements the Store interface. Nil values delete keys.
func (s *LevelDBStore) PutChangeSet(puts map[string][]byte) error {
	if len(puts) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for k, v := range puts {
		if v != nil {
			batch.Put([]byte(k), v)
		} else {
			batch.Delete([]byte(k))
		}
	}
	if err := s.db.Write(batch, s.wopts); err != nil {
		return fmt.Errorf("failed to write %d keys to %s: %w", batch.Len(), s.path, err)
	}
	return nil
}

// Seek implements the Store interface.
func (s *LevelDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	iter := s.db.NewIterator(seekRangeToPrefixes(rng), nil)
	s.seek(iter, rng.Backwards, f)
}

func (s *LevelDBStore) seek(iter iterator.Iterator, backwards bool, f func(k, v []byte) bool) {
	var (
		next func() bool
		ok   bool
	)

	if !backwards {
		ok = iter.Next()
		next = iter.Next
	} else {
		ok = iter.Last()
		next = iter.Prev
	}

	for ; ok; ok = next() {
		if !f(iter.Key(), iter.Value()) {
			break
		}
	}
	iter.Release()
}

// Close implements the Store interface.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
