package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemCachedStorePersist(t *testing.T) {
	// persistent Store
	ps := NewMemoryStore()
	// cached Store
	ts := NewMemCachedStore(ps)
	// persisting nothing should do nothing
	c, err := ts.Persist()
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, c)
	// persisting one key should result in one key in ps and nothing in ts
	ts.Put([]byte("key"), []byte("value"))
	c, err = ts.Persist()
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, c)
	v, err := ps.Get([]byte("key"))
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte("value"), v)
	v, err = ts.MemoryStore.Get([]byte("key"))
	assert.Equal(t, ErrKeyNotFound, err)
	assert.Equal(t, []byte(nil), v)
	// now we overwrite the previous `key` contents and also add `key2`,
	ts.Put([]byte("key"), []byte("newvalue"))
	ts.Put([]byte("key2"), []byte("value2"))
	// this is to check that now key is written into the ps before we do
	// persist
	v, err = ps.Get([]byte("key2"))
	assert.Equal(t, ErrKeyNotFound, err)
	assert.Equal(t, []byte(nil), v)
	// two keys should be persisted (one overwritten and one new) and
	// available in the ps
	c, err = ts.Persist()
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, c)
	v, err = ps.Get([]byte("key"))
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte("newvalue"), v)
	v, err = ps.Get([]byte("key2"))
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte("value2"), v)
	// we've persisted some values, make sure successive persist is a no-op
	c, err = ts.Persist()
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, c)
	// test persisting deletions
	ts.Delete([]byte("key"))
	c, err = ts.Persist()
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, c)
	v, err = ps.Get([]byte("key"))
	assert.Equal(t, ErrKeyNotFound, err)
	assert.Equal(t, []byte(nil), v)
	v, err = ps.Get([]byte("key2"))
	assert.Equal(t, nil, err)
	assert.Equal(t, []byte("value2"), v)
}

func TestMemCachedStoreRollback(t *testing.T) {
	ps := NewMemoryStore()
	require.NoError(t, ps.PutChangeSet(map[string][]byte{"key": []byte("value")}))
	ts := NewMemCachedStore(ps)

	ts.Put([]byte("key2"), []byte("value2"))
	ts.Delete([]byte("key"))
	_, err := ts.Get([]byte("key"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	ts.Rollback()
	v, err := ts.Get([]byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), v)
	_, err = ts.Get([]byte("key2"))
	require.ErrorIs(t, err, ErrKeyNotFound)
	c, err := ts.Persist()
	require.NoError(t, err)
	require.Equal(t, 0, c)
}

func TestMemCachedStoreGetBatch(t *testing.T) {
	ts := NewMemCachedStore(NewMemoryStore())
	ts.Put([]byte("a"), []byte("1"))
	ts.Delete([]byte("b"))

	b := ts.GetBatch()
	require.Equal(t, []KeyValue{{Key: []byte("a"), Value: []byte("1")}}, b.Put)
	require.Equal(t, []KeyValue{{Key: []byte("b")}}, b.Deleted)
}

func TestCachedGetFromPersistent(t *testing.T) {
	key := []byte("key")
	value := []byte("value")
	ps := NewMemoryStore()
	ts := NewMemCachedStore(ps)

	require.NoError(t, ps.PutChangeSet(map[string][]byte{string(key): value}))
	val, err := ts.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, value, val)
	ts.Delete(key)
	val, err = ts.Get(key)
	assert.Equal(t, err, ErrKeyNotFound)
	assert.Nil(t, val)
}

func TestCachedSeek(t *testing.T) {
	var (
		// Given this prefix...
		goodPrefix = []byte{'f'}
		// these pairs should be found...
		lowerKVs = []KeyValue{
			{[]byte("foo"), []byte("bar")},
			{[]byte("faa"), []byte("bra")},
		}
		// and these should be not.
		deletedKVs = []KeyValue{
			{[]byte("fee"), []byte("pow")},
			{[]byte("fii"), []byte("qaz")},
		}
		// and these should be found with the new values.
		updatedKVs = []KeyValue{
			{[]byte("fuu"), []byte("wop")},
			{[]byte("fyy"), []byte("zaq")},
		}
		ps = NewMemoryStore()
		ts = NewMemCachedStore(ps)
	)
	for _, v := range lowerKVs {
		require.NoError(t, ps.PutChangeSet(map[string][]byte{string(v.Key): v.Value}))
	}
	for _, v := range deletedKVs {
		require.NoError(t, ps.PutChangeSet(map[string][]byte{string(v.Key): v.Value}))
		ts.Delete(v.Key)
	}
	for _, v := range updatedKVs {
		require.NoError(t, ps.PutChangeSet(map[string][]byte{string(v.Key): []byte("stub")}))
		ts.Put(v.Key, v.Value)
	}
	// Cache-only item.
	ts.Put([]byte("fab"), []byte("new"))

	var found []KeyValue
	ts.Seek(SeekRange{Prefix: goodPrefix}, func(k, v []byte) bool {
		found = append(found, KeyValue{Key: []byte(string(k)), Value: []byte(string(v))})
		return true
	})
	require.Equal(t, []KeyValue{
		{[]byte("faa"), []byte("bra")},
		{[]byte("fab"), []byte("new")},
		{[]byte("foo"), []byte("bar")},
		{[]byte("fuu"), []byte("wop")},
		{[]byte("fyy"), []byte("zaq")},
	}, found)

	t.Run("backwards, early stop", func(t *testing.T) {
		var keys []string
		ts.Seek(SeekRange{Prefix: goodPrefix, Backwards: true}, func(k, v []byte) bool {
			keys = append(keys, string(k))
			return len(keys) < 3
		})
		require.Equal(t, []string{"fyy", "fuu", "foo"}, keys)
	})
}

func newMemCachedStoreForTesting(t testing.TB) Store {
	return NewMemCachedStore(NewMemoryStore())
}

func newMemoryStoreForTesting(t testing.TB) Store {
	return NewMemoryStore()
}
