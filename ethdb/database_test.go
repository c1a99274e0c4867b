package ethdb

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var test_values = []string{"", "a", "1251", "\x00123\x00"}

func newTestDBs(t *testing.T) map[string]Database {
	ldb, err := NewLDBDatabase(filepath.Join(t.TempDir(), "ldb"), 0, 0)
	require.NoError(t, err)
	memldb, err := NewMemLDBDatabase()
	require.NoError(t, err)
	cached, err := NewCachedDatabase(NewMemDatabase(), 2)
	require.NoError(t, err)
	return map[string]Database{
		"memory":  NewMemDatabase(),
		"leveldb": ldb,
		"memldb":  memldb,
		"cached":  cached,
	}
}

func TestPutGet(t *testing.T) {
	for name, db := range newTestDBs(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			for _, k := range test_values {
				require.NoError(t, db.Put([]byte(k), nil))
			}
			for _, k := range test_values {
				data, err := db.Get([]byte(k))
				require.NoError(t, err)
				assert.Len(t, data, 0)
			}
			_, err := db.Get([]byte("non-exist-key"))
			assert.Equal(t, ErrNotFound, err)

			for _, v := range test_values {
				require.NoError(t, db.Put([]byte(v), []byte(v)))
			}
			for _, v := range test_values {
				data, err := db.Get([]byte(v))
				require.NoError(t, err)
				if !bytes.Equal(data, []byte(v)) {
					t.Fatalf("get returned wrong result, got %q expected %q", string(data), v)
				}
				has, err := db.Has([]byte(v))
				require.NoError(t, err)
				assert.True(t, has)
			}
			for _, v := range test_values {
				require.NoError(t, db.Delete([]byte(v)))
			}
			for _, v := range test_values {
				_, err := db.Get([]byte(v))
				assert.Error(t, err, "got deleted value %q", v)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	for name, db := range newTestDBs(t) {
		t.Run(name, func(t *testing.T) {
			defer db.Close()
			require.NoError(t, db.Put([]byte("stale"), []byte("old")))
			_, err := db.Get([]byte("stale"))
			require.NoError(t, err)

			b := db.NewBatch()
			require.NoError(t, b.Put([]byte("k1"), []byte("v1")))
			require.NoError(t, b.Put([]byte("stale"), []byte("new")))
			assert.Equal(t, 5, b.ValueSize())

			_, err = db.Get([]byte("k1"))
			assert.Equal(t, ErrNotFound, err, "batch leaked before Write")

			require.NoError(t, b.Write())
			v, err := db.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)
			v, err = db.Get([]byte("stale"))
			require.NoError(t, err)
			assert.Equal(t, []byte("new"), v)

			b.Reset()
			assert.Equal(t, 0, b.ValueSize())
		})
	}
}

func TestCachedDatabaseHits(t *testing.T) {
	backing := NewMemDatabase()
	db, err := NewCachedDatabase(backing, 1)
	require.NoError(t, err)

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	// served from the cache even after the backing store lost it
	require.NoError(t, backing.Delete([]byte("a")))
	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	// size one: a second key evicts the first
	require.NoError(t, db.Put([]byte("b"), []byte("2")))
	assert.Equal(t, 1, db.Len())
	_, err = db.Get([]byte("a"))
	assert.Equal(t, ErrNotFound, err)
}
