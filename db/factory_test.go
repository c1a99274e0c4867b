package db

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Taraxa-project/taraxa-authdict/db/leveldb"
	"github.com/Taraxa-project/taraxa-authdict/db/memory"
	"github.com/Taraxa-project/taraxa-authdict/ethdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToMemory(t *testing.T) {
	f, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, "memory", f.Type)
	assert.IsType(t, new(memory.Factory), f.Factory)

	db, err := f.NewInstance()
	require.NoError(t, err)
	defer db.Close()
	assert.IsType(t, new(ethdb.MemDatabase), db)
}

func TestParseLevelDBWithCache(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nodes")
	cfg, err := json.Marshal(map[string]interface{}{
		"type":      "leveldb",
		"options":   map[string]interface{}{"file": file, "cache": 32},
		"lru_cache": 16,
	})
	require.NoError(t, err)

	f, err := Parse(string(cfg))
	require.NoError(t, err)
	assert.Equal(t, &leveldb.Factory{File: file, Cache: 32}, f.Factory)
	assert.Equal(t, 16, f.LRUCacheSize)

	db, err := f.NewInstance()
	require.NoError(t, err)
	defer db.Close()
	assert.IsType(t, new(ethdb.CachedDatabase), db)

	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(`{"type": "rocksdb"}`)
	assert.Error(t, err)

	_, err = Parse(`{"type": "leveldb", "options": {"file": 5}}`)
	assert.Error(t, err)

	f, err := Parse(`{"type": "leveldb"}`)
	require.NoError(t, err)
	_, err = f.NewInstance()
	assert.Error(t, err)
}
