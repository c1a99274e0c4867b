package ethdb

import (
	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/ethereum/go-ethereum/metrics"
	lru "github.com/hashicorp/golang-lru"
)

var (
	cacheHitCounter  = metrics.NewRegisteredCounter("ethdb/cache/hit", nil)
	cacheMissCounter = metrics.NewRegisteredCounter("ethdb/cache/miss", nil)
)

// CachedDatabase keeps the most recently read or written values of the
// wrapped database in an LRU cache.
type CachedDatabase struct {
	Database
	cache *lru.Cache
}

func NewCachedDatabase(db Database, size int) (*CachedDatabase, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CachedDatabase{db, cache}, nil
}

func (self *CachedDatabase) Get(key []byte) ([]byte, error) {
	if v, ok := self.cache.Get(string(key)); ok {
		cacheHitCounter.Inc(1)
		return common.CopyBytes(v.([]byte)), nil
	}
	cacheMissCounter.Inc(1)
	v, err := self.Database.Get(key)
	if err != nil {
		return nil, err
	}
	self.cache.Add(string(key), common.CopyBytes(v))
	return v, nil
}

func (self *CachedDatabase) Has(key []byte) (bool, error) {
	if self.cache.Contains(string(key)) {
		return true, nil
	}
	return self.Database.Has(key)
}

func (self *CachedDatabase) Put(key []byte, value []byte) error {
	if err := self.Database.Put(key, value); err != nil {
		return err
	}
	self.cache.Add(string(key), common.CopyBytes(value))
	return nil
}

func (self *CachedDatabase) Delete(key []byte) error {
	self.cache.Remove(string(key))
	return self.Database.Delete(key)
}

// Len is the number of cached entries.
func (self *CachedDatabase) Len() int {
	return self.cache.Len()
}

func (self *CachedDatabase) NewBatch() Batch {
	return &cachedBatch{Batch: self.Database.NewBatch(), cache: self.cache}
}

// cachedBatch evicts every key it touched once written, so the cache never
// serves a value older than the batch.
type cachedBatch struct {
	Batch
	cache   *lru.Cache
	touched []string
}

func (b *cachedBatch) Put(key, value []byte) error {
	b.touched = append(b.touched, string(key))
	return b.Batch.Put(key, value)
}

func (b *cachedBatch) Delete(key []byte) error {
	b.touched = append(b.touched, string(key))
	return b.Batch.Delete(key)
}

func (b *cachedBatch) Write() error {
	if err := b.Batch.Write(); err != nil {
		return err
	}
	for _, k := range b.touched {
		b.cache.Remove(k)
	}
	return nil
}

func (b *cachedBatch) Reset() {
	b.Batch.Reset()
	b.touched = b.touched[:0]
}
