package ethdb

import "github.com/pkg/errors"

// Code using batches should try to add this much data to the batch.
// The value was determined empirically.
const IdealBatchSize = 100 * 1024

var ErrNotFound = errors.New("not found")

type Putter interface {
	Put(key []byte, value []byte) error
}

type Deleter interface {
	Delete(key []byte) error
}

// Getter reports a missing key as ErrNotFound.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

type Database interface {
	Putter
	Deleter
	Getter
	NewBatch() Batch
	Close()
}

// Batch is a write-only database that commits changes to its host database
// when Write is called. Batch cannot be used concurrently.
type Batch interface {
	Putter
	Deleter
	ValueSize() int // amount of data in the batch
	Write() error
	// Reset resets the batch for reuse
	Reset()
}
