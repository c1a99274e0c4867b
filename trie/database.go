package trie

// Database is the store of committed nodes, keyed by node hash.
// A missing node must be reported as a nil value or an error.
type Database interface {
	Get(key []byte) ([]byte, error)
	Put(key []byte, value []byte) error
}
