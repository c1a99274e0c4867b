package trie

import "github.com/Taraxa-project/taraxa-authdict/util/keccak256"

// StorageStrategy maps a caller key onto the trie path.
type StorageStrategy interface {
	MapKey(key []byte) (mpt_key []byte)
}

type PlainKeys struct{}

func (PlainKeys) MapKey(key []byte) []byte {
	return key
}

// HashedKeys spreads keys over the trie by keccak256, keeping paths at a fixed
// depth no matter what the keys look like.
type HashedKeys struct{}

func (HashedKeys) MapKey(key []byte) []byte {
	return keccak256.Hash(key).Bytes()
}
