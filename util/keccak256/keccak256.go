package keccak256

import (
	"hash"
	"sync"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"golang.org/x/crypto/sha3"
)

type Hasher struct {
	state hash_state
}

type hash_state interface {
	hash.Hash
	Read([]byte) (int, error)
}

var hashers = sync.Pool{New: func() interface{} {
	return &Hasher{sha3.NewLegacyKeccak256().(hash_state)}
}}

func GetHasherFromPool() *Hasher {
	return hashers.Get().(*Hasher)
}

func ReturnHasherToPool(hasher *Hasher) {
	hasher.state.Reset()
	hashers.Put(hasher)
}

func (self *Hasher) Write(b ...byte) {
	self.state.Write(b)
}

// Sum reads the digest out of the state. The state must be reset before reuse.
func (self *Hasher) Sum() (ret common.Digest) {
	self.state.Read(ret[:])
	return
}

func Hash(bs ...[]byte) (ret common.Digest) {
	hasher := GetHasherFromPool()
	for _, b := range bs {
		hasher.Write(b...)
	}
	ret = hasher.Sum()
	ReturnHasherToPool(hasher)
	return
}
