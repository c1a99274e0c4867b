// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package trie

import (
	"hash"
	"sync"

	"github.com/Taraxa-project/taraxa-authdict/util"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

type hasher struct {
	tmp sliceBuffer
	sha keccakState
}

// store_func receives every node whose encoding is at least a hash long
// during a committing hash pass. enc is only valid for the duration of the call.
type store_func = func(hash hashNode, enc []byte) error

// keccakState wraps sha3.state. In addition to the usual hash methods, it also supports
// Read to get a variable amount of data from the hash state. Read is faster than Sum
// because it doesn't copy the internal state, but also modifies the internal state.
type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

type sliceBuffer []byte

func (b *sliceBuffer) Write(data []byte) (n int, err error) {
	*b = append(*b, data...)
	return len(data), nil
}

func (b *sliceBuffer) Reset() {
	*b = (*b)[:0]
}

var hasherPool = sync.Pool{
	New: func() interface{} {
		return &hasher{
			tmp: make(sliceBuffer, 0, 550), // cap is as large as a full fullNode.
			sha: sha3.NewLegacyKeccak256().(keccakState),
		}
	},
}

func newHasher() *hasher {
	return hasherPool.Get().(*hasher)
}

func returnHasherToPool(h *hasher) {
	hasherPool.Put(h)
}

// hash collapses a node down into a hash node, also returning a copy of the
// original node initialized with the computed hash to replace the original one.
func (h *hasher) hash(n node, force bool, store store_func) (node, node, error) {
	if hash, dirty := n.cache(); hash != nil {
		if store == nil || !dirty {
			return hash, n, nil
		}
	}
	collapsed, cached, err := h.hashChildren(n, store)
	if err != nil {
		return hashNode{}, n, err
	}
	hashed, err := h.hash_and_maybe_store(collapsed, force, store)
	if err != nil {
		return hashNode{}, n, err
	}
	// hashChildren already copied the node, so the flags can be set in place.
	cachedHash, _ := hashed.(hashNode)
	switch cn := cached.(type) {
	case *shortNode:
		cn.flags.hash = cachedHash
		if store != nil {
			cn.flags.dirty = false
		}
	case *fullNode:
		cn.flags.hash = cachedHash
		if store != nil {
			cn.flags.dirty = false
		}
	}
	return hashed, cached, nil
}

// hashChildren replaces the children of a node with their hashes if the encoded
// size of the child is larger than a hash, returning the collapsed node as well
// as a replacement for the original node with the child hashes cached in.
func (h *hasher) hashChildren(original node, store store_func) (node, node, error) {
	var err error
	switch n := original.(type) {
	case *shortNode:
		collapsed, cached := n.copy(), n.copy()
		collapsed.Key = hexToCompact(n.Key)
		if _, ok := n.Val.(valueNode); !ok {
			collapsed.Val, cached.Val, err = h.hash(n.Val, false, store)
			if err != nil {
				return original, original, err
			}
		}
		return collapsed, cached, nil
	case *fullNode:
		collapsed, cached := n.copy(), n.copy()
		for i := 0; i < 16; i++ {
			if n.Children[i] != nil {
				collapsed.Children[i], cached.Children[i], err = h.hash(n.Children[i], false, store)
				if err != nil {
					return original, original, err
				}
			}
		}
		return collapsed, cached, nil
	case hashNode:
		return n, original, nil
	default:
		panic("impossible")
	}
}

func (h *hasher) hash_and_maybe_store(n node, force bool, store store_func) (node, error) {
	util.Assert(n != nil, "impossible")
	if _, isHash := n.(hashNode); isHash {
		return n, nil
	}
	h.tmp.Reset()
	if err := rlp.Encode(&h.tmp, n); err != nil {
		panic("encode error: " + err.Error())
	}
	if len(h.tmp) < 32 && !force {
		return n, nil // Nodes smaller than 32 bytes are stored inside their parent
	}
	hash, _ := n.cache()
	if hash == nil {
		hash = h.makeHashNode(h.tmp)
	}
	if store != nil {
		if err := store(hash, h.tmp); err != nil {
			return nil, err
		}
	}
	return hash, nil
}

func (h *hasher) makeHashNode(data []byte) hashNode {
	hashCounter.Inc(1)
	n := make(hashNode, h.sha.Size())
	h.sha.Reset()
	h.sha.Write(data)
	h.sha.Read(n)
	return n
}

// proofHash returns the collapsed form of original (ready for encoding) and
// its reference: a hash node, or the node itself when it is embedded.
func (h *hasher) proofHash(original node) (collapsed, hashed node) {
	switch original.(type) {
	case *shortNode, *fullNode:
		collapsed, _, _ = h.hashChildren(original, nil)
		hashed, _ = h.hash_and_maybe_store(collapsed, false, nil)
		return collapsed, hashed
	default:
		return original, original
	}
}
