// Copyright 2015 The go-ethereum Authors
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
	"bytes"
	"fmt"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/util/keccak256"
	"github.com/ethereum/go-ethereum/rlp"
)

// Prove returns the encoded nodes on the path to key, root first. Embedded
// nodes travel inside their parent. The result proves membership when the key
// is present and non-membership otherwise, and it is exactly the set of nodes a
// witness trie needs to replay an insert or update of key.
func (self *Trie) Prove(key []byte) (ret [][]byte, err error) {
	mpt_key_hex := keybytesToHex(self.storage_strat.MapKey(key))
	var nodes []node
	tn := self.root
	for len(mpt_key_hex) > 0 && tn != nil {
		switch n := tn.(type) {
		case *shortNode:
			if len(mpt_key_hex) < len(n.Key) || !bytes.Equal(n.Key, mpt_key_hex[:len(n.Key)]) {
				// The trie doesn't contain the key.
				tn = nil
			} else {
				tn = n.Val
				mpt_key_hex = mpt_key_hex[len(n.Key):]
			}
			nodes = append(nodes, n)
		case *fullNode:
			tn = n.Children[mpt_key_hex[0]]
			mpt_key_hex = mpt_key_hex[1:]
			nodes = append(nodes, n)
		case hashNode:
			if tn, err = self.resolve(n, nil); err != nil {
				return nil, err
			}
		case valueNode:
			tn = nil
		default:
			panic(fmt.Sprintf("%T: invalid node: %v", tn, tn))
		}
	}
	hasher := newHasher()
	defer returnHasherToPool(hasher)
	for i, n := range nodes {
		collapsed, hn := hasher.proofHash(n)
		if _, ok := hn.(hashNode); ok || i == 0 {
			// Nodes referenced by hash (and the root, which always is) become
			// witness elements.
			enc, err := rlp.EncodeToBytes(collapsed)
			if err != nil {
				return nil, err
			}
			ret = append(ret, enc)
		}
	}
	return ret, nil
}

// WitnessDB serves witness nodes by hash and remembers which ones were read.
// It is read-only.
type WitnessDB struct {
	nodes map[common.Digest][]byte
	used  map[common.Digest]bool
	order []common.Digest
}

func NewWitnessDB(witness [][]byte) *WitnessDB {
	ret := &WitnessDB{
		nodes: make(map[common.Digest][]byte, len(witness)),
		used:  make(map[common.Digest]bool, len(witness)),
	}
	for _, enc := range witness {
		h := keccak256.Hash(enc)
		if _, dup := ret.nodes[h]; !dup {
			ret.order = append(ret.order, h)
		}
		ret.nodes[h] = enc
	}
	return ret
}

func (self *WitnessDB) Get(key []byte) ([]byte, error) {
	if len(key) != common.DigestLength {
		return nil, nil
	}
	h := common.BytesToDigest(key)
	enc, ok := self.nodes[h]
	if !ok {
		return nil, nil
	}
	self.used[h] = true
	return enc, nil
}

func (self *WitnessDB) Put(key []byte, value []byte) error {
	return fmt.Errorf("witness database is read-only")
}

// Size is the number of distinct witness nodes.
func (self *WitnessDB) Size() int {
	return len(self.nodes)
}

// Unused lists the witness nodes nothing asked for, in witness order.
func (self *WitnessDB) Unused() (ret []common.Digest) {
	for _, h := range self.order {
		if !self.used[h] {
			ret = append(ret, h)
		}
	}
	return
}

// NewWitnessTrie opens a partial trie at root whose only loaded nodes are the
// witness. Operations that stay on the witnessed path behave exactly as on the
// full trie; straying off it yields a MissingNodeError.
func NewWitnessTrie(root common.Digest, witness [][]byte, storage_strat StorageStrategy) (*Trie, *WitnessDB, error) {
	db := NewWitnessDB(witness)
	t, err := New(root, db, storage_strat)
	return t, db, err
}
