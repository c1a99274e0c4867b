// Copyright 2014 The go-ethereum Authors
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

// Package trie implements Merkle Patricia Tries.
package trie

import (
	"bytes"
	"fmt"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/util"
	"github.com/pkg/errors"
)

var ErrEmptyValue = errors.New("trie: empty values are not storable")

// MissingNodeError is returned when a node referenced by hash can't be found,
// which for tries built from a witness means the witness is incomplete.
type MissingNodeError struct {
	NodeHash common.Digest
	Path     []byte // hex-encoded path to the missing node
}

func (err *MissingNodeError) Error() string {
	return fmt.Sprintf("missing trie node %s (path %x)", err.NodeHash, err.Path)
}

// Trie is a Merkle Patricia Trie. Nodes that are not loaded are kept as hash
// references and resolved from db on first touch.
//
// Trie is not safe for concurrent use.
type Trie struct {
	db            Database
	root          node
	storage_strat StorageStrategy
}

// New opens the trie rooted at root. The zero digest and common.EmptyRoot both
// denote the empty trie.
func New(root common.Digest, db Database, storage_strat StorageStrategy) (*Trie, error) {
	util.Assert(db != nil)
	if storage_strat == nil {
		storage_strat = PlainKeys{}
	}
	trie := &Trie{
		db:            db,
		storage_strat: storage_strat,
	}
	if !root.IsZero() && root != common.EmptyRoot {
		rootnode, err := trie.resolve(root[:], nil)
		if err != nil {
			return nil, err
		}
		trie.root = rootnode
	}
	return trie, nil
}

// Get returns the value stored under key, nil when absent.
func (self *Trie) Get(key []byte) ([]byte, error) {
	mpt_key_hex := keybytesToHex(self.storage_strat.MapKey(key))
	value, newroot, didResolve, err := self.mpt_get(self.root, mpt_key_hex, 0)
	if err == nil && didResolve {
		self.root = newroot
	}
	return value, err
}

// Insert sets key to value, replacing any previous value.
func (self *Trie) Insert(key, value []byte) error {
	if len(value) == 0 {
		return ErrEmptyValue
	}
	mpt_key_hex := keybytesToHex(self.storage_strat.MapKey(key))
	_, n, err := self.mpt_insert(self.root, nil, mpt_key_hex, valueNode(common.CopyBytes(value)))
	if err != nil {
		return err
	}
	self.root = n
	return nil
}

func (self *Trie) Empty() bool {
	return self.root == nil
}

// Hash returns the root hash without writing anything to the database.
func (self *Trie) Hash() (ret common.Digest) {
	ret, self.root, _ = self.hashRoot(nil)
	return
}

// Commit writes all dirty nodes to the database and returns the root hash.
func (self *Trie) Commit() (common.Digest, error) {
	return self.CommitTo(self.db)
}

// CommitTo is Commit with the nodes going to w, typically a database batch
// that is written once the caller is done.
func (self *Trie) CommitTo(w interface{ Put(key, value []byte) error }) (ret common.Digest, err error) {
	ret, self.root, err = self.hashRoot(func(hash hashNode, enc []byte) error {
		return w.Put(common.CopyBytes(hash), common.CopyBytes(enc))
	})
	return
}

func (self *Trie) mpt_get(origNode node, key_hex []byte, pos int) (value []byte, newnode node, didResolve bool, err error) {
	switch n := (origNode).(type) {
	case nil:
		return nil, nil, false, nil
	case valueNode:
		return n, n, false, nil
	case *shortNode:
		if len(key_hex)-pos < len(n.Key) || !bytes.Equal(n.Key, key_hex[pos:pos+len(n.Key)]) {
			// key not found in trie
			return nil, n, false, nil
		}
		value, newnode, didResolve, err = self.mpt_get(n.Val, key_hex, pos+len(n.Key))
		if err == nil && didResolve {
			n = n.copy()
			n.Val = newnode
		}
		return value, n, didResolve, err
	case *fullNode:
		if pos >= len(key_hex) {
			return nil, n, false, nil
		}
		value, newnode, didResolve, err = self.mpt_get(n.Children[key_hex[pos]], key_hex, pos+1)
		if err == nil && didResolve {
			n = n.copy()
			n.Children[key_hex[pos]] = newnode
		}
		return value, n, didResolve, err
	case hashNode:
		child, err := self.resolve(n, key_hex[:pos])
		if err != nil {
			return nil, n, true, err
		}
		value, newnode, _, err := self.mpt_get(child, key_hex, pos)
		return value, newnode, true, err
	default:
		panic(fmt.Sprintf("%T: invalid node: %v", origNode, origNode))
	}
}

func (self *Trie) mpt_insert(n node, key_hex_prefix, key_hex_rest []byte, value node) (bool, node, error) {
	if len(key_hex_rest) == 0 {
		if v, ok := n.(valueNode); ok {
			return !bytes.Equal(v, value.(valueNode)), value, nil
		}
		return true, value, nil
	}
	switch n := n.(type) {
	case *shortNode:
		matchlen := prefixLen(key_hex_rest, n.Key)
		// If the whole key matches, keep this short node as is
		// and only update the value.
		if matchlen == len(n.Key) {
			dirty, nn, err := self.mpt_insert(n.Val, concat(key_hex_prefix, key_hex_rest[:matchlen]...), key_hex_rest[matchlen:], value)
			if !dirty || err != nil {
				return false, n, err
			}
			return true, &shortNode{n.Key, nn, self.newFlag()}, nil
		}
		// Otherwise branch out at the index where they differ.
		branch := &fullNode{flags: self.newFlag()}
		var err error
		_, branch.Children[n.Key[matchlen]], err = self.mpt_insert(nil, concat(key_hex_prefix, n.Key[:matchlen+1]...), n.Key[matchlen+1:], n.Val)
		if err != nil {
			return false, nil, err
		}
		_, branch.Children[key_hex_rest[matchlen]], err = self.mpt_insert(nil, concat(key_hex_prefix, key_hex_rest[:matchlen+1]...), key_hex_rest[matchlen+1:], value)
		if err != nil {
			return false, nil, err
		}
		// Replace this shortNode with the branch if it occurs at index 0.
		if matchlen == 0 {
			return true, branch, nil
		}
		// Otherwise, replace it with a short node leading up to the branch.
		return true, &shortNode{key_hex_rest[:matchlen], branch, self.newFlag()}, nil
	case *fullNode:
		dirty, nn, err := self.mpt_insert(n.Children[key_hex_rest[0]], concat(key_hex_prefix, key_hex_rest[0]), key_hex_rest[1:], value)
		if !dirty || err != nil {
			return false, n, err
		}
		n = n.copy()
		n.flags = self.newFlag()
		n.Children[key_hex_rest[0]] = nn
		return true, n, nil
	case nil:
		return true, &shortNode{key_hex_rest, value, self.newFlag()}, nil
	case hashNode:
		// We've hit a part of the trie that isn't loaded yet. Load
		// the node and insert into it. This leaves all child nodes on
		// the path to the value in the trie.
		rn, err := self.resolve(n, key_hex_prefix)
		if err != nil {
			return false, nil, err
		}
		dirty, nn, err := self.mpt_insert(rn, key_hex_prefix, key_hex_rest, value)
		if !dirty || err != nil {
			return false, rn, err
		}
		return true, nn, nil
	default:
		panic(fmt.Sprintf("%T: invalid node: %v", n, n))
	}
}

func (self *Trie) resolve(hash hashNode, mpt_key_hex_prefix []byte) (node, error) {
	resolveCounter.Inc(1)
	enc, err := self.db.Get(hash)
	if err != nil || enc == nil {
		return nil, &MissingNodeError{NodeHash: common.BytesToDigest(hash), Path: mpt_key_hex_prefix}
	}
	n, err := decodeNode(hash, enc)
	if err != nil {
		return nil, errors.Wrapf(err, "trie node %x", []byte(hash))
	}
	return n, nil
}

func (self *Trie) hashRoot(store store_func) (common.Digest, node, error) {
	if self.root == nil {
		return common.EmptyRoot, nil, nil
	}
	hasher := newHasher()
	defer returnHasherToPool(hasher)
	hashed, cached, err := hasher.hash(self.root, true, store)
	if err != nil {
		return common.Digest{}, self.root, err
	}
	return common.BytesToDigest(hashed.(hashNode)), cached, nil
}

func (self *Trie) newFlag() nodeFlag {
	return nodeFlag{dirty: true}
}

// concat always allocates, so prefixes handed down the recursion are never
// shared with node keys.
func concat(s1 []byte, s2 ...byte) []byte {
	r := make([]byte, len(s1)+len(s2))
	copy(r, s1)
	copy(r[len(s1):], s2)
	return r
}
