package tree

import (
	"sync"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/ethdb"
	"github.com/Taraxa-project/taraxa-authdict/trie"
	"github.com/Taraxa-project/taraxa-authdict/util"
	"github.com/emicklei/dot"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// State is an authenticated dictionary. Every successful Insert or Update
// advances the root by one step and returns the proof of that step.
//
// Mutations are serialized. Readers share the lock with each other but not
// with writers. Get takes the write lock because reads may load nodes.
type State struct {
	mu      sync.RWMutex
	db      ethdb.Database
	trie    *trie.Trie
	root    common.Digest
	touched bool
	log     log.Logger
}

// NewState creates an empty tree backed by db. A nil db means memory.
func NewState(db ethdb.Database) *State {
	ret, err := OpenState(common.EmptyRoot, db)
	util.PanicIfNotNil(err)
	return ret
}

// OpenState reopens a tree previously committed to db.
func OpenState(root common.Digest, db ethdb.Database) (*State, error) {
	if db == nil {
		db = ethdb.NewMemDatabase()
	}
	t, err := trie.New(root, db, trie.HashedKeys{})
	if err != nil {
		return nil, errors.Wrapf(err, "open tree at %s", root)
	}
	self := &State{
		db:   db,
		trie: t,
		root: t.Hash(),
		log:  log.New("module", "tree"),
	}
	self.touched = !t.Empty()
	return self, nil
}

func (self *State) Insert(key, value []byte) (*InsertProof, error) {
	defer util.LockUnlock(&self.mu)()
	present, err := self.lookup(key)
	if err != nil {
		return nil, err
	}
	if present != nil {
		return nil, errors.Wrapf(ErrKeyAlreadyExists, "key %x", key)
	}
	witness, old_root, new_root, err := self.apply(key, value)
	if err != nil {
		return nil, err
	}
	self.log.Trace("Inserted", "key", hexutil.Bytes(key), "root", new_root)
	return &InsertProof{
		OldRoot: old_root,
		NewRoot: new_root,
		Key:     common.CopyBytes(key),
		Value:   copyValue(value),
		Witness: witness,
	}, nil
}

func (self *State) Update(key, value []byte) (*UpdateProof, error) {
	defer util.LockUnlock(&self.mu)()
	old_value, err := self.lookup(key)
	if err != nil {
		return nil, err
	}
	if old_value == nil {
		return nil, errors.Wrapf(ErrKeyNotFound, "key %x", key)
	}
	witness, old_root, new_root, err := self.apply(key, value)
	if err != nil {
		return nil, err
	}
	self.log.Trace("Updated", "key", hexutil.Bytes(key), "root", new_root)
	return &UpdateProof{
		OldRoot:  old_root,
		NewRoot:  new_root,
		Key:      common.CopyBytes(key),
		OldValue: old_value,
		NewValue: copyValue(value),
		Witness:  witness,
	}, nil
}

// Get returns the value stored under key.
func (self *State) Get(key []byte) ([]byte, error) {
	defer util.LockUnlock(&self.mu)()
	value, err := self.lookup(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errors.Wrapf(ErrKeyNotFound, "key %x", key)
	}
	return value, nil
}

// CurrentRoot fails with ErrEmptyTree until the tree holds an entry.
// RootOrEmpty is the variant that falls back to common.EmptyRoot.
func (self *State) CurrentRoot() (common.Digest, error) {
	self.mu.RLock()
	defer self.mu.RUnlock()
	if !self.touched {
		return common.Digest{}, ErrEmptyTree
	}
	return self.root, nil
}

func (self *State) RootOrEmpty() common.Digest {
	self.mu.RLock()
	defer self.mu.RUnlock()
	return self.root
}

// Commit writes the nodes created since the last commit to the database, so
// that OpenState can find the current root later.
func (self *State) Commit() (common.Digest, error) {
	defer util.LockUnlock(&self.mu)()
	batch := &flushingBatch{Batch: self.db.NewBatch()}
	root, err := self.trie.CommitTo(batch)
	if err == nil {
		err = batch.flush()
	}
	if err != nil {
		return common.Digest{}, errors.Wrap(err, "commit trie")
	}
	util.Assert(root == self.root, "commit changed the root")
	self.log.Debug("Committed tree", "root", root, "nodes", batch.nodes, "bytes", batch.written)
	return root, nil
}

// flushingBatch writes itself out whenever it grows past ethdb.IdealBatchSize.
type flushingBatch struct {
	ethdb.Batch
	nodes, written int
}

func (self *flushingBatch) Put(key, value []byte) error {
	if err := self.Batch.Put(key, value); err != nil {
		return err
	}
	self.nodes++
	if self.ValueSize() >= ethdb.IdealBatchSize {
		return self.flush()
	}
	return nil
}

func (self *flushingBatch) flush() error {
	self.written += self.ValueSize()
	if err := self.Batch.Write(); err != nil {
		return err
	}
	self.Batch.Reset()
	return nil
}

// Dot renders the loaded nodes of the tree as a graphviz graph.
func (self *State) Dot() *dot.Graph {
	defer util.LockUnlock(&self.mu)()
	return self.trie.Dot()
}

// lookup returns the decoded value under key, nil when absent. The trie only
// holds non-empty encodings, so an empty value is still distinguishable.
func (self *State) lookup(key []byte) ([]byte, error) {
	enc, err := self.trie.Get(key)
	if err != nil || enc == nil {
		return nil, err
	}
	return decodeValue(enc)
}

// apply proves key under the current root, then writes value and rehashes.
// The trie is left untouched when it fails.
func (self *State) apply(key, value []byte) (witness [][]byte, old_root, new_root common.Digest, err error) {
	if witness, err = self.trie.Prove(key); err != nil {
		return
	}
	if err = self.trie.Insert(key, encodeValue(value)); err != nil {
		return
	}
	old_root, new_root = self.root, self.trie.Hash()
	self.root, self.touched = new_root, true
	return
}

func encodeValue(value []byte) []byte {
	enc, err := rlp.EncodeToBytes(value)
	util.PanicIfNotNil(err)
	return enc
}

func decodeValue(enc []byte) (ret []byte, err error) {
	if err = rlp.DecodeBytes(enc, &ret); err != nil {
		return nil, errors.Wrap(err, "decode value")
	}
	return copyValue(ret), nil
}

// copyValue keeps empty values non-nil so they never read as absent.
func copyValue(value []byte) []byte {
	ret := make([]byte, len(value))
	copy(ret, value)
	return ret
}
