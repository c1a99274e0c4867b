// Package batchgen drives a tree.State with random inserts and updates to
// produce test batches.
package batchgen

import (
	"io"

	"github.com/Taraxa-project/taraxa-authdict/tree"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/linkedhashset"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

const (
	DefaultUpdateRatio = 0.7
	DefaultKeySize     = 32
	DefaultValueSize   = 32
)

// Source is the randomness a Generator draws from. *math/rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
	Read(p []byte) (int, error)
}

// Generator remembers every key it inserted so that updates always hit an
// existing key. Keys are kept in insertion order, so a seeded Source yields
// the same operations on every run.
type Generator struct {
	Source      Source
	UpdateRatio float64
	KeySize     int
	ValueSize   int
	// Progress receives a progress bar while a batch is generated. Nil means silent.
	Progress io.Writer

	inserted *linkedhashset.Set
	keys     *arraylist.List
	log      log.Logger
}

func New(source Source) *Generator {
	return &Generator{
		Source:      source,
		UpdateRatio: DefaultUpdateRatio,
		KeySize:     DefaultKeySize,
		ValueSize:   DefaultValueSize,
	}
}

func (self *Generator) init() {
	if self.inserted == nil {
		self.inserted = linkedhashset.New()
		self.keys = arraylist.New()
		self.log = log.New("module", "batchgen")
	}
	if self.KeySize <= 0 {
		self.KeySize = DefaultKeySize
	}
}

// Keys lists the inserted keys in insertion order.
func (self *Generator) Keys() (ret [][]byte) {
	self.init()
	for _, k := range self.inserted.Values() {
		ret = append(ret, []byte(k.(string)))
	}
	return
}

// Prefill inserts n random keys without collecting their proofs.
func (self *Generator) Prefill(state *tree.State, n int) error {
	self.init()
	self.log.Info("Prefilling tree", "leaves", n)
	for i := 0; i < n; i++ {
		if _, err := self.RandomInsert(state); err != nil {
			return errors.Wrapf(err, "prefill %d", i)
		}
	}
	self.log.Info("Prefilled tree", "root", state.RootOrEmpty())
	return nil
}

// RandomInsert inserts a fresh random key with a random value.
func (self *Generator) RandomInsert(state *tree.State) (*tree.InsertProof, error) {
	self.init()
	key, err := self.freshKey()
	if err != nil {
		return nil, err
	}
	value, err := self.randomBytes(self.ValueSize)
	if err != nil {
		return nil, err
	}
	proof, err := state.Insert(key, value)
	if err != nil {
		return nil, err
	}
	self.inserted.Add(string(key))
	self.keys.Add(key)
	return proof, nil
}

// RandomUpdate gives a random previously inserted key a new random value.
func (self *Generator) RandomUpdate(state *tree.State) (*tree.UpdateProof, error) {
	self.init()
	if self.keys.Empty() {
		return nil, errors.Wrap(tree.ErrKeyNotFound, "no key inserted yet")
	}
	key, _ := self.keys.Get(self.Source.Intn(self.keys.Size()))
	value, err := self.randomBytes(self.ValueSize)
	if err != nil {
		return nil, err
	}
	return state.Update(key.([]byte), value)
}

// CreateBatch prefills state with initial keys, then applies ops random
// operations and returns them as a batch. An update is chosen with
// probability UpdateRatio once there is a key to update.
func (self *Generator) CreateBatch(state *tree.State, initial, ops int) (*tree.Batch, error) {
	if err := self.Prefill(state, initial); err != nil {
		return nil, err
	}
	builder := tree.NewBatchBuilder(state)
	var bar *progressbar.ProgressBar
	if self.Progress != nil {
		bar = progressbar.NewOptions(ops, progressbar.OptionSetWriter(self.Progress), progressbar.OptionSetDescription("operations"))
		defer bar.Finish()
	}
	for i := 0; i < ops; i++ {
		var err error
		if !self.keys.Empty() && self.Source.Float64() < self.UpdateRatio {
			var p *tree.UpdateProof
			if p, err = self.RandomUpdate(state); err == nil {
				err = builder.Append(p)
			}
		} else {
			var p *tree.InsertProof
			if p, err = self.RandomInsert(state); err == nil {
				err = builder.Append(p)
			}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "operation %d", i)
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	batch := builder.Build()
	self.log.Info("Generated batch", "proofs", batch.Len(), "prev_root", batch.PrevRoot(), "new_root", batch.NewRoot())
	return batch, nil
}

func (self *Generator) freshKey() ([]byte, error) {
	for {
		key, err := self.randomBytes(self.KeySize)
		if err != nil {
			return nil, err
		}
		if !self.inserted.Contains(string(key)) {
			return key, nil
		}
	}
}

func (self *Generator) randomBytes(n int) ([]byte, error) {
	ret := make([]byte, n)
	if _, err := self.Source.Read(ret); err != nil {
		return nil, errors.Wrap(err, "read randomness")
	}
	return ret, nil
}
