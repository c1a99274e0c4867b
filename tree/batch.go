package tree

import (
	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Batch is an ordered run of proofs bracketed by the root before the first and
// the root after the last. It is not modified once built.
type Batch struct {
	prev_root common.Digest
	new_root  common.Digest
	proofs    []Proof
}

func NewBatch(prev_root, new_root common.Digest, proofs []Proof) *Batch {
	return &Batch{prev_root, new_root, append([]Proof(nil), proofs...)}
}

func (self *Batch) PrevRoot() common.Digest { return self.prev_root }
func (self *Batch) NewRoot() common.Digest  { return self.new_root }
func (self *Batch) Len() int                { return len(self.proofs) }
func (self *Batch) Proof(i int) Proof       { return self.proofs[i] }

// Proofs returns a copy of the proof list.
func (self *Batch) Proofs() []Proof {
	return append([]Proof(nil), self.proofs...)
}

// BatchBuilder runs operations against a State and collects their proofs.
type BatchBuilder struct {
	state     *State
	prev_root common.Digest
	proofs    []Proof
}

func NewBatchBuilder(state *State) *BatchBuilder {
	return &BatchBuilder{state: state, prev_root: state.RootOrEmpty()}
}

func (self *BatchBuilder) Insert(key, value []byte) error {
	p, err := self.state.Insert(key, value)
	if err != nil {
		return err
	}
	self.proofs = append(self.proofs, p)
	return nil
}

func (self *BatchBuilder) Update(key, value []byte) error {
	p, err := self.state.Update(key, value)
	if err != nil {
		return err
	}
	self.proofs = append(self.proofs, p)
	return nil
}

// Append records a proof produced by the builder's state through some other
// path. It must continue the chain.
func (self *BatchBuilder) Append(p Proof) error {
	old_root, _ := p.Roots()
	if tip := self.tip(); old_root != tip {
		return errors.Wrapf(ErrRootMismatch, "proof starts at %s, builder is at %s", old_root, tip)
	}
	self.proofs = append(self.proofs, p)
	return nil
}

func (self *BatchBuilder) tip() common.Digest {
	if len(self.proofs) == 0 {
		return self.prev_root
	}
	_, new_root := self.proofs[len(self.proofs)-1].Roots()
	return new_root
}

func (self *BatchBuilder) Len() int {
	return len(self.proofs)
}

// Build seals the proofs collected so far. The builder stays usable.
func (self *BatchBuilder) Build() *Batch {
	return NewBatch(self.prev_root, self.state.RootOrEmpty(), self.proofs)
}

// Validate folds Verify over the proofs starting at PrevRoot and requires the
// fold to end at NewRoot. It stops at the first failing proof.
func Validate(b *Batch) (common.Digest, error) {
	running := b.prev_root
	for i, p := range b.proofs {
		next, err := Verify(p, running)
		if err != nil {
			return common.Digest{}, errors.Wrapf(err, "proof %d (%s)", i, kindOf(p))
		}
		running = next
	}
	if running != b.new_root {
		return common.Digest{}, errors.Wrapf(ErrRootMismatch, "batch ends at %s, claims %s", running, b.new_root)
	}
	return running, nil
}

// Roots is Validate returning every root on the way: PrevRoot followed by
// the root after each proof.
func Roots(b *Batch) ([]common.Digest, error) {
	ret := make([]common.Digest, 0, len(b.proofs)+1)
	ret = append(ret, b.prev_root)
	for i, p := range b.proofs {
		next, err := Verify(p, ret[i])
		if err != nil {
			return ret, errors.Wrapf(err, "proof %d (%s)", i, kindOf(p))
		}
		ret = append(ret, next)
	}
	if last := ret[len(ret)-1]; last != b.new_root {
		return ret, errors.Wrapf(ErrRootMismatch, "batch ends at %s, claims %s", last, b.new_root)
	}
	return ret, nil
}

// ValidateAll validates independent batches concurrently. The result holds
// the final root of each batch.
func ValidateAll(batches []*Batch) ([]common.Digest, error) {
	ret := make([]common.Digest, len(batches))
	eg := errgroup.Group{}
	for i := range batches {
		batchIndex := i
		eg.Go(func() (err error) {
			if ret[batchIndex], err = Validate(batches[batchIndex]); err != nil {
				return errors.Wrapf(err, "batch %d", batchIndex)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

func kindOf(p Proof) string {
	if p == nil {
		return "nil"
	}
	return p.Kind().String()
}
