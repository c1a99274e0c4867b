package zkvm

import (
	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/emirpasic/gods/maps/treemap"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Program is a deterministic computation over its stdin. Everything a
// program passes to Env.Commit becomes its public output.
type Program interface {
	// ID identifies the program inside keys and proofs.
	ID() common.Digest
	Run(env *Env) error
}

// Env is the program's view of one execution.
type Env struct {
	stdin  [][]byte
	next   int
	public []byte
	meters *treemap.Map
}

func newEnv(stdin *Stdin) *Env {
	env := &Env{meters: treemap.NewWithStringComparator()}
	if stdin != nil {
		env.stdin = stdin.blobs
	}
	return env
}

// Read decodes the next stdin blob into v.
func (self *Env) Read(v interface{}) error {
	if self.next >= len(self.stdin) {
		return ErrStdinExhausted
	}
	blob := self.stdin[self.next]
	self.next++
	return errors.Wrapf(rlp.DecodeBytes(blob, v), "stdin blob %d", self.next-1)
}

// Commit appends b to the public output.
func (self *Env) Commit(b []byte) {
	self.public = append(self.public, b...)
}

// Meter adds n to the named counter of the execution report.
func (self *Env) Meter(name string, n uint64) {
	if v, ok := self.meters.Get(name); ok {
		n += v.(uint64)
	}
	self.meters.Put(name, n)
}
