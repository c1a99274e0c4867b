// Package replay is the program run inside the zkvm: it validates a batch and
// publishes the root the batch ends at.
package replay

import (
	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/tree"
	"github.com/Taraxa-project/taraxa-authdict/util/keccak256"
	"github.com/Taraxa-project/taraxa-authdict/zkvm"
	"github.com/pkg/errors"
)

const (
	MeterProofs       = "proofs"
	MeterInserts      = "inserts"
	MeterUpdates      = "updates"
	MeterWitnessNodes = "witness_nodes"
	MeterWitnessBytes = "witness_bytes"
)

var programID = keccak256.Hash([]byte("authdict/replay/v1"))

// Program reads one tree.Batch from stdin and commits the 32 bytes of its
// validated final root.
type Program struct{}

func (Program) ID() common.Digest {
	return programID
}

func (Program) Run(env *zkvm.Env) error {
	batch := new(tree.Batch)
	if err := env.Read(batch); err != nil {
		return errors.Wrap(err, "read batch")
	}
	for i := 0; i < batch.Len(); i++ {
		p := batch.Proof(i)
		switch p.Kind() {
		case tree.KindInsert:
			env.Meter(MeterInserts, 1)
		case tree.KindUpdate:
			env.Meter(MeterUpdates, 1)
		}
		for _, node := range p.WitnessNodes() {
			env.Meter(MeterWitnessNodes, 1)
			env.Meter(MeterWitnessBytes, uint64(len(node)))
		}
	}
	env.Meter(MeterProofs, uint64(batch.Len()))
	root, err := tree.Validate(batch)
	if err != nil {
		return err
	}
	env.Commit(root.Bytes())
	return nil
}
