package tree

import (
	"bytes"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/trie"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/pkg/errors"
)

var verifiedCounter = metrics.NewRegisteredCounter("authdict/proof/verified", nil)

type Kind byte

const (
	KindInsert Kind = iota + 1
	KindUpdate
)

func (self Kind) String() string {
	switch self {
	case KindInsert:
		return "insert"
	case KindUpdate:
		return "update"
	}
	return "unknown"
}

// Proof is the evidence for one state transition. The set of implementations
// is closed: *InsertProof and *UpdateProof.
type Proof interface {
	Kind() Kind
	Roots() (old_root, new_root common.Digest)
	WitnessNodes() [][]byte
	isProof()
}

// InsertProof shows that Key was absent under OldRoot and that adding it with
// Value yields NewRoot. Witness is the path of Key under OldRoot.
type InsertProof struct {
	OldRoot common.Digest
	NewRoot common.Digest
	Key     []byte
	Value   []byte
	Witness [][]byte
}

// UpdateProof shows that Key held OldValue under OldRoot and that replacing it
// with NewValue yields NewRoot.
type UpdateProof struct {
	OldRoot  common.Digest
	NewRoot  common.Digest
	Key      []byte
	OldValue []byte
	NewValue []byte
	Witness  [][]byte
}

func (*InsertProof) Kind() Kind { return KindInsert }
func (*UpdateProof) Kind() Kind { return KindUpdate }

func (self *InsertProof) Roots() (common.Digest, common.Digest) { return self.OldRoot, self.NewRoot }
func (self *UpdateProof) Roots() (common.Digest, common.Digest) { return self.OldRoot, self.NewRoot }

func (self *InsertProof) WitnessNodes() [][]byte { return self.Witness }
func (self *UpdateProof) WitnessNodes() [][]byte { return self.Witness }

func (*InsertProof) isProof() {}
func (*UpdateProof) isProof() {}

// Verify checks p against prior, which the caller trusts, and returns the root
// p leads to. Nothing but prior and the proof itself is consulted.
func Verify(p Proof, prior common.Digest) (ret common.Digest, err error) {
	switch p := p.(type) {
	case *InsertProof:
		ret, err = verifyInsert(p, prior)
	case *UpdateProof:
		ret, err = verifyUpdate(p, prior)
	default:
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "unexpected proof type %T", p)
	}
	if err == nil {
		verifiedCounter.Inc(1)
	}
	return
}

func verifyInsert(p *InsertProof, prior common.Digest) (common.Digest, error) {
	t, wdb, err := openWitness(prior, p.OldRoot, p.Witness)
	if err != nil {
		return common.Digest{}, err
	}
	enc, err := t.Get(p.Key)
	if err != nil {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "non-membership of %x: %v", p.Key, err)
	}
	if enc != nil {
		return common.Digest{}, errors.Wrapf(ErrProofKeyMismatch, "inserted key %x is present under %s", p.Key, prior)
	}
	if err := t.Insert(p.Key, encodeValue(p.Value)); err != nil {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "insert %x: %v", p.Key, err)
	}
	return closeWitness(t, wdb, p.NewRoot)
}

func verifyUpdate(p *UpdateProof, prior common.Digest) (common.Digest, error) {
	t, wdb, err := openWitness(prior, p.OldRoot, p.Witness)
	if err != nil {
		return common.Digest{}, err
	}
	enc, err := t.Get(p.Key)
	if err != nil {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "membership of %x: %v", p.Key, err)
	}
	if enc == nil {
		return common.Digest{}, errors.Wrapf(ErrProofKeyMismatch, "updated key %x is absent under %s", p.Key, prior)
	}
	stored, err := decodeValue(enc)
	if err != nil {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "stored value of %x: %v", p.Key, err)
	}
	if !bytes.Equal(stored, p.OldValue) {
		return common.Digest{}, errors.Wrapf(ErrProofValueMismatch, "key %x holds %x, proof claims %x", p.Key, stored, p.OldValue)
	}
	if err := t.Insert(p.Key, encodeValue(p.NewValue)); err != nil {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "update %x: %v", p.Key, err)
	}
	return closeWitness(t, wdb, p.NewRoot)
}

func openWitness(prior, claimed common.Digest, witness [][]byte) (*trie.Trie, *trie.WitnessDB, error) {
	// the zero digest would open as an empty trie
	if prior.IsZero() {
		return nil, nil, errors.Wrap(ErrInvalidProof, "zero prior root")
	}
	if claimed != prior {
		return nil, nil, errors.Wrapf(ErrInvalidProof, "proof starts at %s, chain is at %s", claimed, prior)
	}
	t, wdb, err := trie.NewWitnessTrie(prior, witness, trie.HashedKeys{})
	if err != nil {
		return nil, nil, errors.Wrapf(ErrInvalidProof, "witness does not open %s: %v", prior, err)
	}
	if wdb.Size() != len(witness) {
		return nil, nil, errors.Wrap(ErrInvalidProof, "duplicate witness nodes")
	}
	return t, wdb, nil
}

func closeWitness(t *trie.Trie, wdb *trie.WitnessDB, claimed common.Digest) (common.Digest, error) {
	if unused := wdb.Unused(); len(unused) != 0 {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "%d witness nodes off the key path, first %s", len(unused), unused[0])
	}
	root := t.Hash()
	if root != claimed {
		return common.Digest{}, errors.Wrapf(ErrInvalidProof, "proof leads to %s, claims %s", root, claimed)
	}
	return root, nil
}
