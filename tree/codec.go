package tree

import (
	"io"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// A batch travels as [prev_root, new_root, [[kind, body], ...]] where body is
// the RLP encoding of the proof struct.
type batchRLP struct {
	PrevRoot common.Digest
	NewRoot  common.Digest
	Proofs   []proofRLP
}

type proofRLP struct {
	Kind Kind
	Body []byte
}

func EncodeProof(p Proof) (ret []byte, err error) {
	enc, err := encodeProof(p)
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes(enc)
}

func DecodeProof(b []byte) (Proof, error) {
	var enc proofRLP
	if err := rlp.DecodeBytes(b, &enc); err != nil {
		return nil, err
	}
	return decodeProof(enc)
}

func encodeProof(p Proof) (ret proofRLP, err error) {
	switch p.(type) {
	case *InsertProof, *UpdateProof:
	default:
		return ret, errors.Wrapf(ErrUnknownProofKind, "%T", p)
	}
	ret.Kind = p.Kind()
	ret.Body, err = rlp.EncodeToBytes(p)
	return
}

func decodeProof(enc proofRLP) (Proof, error) {
	var p Proof
	switch enc.Kind {
	case KindInsert:
		p = new(InsertProof)
	case KindUpdate:
		p = new(UpdateProof)
	default:
		return nil, errors.Wrapf(ErrUnknownProofKind, "%d", enc.Kind)
	}
	if err := rlp.DecodeBytes(enc.Body, p); err != nil {
		return nil, errors.Wrapf(err, "%s proof", enc.Kind)
	}
	return p, nil
}

func (self *Batch) EncodeRLP(w io.Writer) error {
	enc := batchRLP{PrevRoot: self.prev_root, NewRoot: self.new_root, Proofs: make([]proofRLP, len(self.proofs))}
	for i, p := range self.proofs {
		var err error
		if enc.Proofs[i], err = encodeProof(p); err != nil {
			return errors.Wrapf(err, "proof %d", i)
		}
	}
	return rlp.Encode(w, &enc)
}

func (self *Batch) DecodeRLP(s *rlp.Stream) error {
	var enc batchRLP
	if err := s.Decode(&enc); err != nil {
		return err
	}
	proofs := make([]Proof, len(enc.Proofs))
	for i, p := range enc.Proofs {
		var err error
		if proofs[i], err = decodeProof(p); err != nil {
			return errors.Wrapf(err, "proof %d", i)
		}
	}
	self.prev_root, self.new_root, self.proofs = enc.PrevRoot, enc.NewRoot, proofs
	return nil
}

func EncodeBatch(b *Batch) ([]byte, error) {
	return rlp.EncodeToBytes(b)
}

func DecodeBatch(enc []byte) (*Batch, error) {
	ret := new(Batch)
	if err := rlp.DecodeBytes(enc, ret); err != nil {
		return nil, errors.Wrap(err, "decode batch")
	}
	return ret, nil
}
