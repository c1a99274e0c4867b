package zkvm

import (
	"io"
	"math/big"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/util/keccak256"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// The attestation backend proves an execution by running it and signing
// (program id, public values) with a key made at setup. BLS signatures over
// BLS12-381 keep the verifying key and the proof to one group element each.

var attestationDST = []byte("AUTHDICT-ATTEST-V01-CS01-with-BLS12381G2_XMD:SHA-256_SSWU_RO_")

type ProvingKey struct {
	program Program
	secret  fr.Element
	vk      *VerifyingKey
}

func (self *ProvingKey) VerifyingKey() *VerifyingKey {
	return self.vk
}

type VerifyingKey struct {
	ProgramID common.Digest
	PublicKey bls12381.G1Affine
}

type ProofArtifact struct {
	ProgramID    common.Digest
	PublicValues []byte
	Signature    bls12381.G2Affine
	Session      uuid.UUID
}

type verifyingKeyRLP struct {
	ProgramID common.Digest
	PublicKey []byte
}

type proofArtifactRLP struct {
	ProgramID    common.Digest
	PublicValues []byte
	Signature    []byte
	Session      [16]byte
}

func newProvingKey(prog Program) (*ProvingKey, error) {
	ret := &ProvingKey{program: prog}
	for ret.secret.IsZero() {
		if _, err := ret.secret.SetRandom(); err != nil {
			return nil, err
		}
	}
	_, _, g1, _ := bls12381.Generators()
	ret.vk = &VerifyingKey{ProgramID: prog.ID()}
	ret.vk.PublicKey.ScalarMultiplication(&g1, ret.secret.BigInt(new(big.Int)))
	return ret, nil
}

func attestationMessage(program_id common.Digest, public []byte) []byte {
	return keccak256.Hash(program_id[:], public).Bytes()
}

func (self *ProvingKey) sign(public []byte) (ret bls12381.G2Affine, err error) {
	h, err := bls12381.HashToG2(attestationMessage(self.vk.ProgramID, public), attestationDST)
	if err != nil {
		return ret, err
	}
	ret.ScalarMultiplication(&h, self.secret.BigInt(new(big.Int)))
	return ret, nil
}

// check is e(pk, H(m)) == e(g1, sig), written as one pairing product.
func (self *VerifyingKey) check(proof *ProofArtifact) error {
	if proof.ProgramID != self.ProgramID {
		return errors.Wrapf(ErrProgramMismatch, "proof is for %s, key is for %s", proof.ProgramID, self.ProgramID)
	}
	if self.PublicKey.IsInfinity() || !self.PublicKey.IsInSubGroup() {
		return ErrInvalidKey
	}
	if proof.Signature.IsInfinity() || !proof.Signature.IsInSubGroup() {
		return ErrBadSignature
	}
	h, err := bls12381.HashToG2(attestationMessage(proof.ProgramID, proof.PublicValues), attestationDST)
	if err != nil {
		return err
	}
	_, _, g1, _ := bls12381.Generators()
	var neg_g1 bls12381.G1Affine
	neg_g1.Neg(&g1)
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{self.PublicKey, neg_g1},
		[]bls12381.G2Affine{h, proof.Signature},
	)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}

func (self *VerifyingKey) EncodeRLP(w io.Writer) error {
	pk := self.PublicKey.Bytes()
	return rlp.Encode(w, &verifyingKeyRLP{self.ProgramID, pk[:]})
}

func (self *VerifyingKey) DecodeRLP(s *rlp.Stream) error {
	var enc verifyingKeyRLP
	if err := s.Decode(&enc); err != nil {
		return err
	}
	if _, err := self.PublicKey.SetBytes(enc.PublicKey); err != nil {
		return errors.Wrap(ErrInvalidKey, err.Error())
	}
	self.ProgramID = enc.ProgramID
	return nil
}

func (self *ProofArtifact) EncodeRLP(w io.Writer) error {
	sig := self.Signature.Bytes()
	return rlp.Encode(w, &proofArtifactRLP{self.ProgramID, self.PublicValues, sig[:], self.Session})
}

func (self *ProofArtifact) DecodeRLP(s *rlp.Stream) error {
	var enc proofArtifactRLP
	if err := s.Decode(&enc); err != nil {
		return err
	}
	if _, err := self.Signature.SetBytes(enc.Signature); err != nil {
		return errors.Wrap(ErrBadSignature, err.Error())
	}
	self.ProgramID, self.PublicValues, self.Session = enc.ProgramID, enc.PublicValues, enc.Session
	return nil
}

func EncodeVerifyingKey(vk *VerifyingKey) ([]byte, error) { return rlp.EncodeToBytes(vk) }
func EncodeProof(p *ProofArtifact) ([]byte, error)       { return rlp.EncodeToBytes(p) }

func DecodeVerifyingKey(b []byte) (*VerifyingKey, error) {
	ret := new(VerifyingKey)
	return ret, rlp.DecodeBytes(b, ret)
}

func DecodeProof(b []byte) (*ProofArtifact, error) {
	ret := new(ProofArtifact)
	return ret, rlp.DecodeBytes(b, ret)
}
