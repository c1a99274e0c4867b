package tree

import (
	"math/rand"
	"testing"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T, seed int64, n int) (*State, [][]byte) {
	state := NewState(nil)
	var keys [][]byte
	runOps(t, state, rand.New(rand.NewSource(seed)), &keys, n, 0)
	return state, keys
}

func TestVerifyWrongPrior(t *testing.T) {
	state, keys := populated(t, 21, 40)
	p, err := state.Update(keys[3], []byte("x"))
	require.NoError(t, err)

	_, err = Verify(p, p.NewRoot)
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))
	_, err = Verify(p, common.Digest{})
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))

	// a proof that claims the right prior but carries another tree's path
	other, otherKeys := populated(t, 22, 40)
	q, err := other.Update(otherKeys[0], []byte("y"))
	require.NoError(t, err)
	q.OldRoot = p.OldRoot
	_, err = Verify(q, p.OldRoot)
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))
}

func TestVerifyKeyMismatch(t *testing.T) {
	state, keys := populated(t, 23, 40)
	u, err := state.Update(keys[5], []byte("new"))
	require.NoError(t, err)

	// an insert of a key the witness shows to be present
	forged := &InsertProof{
		OldRoot: u.OldRoot,
		NewRoot: u.NewRoot,
		Key:     u.Key,
		Value:   u.NewValue,
		Witness: u.Witness,
	}
	_, err = Verify(forged, u.OldRoot)
	assert.Equal(t, ErrProofKeyMismatch, errors.Cause(err), spew.Sdump(forged))

	i, err := state.Insert([]byte("fresh"), []byte("v"))
	require.NoError(t, err)
	// an update of a key the witness shows to be absent
	forgedUpdate := &UpdateProof{
		OldRoot:  i.OldRoot,
		NewRoot:  i.NewRoot,
		Key:      i.Key,
		OldValue: []byte("v"),
		NewValue: i.Value,
		Witness:  i.Witness,
	}
	_, err = Verify(forgedUpdate, i.OldRoot)
	assert.Equal(t, ErrProofKeyMismatch, errors.Cause(err), spew.Sdump(forgedUpdate))
}

func TestVerifyValueMismatch(t *testing.T) {
	state, keys := populated(t, 24, 40)
	u, err := state.Update(keys[7], []byte("new"))
	require.NoError(t, err)
	u.OldValue = append(u.OldValue, 0)
	_, err = Verify(u, u.OldRoot)
	assert.Equal(t, ErrProofValueMismatch, errors.Cause(err))
}

func TestVerifyClaimedRoot(t *testing.T) {
	state, _ := populated(t, 25, 40)
	p, err := state.Insert([]byte("k"), []byte("v"))
	require.NoError(t, err)
	p.Value = []byte("w")
	_, err = Verify(p, p.OldRoot)
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))
}

func TestVerifyExtraWitnessNodes(t *testing.T) {
	state, keys := populated(t, 26, 200)
	p, err := state.Update(keys[0], []byte("v"))
	require.NoError(t, err)
	q, err := state.Update(keys[1], []byte("w"))
	require.NoError(t, err)

	padded := *q
	padded.Witness = append(append([][]byte{}, q.Witness...), p.Witness[len(p.Witness)-1])
	_, err = Verify(&padded, q.OldRoot)
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))

	duplicated := *q
	duplicated.Witness = append(append([][]byte{}, q.Witness...), q.Witness[0])
	_, err = Verify(&duplicated, q.OldRoot)
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))
}

func TestVerifyNil(t *testing.T) {
	_, err := Verify(nil, common.EmptyRoot)
	assert.Equal(t, ErrInvalidProof, errors.Cause(err))
}
