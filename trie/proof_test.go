package trie

import (
	"math/rand"
	"testing"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/util/keccak256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomTrie(t *testing.T, rnd *rand.Rand, n int) (*Trie, map[string][]byte) {
	tr := newEmpty(t, HashedKeys{})
	vals := make(map[string][]byte)
	for i := 0; i < n; i++ {
		k, v := randomBytes(rnd, 8), randomBytes(rnd, 1+rnd.Intn(40))
		vals[string(k)] = v
		require.NoError(t, tr.Insert(k, v))
	}
	return tr, vals
}

func TestProveMembership(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	tr, vals := randomTrie(t, rnd, 500)
	root := tr.Hash()
	for k, v := range vals {
		witness, err := tr.Prove([]byte(k))
		require.NoError(t, err)
		require.NotEmpty(t, witness)

		wt, wdb, err := NewWitnessTrie(root, witness, HashedKeys{})
		require.NoError(t, err)
		have, err := wt.Get([]byte(k))
		require.NoError(t, err)
		assert.Equal(t, v, have)
		assert.Empty(t, wdb.Unused())
	}
}

func TestProveNonMembership(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	tr, _ := randomTrie(t, rnd, 500)
	root := tr.Hash()
	for i := 0; i < 100; i++ {
		k := randomBytes(rnd, 9)
		witness, err := tr.Prove(k)
		require.NoError(t, err)

		wt, wdb, err := NewWitnessTrie(root, witness, HashedKeys{})
		require.NoError(t, err)
		have, err := wt.Get(k)
		require.NoError(t, err)
		assert.Nil(t, have)
		assert.Empty(t, wdb.Unused())
	}
}

// Inserting into a witness trie must land on the same root as inserting into
// the full trie, which is what makes a witness a replayable proof.
func TestWitnessReplay(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	tr, vals := randomTrie(t, rnd, 300)
	var existing [][]byte
	for k := range vals {
		existing = append(existing, []byte(k))
	}
	for i := 0; i < 200; i++ {
		var k []byte
		if i%2 == 0 {
			k = existing[rnd.Intn(len(existing))]
		} else {
			k = randomBytes(rnd, 8)
		}
		v := randomBytes(rnd, 1+rnd.Intn(40))

		prior := tr.Hash()
		witness, err := tr.Prove(k)
		require.NoError(t, err)
		require.NoError(t, tr.Insert(k, v))

		wt, _, err := NewWitnessTrie(prior, witness, HashedKeys{})
		require.NoError(t, err)
		_, err = wt.Get(k)
		require.NoError(t, err)
		require.NoError(t, wt.Insert(k, v))
		if have, want := wt.Hash(), tr.Hash(); have != want {
			t.Fatalf("step %d: witness replay root mismatch: have %s, want %s", i, have, want)
		}
	}
}

func TestWitnessFromEmptyTrie(t *testing.T) {
	tr := newEmpty(t, HashedKeys{})
	witness, err := tr.Prove([]byte("first"))
	require.NoError(t, err)
	assert.Empty(t, witness)

	wt, _, err := NewWitnessTrie(common.EmptyRoot, witness, HashedKeys{})
	require.NoError(t, err)
	require.NoError(t, wt.Insert([]byte("first"), []byte("v")))
	require.NoError(t, tr.Insert([]byte("first"), []byte("v")))
	assert.Equal(t, tr.Hash(), wt.Hash())
}

func TestWitnessOffPath(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	tr, vals := randomTrie(t, rnd, 500)
	root := tr.Hash()
	witness, err := tr.Prove([]byte("proved"))
	require.NoError(t, err)

	missing := 0
	for k, v := range vals {
		wt, _, err := NewWitnessTrie(root, witness, HashedKeys{})
		require.NoError(t, err)
		have, err := wt.Get([]byte(k))
		if err != nil {
			assert.IsType(t, new(MissingNodeError), err)
			missing++
			continue
		}
		// whatever the witness does cover has to be right
		assert.Equal(t, v, have)
	}
	assert.NotZero(t, missing)
}

func TestWitnessUnusedNodes(t *testing.T) {
	rnd := rand.New(rand.NewSource(6))
	tr, _ := randomTrie(t, rnd, 100)
	root := tr.Hash()
	w1, err := tr.Prove([]byte("a"))
	require.NoError(t, err)
	w2, err := tr.Prove([]byte("b"))
	require.NoError(t, err)

	wt, wdb, err := NewWitnessTrie(root, append(w1, w2...), HashedKeys{})
	require.NoError(t, err)
	_, err = wt.Get([]byte("a"))
	require.NoError(t, err)
	assert.NotEmpty(t, wdb.Unused())
	assert.Error(t, wdb.Put([]byte{1}, []byte{1}))
}

func TestWitnessGarbage(t *testing.T) {
	garbage := [][]byte{
		{0xc0},
		{0xc1, 0x80},
		{0xc2, 0x80, 0x80},
		{0xf8, 0x02},
		{0xc3, 0x82, 0x20},
		{0x01, 0x02, 0x03},
	}
	for _, enc := range garbage {
		root := keccak256.Hash(enc)
		_, _, err := NewWitnessTrie(root, [][]byte{enc}, HashedKeys{})
		assert.Error(t, err, "%x", enc)
	}
}

func TestWitnessWrongRoot(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	tr, _ := randomTrie(t, rnd, 50)
	witness, err := tr.Prove([]byte("k"))
	require.NoError(t, err)
	_, _, err = NewWitnessTrie(common.BytesToDigest([]byte{1}), witness, HashedKeys{})
	assert.IsType(t, new(MissingNodeError), err)
}
