package trie

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Taraxa-project/taraxa-authdict/common"
	"github.com/Taraxa-project/taraxa-authdict/ethdb"
	"github.com/Taraxa-project/taraxa-authdict/util/keccak256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmpty(t *testing.T, strat StorageStrategy) *Trie {
	tr, err := New(common.Digest{}, ethdb.NewMemDatabase(), strat)
	require.NoError(t, err)
	return tr
}

func randomBytes(rnd *rand.Rand, n int) []byte {
	ret := make([]byte, n)
	rnd.Read(ret)
	return ret
}

func TestEmptyTrie(t *testing.T) {
	tr := newEmpty(t, nil)
	assert.True(t, tr.Empty())
	if res, exp := tr.Hash(), common.EmptyRoot; res != exp {
		t.Errorf("expected %s got %s", exp, res)
	}
	assert.Equal(t, common.EmptyRoot, keccak256.Hash([]byte{0x80}))
}

func TestInsert(t *testing.T) {
	tr := newEmpty(t, PlainKeys{})
	require.NoError(t, tr.Insert([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("dogglesworth"), []byte("cat")))

	exp := common.MustHexToDigest("8aad789dff2f538bca5d8ea56e8abe10f4c7ba3a5dea95fea4cd6e7c3a1168d3")
	if root := tr.Hash(); root != exp {
		t.Errorf("case 1: exp %s got %s", exp, root)
	}

	tr = newEmpty(t, PlainKeys{})
	require.NoError(t, tr.Insert([]byte("A"), []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")))

	exp = common.MustHexToDigest("d23786fb4a010da3ce639d66d5e904a11dbc02746d1ce25029e53290cabf28ab")
	root, err := tr.Commit()
	require.NoError(t, err)
	if root != exp {
		t.Errorf("case 2: exp %s got %s", exp, root)
	}
}

func TestGet(t *testing.T) {
	tr := newEmpty(t, PlainKeys{})
	require.NoError(t, tr.Insert([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	require.NoError(t, tr.Insert([]byte("dogglesworth"), []byte("cat")))

	for i := 0; i < 2; i++ {
		res, err := tr.Get([]byte("dog"))
		require.NoError(t, err)
		if !bytes.Equal(res, []byte("puppy")) {
			t.Errorf("expected puppy got %x", res)
		}
		unknown, err := tr.Get([]byte("unknown"))
		require.NoError(t, err)
		if unknown != nil {
			t.Errorf("expected nil got %x", unknown)
		}
		if i == 1 {
			return
		}
		_, err = tr.Commit()
		require.NoError(t, err)
	}
}

func TestReplace(t *testing.T) {
	tr := newEmpty(t, HashedKeys{})
	require.NoError(t, tr.Insert([]byte("k"), []byte("v1")))
	before := tr.Hash()
	require.NoError(t, tr.Insert([]byte("k"), []byte("v2")))
	assert.NotEqual(t, before, tr.Hash())
	v, err := tr.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, tr.Insert([]byte("k"), []byte("v1")))
	assert.Equal(t, before, tr.Hash())

	assert.Equal(t, ErrEmptyValue, tr.Insert([]byte("k"), nil))
}

func TestOrder(t *testing.T) {
	rnd := rand.New(rand.NewSource(0))
	var keys [20][]byte
	for i := range keys {
		keys[i] = randomBytes(rnd, 1+rnd.Intn(40))
	}
	var expected common.Digest
	for i := 0; i < 10; i++ {
		tr := newEmpty(t, PlainKeys{})
		for _, j := range rnd.Perm(len(keys)) {
			require.NoError(t, tr.Insert(keys[j], keys[j]))
		}
		root := tr.Hash()
		if i == 0 {
			expected = root
		} else if root != expected {
			t.Fatalf("insertion order changed the root: have %s, want %s", root, expected)
		}
	}
}

func TestCommitAndReopen(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	db := ethdb.NewMemDatabase()
	tr, err := New(common.Digest{}, db, HashedKeys{})
	require.NoError(t, err)
	vals := make(map[string][]byte)
	for i := 0; i < 200; i++ {
		k, v := randomBytes(rnd, 20), randomBytes(rnd, 1+rnd.Intn(64))
		vals[string(k)] = v
		require.NoError(t, tr.Insert(k, v))
	}
	root, err := tr.Commit()
	require.NoError(t, err)
	assert.Equal(t, tr.Hash(), root)
	assert.NotZero(t, db.Len())

	reopened, err := New(root, db, HashedKeys{})
	require.NoError(t, err)
	for k, v := range vals {
		have, err := reopened.Get([]byte(k))
		require.NoError(t, err)
		assert.Equal(t, v, have)
	}
	assert.Equal(t, root, reopened.Hash())

	// writes on the reopened trie resolve what they need from the database
	require.NoError(t, reopened.Insert([]byte("fresh"), []byte("value")))
	require.NoError(t, tr.Insert([]byte("fresh"), []byte("value")))
	assert.Equal(t, tr.Hash(), reopened.Hash())

	_, err = New(common.Digest{1}, db, HashedKeys{})
	assert.IsType(t, new(MissingNodeError), err)
}

func TestDot(t *testing.T) {
	tr := newEmpty(t, PlainKeys{})
	assert.Contains(t, tr.Dot().String(), "empty")
	require.NoError(t, tr.Insert([]byte("doe"), []byte("reindeer")))
	require.NoError(t, tr.Insert([]byte("dog"), []byte("puppy")))
	g := tr.Dot().String()
	assert.Contains(t, g, "full")
	assert.Contains(t, g, fmt.Sprintf("short %x", []byte{6, 4, 6, 15, 6}))
}
