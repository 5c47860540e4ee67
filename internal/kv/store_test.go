package kv

import (
	"path/filepath"
	"testing"

	"github.com/hardchain-labs/node/internal/digest"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetPutDelete(t *testing.T) {
	s := openTestStore(t)
	var k Key
	k[0] = 1

	_, ok, err := s.Get(k)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Emplace(k, []byte("hello")))
	v, ok, err := s.Get(k)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), v)

	require.NoError(t, s.Delete(k))
	_, ok, err = s.Get(k)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBatchAppliesEveryOp(t *testing.T) {
	s := openTestStore(t)
	var k1, k2 Key
	k1[0], k2[0] = 1, 2

	err := s.Batch([]Op{
		{Key: k1, Value: []byte("a")},
		{Key: k2, Value: []byte("b")},
	})
	require.NoError(t, err)

	v1, ok, _ := s.Get(k1)
	require.True(t, ok)
	require.Equal(t, []byte("a"), v1)
	v2, ok, _ := s.Get(k2)
	require.True(t, ok)
	require.Equal(t, []byte("b"), v2)
}

func TestHeightEncodeDecodeRoundTrip(t *testing.T) {
	b := EncodeHeight(42)
	h, err := DecodeHeight(b)
	require.NoError(t, err)
	require.Equal(t, uint64(42), h)

	_, err = DecodeHeight([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestWellKnownKeysDistinctFromHeightIndex(t *testing.T) {
	p := digest.DevProvider{}
	tip := CanonicalTipKey(p)
	height := CanonicalHeightKey(p)
	var blockHash [32]byte
	blockHash[0] = 0xAA
	idx := HeightIndexKey(p, blockHash)

	require.NotEqual(t, tip, height)
	require.NotEqual(t, tip, idx)
	require.NotEqual(t, height, idx)
}
