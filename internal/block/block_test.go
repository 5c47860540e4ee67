package block

import (
	"testing"
	"time"

	"github.com/hardchain-labs/node/internal/digest"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	p := digest.DevProvider{}
	parent := Genesis(p)

	b := New(parent.Hash, true, 1, Hash{0xAB}, time.Now().UTC())
	b.Seal(p)

	raw := b.ToBytes()
	decoded, err := FromBytes(raw, b.Hash)
	require.NoError(t, err)
	require.Equal(t, b.ParentHash, decoded.ParentHash)
	require.Equal(t, b.Height, decoded.Height)
	require.Equal(t, b.MerkleRoot, decoded.MerkleRoot)
	require.Equal(t, b.Hash, Hash(p.Sum256(decoded.ToBytes())))
}

func TestGenesisIsStableSingleton(t *testing.T) {
	p := digest.DevProvider{}
	g1 := Genesis(p)
	g2 := Genesis(p)
	require.Same(t, g1, g2)
	require.False(t, g1.HasParent)
	require.Equal(t, uint64(0), g1.Height)
}

func TestCrossRefRoundTrips(t *testing.T) {
	p := digest.DevProvider{}
	var ref Hash
	ref[0] = 0x42
	b := New(Hash{}, true, 3, Hash{}, time.Now().UTC()).WithCrossRef(ref)
	b.Seal(p)

	decoded, err := FromBytes(b.ToBytes(), b.Hash)
	require.NoError(t, err)
	require.True(t, decoded.HasCrossRef)
	require.Equal(t, ref, decoded.CrossRef)
}
