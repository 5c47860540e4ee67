package branchregistry

import (
	"testing"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/stretchr/testify/require"
)

func TestInsertTracksTipState(t *testing.T) {
	r := New()
	parent := block.Hash{0x1}
	tip := block.Hash{0x2}

	r.Insert(parent, tip, TipState{Extra: []byte("w")})
	require.True(t, r.Has(parent))
	d, ok := r.descriptor(parent)
	require.True(t, ok)
	require.Contains(t, d.Tips, tip)
	require.Equal(t, []byte("w"), d.Tips[tip].Extra)
}

func TestInsertMergesSecondTipUnderSameParent(t *testing.T) {
	r := New()
	parent := block.Hash{0x1}
	tipA, tipB := block.Hash{0x2}, block.Hash{0x3}

	r.Insert(parent, tipA, TipState{})
	r.Insert(parent, tipB, TipState{})

	d, ok := r.descriptor(parent)
	require.True(t, ok)
	require.Len(t, d.Tips, 2)
}

func TestRemoveTipDropsEmptyDescriptor(t *testing.T) {
	r := New()
	parent := block.Hash{0x1}
	tip := block.Hash{0x2}

	r.Insert(parent, tip, TipState{})
	r.RemoveTip(parent, tip)
	require.False(t, r.Has(parent))
}

func TestRemoveTipKeepsDescriptorWithRemainingTips(t *testing.T) {
	r := New()
	parent := block.Hash{0x1}
	tipA, tipB := block.Hash{0x2}, block.Hash{0x3}

	r.Insert(parent, tipA, TipState{})
	r.Insert(parent, tipB, TipState{})
	r.RemoveTip(parent, tipA)

	d, ok := r.descriptor(parent)
	require.True(t, ok)
	require.Len(t, d.Tips, 1)
	require.Contains(t, d.Tips, tipB)
}

func TestDeleteDropsDescriptor(t *testing.T) {
	r := New()
	parent := block.Hash{0x1}
	r.Insert(parent, block.Hash{0x2}, TipState{})
	r.Delete(parent)
	require.False(t, r.Has(parent))
}
