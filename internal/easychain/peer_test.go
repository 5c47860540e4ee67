package easychain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/digest"
	"github.com/hardchain-labs/node/internal/kv"
	"github.com/stretchr/testify/require"
)

func newTestPeer(t *testing.T) (*Peer, digest.Provider) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "easy.db")
	raw, err := kv.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	p := digest.DevProvider{}
	store := blockstore.New(raw, p)
	peer, err := New(p, store, nil)
	require.NoError(t, err)
	return peer, p
}

func TestNewBootstrapsGenesis(t *testing.T) {
	peer, p := newTestPeer(t)
	require.Equal(t, uint64(0), peer.Height())
	require.Equal(t, block.Genesis(p).Hash, peer.CanonicalTip().Hash)
}

func TestAppendExtendsLinearly(t *testing.T) {
	peer, p := newTestPeer(t)
	genesis := peer.CanonicalTip()
	b1 := block.New(genesis.Hash, true, 1, block.Hash{0x1}, time.Unix(1, 0)).Seal(p)

	require.NoError(t, peer.Append(b1))
	require.Equal(t, uint64(1), peer.Height())
	require.Equal(t, b1.Hash, peer.CanonicalTip().Hash)
}

func TestAppendRejectsWrongParent(t *testing.T) {
	peer, p := newTestPeer(t)
	stray := block.New(block.Hash{0x99}, true, 1, block.Hash{0x1}, time.Unix(1, 0)).Seal(p)

	err := peer.Append(stray)
	var chainErr *ChainErr
	require.ErrorAs(t, err, &chainErr)
	require.Equal(t, WrongParent, chainErr.Code)
}

func TestAppendRejectsBadHeight(t *testing.T) {
	peer, p := newTestPeer(t)
	genesis := peer.CanonicalTip()
	b := block.New(genesis.Hash, true, 5, block.Hash{0x1}, time.Unix(1, 0)).Seal(p)

	err := peer.Append(b)
	var chainErr *ChainErr
	require.ErrorAs(t, err, &chainErr)
	require.Equal(t, BadHeight, chainErr.Code)
}

func TestSetHardCanonicalTipStampsCurrentTipWithoutChangingItsHash(t *testing.T) {
	peer, _ := newTestPeer(t)
	tipBefore := peer.CanonicalTip().Hash

	hardTip := block.Hash{0xAB}
	require.NoError(t, peer.SetHardCanonicalTip(hardTip))

	require.Equal(t, tipBefore, peer.CanonicalTip().Hash)
	got, ok, err := peer.HardCrossRef(tipBefore)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, hardTip, got)
}
