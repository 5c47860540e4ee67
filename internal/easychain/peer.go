// Package easychain implements the easy-chain peer (spec C6): a
// single-branch mirror of the hard chain engine, minus fork handling,
// that additionally stamps the hard-canonical tip's digest onto its own
// blocks as they are confirmed. This is the cross-reference the pool
// rotation logic outside this module's scope relies on.
//
// Grounded on the same RWMutex-guarded-state shape as internal/
// chainengine, trimmed to the linear case.
package easychain

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/digest"
)

// ErrorCode identifies why Append rejected a block.
type ErrorCode string

const (
	NoParentHash   ErrorCode = "NO_PARENT_HASH"
	WrongParent    ErrorCode = "WRONG_PARENT"
	BadHeight      ErrorCode = "BAD_HEIGHT"
	AlreadyInChain ErrorCode = "ALREADY_IN_CHAIN"
)

// ChainErr is Peer's error type, mirroring chainengine.ChainErr's shape.
type ChainErr struct {
	Code ErrorCode
	Msg  string
}

func (e *ChainErr) Error() string {
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func chainerr(code ErrorCode, msg string) error {
	return &ChainErr{Code: code, Msg: msg}
}

// Peer is the easy chain's single-branch engine.
type Peer struct {
	mu     sync.RWMutex
	digest digest.Provider
	store  *blockstore.Store
	log    *logrus.Entry

	genesis *block.Block
	tip     *block.Block
	height  uint64
}

// New constructs a Peer, bootstrapping genesis if the store is empty.
func New(p digest.Provider, store *blockstore.Store, log *logrus.Entry) (*Peer, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	peer := &Peer{
		digest:  p,
		store:   store,
		log:     log.WithField("component", "easychain"),
		genesis: block.Genesis(p),
	}

	tipHash, ok, err := store.CanonicalTip()
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := store.WriteBatch([]blockstore.BlockOp{{Block: peer.genesis}}, peer.genesis, 0, true); err != nil {
			return nil, err
		}
		peer.tip = peer.genesis
		peer.height = 0
		return peer, nil
	}

	tip, ok, err := store.GetBlock(tipHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("easychain: tip %x missing body", tipHash)
	}
	height, _, err := store.CanonicalHeight()
	if err != nil {
		return nil, err
	}
	peer.tip = tip
	peer.height = height
	return peer, nil
}

// Height returns the current tip height.
func (p *Peer) Height() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.height
}

// CanonicalTip returns the current tip.
func (p *Peer) CanonicalTip() *block.Block {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tip
}

// Query resolves a block by hash directly from the store.
func (p *Peer) Query(hash block.Hash) (*block.Block, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.GetBlock(hash)
}

// Append extends the single easy-chain branch. There is no orphan pool
// and no fork handling: a block whose parent is not the current tip is
// rejected outright.
func (p *Peer) Append(b *block.Block) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !b.HasParent {
		return chainerr(NoParentHash, "block has no parent hash")
	}
	if _, ok, err := p.store.GetBlock(b.Hash); err != nil {
		return err
	} else if ok {
		return chainerr(AlreadyInChain, "already on the easy chain")
	}
	if b.ParentHash != p.tip.Hash {
		return chainerr(WrongParent, "parent is not the current tip")
	}
	if b.Height != p.height+1 {
		return chainerr(BadHeight, "must extend tip by exactly one")
	}

	if err := p.store.WriteBatch([]blockstore.BlockOp{{Block: b}}, b, b.Height, true); err != nil {
		return err
	}
	p.tip = b
	p.height = b.Height
	return nil
}

// SetHardCanonicalTip implements chainengine.EasyChainNotifier: it
// stamps hardTip's digest against the easy chain's current block as the
// cross-reference the hard chain relies on when it confirms a new tip.
// The easy block itself is never rewritten -- blocks are immutable once
// sealed -- the stamp lives in a side entry keyed on the easy hash.
func (p *Peer) SetHardCanonicalTip(hardTip block.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.store.SetEasyCrossRef(p.tip.Hash, hardTip)
}

// HardCrossRef returns the hard tip digest stamped against hash, if any.
func (p *Peer) HardCrossRef(hash block.Hash) (block.Hash, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.store.EasyCrossRef(hash)
}
