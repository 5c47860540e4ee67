package chainengine

import (
	"fmt"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/branchregistry"
	"github.com/hardchain-labs/node/internal/orphanpool"
)

// AppendBlock runs admission, classifies the block's placement, and
// commits the resulting plan. A rejected block never mutates state
// (spec §7, testable property 5): every admission failure returns
// before any plan is built.
func (e *Engine) AppendBlock(b *block.Block) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !b.HasParent {
		return chainerr(NoParentHash, "block has no parent hash")
	}

	min := uint64(1)
	if e.height > e.cfg.MinHeight {
		min = e.height - e.cfg.MinHeight
	}
	max := e.height + e.cfg.MaxHeight
	if b.Height < min || b.Height > max {
		return chainerr(BadHeight, fmt.Sprintf("height %d outside [%d,%d]", b.Height, min, max))
	}

	if e.pool.Contains(b.Hash) {
		return chainerr(AlreadyInChain, "already in orphan pool")
	}
	if _, onDisk, err := e.store.BlockHeight(b.Hash); err != nil {
		return err
	} else if onDisk {
		return chainerr(AlreadyInChain, "already in store")
	}

	loc, err := e.resolveParent(b.ParentHash)
	if err != nil {
		return err
	}

	var p plan
	switch loc.kind {
	case parentIsCanonicalTip:
		p, err = e.placeOnTip(b)
	case parentIsCanonicalPoolTip:
		p, err = e.placeOnCanonicalPoolTip(b, loc)
	case parentIsPendingPoolTip:
		p, err = e.placeOnPendingPoolTip(b, loc)
	case parentOnDiskNonTip:
		p, err = e.placeOnDiskNonTip(b, loc)
	case parentInPoolNonTip:
		p, err = e.placeOnPoolNonTip(b, loc)
	default:
		p, err = e.placeUnknownParent(b)
	}
	if err != nil {
		return err
	}
	return e.commit(p)
}

// (a) parent == canonical tip.
func (e *Engine) placeOnTip(b *block.Block) (plan, error) {
	if b.Height != e.height+1 {
		return plan{}, chainerr(BadHeight, "must extend tip by exactly one")
	}
	if e.reg.Has(b.Hash) {
		return e.buildSplice(b), nil
	}
	return plan{
		writes:    []blockstore.BlockOp{{Block: b}},
		newTip:    b,
		newHeight: b.Height,
		setTip:    true,
		notify:    true,
	}, nil
}

// (b) parent is an orphan-pool CanonicalTip.
func (e *Engine) placeOnCanonicalPoolTip(b *block.Block, loc parentLocation) (plan, error) {
	parent := loc.record.Block
	if b.Height != parent.Height+1 {
		return plan{}, chainerr(BadHeight, "must extend parent by exactly one")
	}
	if e.pool.Full() {
		return plan{}, chainerr(PoolFull, "orphan pool at capacity")
	}

	qualifies, forkHash, forkHeight, err := e.reorgQualifies(b)
	if err != nil {
		return plan{}, err
	}
	if qualifies {
		return e.buildReorg(b, forkHash, forkHeight)
	}

	parentHash := parent.Hash
	return plan{
		mutate: func(e *Engine) {
			e.pool.SetType(parentHash, orphanpool.CanonicalNonTip)
			_ = e.pool.Insert(b, orphanpool.CanonicalTip)
		},
	}, nil
}

// (c) parent is an orphan-pool pending tip (PendingTip or PendingTipHead).
func (e *Engine) placeOnPendingPoolTip(b *block.Block, loc parentLocation) (plan, error) {
	parent := loc.record.Block
	if b.Height != parent.Height+1 {
		return plan{}, chainerr(BadHeight, "must extend parent by exactly one")
	}
	if e.pool.Full() {
		return plan{}, chainerr(PoolFull, "orphan pool at capacity")
	}

	parentHash := parent.Hash
	parentNewType := orphanpool.PendingNonTip
	if loc.record.Type == orphanpool.PendingTipHead {
		parentNewType = orphanpool.PendingHead
	}
	hasWaiters := e.reg.Has(b.Hash)
	class := orphanpool.PendingTip
	if hasWaiters {
		class = orphanpool.PendingNonTip
	}

	return plan{
		mutate: func(e *Engine) {
			e.pool.SetType(parentHash, parentNewType)
			if hasWaiters {
				e.relabelWaitingChildren(b.Hash)
			}
			_ = e.pool.Insert(b, class)
		},
	}, nil
}

// (d) block.hash is itself a missing-parent key in the branch registry.
func (e *Engine) placeAsResolvedHead(b *block.Block) (plan, error) {
	if e.pool.Full() {
		return plan{}, chainerr(PoolFull, "orphan pool at capacity")
	}

	parentIsPendingTip := e.pool.IsPendingTip(b.ParentHash)
	var oldTipRecord orphanpool.Record
	if parentIsPendingTip {
		oldTipRecord, _ = e.pool.Get(b.ParentHash)
	}

	return plan{
		mutate: func(e *Engine) {
			e.relabelWaitingChildren(b.Hash)
			if parentIsPendingTip {
				e.pool.SetType(oldTipRecord.Block.Hash, orphanpool.PendingNonTip)
				_ = e.pool.Insert(b, orphanpool.PendingNonTip)
				return
			}
			_ = e.pool.Insert(b, orphanpool.PendingHead)
			e.reg.Insert(b.ParentHash, b.Hash, branchregistry.TipState{})
		},
	}, nil
}

// (e) parent resolves on disk but is not the canonical tip.
func (e *Engine) placeOnDiskNonTip(b *block.Block, loc parentLocation) (plan, error) {
	if b.Height != loc.height+1 {
		return plan{}, chainerr(BadHeight, "must extend parent by exactly one")
	}
	if e.pool.Full() {
		return plan{}, chainerr(PoolFull, "orphan pool at capacity")
	}

	qualifies, forkHash, forkHeight, err := e.reorgQualifies(b)
	if err != nil {
		return plan{}, err
	}
	if qualifies {
		return e.buildReorg(b, forkHash, forkHeight)
	}

	return plan{
		mutate: func(e *Engine) {
			_ = e.pool.Insert(b, orphanpool.CanonicalTip)
		},
	}, nil
}

// (f) parent is in the orphan pool in a non-tip classification.
func (e *Engine) placeOnPoolNonTip(b *block.Block, loc parentLocation) (plan, error) {
	parent := loc.record.Block
	if b.Height != parent.Height+1 {
		return plan{}, chainerr(BadHeight, "must extend parent by exactly one")
	}
	if e.pool.Full() {
		return plan{}, chainerr(PoolFull, "orphan pool at capacity")
	}

	var class orphanpool.Classification
	switch loc.record.Type {
	case orphanpool.PendingNonTip, orphanpool.PendingHead:
		class = orphanpool.PendingTip
	case orphanpool.CanonicalNonTip:
		class = orphanpool.CanonicalTip
	default:
		invariantf("parent %x classified %s is a tip during non-tip placement", parent.Hash, loc.record.Type)
	}

	return plan{
		mutate: func(e *Engine) {
			_ = e.pool.Insert(b, class)
		},
	}, nil
}

// (g) parent unknown anywhere, and block.hash is not a key any pending
// head is waiting on.
func (e *Engine) placeUnknownParent(b *block.Block) (plan, error) {
	if e.reg.Has(b.Hash) {
		return e.placeAsResolvedHead(b)
	}
	if e.pool.Full() {
		return plan{}, chainerr(PoolFull, "orphan pool at capacity")
	}
	return plan{
		mutate: func(e *Engine) {
			_ = e.pool.Insert(b, orphanpool.PendingTipHead)
			e.reg.Insert(b.ParentHash, b.Hash, branchregistry.TipState{})
		},
	}, nil
}

// relabelWaitingChildren attaches every pool block blocked on hash as
// hash's direct children, now that hash itself has been placed, and
// retires the registry entry that tracked them (spec §4.1 cases (c),(d)).
func (e *Engine) relabelWaitingChildren(hash block.Hash) {
	for _, child := range e.pool.Children(hash) {
		switch child.Type {
		case orphanpool.PendingTipHead:
			e.pool.SetType(child.Block.Hash, orphanpool.PendingTip)
		case orphanpool.PendingHead:
			e.pool.SetType(child.Block.Hash, orphanpool.PendingNonTip)
		default:
			invariantf("waiting child %x has non-head classification %s", child.Block.Hash, child.Type)
		}
	}
	e.reg.Delete(hash)
}
