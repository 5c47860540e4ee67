package chainengine

import (
	"fmt"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockstore"
)

// plan is the fully-computed outcome of one append_block call, built
// without mutating e's in-memory state. Committing it is the only step
// allowed to mutate state, which is what makes a failed append leave
// (canonical_tip, height, orphan_pool, tip_sets) untouched (spec §7,
// testable property 5).
type plan struct {
	writes    []blockstore.BlockOp
	demote    []block.Hash
	demoteAt  []uint64
	newTip    *block.Block
	newHeight uint64
	setTip    bool
	isReorg   bool
	notify    bool
	mutate    func(e *Engine)
}

// commit applies p: the easy-chain stamp first (a best-effort side
// effect that, on failure, aborts before anything is persisted or
// mutated, per spec §5), then the store batch, then the in-memory
// mutation.
func (e *Engine) commit(p plan) error {
	if p.notify && e.easy != nil {
		if err := e.easy.SetHardCanonicalTip(p.newTip.Hash); err != nil {
			return chainerr(StoreFault, fmt.Sprintf("easy chain stamp: %v", err))
		}
	}

	if p.isReorg {
		if err := e.store.ApplyReorg(p.writes, p.demote, p.demoteAt, p.newTip, p.newHeight); err != nil {
			return chainerr(StoreFault, err.Error())
		}
	} else if len(p.writes) > 0 || p.setTip {
		if err := e.store.WriteBatch(p.writes, p.newTip, p.newHeight, p.setTip); err != nil {
			return chainerr(StoreFault, err.Error())
		}
	}

	if p.mutate != nil {
		p.mutate(e)
	}
	if p.setTip {
		e.tip = p.newTip
		e.height = p.newHeight
		e.cache.Put(p.newTip)
	}
	return nil
}
