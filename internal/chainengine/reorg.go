package chainengine

import (
	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/orphanpool"
)

// forkPoint walks backward from tip through ancestors already known to
// the pool until it reaches one resolved on disk -- the nearest common
// ancestor with the canonical branch. By invariant 2, every pool
// ancestor below that point must itself be in the pool; a missing link
// is a structural corruption.
func (e *Engine) forkPoint(tip *block.Block) (hash block.Hash, height uint64, err error) {
	cur := tip
	for {
		parent := cur.ParentHash
		h, ok, ferr := e.store.BlockHeight(parent)
		if ferr != nil {
			return block.Hash{}, 0, ferr
		}
		if ok {
			return parent, h, nil
		}
		rec, ok := e.pool.Get(parent)
		if !ok {
			invariantf("broken ancestor chain walking back from %x at %x", tip.Hash, parent)
		}
		cur = rec.Block
	}
}

// reorgQualifies reports whether tip's branch, measured from its fork
// point with the canonical chain, now strictly exceeds the canonical
// branch's own depth from that same point by more than the configured
// hysteresis (spec §4.1 reorg policy, §9 open question resolved).
func (e *Engine) reorgQualifies(tip *block.Block) (qualifies bool, forkHash block.Hash, forkHeight uint64, err error) {
	forkHash, forkHeight, err = e.forkPoint(tip)
	if err != nil {
		return false, block.Hash{}, 0, err
	}
	candidateDepth := tip.Height - forkHeight
	canonicalDepth := e.height - forkHeight
	return candidateDepth > canonicalDepth+e.cfg.ReorgHysteresis, forkHash, forkHeight, nil
}

// buildReorg constructs the plan that replaces the canonical suffix
// below forkHash with the pool-resident chain ending at tip, demoting
// the displaced suffix into the orphan pool.
func (e *Engine) buildReorg(tip *block.Block, forkHash block.Hash, forkHeight uint64) (plan, error) {
	var ascending []*block.Block
	cur := tip
	for cur.ParentHash != forkHash {
		ascending = append(ascending, cur)
		rec, ok := e.pool.Get(cur.ParentHash)
		if !ok {
			invariantf("broken candidate suffix walking back from %x", tip.Hash)
		}
		cur = rec.Block
	}
	ascending = append(ascending, cur)
	for i, j := 0, len(ascending)-1; i < j; i, j = i+1, j-1 {
		ascending[i], ascending[j] = ascending[j], ascending[i]
	}

	writes := make([]blockstore.BlockOp, len(ascending))
	for i, b := range ascending {
		writes[i] = blockstore.BlockOp{Block: b}
	}

	var demoted []*block.Block
	var demoteHashes []block.Hash
	var demoteHeights []uint64
	for h := forkHeight + 1; h <= e.height; h++ {
		b, ok, err := e.store.BlockAtHeight(h)
		if err != nil {
			return plan{}, err
		}
		if !ok {
			invariantf("canonical suffix missing block at height %d", h)
		}
		demoted = append(demoted, b)
		demoteHashes = append(demoteHashes, b.Hash)
		demoteHeights = append(demoteHeights, h)
	}

	p := plan{
		writes:    writes,
		demote:    demoteHashes,
		demoteAt:  demoteHeights,
		newTip:    tip,
		newHeight: tip.Height,
		setTip:    true,
		isReorg:   true,
		notify:    true,
		mutate: func(e *Engine) {
			for _, b := range ascending {
				e.pool.Remove(b.Hash)
			}
			for i, b := range demoted {
				class := orphanpool.CanonicalNonTip
				if i == len(demoted)-1 {
					class = orphanpool.CanonicalTip
				}
				e.pool.Demote(b, class)
			}
		},
	}
	return p, nil
}
