package chainengine

import (
	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/orphanpool"
)

// parentKind classifies where an admitted block's parent currently
// lives, driving the placement dispatch of spec §4.1.
type parentKind int

const (
	parentIsCanonicalTip parentKind = iota
	parentIsCanonicalPoolTip
	parentIsPendingPoolTip
	parentOnDiskNonTip
	parentInPoolNonTip
	parentUnknown
)

type parentLocation struct {
	kind     parentKind
	record   orphanpool.Record // valid when kind is a pool kind
	height   uint64            // parent's height, when known without a record
	hasBlock bool
}

// resolveParent determines which of cases (a),(b),(c),(e),(f) applies,
// or parentUnknown if none do (leaving the (d)/(g) dispatch to the
// caller, since that split depends on block.hash, not parent).
func (e *Engine) resolveParent(parent block.Hash) (parentLocation, error) {
	if parent == e.tip.Hash {
		return parentLocation{kind: parentIsCanonicalTip}, nil
	}
	if e.pool.IsCanonicalTip(parent) {
		r, _ := e.pool.Get(parent)
		return parentLocation{kind: parentIsCanonicalPoolTip, record: r}, nil
	}
	if e.pool.IsPendingTip(parent) {
		r, _ := e.pool.Get(parent)
		return parentLocation{kind: parentIsPendingPoolTip, record: r}, nil
	}
	if r, ok := e.pool.Get(parent); ok {
		if r.Type.IsTip() {
			invariantf("parent %x classified %s outside tip-set bookkeeping", parent, r.Type)
		}
		return parentLocation{kind: parentInPoolNonTip, record: r}, nil
	}
	height, ok, err := e.store.BlockHeight(parent)
	if err != nil {
		return parentLocation{}, err
	}
	if ok {
		return parentLocation{kind: parentOnDiskNonTip, height: height, hasBlock: true}, nil
	}
	return parentLocation{kind: parentUnknown}, nil
}
