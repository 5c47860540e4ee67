// Package orphanpool implements the bounded orphan pool (spec C3): the
// set of blocks the chain engine has accepted for placement but has not
// yet (or will never) write to the persistent store, together with the
// canonical-tip and pending-tip sets used to pick the next block to
// extend and to detect branch merges.
//
// Grounded on the teacher's node/chainstate.go in-memory bookkeeping
// idiom (plain maps behind the caller's lock, no internal locking here
// either -- the chain engine owns the single RWMutex that guards both
// the pool and the tip sets, per spec §5).
package orphanpool

import (
	"fmt"

	"github.com/hardchain-labs/node/internal/block"
)

// Record is one orphan pool entry.
type Record struct {
	Block *block.Block
	Type  Classification
}

// Pool is the bounded orphan pool. Callers are expected to serialize
// access externally (spec §5: the chain engine's RWMutex covers it).
type Pool struct {
	maxOrphans int
	records    map[block.Hash]Record
	canonical  map[block.Hash]struct{}
	pending    map[block.Hash]struct{}
	byHeight   map[uint64]map[block.Hash]struct{}
}

// ErrFull is returned by Insert when the pool is at capacity.
var ErrFull = fmt.Errorf("orphan pool is full")

// New creates an empty pool bounded at maxOrphans entries.
func New(maxOrphans int) *Pool {
	return &Pool{
		maxOrphans: maxOrphans,
		records:    make(map[block.Hash]Record),
		canonical:  make(map[block.Hash]struct{}),
		pending:    make(map[block.Hash]struct{}),
		byHeight:   make(map[uint64]map[block.Hash]struct{}),
	}
}

// Len reports the number of orphans currently held.
func (p *Pool) Len() int {
	return len(p.records)
}

// Full reports whether the pool is at capacity.
func (p *Pool) Full() bool {
	return len(p.records) >= p.maxOrphans
}

// Contains reports whether hash is already tracked.
func (p *Pool) Contains(hash block.Hash) bool {
	_, ok := p.records[hash]
	return ok
}

// Get returns the record for hash, if present.
func (p *Pool) Get(hash block.Hash) (Record, bool) {
	r, ok := p.records[hash]
	return r, ok
}

// Insert adds b to the pool under classification typ. Returns ErrFull
// if the pool is already at capacity and hash is not already present
// (a re-classification of an existing entry never fails on capacity).
func (p *Pool) Insert(b *block.Block, typ Classification) error {
	if _, exists := p.records[b.Hash]; !exists && p.Full() {
		return ErrFull
	}
	p.records[b.Hash] = Record{Block: b, Type: typ}
	p.indexHeight(b.Hash, b.Height)
	p.syncTipSets(b.Hash, typ)
	return nil
}

// SetType re-classifies an existing entry, migrating its tip-set
// membership accordingly. It is a no-op if hash is not tracked.
func (p *Pool) SetType(hash block.Hash, typ Classification) {
	r, ok := p.records[hash]
	if !ok {
		return
	}
	r.Type = typ
	p.records[hash] = r
	p.syncTipSets(hash, typ)
}

// IsCanonicalTip reports whether hash is currently classified CanonicalTip.
func (p *Pool) IsCanonicalTip(hash block.Hash) bool {
	_, ok := p.canonical[hash]
	return ok
}

// IsPendingTip reports whether hash is currently classified as a
// pending tip (PendingTip or PendingTipHead).
func (p *Pool) IsPendingTip(hash block.Hash) bool {
	_, ok := p.pending[hash]
	return ok
}

// Demote inserts b unconditionally, bypassing the capacity check Insert
// applies. Used only when a block leaves the persistent store during a
// reorg demotion -- it is not a fresh external admission, so the pool's
// capacity guarantee (which bounds admission, not store evictions) does
// not apply to it.
func (p *Pool) Demote(b *block.Block, typ Classification) {
	p.records[b.Hash] = Record{Block: b, Type: typ}
	p.indexHeight(b.Hash, b.Height)
	p.syncTipSets(b.Hash, typ)
}

// Remove evicts hash from the pool and both tip sets.
func (p *Pool) Remove(hash block.Hash) (Record, bool) {
	r, ok := p.records[hash]
	if !ok {
		return Record{}, false
	}
	delete(p.records, hash)
	delete(p.canonical, hash)
	delete(p.pending, hash)
	if set, ok := p.byHeight[r.Block.Height]; ok {
		delete(set, hash)
		if len(set) == 0 {
			delete(p.byHeight, r.Block.Height)
		}
	}
	return r, true
}

func (p *Pool) syncTipSets(hash block.Hash, typ Classification) {
	delete(p.canonical, hash)
	delete(p.pending, hash)
	switch {
	case typ == CanonicalTip:
		p.canonical[hash] = struct{}{}
	case typ.IsTip() && typ.IsPending():
		p.pending[hash] = struct{}{}
	}
}

func (p *Pool) indexHeight(hash block.Hash, height uint64) {
	set, ok := p.byHeight[height]
	if !ok {
		set = make(map[block.Hash]struct{})
		p.byHeight[height] = set
	}
	set[hash] = struct{}{}
}

// CanonicalTips returns every hash currently classified CanonicalTip.
func (p *Pool) CanonicalTips() []block.Hash {
	out := make([]block.Hash, 0, len(p.canonical))
	for h := range p.canonical {
		out = append(out, h)
	}
	return out
}

// PendingTips returns every hash currently classified as a pending tip
// (PendingTip or PendingTipHead).
func (p *Pool) PendingTips() []block.Hash {
	out := make([]block.Hash, 0, len(p.pending))
	for h := range p.pending {
		out = append(out, h)
	}
	return out
}

// AtHeight returns every tracked hash at the given height, in no
// particular order; callers needing determinism sort the result
// themselves.
func (p *Pool) AtHeight(height uint64) []block.Hash {
	set, ok := p.byHeight[height]
	if !ok {
		return nil
	}
	out := make([]block.Hash, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	return out
}

// Children returns every tracked record whose block's parent hash is
// parent, used by the chain engine's splice and waiting-child relabel
// steps to walk the pool forward once a missing ancestor arrives.
func (p *Pool) Children(parent block.Hash) []Record {
	var out []Record
	for _, r := range p.records {
		if r.Block.HasParent && r.Block.ParentHash == parent {
			out = append(out, r)
		}
	}
	return out
}
