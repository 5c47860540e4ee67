// Package branchregistry implements the branch registry (spec C4): for
// every hash that some pending branch is blocked on, the set of that
// branch's pending tip hashes, each carrying an opaque extra-state blob
// the chain engine attaches at insertion and never interprets.
//
// Grounded on the teacher's node/store/reorg.go map-of-sets indexing
// idiom, generalized from height->block-set to missing-parent->tip-set.
package branchregistry

import "github.com/hardchain-labs/node/internal/block"

// TipState is the opaque per-tip payload the chain engine stores
// alongside a pending tip hash. Its contents are never inspected by the
// registry; spec §3 leaves its shape to the caller (branch work totals,
// provenance, anything the engine needs to resume placement later).
type TipState struct {
	Extra []byte
}

// Descriptor is the set of pending tips waiting on one missing parent.
type Descriptor struct {
	Tips map[block.Hash]TipState
}

func newDescriptor() *Descriptor {
	return &Descriptor{Tips: make(map[block.Hash]TipState)}
}

// Registry maps a missing parent hash to the descriptor of branches
// blocked on it. Not internally locked; the chain engine's RWMutex
// covers it, same as orphanpool.Pool.
type Registry struct {
	byMissingParent map[block.Hash]*Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byMissingParent: make(map[block.Hash]*Descriptor)}
}

// descriptor returns the descriptor of branches blocked on parent, if
// any. Unexported: the chain engine only ever needs Has/Insert/Delete,
// this is kept for the package's own tests to inspect Tips directly.
func (r *Registry) descriptor(parent block.Hash) (*Descriptor, bool) {
	d, ok := r.byMissingParent[parent]
	return d, ok
}

// Has reports whether any branch is blocked on parent.
func (r *Registry) Has(parent block.Hash) bool {
	_, ok := r.byMissingParent[parent]
	return ok
}

// Insert records tip as a pending tip of the branch blocked on parent.
func (r *Registry) Insert(parent, tip block.Hash, state TipState) {
	d, ok := r.byMissingParent[parent]
	if !ok {
		d = newDescriptor()
		r.byMissingParent[parent] = d
	}
	d.Tips[tip] = state
}

// RemoveTip drops tip from the branch blocked on parent, removing the
// descriptor entirely once its tip set is empty.
func (r *Registry) RemoveTip(parent, tip block.Hash) {
	d, ok := r.byMissingParent[parent]
	if !ok {
		return
	}
	delete(d.Tips, tip)
	if len(d.Tips) == 0 {
		delete(r.byMissingParent, parent)
	}
}

// Delete drops the entire descriptor blocked on parent (used once that
// parent has been placed -- written to the store by a splice, or
// inserted into the pool -- and its waiting branches attached to it).
func (r *Registry) Delete(parent block.Hash) {
	delete(r.byMissingParent, parent)
}

// Len reports the number of distinct missing-parent entries tracked.
func (r *Registry) Len() int {
	return len(r.byMissingParent)
}
