// Package blockstore is the typed facade over internal/kv that C5 and
// C6 actually talk to (spec C2): block bodies, the canonical-tip and
// canonical-height well-known entries, and the two auxiliary indices
// (hash -> height, height -> hash). internal/kv stays a narrow
// byte-oriented get/put/batch contract; this package is where block
// encoding and the well-known key layout live.
package blockstore

import (
	"fmt"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/digest"
	"github.com/hardchain-labs/node/internal/kv"
)

// Store is the persistent store adapter.
type Store struct {
	kv     *kv.Store
	digest digest.Provider
}

// New wraps an already-open kv.Store with block-aware encoding.
func New(store *kv.Store, p digest.Provider) *Store {
	return &Store{kv: store, digest: p}
}

// GetBlock resolves a block body by hash.
func (s *Store) GetBlock(hash block.Hash) (*block.Block, bool, error) {
	raw, ok, err := s.kv.Get(kv.Key(hash))
	if err != nil || !ok {
		return nil, ok, err
	}
	b, err := block.FromBytes(raw, hash)
	if err != nil {
		return nil, false, fmt.Errorf("blockstore: decode %x: %w", hash, err)
	}
	return b, true, nil
}

// BlockHeight resolves the reverse hash -> height index.
func (s *Store) BlockHeight(hash block.Hash) (uint64, bool, error) {
	raw, ok, err := s.kv.Get(kv.HeightIndexKey(s.digest, hash))
	if err != nil || !ok {
		return 0, ok, err
	}
	h, err := kv.DecodeHeight(raw)
	return h, true, err
}

// BlockAtHeight resolves the forward height -> hash index, then the body.
func (s *Store) BlockAtHeight(height uint64) (*block.Block, bool, error) {
	raw, ok, err := s.kv.Get(kv.HeightToHashKey(s.digest, height))
	if err != nil || !ok {
		return nil, ok, err
	}
	var hash block.Hash
	if len(raw) != len(hash) {
		return nil, false, fmt.Errorf("blockstore: malformed height index entry at %d", height)
	}
	copy(hash[:], raw)
	return s.GetBlock(hash)
}

// CanonicalTip resolves the well-known canonical-tip key to a hash.
func (s *Store) CanonicalTip() (block.Hash, bool, error) {
	raw, ok, err := s.kv.Get(kv.CanonicalTipKey(s.digest))
	if err != nil || !ok {
		return block.Hash{}, ok, err
	}
	var h block.Hash
	if len(raw) != len(h) {
		return block.Hash{}, false, fmt.Errorf("blockstore: malformed canonical tip entry")
	}
	copy(h[:], raw)
	return h, true, nil
}

// CanonicalHeight resolves the well-known canonical-height key.
func (s *Store) CanonicalHeight() (uint64, bool, error) {
	raw, ok, err := s.kv.Get(kv.CanonicalHeightKey(s.digest))
	if err != nil || !ok {
		return 0, ok, err
	}
	h, err := kv.DecodeHeight(raw)
	return h, true, err
}

// BlockOp describes one block's worth of writes for a WriteBatch call:
// the body plus both height-index entries. Whether the canonical
// tip/height entries change is decided by WriteBatch's own arguments.
type BlockOp struct {
	Block *block.Block
}

// WriteBatch atomically persists a set of blocks and, if tip is
// non-nil, updates the canonical-tip and canonical-height entries in
// the same transaction (spec §4.1 atomicity requirement: every key
// written by one append_block call lands in a single batch).
func (s *Store) WriteBatch(blocks []BlockOp, tip *block.Block, height uint64, setTip bool) error {
	ops := make([]kv.Op, 0, len(blocks)*3+2)
	for _, bo := range blocks {
		b := bo.Block
		ops = append(ops,
			kv.Op{Key: kv.Key(b.Hash), Value: b.ToBytes()},
			kv.Op{Key: kv.HeightIndexKey(s.digest, b.Hash), Value: kv.EncodeHeight(b.Height)},
			kv.Op{Key: kv.HeightToHashKey(s.digest, b.Height), Value: b.Hash[:]},
		)
	}
	if setTip {
		ops = append(ops,
			kv.Op{Key: kv.CanonicalTipKey(s.digest), Value: tip.Hash[:]},
			kv.Op{Key: kv.CanonicalHeightKey(s.digest), Value: kv.EncodeHeight(height)},
		)
	}
	return s.kv.Batch(ops)
}

// ApplyReorg atomically retires the demoted suffix from the store and
// promotes the candidate suffix in its place, updating the canonical
// tip/height keys in the same transaction (spec §4.1 reorg policy).
func (s *Store) ApplyReorg(promote []BlockOp, demote []block.Hash, demoteHeights []uint64, tip *block.Block, height uint64) error {
	ops := make([]kv.Op, 0, len(promote)*3+len(demote)*3+2)
	for _, h := range demote {
		ops = append(ops, kv.Op{Key: kv.Key(h), Delete: true})
		ops = append(ops, kv.Op{Key: kv.HeightIndexKey(s.digest, h), Delete: true})
	}
	for _, h := range demoteHeights {
		ops = append(ops, kv.Op{Key: kv.HeightToHashKey(s.digest, h), Delete: true})
	}
	for _, bo := range promote {
		b := bo.Block
		ops = append(ops,
			kv.Op{Key: kv.Key(b.Hash), Value: b.ToBytes()},
			kv.Op{Key: kv.HeightIndexKey(s.digest, b.Hash), Value: kv.EncodeHeight(b.Height)},
			kv.Op{Key: kv.HeightToHashKey(s.digest, b.Height), Value: b.Hash[:]},
		)
	}
	ops = append(ops,
		kv.Op{Key: kv.CanonicalTipKey(s.digest), Value: tip.Hash[:]},
		kv.Op{Key: kv.CanonicalHeightKey(s.digest), Value: kv.EncodeHeight(height)},
	)
	return s.kv.Batch(ops)
}

// SetEasyCrossRef records the hard-canonical tip digest against an
// easy-chain block hash (spec §4.4). Kept as a side entry, not a field
// on the stored block body, so confirming a hard tip never changes an
// already-sealed easy block's hash.
func (s *Store) SetEasyCrossRef(easyHash, hardTip block.Hash) error {
	return s.kv.Emplace(kv.EasyHardTipKey(s.digest, easyHash), hardTip[:])
}

// EasyCrossRef resolves the hard tip stamped against an easy block, if any.
func (s *Store) EasyCrossRef(easyHash block.Hash) (block.Hash, bool, error) {
	raw, ok, err := s.kv.Get(kv.EasyHardTipKey(s.digest, easyHash))
	if err != nil || !ok {
		return block.Hash{}, ok, err
	}
	var h block.Hash
	if len(raw) != len(h) {
		return block.Hash{}, false, fmt.Errorf("blockstore: malformed easy cross-ref entry")
	}
	copy(h[:], raw)
	return h, true, nil
}
