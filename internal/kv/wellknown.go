package kv

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/hardchain-labs/node/internal/digest"
)

// Well-known keys (spec §6): the canonical tip and canonical height are
// addressed by hashing a fixed ASCII label, just like any other key in
// the flat keyspace.
func CanonicalTipKey(p digest.Provider) Key {
	return Key(digest.WellKnown(p, "canonical_tip"))
}

func CanonicalHeightKey(p digest.Provider) Key {
	return Key(digest.WellKnown(p, "canonical_height"))
}

// HeightIndexKey is hash(hex(blockHash) ++ ".height"), the per-block
// reverse height index spec §6 defines.
func HeightIndexKey(p digest.Provider, blockHash [32]byte) Key {
	label := hex.EncodeToString(blockHash[:]) + ".height"
	return Key(p.Sum256([]byte(label)))
}

// EasyHardTipKey addresses the cross-reference an easy-chain block
// carries once the hard chain confirms a new tip while that block is
// the easy chain's current tip (spec §4.4): hash(hex(easyHash) ++
// ".hard_tip") -> the hard tip's 32-byte digest.
func EasyHardTipKey(p digest.Provider, easyHash [32]byte) Key {
	label := hex.EncodeToString(easyHash[:]) + ".hard_tip"
	return Key(p.Sum256([]byte(label)))
}

// HeightToHashKey is the forward index query_by_height resolves through
// (spec §4.1, §9 open question: the indices on disk are authoritative).
// Keyed on hash("height_index:" ++ big-endian height) so it never
// collides with HeightIndexKey's hex-encoded-hash label space.
func HeightToHashKey(p digest.Provider, height uint64) Key {
	label := make([]byte, len("height_index:")+8)
	n := copy(label, "height_index:")
	binary.BigEndian.PutUint64(label[n:], height)
	return Key(p.Sum256(label))
}
