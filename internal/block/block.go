// Package block implements the immutable Block value (spec C1) shared by
// the hard chain and the easy chain: a hash, an optional parent link, a
// height, a payload digest, a timestamp, and an opaque payload-specific
// cross-reference (for a hard block, the easy-chain block it activates).
package block

import (
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/hardchain-labs/node/internal/digest"
)

// Hash is a 32-byte block digest. Equality and set-membership are defined
// on Hash alone (spec §3).
type Hash [32]byte

// IsZero reports whether h is the zero hash, used as the "absent" sentinel
// for optional hash-valued fields (ParentHash on genesis, CrossRef).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Block is an immutable record. Construct one with New, then Seal it once
// its fields are final; Seal computes Hash from the canonical encoding.
type Block struct {
	ParentHash Hash // zero only for genesis
	HasParent  bool
	Height     uint64
	MerkleRoot Hash
	CrossRef   Hash // payload-specific; zero if unused
	HasCrossRef bool
	Timestamp  time.Time
	Hash       Hash
}

// New constructs an unsealed block. Call Seal before using it anywhere the
// core expects a hash-identified value.
func New(parentHash Hash, hasParent bool, height uint64, merkleRoot Hash, timestamp time.Time) *Block {
	return &Block{
		ParentHash: parentHash,
		HasParent:  hasParent,
		Height:     height,
		MerkleRoot: merkleRoot,
		Timestamp:  timestamp,
	}
}

// WithCrossRef attaches the payload-specific cross-reference (e.g. the
// easy-chain block a hard block activates) before sealing.
func (b *Block) WithCrossRef(ref Hash) *Block {
	b.CrossRef = ref
	b.HasCrossRef = true
	return b
}

// Seal computes and fixes b.Hash from the canonical encoding via p. It is
// the only mutator beyond construction; callers must not mutate a Block
// after sealing (spec §3 lifecycle: inserted once, mutated never).
func (b *Block) Seal(p digest.Provider) *Block {
	b.Hash = p.Sum256(b.ToBytes())
	return b
}

// Equal compares by hash alone, per spec §3.
func (b *Block) Equal(other *Block) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Hash == other.Hash
}

// ToBytes produces the canonical encoding. The core treats this encoding
// as opaque (spec §6); this is one concrete choice satisfying the
// round-trip contract from_bytes(to_bytes(b)) == b.
func (b *Block) ToBytes() []byte {
	out := make([]byte, 0, 1+32+8+32+1+32+8)
	if b.HasParent {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, b.ParentHash[:]...)
	var heightBuf [8]byte
	binary.BigEndian.PutUint64(heightBuf[:], b.Height)
	out = append(out, heightBuf[:]...)
	out = append(out, b.MerkleRoot[:]...)
	if b.HasCrossRef {
		out = append(out, 1)
	} else {
		out = append(out, 0)
	}
	out = append(out, b.CrossRef[:]...)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(b.Timestamp.UnixNano()))
	out = append(out, tsBuf[:]...)
	return out
}

// FromBytes decodes the canonical encoding produced by ToBytes. hash is
// the block hash as recovered from the surrounding store key or recomputed
// by the caller via Seal; FromBytes does not verify it.
func FromBytes(raw []byte, hash Hash) (*Block, error) {
	const minLen = 1 + 32 + 8 + 32 + 1 + 32 + 8
	if len(raw) != minLen {
		return nil, errors.New("block: malformed encoding")
	}
	off := 0
	hasParent := raw[off] == 1
	off++
	var parentHash Hash
	copy(parentHash[:], raw[off:off+32])
	off += 32
	height := binary.BigEndian.Uint64(raw[off : off+8])
	off += 8
	var merkleRoot Hash
	copy(merkleRoot[:], raw[off:off+32])
	off += 32
	hasCrossRef := raw[off] == 1
	off++
	var crossRef Hash
	copy(crossRef[:], raw[off:off+32])
	off += 32
	tsNano := binary.BigEndian.Uint64(raw[off : off+8])

	return &Block{
		ParentHash:  parentHash,
		HasParent:   hasParent,
		Height:      height,
		MerkleRoot:  merkleRoot,
		CrossRef:    crossRef,
		HasCrossRef: hasCrossRef,
		Timestamp:   time.Unix(0, int64(tsNano)).UTC(),
		Hash:        hash,
	}, nil
}

var (
	genesisOnce  sync.Once
	genesisBlock *Block
)

// Genesis returns the fixed, well-known genesis value: height 0, no
// parent, computed once and cached (spec §3; grounded on the teacher's
// lazy_static GENESIS_RC singleton).
func Genesis(p digest.Provider) *Block {
	genesisOnce.Do(func() {
		b := New(Hash{}, false, 0, Hash{}, time.Unix(0, 0).UTC())
		b.Seal(p)
		genesisBlock = b
	})
	return genesisBlock
}
