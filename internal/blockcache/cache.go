// Package blockcache implements the shared block cache (spec C7): a
// fixed-capacity LRU over block hash -> block, fronting the persistent
// store. Backed by hashicorp/golang-lru/v2, grounded on the corpus's
// idiomatic choice for this exact role (transitively present via
// Deep-Commit-poai's libp2p stack).
//
// Blocks are immutable by invariant (spec §3 lifecycle), so a cached
// entry is never stale: once present under a hash, it never changes.
package blockcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hardchain-labs/node/internal/block"
)

// Cache is a thread-safe LRU over Hash -> *Block. hashicorp/golang-lru is
// already internally synchronized; no extra mutex needed, matching spec
// §5's requirement that the cache's lock (here, the library's own) is
// independent of the chain engine's reader/writer lock and is never held
// across a store call.
type Cache struct {
	lru *lru.Cache[block.Hash, *block.Block]
}

// New creates a cache holding at most capacity entries. There is no
// built-in default; a non-positive capacity is an error.
func New(capacity int) (*Cache, error) {
	l, err := lru.New[block.Hash, *block.Block](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Get returns the cached block for hash, if present.
func (c *Cache) Get(hash block.Hash) (*block.Block, bool) {
	return c.lru.Get(hash)
}

// Put inserts or refreshes the entry for b.Hash.
func (c *Cache) Put(b *block.Block) {
	c.lru.Add(b.Hash, b)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
