package blockcache

import "github.com/hardchain-labs/node/internal/block"

// Loader fetches a block from the backing store when the cache misses.
type Loader func(hash block.Hash) (*block.Block, bool, error)

// Query consults the cache first, falls back to load on a miss, and
// back-fills the cache on a store hit (spec §4.3). It never holds the
// cache's lock across the call to load.
func (c *Cache) Query(hash block.Hash, load Loader) (*block.Block, bool, error) {
	if b, ok := c.Get(hash); ok {
		return b, true, nil
	}
	b, ok, err := load(hash)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	c.Put(b)
	return b, true, nil
}
