// Package chainengine implements the hard-chain fork-choice core (spec
// C5): admission, classification, splice, and reorg over a bounded
// orphan pool fronting a persistent store.
//
// Grounded on the teacher's node/chainstate.go in-memory bookkeeping and
// pillaiarjun-Chronodrachma's pkg/core/blockchain.Chain RWMutex shape
// (sync.RWMutex guarding tip/height, exclusive for mutation, shared for
// reads), logging with sirupsen/logrus the way the teacher's cmd/
// binaries do.
package chainengine

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockcache"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/branchregistry"
	"github.com/hardchain-labs/node/internal/digest"
	"github.com/hardchain-labs/node/internal/orphanpool"
)

// EasyChainNotifier is the narrow collaborator contract C5 requires of
// C6 (spec §6): stamp the hard-canonical tip onto the easy chain's
// current block on every qualifying canonical append.
type EasyChainNotifier interface {
	SetHardCanonicalTip(hash block.Hash) error
}

// Engine is the hard chain engine.
type Engine struct {
	mu sync.RWMutex

	cfg    Config
	digest digest.Provider
	store  *blockstore.Store
	cache  *blockcache.Cache
	pool   *orphanpool.Pool
	reg    *branchregistry.Registry
	easy   EasyChainNotifier
	log    *logrus.Entry

	genesis *block.Block
	tip     *block.Block
	height  uint64
}

// New constructs an engine, bootstrapping genesis into the store if this
// is a fresh instance, or loading the existing canonical tip otherwise.
func New(cfg Config, p digest.Provider, store *blockstore.Store, cache *blockcache.Cache, easy EasyChainNotifier, log *logrus.Entry) (*Engine, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	e := &Engine{
		cfg:     cfg,
		digest:  p,
		store:   store,
		cache:   cache,
		pool:    orphanpool.New(cfg.MaxOrphans),
		reg:     branchregistry.New(),
		easy:    easy,
		log:     log.WithField("component", "chainengine"),
		genesis: block.Genesis(p),
	}

	tipHash, ok, err := store.CanonicalTip()
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := e.bootstrapGenesis(); err != nil {
			return nil, err
		}
		return e, nil
	}

	tip, ok, err := store.GetBlock(tipHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		invariantf("canonical tip %x missing its body", tipHash)
	}
	height, ok, err := store.CanonicalHeight()
	if err != nil {
		return nil, err
	}
	if !ok {
		invariantf("canonical tip present without a canonical height entry")
	}
	e.tip = tip
	e.height = height
	e.cache.Put(tip)
	return e, nil
}

func (e *Engine) bootstrapGenesis() error {
	if err := e.store.WriteBatch([]blockstore.BlockOp{{Block: e.genesis}}, e.genesis, 0, true); err != nil {
		return err
	}
	e.tip = e.genesis
	e.height = 0
	e.cache.Put(e.genesis)
	e.log.Info("bootstrapped genesis")
	return nil
}

// Genesis returns the fixed genesis value.
func (e *Engine) Genesis() *block.Block {
	return e.genesis
}

// Height returns the current canonical height.
func (e *Engine) Height() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.height
}

// CanonicalTip returns the current canonical tip.
func (e *Engine) CanonicalTip() *block.Block {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tip
}

// Query resolves a block by hash via the shared cache, falling back to
// the store.
func (e *Engine) Query(hash block.Hash) (*block.Block, bool, error) {
	if b, ok := e.cache.Get(hash); ok {
		return b, true, nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cache.Query(hash, e.store.GetBlock)
}

// QueryByHeight resolves a block by height via the store's forward
// index, back-filling the cache on a hit.
func (e *Engine) QueryByHeight(height uint64) (*block.Block, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok, err := e.store.BlockAtHeight(height)
	if err != nil || !ok {
		return nil, ok, err
	}
	e.cache.Put(b)
	return b, true, nil
}

// BlockHeight resolves a block's height via the store's reverse index.
func (e *Engine) BlockHeight(hash block.Hash) (uint64, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.BlockHeight(hash)
}

// PoolLen reports the orphan pool's current occupancy, exposed for
// operational introspection (cmd/forkctl status output).
func (e *Engine) PoolLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pool.Len()
}
