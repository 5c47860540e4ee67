package chainengine

import (
	"bytes"

	"github.com/hardchain-labs/node/internal/block"
	"github.com/hardchain-labs/node/internal/blockstore"
	"github.com/hardchain-labs/node/internal/orphanpool"
)

type spliceNode struct {
	rec      orphanpool.Record
	children []block.Hash
}

// collectSpliceSubtree gathers every pool block transitively rooted at
// parent (whose own parent is now resolved), so splice can write the
// chosen deepest path and reclassify the rest (spec §4.1 case (a)).
func (e *Engine) collectSpliceSubtree(parent block.Hash) map[block.Hash]*spliceNode {
	nodes := make(map[block.Hash]*spliceNode)
	var walk func(block.Hash)
	walk = func(p block.Hash) {
		for _, child := range e.pool.Children(p) {
			if _, seen := nodes[child.Block.Hash]; seen {
				continue
			}
			nodes[child.Block.Hash] = &spliceNode{rec: child}
			walk(child.Block.Hash)
		}
	}
	walk(parent)
	for hash, n := range nodes {
		for _, child := range e.pool.Children(hash) {
			n.children = append(n.children, child.Block.Hash)
		}
	}
	return nodes
}

func deepestLeaf(nodes map[block.Hash]*spliceNode) block.Hash {
	var best block.Hash
	var bestHeight uint64
	first := true
	for hash, n := range nodes {
		if len(n.children) != 0 {
			continue
		}
		h := n.rec.Block.Height
		if first || h > bestHeight || (h == bestHeight && bytes.Compare(hash[:], best[:]) < 0) {
			best, bestHeight, first = hash, h, false
		}
	}
	return best
}

func spliceAscendingPath(nodes map[block.Hash]*spliceNode, leaf, root block.Hash) []block.Hash {
	var rev []block.Hash
	cur := leaf
	for {
		rev = append(rev, cur)
		parent := nodes[cur].rec.Block.ParentHash
		if parent == root {
			break
		}
		cur = parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// buildSplice turns the pending branch(es) blocked on b into a canonical
// extension: b itself plus the deepest reachable descendant path are
// persisted to the store and the path's end becomes the new tip; sibling
// sub-branches hanging off that path stay in the pool, reclassified from
// Pending* to Canonical*.
func (e *Engine) buildSplice(b *block.Block) plan {
	nodes := e.collectSpliceSubtree(b.Hash)

	var descendantPath []block.Hash
	if len(nodes) > 0 {
		leaf := deepestLeaf(nodes)
		descendantPath = spliceAscendingPath(nodes, leaf, b.Hash)
	}

	chosen := make(map[block.Hash]bool, len(descendantPath)+1)
	writes := make([]blockstore.BlockOp, 0, len(descendantPath)+1)

	chosen[b.Hash] = true
	writes = append(writes, blockstore.BlockOp{Block: b})

	newTip, newHeight := b, b.Height
	for _, h := range descendantPath {
		chosen[h] = true
		blk := nodes[h].rec.Block
		writes = append(writes, blockstore.BlockOp{Block: blk})
		newTip, newHeight = blk, blk.Height
	}

	var sideTips, sideNonTips []block.Hash
	for h, n := range nodes {
		if chosen[h] {
			continue
		}
		if len(n.children) == 0 {
			sideTips = append(sideTips, h)
		} else {
			sideNonTips = append(sideNonTips, h)
		}
	}

	return plan{
		writes:    writes,
		newTip:    newTip,
		newHeight: newHeight,
		setTip:    true,
		notify:    true,
		mutate: func(e *Engine) {
			for _, h := range descendantPath {
				e.pool.Remove(h)
			}
			for _, h := range sideTips {
				e.pool.SetType(h, orphanpool.CanonicalTip)
			}
			for _, h := range sideNonTips {
				e.pool.SetType(h, orphanpool.CanonicalNonTip)
			}
			e.reg.Delete(b.Hash)
		},
	}
}
