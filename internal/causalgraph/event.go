// Package causalgraph implements the per-round causal-order DAG (spec
// C8): validator events linked by a single parent hash, with cached
// "highest" and "highest following" queries used to pick the next event
// a round's leader should build on.
//
// Grounded on original_source/src/consensus/src/causal_graph.rs, ported
// from its Graph/VertexId arena to a plain map-keyed adjacency list --
// nothing in the retrieved corpus pulls in a graph library, so the
// arena-plus-index shape from spec §REDESIGN FLAGS is hand-rolled here
// rather than borrowed from a dependency.
package causalgraph

// Hash identifies an event, independent of the block hash space: causal
// graph events are per-round consensus messages, not chain blocks.
type Hash [32]byte

// NodeID identifies the validator that authored an event.
type NodeID string

// Event is the minimal surface the graph needs from a round message
// (spec §6: "Event type for C8 exposing hash(), parent_hash(),
// node_id()").
type Event interface {
	EventHash() Hash
	ParentHash() (Hash, bool)
	NodeID() NodeID
}
