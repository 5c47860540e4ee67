package causalgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEvent struct {
	hash       Hash
	parentHash Hash
	hasParent  bool
	node       NodeID
}

func (e testEvent) EventHash() Hash { return e.hash }
func (e testEvent) ParentHash() (Hash, bool) {
	if !e.hasParent {
		return Hash{}, false
	}
	return e.parentHash, true
}
func (e testEvent) NodeID() NodeID { return e.node }

func h(b byte) Hash {
	var hh Hash
	hh[0] = b
	return hh
}

func TestHighestExclusive(t *testing.T) {
	n1, n2 := NodeID("n1"), NodeID("n2")
	a := testEvent{hash: h(1), node: n1}
	g := New(n1, a)

	got, ok := g.HighestExclusive(n2)
	require.True(t, ok)
	require.Equal(t, a, got)

	_, ok = g.HighestExclusive(n1)
	require.False(t, ok)
}

func TestHighestFollowingWithByzantineEvents(t *testing.T) {
	n1, n2 := NodeID("n1"), NodeID("n2")
	a := testEvent{hash: h(0x01), node: n1}
	b := testEvent{hash: h(0x02), parentHash: a.hash, hasParent: true, node: n2}
	c1 := testEvent{hash: h(0x03), parentHash: b.hash, hasParent: true, node: n1}
	c2 := testEvent{hash: h(0x04), parentHash: b.hash, hasParent: true, node: n1}
	c3 := testEvent{hash: h(0x05), parentHash: b.hash, hasParent: true, node: n1}
	d := testEvent{hash: h(0x06), parentHash: c1.hash, hasParent: true, node: n2}

	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 8; trial++ {
		g := New(n1, a)
		events := []Event{b, c1, c2, c3, d}
		rng.Shuffle(len(events), func(i, j int) { events[i], events[j] = events[j], events[i] })

		for _, e := range events {
			g.Push(e)
		}

		got, ok := g.HighestFollowing()
		require.True(t, ok, "trial %d", trial)
		require.Equal(t, d, got, "trial %d", trial)

		computed, ok := g.ComputeHighestFollowing(n1, a)
		require.True(t, ok, "trial %d", trial)
		require.Equal(t, d, computed, "trial %d", trial)

		require.True(t, g.IsDirectFollower(d, c1), "trial %d", trial)
		require.True(t, g.IsDirectFollower(c2, b), "trial %d", trial)
	}
}

func TestIsDirectFollowerMultiplePaths(t *testing.T) {
	n := NodeID("n")
	a := testEvent{hash: h(0x01), node: n}
	b := testEvent{hash: h(0x02), parentHash: a.hash, hasParent: true, node: n}
	c := testEvent{hash: h(0x03), parentHash: b.hash, hasParent: true, node: n}
	d := testEvent{hash: h(0x04), parentHash: b.hash, hasParent: true, node: n}
	e := testEvent{hash: h(0x05), parentHash: d.hash, hasParent: true, node: n}
	f := testEvent{hash: h(0x06), parentHash: d.hash, hasParent: true, node: n}
	gg := testEvent{hash: h(0x07), parentHash: f.hash, hasParent: true, node: n}

	rng := rand.New(rand.NewSource(9))
	events := []Event{b, c, d, e, f, gg}
	rng.Shuffle(len(events), func(i, j int) { events[i], events[j] = events[j], events[i] })

	g := New(n, a)
	for _, ev := range events {
		g.Push(ev)
	}

	require.True(t, g.IsDirectFollower(b, a))
	require.True(t, g.IsDirectFollower(c, b))
	require.True(t, g.IsDirectFollower(d, b))
	require.True(t, g.IsDirectFollower(e, d))
	require.True(t, g.IsDirectFollower(f, d))
	require.False(t, g.IsDirectFollower(gg, d))
	require.False(t, g.IsDirectFollower(a, b))
	require.False(t, g.IsDirectFollower(a, c))
}

func TestPushRejectsMissingParentHash(t *testing.T) {
	n := NodeID("n")
	a := testEvent{hash: h(0x01), node: n}
	g := New(n, a)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(InvariantViolation)
		require.True(t, ok)
	}()
	g.Push(testEvent{hash: h(0x02), node: n})
}

func TestPushRejectsDuplicateEvent(t *testing.T) {
	n := NodeID("n")
	a := testEvent{hash: h(0x01), node: n}
	g := New(n, a)
	b := testEvent{hash: h(0x02), parentHash: a.hash, hasParent: true, node: n}
	g.Push(b)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(InvariantViolation)
		require.True(t, ok)
	}()
	g.Push(b)
}
