package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/logicsim/internal/logic"
)

func TestPredecessorGraph_AddEdgeIdempotent(t *testing.T) {
	g := NewPredecessorGraph()
	assert.True(t, g.AddEdge("b", "a"))
	assert.False(t, g.AddEdge("b", "a"), "second identical edge is a no-op")

	assert.Equal(t, []logic.ConnectorID{"a"}, g.Direct("b"))
	assert.Equal(t, 2, g.Len(), "both endpoints become nodes")
}

func TestPredecessorGraph_ClosureIsTransitive(t *testing.T) {
	// a → b → c → d, plus x → c
	g := NewPredecessorGraph()
	g.AddEdge("b", "a")
	g.AddEdge("c", "b")
	g.AddEdge("c", "x")
	g.AddEdge("d", "c")

	closure := g.Closure("d")
	assert.Equal(t, []logic.ConnectorID{"a", "b", "c", "x"}, sortedIDs(closure))
	assert.False(t, g.IsCyclic("d"))
}

func TestPredecessorGraph_ClosureMissDoesNotMutate(t *testing.T) {
	g := NewPredecessorGraph()
	closure := g.Closure("ghost")

	assert.Empty(t, closure)
	assert.False(t, g.Has("ghost"))
	assert.Equal(t, 0, g.Len())
}

func TestPredecessorGraph_IsCyclic(t *testing.T) {
	g := NewPredecessorGraph()
	g.AddEdge("b", "a")
	assert.False(t, g.IsCyclic("a"))
	assert.False(t, g.IsCyclic("b"))

	g.AddEdge("a", "b")
	assert.True(t, g.IsCyclic("a"))
	assert.True(t, g.IsCyclic("b"))
}

func TestPredecessorGraph_SelfLoop(t *testing.T) {
	g := NewPredecessorGraph()
	g.AddEdge("q", "q")
	assert.True(t, g.IsCyclic("q"))
	assert.Equal(t, 1, g.Len())
}

func TestPredecessorGraph_LongCycle(t *testing.T) {
	g := NewPredecessorGraph()
	ids := []logic.ConnectorID{"n0", "n1", "n2", "n3", "n4", "n5"}
	for i := range ids {
		g.AddEdge(ids[(i+1)%len(ids)], ids[i])
	}
	for _, id := range ids {
		assert.True(t, g.IsCyclic(id), "%s should be on the ring", id)
	}
	assert.Len(t, g.Closure("n0"), len(ids))
}

func TestPredecessorGraph_Reset(t *testing.T) {
	g := NewPredecessorGraph()
	g.AddEdge("a", "b")
	g.AddNode("c")

	g.Reset()

	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Direct("a"))
}
