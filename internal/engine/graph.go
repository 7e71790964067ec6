package engine

import (
	"slices"

	"github.com/roach88/logicsim/internal/logic"
)

// PredecessorGraph records, for each connector, the connectors observed to
// directly cause a change in it.
//
// The graph reflects causal history, not the static wiring: an edge appears
// only once propagation actually went that way. It only grows (until Reset),
// which is what makes the closure computation terminate.
//
// Queries never mutate the graph. Asking about an unknown connector returns
// an empty result.
//
// Not safe for concurrent use.
type PredecessorGraph struct {
	preds map[logic.ConnectorID]map[logic.ConnectorID]struct{}
}

// NewPredecessorGraph creates an empty graph.
func NewPredecessorGraph() *PredecessorGraph {
	return &PredecessorGraph{
		preds: make(map[logic.ConnectorID]map[logic.ConnectorID]struct{}),
	}
}

// AddNode registers a connector with no predecessors. No-op if present.
func (g *PredecessorGraph) AddNode(id logic.ConnectorID) {
	if _, ok := g.preds[id]; !ok {
		g.preds[id] = make(map[logic.ConnectorID]struct{})
	}
}

// AddEdge records that pred directly caused a change in id.
// Returns false if the edge was already known.
func (g *PredecessorGraph) AddEdge(id, pred logic.ConnectorID) bool {
	g.AddNode(id)
	g.AddNode(pred)
	if _, ok := g.preds[id][pred]; ok {
		return false
	}
	g.preds[id][pred] = struct{}{}
	return true
}

// Has reports whether the connector is known to the graph.
func (g *PredecessorGraph) Has(id logic.ConnectorID) bool {
	_, ok := g.preds[id]
	return ok
}

// Direct returns the direct predecessors of id, sorted.
func (g *PredecessorGraph) Direct(id logic.ConnectorID) []logic.ConnectorID {
	return sortedIDs(g.preds[id])
}

// Closure returns every transitive predecessor of id.
//
// The set is grown from the direct predecessors by repeatedly adding each
// member's own predecessors until it stops growing. id itself is included
// only if it lies on a causal cycle.
func (g *PredecessorGraph) Closure(id logic.ConnectorID) map[logic.ConnectorID]struct{} {
	all := make(map[logic.ConnectorID]struct{})
	frontier := make([]logic.ConnectorID, 0, len(g.preds[id]))
	for p := range g.preds[id] {
		all[p] = struct{}{}
		frontier = append(frontier, p)
	}
	for len(frontier) > 0 {
		next := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for p := range g.preds[next] {
			if _, seen := all[p]; seen {
				continue
			}
			all[p] = struct{}{}
			frontier = append(frontier, p)
		}
	}
	return all
}

// IsCyclic reports whether id is its own transitive predecessor.
func (g *PredecessorGraph) IsCyclic(id logic.ConnectorID) bool {
	_, ok := g.Closure(id)[id]
	return ok
}

// Len returns the number of known connectors.
func (g *PredecessorGraph) Len() int {
	return len(g.preds)
}

// Reset forgets all recorded history.
func (g *PredecessorGraph) Reset() {
	clear(g.preds)
}

func sortedIDs(set map[logic.ConnectorID]struct{}) []logic.ConnectorID {
	ids := make([]logic.ConnectorID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
