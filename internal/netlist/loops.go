package netlist

import (
	"fmt"
	"slices"
	"strings"
)

// Loop is a feedback loop found in the static wiring.
//
// Loops are warnings, not errors: latches and flip-flops are built from
// them. The simulation resolves them at run time either way.
type Loop struct {
	Path    []string `json:"path"` // element IDs, first repeated at the end
	Message string   `json:"message"`
}

// FeedbackLoops finds feedback loops between elements using Tarjan's
// strongly connected components algorithm. Every component with more than
// one element, or a single element wired to itself, is a loop.
//
// Results are deterministic: components are discovered in declaration order.
func (nw *Network) FeedbackLoops() []Loop {
	graph := nw.elementGraph()

	var loops []Loop
	for _, scc := range tarjanSCC(nw.order, graph) {
		if len(scc) > 1 || slices.Contains(graph[scc[0]], scc[0]) {
			loops = append(loops, sccToLoop(scc, graph))
		}
	}
	return loops
}

// elementGraph maps each element to the elements its output drives.
func (nw *Network) elementGraph() map[string][]string {
	graph := make(map[string][]string, len(nw.order))
	for _, id := range nw.order {
		el := nw.elements[id]
		graph[id] = []string{}
		if el.out == nil {
			continue
		}
		for _, in := range el.out.fanout {
			next := in.owner.spec.ID
			if !slices.Contains(graph[id], next) {
				graph[id] = append(graph[id], next)
			}
		}
	}
	return graph
}

func tarjanSCC(nodes []string, graph map[string][]string) [][]string {
	pos := make(map[string]int, len(nodes))
	for i, n := range nodes {
		pos[n] = i
	}

	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			// members in declaration order, so loop paths are stable
			slices.SortFunc(scc, func(a, b string) int { return pos[a] - pos[b] })
			sccs = append(sccs, scc)
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// sccToLoop walks edges inside the component from its first member until
// it gets back to the start.
func sccToLoop(scc []string, graph map[string][]string) Loop {
	start := scc[0]
	if len(scc) == 1 {
		return Loop{
			Path:    []string{start, start},
			Message: fmt.Sprintf("element %s drives its own input", start),
		}
	}

	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, w := range graph[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}

	return Loop{
		Path:    path,
		Message: fmt.Sprintf("feedback loop: %s", strings.Join(path, " → ")),
	}
}
