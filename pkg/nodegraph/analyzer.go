package nodegraph

import (
	"cmp"
	"slices"
)

// Category classifies a node by which sides of it carry connections.
type Category int

const (
	// CategoryLoose nodes have no connection on any port.
	CategoryLoose Category = iota
	// CategoryEntry nodes have connected outputs and no connected input.
	CategoryEntry
	// CategoryExit nodes have connected inputs and no connected output.
	CategoryExit
	// CategoryNet nodes have both.
	CategoryNet
)

func (c Category) String() string {
	switch c {
	case CategoryLoose:
		return "loose"
	case CategoryEntry:
		return "entry"
	case CategoryExit:
		return "exit"
	case CategoryNet:
		return "net"
	default:
		return "unknown"
	}
}

// Categories partitions a graph's nodes. Every node appears in exactly one
// slice; each slice is in slot order.
type Categories struct {
	Loose []NodeID
	Entry []NodeID
	Exit  []NodeID
	Net   []NodeID
}

// Of returns the category of id, or false if id is in no slice.
func (c Categories) Of(id NodeID) (Category, bool) {
	for cat, ids := range map[Category][]NodeID{
		CategoryLoose: c.Loose,
		CategoryEntry: c.Entry,
		CategoryExit:  c.Exit,
		CategoryNet:   c.Net,
	} {
		if slices.Contains(ids, id) {
			return cat, true
		}
	}
	return 0, false
}

// Len returns the total number of categorized nodes.
func (c Categories) Len() int {
	return len(c.Loose) + len(c.Entry) + len(c.Exit) + len(c.Net)
}

// Analyzer computes structural metadata and execution order for a graph.
// Each call reads the graph as it is at that moment; nothing is indexed
// ahead of time.
type Analyzer[N Node[T, V], T DataType[T], V any] struct {
	g *Graph[N, T, V]
}

// NewAnalyzer returns an analyzer over g.
func NewAnalyzer[N Node[T, V], T DataType[T], V any](g *Graph[N, T, V]) *Analyzer[N, T, V] {
	return &Analyzer[N, T, V]{g: g}
}

// Categorize sorts every node into loose, entry, exit or net. A node with
// ports but no live connection is loose.
func (a *Analyzer[N, T, V]) Categorize() Categories {
	g := a.g
	g.mu.RLock()
	defer g.mu.RUnlock()

	var c Categories
	for key, rec := range g.nodes.All() {
		id := NodeID{key}
		hasIn := slices.ContainsFunc(rec.inputs, func(e portEntry[InputPortID]) bool {
			p := g.inputs.Ptr(e.id.key)
			return p != nil && len(p.conns) > 0
		})
		hasOut := slices.ContainsFunc(rec.outputs, func(e portEntry[OutputPortID]) bool {
			p := g.outputs.Ptr(e.id.key)
			return p != nil && len(p.conns) > 0
		})
		switch {
		case hasIn && hasOut:
			c.Net = append(c.Net, id)
		case hasIn:
			c.Exit = append(c.Exit, id)
		case hasOut:
			c.Entry = append(c.Entry, id)
		default:
			c.Loose = append(c.Loose, id)
		}
	}
	return c
}

// ExecutionPath orders every node reachable from exits (following
// dependencies) so that each node comes after all of its dependencies.
//
// Every reachable node gets a priority: exits start at 0 and a dependency
// sits at least one above each of its dependents. The path is the nodes by
// descending priority. Each node and each connection is visited once.
// Ids in exits that do not name a node are skipped.
//
// The graph must be acyclic. Nodes on a cycle keep whatever priority they
// reached before the cycle was hit.
func (a *Analyzer[N, T, V]) ExecutionPath(exits []NodeID) []NodeID {
	g := a.g
	g.mu.RLock()
	defer g.mu.RUnlock()

	var order []NodeID // first-visit order, for deterministic ties
	deps := make(map[NodeID][]NodeID)
	dependents := make(map[NodeID]int) // reachable dependents not yet settled

	var stack []NodeID
	visit := func(id NodeID) {
		if _, seen := deps[id]; seen {
			return
		}
		deps[id] = g.directDependencies(id)
		order = append(order, id)
		stack = append(stack, id)
	}
	for _, exit := range exits {
		if !g.nodes.Contains(exit.key) {
			continue
		}
		visit(exit)
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, dep := range deps[id] {
				dependents[dep]++
				visit(dep)
			}
		}
	}

	// Settle nodes once all their dependents have a priority.
	priority := make(map[NodeID]int, len(order))
	var queue []NodeID
	for _, id := range order {
		if dependents[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range deps[id] {
			priority[dep] = max(priority[dep], priority[id]+1)
			if dependents[dep]--; dependents[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	slices.SortStableFunc(order, func(x, y NodeID) int {
		return cmp.Compare(priority[x], priority[y])
	})
	slices.Reverse(order)
	return order
}

// CompleteExecutionPath is ExecutionPath over every exit node.
func (a *Analyzer[N, T, V]) CompleteExecutionPath() []NodeID {
	return a.ExecutionPath(a.Categorize().Exit)
}
