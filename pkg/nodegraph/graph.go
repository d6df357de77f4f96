package nodegraph

import (
	"slices"
	"sync"

	"github.com/matzehuels/nodegraph/pkg/arena"
	"github.com/matzehuels/nodegraph/pkg/errors"
)

// =============================================================================
// Records
// =============================================================================

type portEntry[ID any] struct {
	name string
	id   ID
}

// nodeRecord keeps a node's ports in ordinal order. Deleted ports stay in the
// lists so that later positions never shift; their ids simply stop resolving.
type nodeRecord struct {
	inputs  []portEntry[InputPortID]
	outputs []portEntry[OutputPortID]
}

type inputPort[T any, V any] struct {
	node       NodeID
	name       string
	ty         T
	def        V
	hasDefault bool
	conns      []ConnectionID
}

type outputPort[T any] struct {
	node  NodeID
	name  string
	ty    T
	conns []ConnectionID
}

type cell[N any] struct {
	mu    sync.RWMutex
	state N
}

// Connection is a directed edge from an output port to an input port on
// another node.
type Connection struct {
	From OutputPortID
	To   InputPortID
}

// PortInfo is a snapshot of one port. Default and HasDefault are only ever set
// for input ports. Connections lists incoming connections for an input port
// and outgoing ones for an output port, in connect order.
type PortInfo[T any, V any] struct {
	Node        NodeID
	Name        string
	Type        T
	Default     V
	HasDefault  bool
	Connections []ConnectionID
}

// NamedInput pairs a live input port with its name.
type NamedInput struct {
	Name string
	ID   InputPortID
}

// NamedOutput pairs a live output port with its name.
type NamedOutput struct {
	Name string
	ID   OutputPortID
}

// =============================================================================
// Graph
// =============================================================================

// Graph owns every node, port and connection of one node graph.
//
// Structural tables sit behind a single RWMutex: mutations take the write lock
// and queries the read lock. Each node's state has its own RWMutex, accessed
// through [Graph.View] and [Graph.Update] or held by a walker for the duration
// of the node's callback. Structural mutations must not run concurrently with
// a walk.
type Graph[N Node[T, V], T DataType[T], V any] struct {
	mu      sync.RWMutex
	nodes   arena.Arena[nodeRecord]
	states  arena.SecondaryMap[*cell[N]]
	inputs  arena.Arena[inputPort[T, V]]
	outputs arena.Arena[outputPort[T]]
	conns   arena.Arena[Connection]
}

// New creates an empty graph.
func New[N Node[T, V], T DataType[T], V any]() *Graph[N, T, V] {
	return &Graph[N, T, V]{}
}

// CreateNode adds n with the ports declared by n.InitialPorts.
func (g *Graph[N, T, V]) CreateNode(n N) NodeID {
	return g.CreateNodeFrom(Template[N, T, V]{Node: n})
}

// CreateNodeFrom adds t.Node with its initial ports, then calls t.PostCreate
// with the new id. PostCreate runs without any graph lock held and may create
// further ports.
//
// Duplicate names among the initial ports panic with an [*errors.Error]
// before anything is added.
func (g *Graph[N, T, V]) CreateNodeFrom(t Template[N, T, V]) NodeID {
	id, _, _ := g.createNode(t.Node, nil, nil)
	if t.PostCreate != nil {
		t.PostCreate(g, id)
	}
	return id
}

// CreateNodeWith adds n with its initial ports followed by the given extra
// ports, returning the ids of the extra ports in argument order.
func (g *Graph[N, T, V]) CreateNodeWith(n N, inputs []InputSpec[T, V], outputs []OutputSpec[T]) (NodeID, []InputPortID, []OutputPortID) {
	return g.CreateNodeFromWith(Template[N, T, V]{Node: n}, inputs, outputs)
}

// CreateNodeFromWith is [Graph.CreateNodeWith] for a template. The extra
// ports exist by the time PostCreate runs.
func (g *Graph[N, T, V]) CreateNodeFromWith(t Template[N, T, V], inputs []InputSpec[T, V], outputs []OutputSpec[T]) (NodeID, []InputPortID, []OutputPortID) {
	id, ins, outs := g.createNode(t.Node, inputs, outputs)
	if t.PostCreate != nil {
		t.PostCreate(g, id)
	}
	return id, ins, outs
}

func (g *Graph[N, T, V]) createNode(n N, extraIn []InputSpec[T, V], extraOut []OutputSpec[T]) (NodeID, []InputPortID, []OutputPortID) {
	initial := n.InitialPorts()
	allIn := append(slices.Clip(initial.Inputs), extraIn...)
	allOut := append(slices.Clip(initial.Outputs), extraOut...)
	if err := checkUniqueNames(allIn, func(s InputSpec[T, V]) string { return s.Name }, "input"); err != nil {
		panic(err)
	}
	if err := checkUniqueNames(allOut, func(s OutputSpec[T]) string { return s.Name }, "output"); err != nil {
		panic(err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := NodeID{g.nodes.Insert(nodeRecord{
		inputs:  make([]portEntry[InputPortID], 0, len(allIn)),
		outputs: make([]portEntry[OutputPortID], 0, len(allOut)),
	})}
	c := &cell[N]{state: n}
	g.states.Insert(id.key, c)

	c.mu.Lock()
	defer c.mu.Unlock()

	inIDs := make([]InputPortID, len(allIn))
	for i, spec := range allIn {
		inIDs[i] = g.addInput(id, c, spec)
	}
	outIDs := make([]OutputPortID, len(allOut))
	for i, spec := range allOut {
		outIDs[i] = g.addOutput(id, c, spec)
	}

	ni := len(initial.Inputs)
	no := len(initial.Outputs)
	return id, inIDs[ni:], outIDs[no:]
}

func checkUniqueNames[S any](specs []S, name func(S) string, side string) error {
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		n := name(s)
		if _, dup := seen[n]; dup {
			return errors.New(errors.ErrCodeDuplicatePort, "%s port %q declared twice", side, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// =============================================================================
// Node state
// =============================================================================

// View calls fn with the node's state under its read lock. It reports false
// if the node does not exist.
func (g *Graph[N, T, V]) View(id NodeID, fn func(N)) bool {
	c := g.cell(id)
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.state)
	return true
}

// Update calls fn with a pointer to the node's state under its write lock.
// It reports false if the node does not exist.
func (g *Graph[N, T, V]) Update(id NodeID, fn func(*N)) bool {
	c := g.cell(id)
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
	return true
}

func (g *Graph[N, T, V]) cell(id NodeID) *cell[N] {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, _ := g.states.Get(id.key)
	return c
}

// FindFunc returns the nodes whose state satisfies pred, in slot order.
// Each state is read under its own read lock.
func (g *Graph[N, T, V]) FindFunc(pred func(N) bool) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []NodeID
	for key := range g.nodes.All() {
		c, ok := g.states.Get(key)
		if !ok {
			continue
		}
		c.mu.RLock()
		match := pred(c.state)
		c.mu.RUnlock()
		if match {
			out = append(out, NodeID{key})
		}
	}
	return out
}

// Find returns the nodes whose state equals target.
func Find[N interface {
	Node[T, V]
	comparable
}, T DataType[T], V any](g *Graph[N, T, V], target N) []NodeID {
	return g.FindFunc(func(n N) bool { return n == target })
}

// =============================================================================
// Queries
// =============================================================================

// HasNode reports whether id names a node of g.
func (g *Graph[N, T, V]) HasNode(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.Contains(id.key)
}

// Nodes returns every node id in slot order.
func (g *Graph[N, T, V]) Nodes() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodeIDs()
}

func (g *Graph[N, T, V]) nodeIDs() []NodeID {
	ids := make([]NodeID, 0, g.nodes.Len())
	for key := range g.nodes.All() {
		ids = append(ids, NodeID{key})
	}
	return ids
}

// NodeCount returns the number of nodes.
func (g *Graph[N, T, V]) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes.Len()
}

// ConnectionCount returns the number of live connections.
func (g *Graph[N, T, V]) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.conns.Len()
}

// HasInputPort reports whether id names a live input port.
func (g *Graph[N, T, V]) HasInputPort(id InputPortID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.inputs.Contains(id.key)
}

// HasOutputPort reports whether id names a live output port.
func (g *Graph[N, T, V]) HasOutputPort(id OutputPortID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.outputs.Contains(id.key)
}

// InputPort returns the live input port called name on node.
func (g *Graph[N, T, V]) InputPort(node NodeID, name string) (InputPortID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.view().InputPort(node, name)
}

// OutputPort returns the live output port called name on node.
func (g *Graph[N, T, V]) OutputPort(node NodeID, name string) (OutputPortID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.view().OutputPort(node, name)
}

// InputPortAt returns the input port at ordinal position i of node. A
// position whose port was deleted does not resolve.
func (g *Graph[N, T, V]) InputPortAt(node NodeID, i int) (InputPortID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.view().InputPortAt(node, i)
}

// OutputPortAt returns the output port at ordinal position i of node.
func (g *Graph[N, T, V]) OutputPortAt(node NodeID, i int) (OutputPortID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.view().OutputPortAt(node, i)
}

// InputPorts lists the node's live input ports in ordinal order, or nil if
// the node does not exist.
func (g *Graph[N, T, V]) InputPorts(node NodeID) []NamedInput {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.nodes.Get(node.key)
	if !ok {
		return nil
	}
	out := make([]NamedInput, 0, len(rec.inputs))
	for _, e := range rec.inputs {
		if g.inputs.Contains(e.id.key) {
			out = append(out, NamedInput{Name: e.name, ID: e.id})
		}
	}
	return out
}

// OutputPorts lists the node's live output ports in ordinal order, or nil if
// the node does not exist.
func (g *Graph[N, T, V]) OutputPorts(node NodeID) []NamedOutput {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rec, ok := g.nodes.Get(node.key)
	if !ok {
		return nil
	}
	out := make([]NamedOutput, 0, len(rec.outputs))
	for _, e := range rec.outputs {
		if g.outputs.Contains(e.id.key) {
			out = append(out, NamedOutput{Name: e.name, ID: e.id})
		}
	}
	return out
}

// InputPortInfo returns a snapshot of the input port ref resolves to.
func (g *Graph[N, T, V]) InputPortInfo(ref InputRef) (PortInfo[T, V], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := ref.Resolve(g.view())
	if !ok {
		return PortInfo[T, V]{}, false
	}
	p := g.inputs.Ptr(id.key)
	return PortInfo[T, V]{
		Node:        p.node,
		Name:        p.name,
		Type:        p.ty,
		Default:     p.def,
		HasDefault:  p.hasDefault,
		Connections: slices.Clone(p.conns),
	}, true
}

// OutputPortInfo returns a snapshot of the output port ref resolves to.
func (g *Graph[N, T, V]) OutputPortInfo(ref OutputRef) (PortInfo[T, V], bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := ref.Resolve(g.view())
	if !ok {
		return PortInfo[T, V]{}, false
	}
	p := g.outputs.Ptr(id.key)
	return PortInfo[T, V]{
		Node:        p.node,
		Name:        p.name,
		Type:        p.ty,
		Connections: slices.Clone(p.conns),
	}, true
}

// Connection returns the endpoints of a live connection.
func (g *Graph[N, T, V]) Connection(id ConnectionID) (Connection, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.conns.Get(id.key)
}

// Connections returns every live connection id in slot order.
func (g *Graph[N, T, V]) Connections() []ConnectionID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]ConnectionID, 0, g.conns.Len())
	for key := range g.conns.All() {
		ids = append(ids, ConnectionID{key})
	}
	return ids
}

// Sources returns the output ports feeding the input ref resolves to, in
// connection order.
func (g *Graph[N, T, V]) Sources(ref InputRef) []OutputPortID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := ref.Resolve(g.view())
	if !ok {
		return nil
	}
	return g.sources(id)
}

func (g *Graph[N, T, V]) sources(id InputPortID) []OutputPortID {
	p := g.inputs.Ptr(id.key)
	out := make([]OutputPortID, 0, len(p.conns))
	for _, cid := range p.conns {
		if c, ok := g.conns.Get(cid.key); ok {
			out = append(out, c.From)
		}
	}
	return out
}

// Targets returns the input ports fed by the output ref resolves to, in
// connection order.
func (g *Graph[N, T, V]) Targets(ref OutputRef) []InputPortID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := ref.Resolve(g.view())
	if !ok {
		return nil
	}
	p := g.outputs.Ptr(id.key)
	out := make([]InputPortID, 0, len(p.conns))
	for _, cid := range p.conns {
		if c, ok := g.conns.Get(cid.key); ok {
			out = append(out, c.To)
		}
	}
	return out
}

// DirectDependencies returns the nodes owning an output connected to any
// input of node, deduplicated, in first-seen order.
func (g *Graph[N, T, V]) DirectDependencies(node NodeID) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.directDependencies(node)
}

func (g *Graph[N, T, V]) directDependencies(node NodeID) []NodeID {
	rec, ok := g.nodes.Get(node.key)
	if !ok {
		return nil
	}
	var deps []NodeID
	seen := make(map[NodeID]struct{})
	for _, e := range rec.inputs {
		p := g.inputs.Ptr(e.id.key)
		if p == nil {
			continue
		}
		for _, cid := range p.conns {
			c, ok := g.conns.Get(cid.key)
			if !ok {
				continue
			}
			owner := g.outputs.Ptr(c.From.key).node
			if _, dup := seen[owner]; dup {
				continue
			}
			seen[owner] = struct{}{}
			deps = append(deps, owner)
		}
	}
	return deps
}

// =============================================================================
// Unlocked resolution
// =============================================================================

// view resolves against g's tables without locking. Callers hold g.mu.
func (g *Graph[N, T, V]) view() tables[N, T, V] { return tables[N, T, V]{g} }

type tables[N Node[T, V], T DataType[T], V any] struct{ g *Graph[N, T, V] }

func (t tables[N, T, V]) HasInputPort(id InputPortID) bool { return t.g.inputs.Contains(id.key) }

func (t tables[N, T, V]) HasOutputPort(id OutputPortID) bool { return t.g.outputs.Contains(id.key) }

func (t tables[N, T, V]) InputPort(node NodeID, name string) (InputPortID, bool) {
	rec, ok := t.g.nodes.Get(node.key)
	if !ok {
		return InputPortID{}, false
	}
	for _, e := range rec.inputs {
		if e.name == name && t.g.inputs.Contains(e.id.key) {
			return e.id, true
		}
	}
	return InputPortID{}, false
}

func (t tables[N, T, V]) OutputPort(node NodeID, name string) (OutputPortID, bool) {
	rec, ok := t.g.nodes.Get(node.key)
	if !ok {
		return OutputPortID{}, false
	}
	for _, e := range rec.outputs {
		if e.name == name && t.g.outputs.Contains(e.id.key) {
			return e.id, true
		}
	}
	return OutputPortID{}, false
}

func (t tables[N, T, V]) InputPortAt(node NodeID, i int) (InputPortID, bool) {
	rec, ok := t.g.nodes.Get(node.key)
	if !ok || i < 0 || i >= len(rec.inputs) {
		return InputPortID{}, false
	}
	id := rec.inputs[i].id
	return id, t.g.inputs.Contains(id.key)
}

func (t tables[N, T, V]) OutputPortAt(node NodeID, i int) (OutputPortID, bool) {
	rec, ok := t.g.nodes.Get(node.key)
	if !ok || i < 0 || i >= len(rec.outputs) {
		return OutputPortID{}, false
	}
	id := rec.outputs[i].id
	return id, t.g.outputs.Contains(id.key)
}
