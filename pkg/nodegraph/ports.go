package nodegraph

import (
	"slices"

	"github.com/matzehuels/nodegraph/pkg/errors"
)

// addInput creates an input port and fires the creation hook. Callers hold
// g.mu and the node's write lock.
func (g *Graph[N, T, V]) addInput(node NodeID, c *cell[N], spec InputSpec[T, V]) InputPortID {
	id := InputPortID{g.inputs.Insert(inputPort[T, V]{
		node:       node,
		name:       spec.Name,
		ty:         spec.Type,
		def:        spec.Default,
		hasDefault: spec.HasDefault,
	})}
	rec := g.nodes.Ptr(node.key)
	rec.inputs = append(rec.inputs, portEntry[InputPortID]{name: spec.Name, id: id})
	c.state.InputPortCreated(spec.Name, spec.Type, id)
	return id
}

// addOutput creates an output port and fires the creation hook. Callers hold
// g.mu and the node's write lock.
func (g *Graph[N, T, V]) addOutput(node NodeID, c *cell[N], spec OutputSpec[T]) OutputPortID {
	id := OutputPortID{g.outputs.Insert(outputPort[T]{
		node: node,
		name: spec.Name,
		ty:   spec.Type,
	})}
	rec := g.nodes.Ptr(node.key)
	rec.outputs = append(rec.outputs, portEntry[OutputPortID]{name: spec.Name, id: id})
	c.state.OutputPortCreated(spec.Name, spec.Type, id)
	return id
}

// CreateInputPort appends an input port to node. It fails with
// NODE_NOT_FOUND if the node does not exist and with DUPLICATE_PORT if the
// node already has a live input port of that name.
func (g *Graph[N, T, V]) CreateInputPort(node NodeID, spec InputSpec[T, V]) (InputPortID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.states.Get(node.key)
	if !ok {
		return InputPortID{}, errors.New(errors.ErrCodeNodeNotFound, "%v does not exist", node)
	}
	if _, dup := g.view().InputPort(node, spec.Name); dup {
		return InputPortID{}, errors.New(errors.ErrCodeDuplicatePort, "%v already has an input port %q", node, spec.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return g.addInput(node, c, spec), nil
}

// MustCreateInputPort is like [Graph.CreateInputPort] but panics on failure.
func (g *Graph[N, T, V]) MustCreateInputPort(node NodeID, spec InputSpec[T, V]) InputPortID {
	id, err := g.CreateInputPort(node, spec)
	if err != nil {
		panic(err)
	}
	return id
}

// CreateOutputPort appends an output port to node. Failure codes match
// [Graph.CreateInputPort].
func (g *Graph[N, T, V]) CreateOutputPort(node NodeID, spec OutputSpec[T]) (OutputPortID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.states.Get(node.key)
	if !ok {
		return OutputPortID{}, errors.New(errors.ErrCodeNodeNotFound, "%v does not exist", node)
	}
	if _, dup := g.view().OutputPort(node, spec.Name); dup {
		return OutputPortID{}, errors.New(errors.ErrCodeDuplicatePort, "%v already has an output port %q", node, spec.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return g.addOutput(node, c, spec), nil
}

// MustCreateOutputPort is like [Graph.CreateOutputPort] but panics on failure.
func (g *Graph[N, T, V]) MustCreateOutputPort(node NodeID, spec OutputSpec[T]) OutputPortID {
	id, err := g.CreateOutputPort(node, spec)
	if err != nil {
		panic(err)
	}
	return id
}

// DeleteInputPort removes the input port ref resolves to together with every
// connection feeding it. Each producer's node receives
// OutputConnectionRemoved. It reports false if ref does not resolve.
func (g *Graph[N, T, V]) DeleteInputPort(ref InputRef) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := ref.Resolve(g.view())
	if !ok {
		return false
	}
	port, _ := g.inputs.Remove(id.key)
	for _, cid := range port.conns {
		conn, ok := g.conns.Remove(cid.key)
		if !ok {
			continue
		}
		g.detachOutput(conn.From, cid)
	}
	return true
}

// DeleteOutputPort removes the output port ref resolves to together with
// every connection leaving it. Each consumer's node receives
// InputConnectionRemoved. It reports false if ref does not resolve.
func (g *Graph[N, T, V]) DeleteOutputPort(ref OutputRef) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := ref.Resolve(g.view())
	if !ok {
		return false
	}
	port, _ := g.outputs.Remove(id.key)
	for _, cid := range port.conns {
		conn, ok := g.conns.Remove(cid.key)
		if !ok {
			continue
		}
		g.detachInput(conn.To, cid)
	}
	return true
}

// detachOutput drops cid from an output port's list and notifies its node.
func (g *Graph[N, T, V]) detachOutput(id OutputPortID, cid ConnectionID) {
	p := g.outputs.Ptr(id.key)
	if p == nil {
		return
	}
	p.conns = slices.DeleteFunc(p.conns, func(c ConnectionID) bool { return c == cid })
	g.notify(p.node, func(n N) { n.OutputConnectionRemoved(id, cid) })
}

// detachInput drops cid from an input port's list and notifies its node.
func (g *Graph[N, T, V]) detachInput(id InputPortID, cid ConnectionID) {
	p := g.inputs.Ptr(id.key)
	if p == nil {
		return
	}
	p.conns = slices.DeleteFunc(p.conns, func(c ConnectionID) bool { return c == cid })
	g.notify(p.node, func(n N) { n.InputConnectionRemoved(id, cid) })
}

// notify runs a lifecycle hook under the node's write lock. Callers hold g.mu.
func (g *Graph[N, T, V]) notify(node NodeID, hook func(N)) {
	c, ok := g.states.Get(node.key)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	hook(c.state)
}

// SetDefaultValue replaces the default of the input port ref resolves to.
// Values already computed by a walker are not affected.
func (g *Graph[N, T, V]) SetDefaultValue(ref InputRef, v V) error {
	return g.editDefault(ref, func(p *inputPort[T, V]) {
		p.def = v
		p.hasDefault = true
	})
}

// ClearDefaultValue removes the default of the input port ref resolves to.
func (g *Graph[N, T, V]) ClearDefaultValue(ref InputRef) error {
	return g.editDefault(ref, func(p *inputPort[T, V]) {
		var zero V
		p.def = zero
		p.hasDefault = false
	})
}

func (g *Graph[N, T, V]) editDefault(ref InputRef, edit func(*inputPort[T, V])) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, ok := ref.Resolve(g.view())
	if !ok {
		return errors.New(errors.ErrCodePortNotFound, "%v does not resolve", ref)
	}
	edit(g.inputs.Ptr(id.key))
	return nil
}
