package nodegraph

import "github.com/matzehuels/nodegraph/pkg/errors"

// Connect links the output port from resolves to with the input port to
// resolves to. Every precondition is checked before the graph is touched:
// both references must resolve (PORT_NOT_FOUND), the ports must belong to
// different nodes (SAME_NODE), and the output type must convert to the input
// type (TYPE_MISMATCH). On failure the graph is unchanged and no hook runs.
//
// On success the output node receives OutputConnectionAdded, then the input
// node receives InputConnectionAdded.
func (g *Graph[N, T, V]) Connect(from OutputRef, to InputRef) (ConnectionID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	out, in, err := g.checkConnect(from, to)
	if err != nil {
		return ConnectionID{}, err
	}

	cid := ConnectionID{g.conns.Insert(Connection{From: out, To: in})}

	op := g.outputs.Ptr(out.key)
	op.conns = append(op.conns, cid)
	g.notify(op.node, func(n N) { n.OutputConnectionAdded(out, cid) })

	ip := g.inputs.Ptr(in.key)
	ip.conns = append(ip.conns, cid)
	g.notify(ip.node, func(n N) { n.InputConnectionAdded(in, cid) })

	return cid, nil
}

// MustConnect is like [Graph.Connect] but panics on failure.
func (g *Graph[N, T, V]) MustConnect(from OutputRef, to InputRef) ConnectionID {
	cid, err := g.Connect(from, to)
	if err != nil {
		panic(err)
	}
	return cid
}

// CanConnect reports whether Connect(from, to) would succeed.
func (g *Graph[N, T, V]) CanConnect(from OutputRef, to InputRef) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, _, err := g.checkConnect(from, to)
	return err == nil
}

func (g *Graph[N, T, V]) checkConnect(from OutputRef, to InputRef) (OutputPortID, InputPortID, error) {
	out, ok := from.Resolve(g.view())
	if !ok {
		return OutputPortID{}, InputPortID{}, errors.New(errors.ErrCodePortNotFound, "%v does not resolve", from)
	}
	in, ok := to.Resolve(g.view())
	if !ok {
		return OutputPortID{}, InputPortID{}, errors.New(errors.ErrCodePortNotFound, "%v does not resolve", to)
	}

	op := g.outputs.Ptr(out.key)
	ip := g.inputs.Ptr(in.key)
	if op.node == ip.node {
		return OutputPortID{}, InputPortID{}, errors.New(errors.ErrCodeSameNode,
			"cannot connect %q to %q: both ports belong to %v", op.name, ip.name, op.node)
	}
	if !op.ty.CanConvertTo(ip.ty) {
		return OutputPortID{}, InputPortID{}, errors.New(errors.ErrCodeTypeMismatch,
			"cannot connect %q (%v) to %q (%v)", op.name, op.ty, ip.name, ip.ty)
	}
	return out, in, nil
}

// Disconnect removes one connection from both of its ports. The output node
// receives OutputConnectionRemoved, then the input node receives
// InputConnectionRemoved. It reports false if the connection does not exist.
func (g *Graph[N, T, V]) Disconnect(id ConnectionID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	conn, ok := g.conns.Remove(id.key)
	if !ok {
		return false
	}
	g.detachOutput(conn.From, id)
	g.detachInput(conn.To, id)
	return true
}
