// Package nodegraph is an engine for building and evaluating node graphs.
//
// # Overview
//
// A node graph is a directed graph whose nodes expose named, typed input and
// output ports. Connections carry values from an output port of one node to
// an input port of another. Evaluation visits nodes in an order that always
// computes a node's dependencies before the node itself.
//
// The package has three parts:
//
//   - [Graph] owns nodes, ports and connections. Every link between entities
//     is a generational handle ([NodeID], [InputPortID], [OutputPortID],
//     [ConnectionID]); a handle to a removed entity resolves to "not found",
//     never to whatever reused its slot.
//   - [Analyzer] categorizes nodes by connectivity and computes execution
//     paths.
//   - [Walker] runs a caller-supplied callback for each node of a path,
//     caching output values in an [OutputCache] and giving each node a
//     [Context] to read inputs and write outputs.
//
// # Node Capabilities
//
// Callers supply three types. The node state N implements [Node]: it lists
// the ports it is created with and receives lifecycle hooks (embed
// [NoopHooks] for the ones you ignore). The type tag T implements [DataType]
// and gates every connection through CanConvertTo. The value type V is
// whatever the nodes compute; values implementing Clone() V are cloned when
// read out of the cache.
//
// # Referencing Ports
//
// Ports are named by [InputRef] and [OutputRef], which select a port by
// handle, by ordinal position, by name, or by a [PortKey] chosen at runtime.
// References are resolved again on every use:
//
//	g.MustConnect(nodegraph.OutputAt(a, 0), nodegraph.InputNamed(b, "in"))
//	g.MustConnect(b.Output(nodegraph.Index(0)), c.Input(nodegraph.Name("in")))
//
// Deleting a port never shifts the position of other ports on the same node.
//
// # Errors
//
// Lookups that find nothing return (zero, false) or nil. Contract violations
// (duplicate port names, self connections, incompatible types, reading an
// input that has neither a value nor a default) are *errors.Error values with
// a code from package errors. The error-returning forms (Connect,
// CreateInputPort) return them; the Must forms and [Context.Get] panic with
// them.
//
// # Basic Usage
//
//	g := nodegraph.New[*MyNode, MyType, float64]()
//	a := g.CreateNode(&MyNode{Kind: "const", Value: 5})
//	b := g.CreateNode(&MyNode{Kind: "double"})
//	g.MustConnect(nodegraph.OutputAt(a, 0), nodegraph.InputAt(b, 0))
//
//	w := nodegraph.NewWalker(g, nodegraph.WalkOptions{})
//	err := w.Walk(func(n **MyNode, c *nodegraph.Context[*MyNode, MyType, float64]) {
//	    (*n).Evaluate(c)
//	})
//
// # Concurrency
//
// A Graph is safe for concurrent use. Structural tables are guarded by one
// RWMutex and each node's state by its own RWMutex. Lifecycle hooks run with
// both held and must not call back into the graph. A walk is sequential and
// structural mutations must not run concurrently with it.
package nodegraph
