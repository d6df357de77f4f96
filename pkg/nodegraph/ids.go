package nodegraph

import "github.com/matzehuels/nodegraph/pkg/arena"

// NodeID identifies a node in a [Graph]. The zero value is the nil handle.
type NodeID struct{ key arena.Key }

// InputPortID identifies an input port. The zero value is the nil handle.
type InputPortID struct{ key arena.Key }

// OutputPortID identifies an output port. The zero value is the nil handle.
type OutputPortID struct{ key arena.Key }

// ConnectionID identifies a connection. The zero value is the nil handle.
type ConnectionID struct{ key arena.Key }

// IsNil reports whether id is the zero handle.
func (id NodeID) IsNil() bool { return id.key.IsNull() }

// IsNil reports whether id is the zero handle.
func (id InputPortID) IsNil() bool { return id.key.IsNull() }

// IsNil reports whether id is the zero handle.
func (id OutputPortID) IsNil() bool { return id.key.IsNull() }

// IsNil reports whether id is the zero handle.
func (id ConnectionID) IsNil() bool { return id.key.IsNull() }

func (id NodeID) String() string       { return "node(" + id.key.String() + ")" }
func (id InputPortID) String() string  { return "in(" + id.key.String() + ")" }
func (id OutputPortID) String() string { return "out(" + id.key.String() + ")" }
func (id ConnectionID) String() string { return "conn(" + id.key.String() + ")" }

// Input returns a dynamic reference to one of the node's input ports,
// selected by position or by name depending on key.
//
//	g.Connect(a.Output(nodegraph.Index(0)), b.Input(nodegraph.Name("in")))
func (id NodeID) Input(key PortKey) InputRef {
	return InputRef{kind: refDynamic, node: id, key: key}
}

// Output returns a dynamic reference to one of the node's output ports.
func (id NodeID) Output(key PortKey) OutputRef {
	return OutputRef{kind: refDynamic, node: id, key: key}
}

// Ref returns a direct reference to the port.
func (id InputPortID) Ref() InputRef { return InputID(id) }

// Ref returns a direct reference to the port.
func (id OutputPortID) Ref() OutputRef { return OutputID(id) }
