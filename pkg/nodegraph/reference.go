package nodegraph

import "strconv"

// Resolver is the lookup surface references resolve against. [Graph]
// implements it.
type Resolver interface {
	HasInputPort(id InputPortID) bool
	HasOutputPort(id OutputPortID) bool
	InputPort(node NodeID, name string) (InputPortID, bool)
	OutputPort(node NodeID, name string) (OutputPortID, bool)
	InputPortAt(node NodeID, i int) (InputPortID, bool)
	OutputPortAt(node NodeID, i int) (OutputPortID, bool)
}

// PortKey selects a port on a known node either by ordinal position or by
// name. Build one with [Index] or [Name].
type PortKey struct {
	index  int
	name   string
	byName bool
}

// Index selects the port at ordinal position i.
func Index(i int) PortKey { return PortKey{index: i} }

// Name selects the live port called name.
func Name(name string) PortKey { return PortKey{name: name, byName: true} }

// IsName reports whether k selects by name.
func (k PortKey) IsName() bool { return k.byName }

func (k PortKey) String() string {
	if k.byName {
		return strconv.Quote(k.name)
	}
	return "#" + strconv.Itoa(k.index)
}

type refKind uint8

const (
	refInvalid refKind = iota
	refDirect
	refOrdinal
	refName
	refDynamic
)

// InputRef names an input port: directly by id, by (node, position), by
// (node, name), or through a [PortKey] chosen at runtime. The zero value
// never resolves.
//
// A reference is resolved again on every use, so it stays meaningful across
// graph mutations while a resolved [InputPortID] does not.
type InputRef struct {
	kind refKind
	id   InputPortID
	node NodeID
	key  PortKey
}

// OutputRef names an output port. See [InputRef].
type OutputRef struct {
	kind refKind
	id   OutputPortID
	node NodeID
	key  PortKey
}

// InputID references an input port by handle.
func InputID(id InputPortID) InputRef { return InputRef{kind: refDirect, id: id} }

// InputAt references the input port at ordinal position i of node.
func InputAt(node NodeID, i int) InputRef {
	return InputRef{kind: refOrdinal, node: node, key: Index(i)}
}

// InputNamed references the input port called name on node.
func InputNamed(node NodeID, name string) InputRef {
	return InputRef{kind: refName, node: node, key: Name(name)}
}

// OutputID references an output port by handle.
func OutputID(id OutputPortID) OutputRef { return OutputRef{kind: refDirect, id: id} }

// OutputAt references the output port at ordinal position i of node.
func OutputAt(node NodeID, i int) OutputRef {
	return OutputRef{kind: refOrdinal, node: node, key: Index(i)}
}

// OutputNamed references the output port called name on node.
func OutputNamed(node NodeID, name string) OutputRef {
	return OutputRef{kind: refName, node: node, key: Name(name)}
}

// Resolve returns the port r names in the current state of res. A direct
// reference resolves only while its port is alive.
func (r InputRef) Resolve(res Resolver) (InputPortID, bool) {
	switch r.kind {
	case refDirect:
		if res.HasInputPort(r.id) {
			return r.id, true
		}
	case refOrdinal, refName, refDynamic:
		if r.key.byName {
			return res.InputPort(r.node, r.key.name)
		}
		return res.InputPortAt(r.node, r.key.index)
	}
	return InputPortID{}, false
}

// Resolve returns the port r names in the current state of res.
func (r OutputRef) Resolve(res Resolver) (OutputPortID, bool) {
	switch r.kind {
	case refDirect:
		if res.HasOutputPort(r.id) {
			return r.id, true
		}
	case refOrdinal, refName, refDynamic:
		if r.key.byName {
			return res.OutputPort(r.node, r.key.name)
		}
		return res.OutputPortAt(r.node, r.key.index)
	}
	return OutputPortID{}, false
}

func (r InputRef) String() string {
	return formatRef(r.kind, r.id.String(), r.node, r.key, "input")
}

func (r OutputRef) String() string {
	return formatRef(r.kind, r.id.String(), r.node, r.key, "output")
}

func formatRef(kind refKind, id string, node NodeID, key PortKey, side string) string {
	switch kind {
	case refDirect:
		return id
	case refOrdinal, refName, refDynamic:
		return node.String() + " " + side + " " + key.String()
	default:
		return "invalid " + side + " reference"
	}
}
