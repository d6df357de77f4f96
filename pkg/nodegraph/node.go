package nodegraph

// =============================================================================
// Capabilities implemented by callers
// =============================================================================

// DataType is the type-tag capability. Type tags are compared with == and
// gate every connection through CanConvertTo. Most implementations return
// t == other; override it to allow implicit conversions.
type DataType[T any] interface {
	comparable
	CanConvertTo(other T) bool
}

// Untyped is a DataType with a single tag that converts to itself, for graphs
// that do not distinguish port types.
type Untyped struct{}

// CanConvertTo always reports true.
func (Untyped) CanConvertTo(Untyped) bool { return true }

// Hooks are the lifecycle notifications a node receives from the graph store.
// They run synchronously inside the mutating call, with the structural lock
// and the node's own write lock held, so they must not call back into the
// graph. Embed [NoopHooks] to implement only the ones you need.
type Hooks[T any] interface {
	InputPortCreated(name string, ty T, id InputPortID)
	InputConnectionAdded(port InputPortID, conn ConnectionID)
	InputConnectionRemoved(port InputPortID, conn ConnectionID)
	OutputPortCreated(name string, ty T, id OutputPortID)
	OutputConnectionAdded(port OutputPortID, conn ConnectionID)
	OutputConnectionRemoved(port OutputPortID, conn ConnectionID)
}

// Node is the capability a caller's node state implements. InitialPorts is
// evaluated once, when the node is created.
type Node[T DataType[T], V any] interface {
	Hooks[T]
	InitialPorts() InitialPorts[T, V]
}

// NoopHooks implements every [Hooks] method as a no-op.
type NoopHooks[T any] struct{}

func (NoopHooks[T]) InputPortCreated(string, T, InputPortID)             {}
func (NoopHooks[T]) InputConnectionAdded(InputPortID, ConnectionID)      {}
func (NoopHooks[T]) InputConnectionRemoved(InputPortID, ConnectionID)    {}
func (NoopHooks[T]) OutputPortCreated(string, T, OutputPortID)           {}
func (NoopHooks[T]) OutputConnectionAdded(OutputPortID, ConnectionID)    {}
func (NoopHooks[T]) OutputConnectionRemoved(OutputPortID, ConnectionID) {}

// Cloner is implemented by values that must be deep-copied when read out of
// an output cache or a port default.
type Cloner[V any] interface {
	Clone() V
}

func cloneValue[V any](v V) V {
	if c, ok := any(v).(Cloner[V]); ok {
		return c.Clone()
	}
	return v
}

// =============================================================================
// Port specifications
// =============================================================================

// InputSpec declares an input port. An input without a default must be
// connected (and its producer evaluated) before it can be read.
type InputSpec[T any, V any] struct {
	Name       string
	Type       T
	Default    V
	HasDefault bool
}

// WithDefault returns a copy of s with v as its default value.
func (s InputSpec[T, V]) WithDefault(v V) InputSpec[T, V] {
	s.Default = v
	s.HasDefault = true
	return s
}

// OutputSpec declares an output port.
type OutputSpec[T any] struct {
	Name string
	Type T
}

// InitialPorts lists the ports a node is created with, in ordinal order.
type InitialPorts[T any, V any] struct {
	Inputs  []InputSpec[T, V]
	Outputs []OutputSpec[T]
}

// =============================================================================
// Templates
// =============================================================================

// Template pairs a node with an optional post-creation callback. A node
// cannot know its own id while declaring its initial ports, so setup that
// depends on the id (creating dynamic ports, registering elsewhere) goes into
// PostCreate, which runs once the node and its initial ports exist.
type Template[N Node[T, V], T DataType[T], V any] struct {
	Node       N
	PostCreate func(g *Graph[N, T, V], id NodeID)
}
