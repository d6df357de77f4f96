package mathgraph

import (
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"slices"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

// Kind selects what a node computes.
type Kind string

const (
	KindConstant Kind = "constant"
	KindAdd      Kind = "add"
	KindSubtract Kind = "subtract"
	KindMultiply Kind = "multiply"
	KindDivide   Kind = "divide"
	KindNegate   Kind = "negate"
	KindSum      Kind = "sum"
	KindMax      Kind = "max"
	KindCompare  Kind = "compare"
	KindSelect   Kind = "select"
	KindRecord   Kind = "record"
	KindPrint    Kind = "print"
)

// Kinds lists every node kind.
var Kinds = []Kind{
	KindConstant, KindAdd, KindSubtract, KindMultiply, KindDivide, KindNegate,
	KindSum, KindMax, KindCompare, KindSelect, KindRecord, KindPrint,
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !slices.Contains(Kinds, k) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown node kind %q", s)
	}
	return k, nil
}

// IsSink reports whether nodes of kind k have no outputs.
func (k Kind) IsSink() bool { return k == KindRecord || k == KindPrint }

// IsAggregate reports whether nodes of kind k combine every value arriving on
// every input.
func (k Kind) IsAggregate() bool { return k == KindSum || k == KindMax }

// Node is the state of one math node.
type Node struct {
	nodegraph.NoopHooks[Type]

	Kind  Kind
	Value Value     // constant output
	Label string    // print prefix
	Out   io.Writer // print destination, os.Stdout when nil

	// Recorded holds every value a record node has seen, one per walk.
	Recorded []Value

	inputs []string
	links  int
}

// NewNode returns a node of the given kind.
func NewNode(kind Kind) *Node { return &Node{Kind: kind} }

// Constant returns a constant node emitting v.
func Constant(v Value) *Node { return &Node{Kind: KindConstant, Value: v} }

// Printer returns a print node writing "label: value" lines to w.
func Printer(label string, w io.Writer) *Node {
	return &Node{Kind: KindPrint, Label: label, Out: w}
}

func float(name string) nodegraph.InputSpec[Type, Value] {
	return nodegraph.InputSpec[Type, Value]{Name: name, Type: TypeFloat}
}

func result(t Type) []nodegraph.OutputSpec[Type] {
	return []nodegraph.OutputSpec[Type]{{Name: "result", Type: t}}
}

// InitialPorts declares the ports of each kind.
func (n *Node) InitialPorts() nodegraph.InitialPorts[Type, Value] {
	type ports = nodegraph.InitialPorts[Type, Value]
	type ins = []nodegraph.InputSpec[Type, Value]

	switch n.Kind {
	case KindConstant:
		return ports{Outputs: []nodegraph.OutputSpec[Type]{{Name: "value", Type: n.Value.Type}}}
	case KindAdd, KindSubtract, KindMultiply, KindDivide:
		return ports{Inputs: ins{float("a"), float("b")}, Outputs: result(TypeFloat)}
	case KindNegate:
		return ports{Inputs: ins{float("x")}, Outputs: result(TypeFloat)}
	case KindSum, KindMax:
		return ports{Inputs: ins{float("values")}, Outputs: result(TypeFloat)}
	case KindCompare:
		return ports{Inputs: ins{float("a"), float("b")}, Outputs: result(TypeBool)}
	case KindSelect:
		cond := nodegraph.InputSpec[Type, Value]{Name: "cond", Type: TypeBool}
		return ports{Inputs: ins{cond, float("a"), float("b")}, Outputs: result(TypeFloat)}
	case KindRecord, KindPrint:
		return ports{Inputs: ins{{Name: "value", Type: TypeAny}}}
	default:
		return ports{}
	}
}

// InputPortCreated remembers input names in creation order so aggregate
// nodes can visit ports added after construction.
func (n *Node) InputPortCreated(name string, _ Type, _ nodegraph.InputPortID) {
	n.inputs = append(n.inputs, name)
}

// InputConnectionAdded counts incoming links.
func (n *Node) InputConnectionAdded(nodegraph.InputPortID, nodegraph.ConnectionID) { n.links++ }

// InputConnectionRemoved counts incoming links.
func (n *Node) InputConnectionRemoved(nodegraph.InputPortID, nodegraph.ConnectionID) { n.links-- }

// Links returns the number of connections currently feeding the node.
func (n *Node) Links() int { return n.links }

// Inputs returns the names of every input port created on the node, deleted
// ones included.
func (n *Node) Inputs() []string { return slices.Clone(n.inputs) }

func (n *Node) String() string {
	switch n.Kind {
	case KindConstant:
		return fmt.Sprintf("constant(%v)", n.Value)
	case KindPrint:
		if n.Label != "" {
			return fmt.Sprintf("print(%s)", n.Label)
		}
	}
	return string(n.Kind)
}

// Evaluate computes the node's outputs from its inputs.
func (n *Node) Evaluate(c *Context) {
	f := func(port string) float64 { return c.Get(nodegraph.Name(port)).AsFloat() }
	set := func(v Value) { c.Set(nodegraph.Index(0), v) }

	switch n.Kind {
	case KindConstant:
		set(n.Value)
	case KindAdd:
		set(Float(f("a") + f("b")))
	case KindSubtract:
		set(Float(f("a") - f("b")))
	case KindMultiply:
		set(Float(f("a") * f("b")))
	case KindDivide:
		set(Float(f("a") / f("b")))
	case KindNegate:
		set(Float(-f("x")))
	case KindSum:
		total := 0.0
		for v := range n.all(c) {
			total += v.AsFloat()
		}
		set(Float(total))
	case KindMax:
		best := math.Inf(-1)
		for v := range n.all(c) {
			best = math.Max(best, v.AsFloat())
		}
		set(Float(best))
	case KindCompare:
		set(Bool(f("a") > f("b")))
	case KindSelect:
		if c.Get(nodegraph.Name("cond")).AsBool() {
			set(Float(f("a")))
		} else {
			set(Float(f("b")))
		}
	case KindRecord:
		n.Recorded = append(n.Recorded, c.Get(nodegraph.Name("value")))
	case KindPrint:
		w := n.Out
		if w == nil {
			w = os.Stdout
		}
		v := c.Get(nodegraph.Name("value"))
		if n.Label != "" {
			fmt.Fprintf(w, "%s: %v\n", n.Label, v)
		} else {
			fmt.Fprintln(w, v)
		}
	}
}

// all yields every value reaching any live input. An input without
// connections contributes its default if it has one.
func (n *Node) all(c *Context) iter.Seq[Value] {
	return func(yield func(Value) bool) {
		seen := make(map[string]bool, len(n.inputs))
		for _, name := range n.inputs {
			key := nodegraph.Name(name)
			if seen[name] || !c.CanGet(key) {
				continue
			}
			seen[name] = true
			found := false
			for v := range c.GetAll(key) {
				found = true
				if !yield(v) {
					return
				}
			}
			if found {
				continue
			}
			v, err := c.Lookup(key)
			switch {
			case err == nil:
				if !yield(v) {
					return
				}
			case errors.Is(err, errors.ErrCodeUncachedDependency):
				panic(err)
			}
		}
	}
}
