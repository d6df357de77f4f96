package nodegraph_test

import (
	"fmt"

	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

type testType int

const (
	tNum testType = iota
	tText
	tAny
)

// numbers convert to anything accepting tAny
func (t testType) CanConvertTo(other testType) bool { return t == other || other == tAny }

func (t testType) String() string {
	return [...]string{"num", "text", "any"}[t]
}

type (
	graph   = nodegraph.Graph[*testNode, testType, int]
	evalCtx = nodegraph.Context[*testNode, testType, int]
)

type testNode struct {
	name    string
	ports   nodegraph.InitialPorts[testType, int]
	eval    func(n *testNode, c *evalCtx)
	events  []string
	seen    []int
	visited int
}

func (n *testNode) InitialPorts() nodegraph.InitialPorts[testType, int] { return n.ports }

func (n *testNode) InputPortCreated(name string, _ testType, _ nodegraph.InputPortID) {
	n.events = append(n.events, "input created "+name)
}

func (n *testNode) InputConnectionAdded(nodegraph.InputPortID, nodegraph.ConnectionID) {
	n.events = append(n.events, "input connected")
}

func (n *testNode) InputConnectionRemoved(nodegraph.InputPortID, nodegraph.ConnectionID) {
	n.events = append(n.events, "input disconnected")
}

func (n *testNode) OutputPortCreated(name string, _ testType, _ nodegraph.OutputPortID) {
	n.events = append(n.events, "output created "+name)
}

func (n *testNode) OutputConnectionAdded(nodegraph.OutputPortID, nodegraph.ConnectionID) {
	n.events = append(n.events, "output connected")
}

func (n *testNode) OutputConnectionRemoved(nodegraph.OutputPortID, nodegraph.ConnectionID) {
	n.events = append(n.events, "output disconnected")
}

func (n *testNode) String() string { return n.name }

func in(name string) nodegraph.InputSpec[testType, int] {
	return nodegraph.InputSpec[testType, int]{Name: name, Type: tNum}
}

func out(name string) nodegraph.OutputSpec[testType] {
	return nodegraph.OutputSpec[testType]{Name: name, Type: tNum}
}

func newNode(name string, inputs []nodegraph.InputSpec[testType, int], outputs ...nodegraph.OutputSpec[testType]) *testNode {
	return &testNode{
		name:  name,
		ports: nodegraph.InitialPorts[testType, int]{Inputs: inputs, Outputs: outputs},
	}
}

// emitter has one output and sets it to v.
func emitter(name string, v int) *testNode {
	n := newNode(name, nil, out("out"))
	n.eval = func(n *testNode, c *evalCtx) {
		n.visited++
		c.Set(nodegraph.Name("out"), v)
	}
	return n
}

// doubler reads "in" and writes twice its value to "out".
func doubler(name string) *testNode {
	n := newNode(name, []nodegraph.InputSpec[testType, int]{in("in")}, out("out"))
	n.eval = func(n *testNode, c *evalCtx) {
		n.visited++
		c.Set(nodegraph.Name("out"), 2*c.Get(nodegraph.Name("in")))
	}
	return n
}

// recorder reads its first input into seen.
func recorder(name string, inputs ...nodegraph.InputSpec[testType, int]) *testNode {
	if len(inputs) == 0 {
		inputs = []nodegraph.InputSpec[testType, int]{in("in")}
	}
	n := newNode(name, inputs)
	n.eval = func(n *testNode, c *evalCtx) {
		n.visited++
		n.seen = append(n.seen, c.Get(nodegraph.Index(0)))
	}
	return n
}

func evaluate(n **testNode, c *evalCtx) {
	if (*n).eval != nil {
		(*n).eval(*n, c)
	}
}

// names maps ids back to node names via the node state.
func names(g *graph, ids []nodegraph.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if !g.View(id, func(n *testNode) { out[i] = n.name }) {
			out[i] = fmt.Sprintf("<missing %v>", id)
		}
	}
	return out
}

// chain builds A -> B -> C where A emits 5, B doubles and C records.
func chain() (g *graph, a, b, c nodegraph.NodeID, rec *testNode) {
	g = nodegraph.New[*testNode, testType, int]()
	a = g.CreateNode(emitter("A", 5))
	b = g.CreateNode(doubler("B"))
	rec = recorder("C")
	c = g.CreateNode(rec)
	g.MustConnect(nodegraph.OutputAt(a, 0), nodegraph.InputNamed(b, "in"))
	g.MustConnect(nodegraph.OutputAt(b, 0), nodegraph.InputAt(c, 0))
	return g, a, b, c, rec
}
