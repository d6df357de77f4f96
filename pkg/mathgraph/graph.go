package mathgraph

import (
	"fmt"

	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

type (
	// Graph is a node graph of math nodes.
	Graph = nodegraph.Graph[*Node, Type, Value]
	// Context is the evaluation context math nodes receive.
	Context = nodegraph.Context[*Node, Type, Value]
	// Walker walks a math graph.
	Walker = nodegraph.Walker[*Node, Type, Value]
	// Template is a math node with an optional post-creation hook.
	Template = nodegraph.Template[*Node, Type, Value]
	// Cache holds computed output values.
	Cache = nodegraph.OutputCache[Value]
)

// NewGraph creates an empty math graph.
func NewGraph() *Graph { return nodegraph.New[*Node, Type, Value]() }

// NewWalker creates a walker over the complete execution path of g.
func NewWalker(g *Graph, opts nodegraph.WalkOptions) *Walker {
	return nodegraph.NewWalker(g, opts)
}

// Evaluate is the walk callback for math graphs.
func Evaluate(n **Node, c *Context) { (*n).Evaluate(c) }

// Variadic returns a template for an aggregate node that gets n extra float
// inputs named v0 through v(n-1) once it exists. Each extra input defaults
// to zero.
func Variadic(kind Kind, n int) Template {
	return Template{
		Node: NewNode(kind),
		PostCreate: func(g *Graph, id nodegraph.NodeID) {
			for i := range n {
				g.MustCreateInputPort(id, nodegraph.InputSpec[Type, Value]{
					Name: fmt.Sprintf("v%d", i),
					Type: TypeFloat,
				}.WithDefault(Float(0)))
			}
		},
	}
}
