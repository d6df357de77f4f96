package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/nodegraph/pkg/mathgraph"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
	"github.com/matzehuels/nodegraph/pkg/render/nodelink"
)

func ExampleToDOT() {
	g := mathgraph.NewGraph()
	x := g.CreateNode(mathgraph.Constant(mathgraph.Float(2)))
	neg := g.CreateNode(mathgraph.NewNode(mathgraph.KindNegate))
	g.MustConnect(nodegraph.OutputAt(x, 0), nodegraph.InputNamed(neg, "x"))

	dot := nodelink.ToDOT(g, map[nodegraph.NodeID]string{x: "x", neg: "neg"}, nodelink.Options{})
	for line := range strings.Lines(dot) {
		if strings.Contains(line, "->") {
			fmt.Print(strings.TrimSpace(line))
		}
	}
	// Output:
	// "x":o0 -> "neg":i0;
}
