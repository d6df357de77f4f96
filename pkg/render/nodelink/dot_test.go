package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/nodegraph/pkg/mathgraph"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

// product builds five * seven -> record, plus one unconnected constant.
func product() (*mathgraph.Graph, map[nodegraph.NodeID]string) {
	g := mathgraph.NewGraph()
	five := g.CreateNode(mathgraph.Constant(mathgraph.Float(5)))
	seven := g.CreateNode(mathgraph.Constant(mathgraph.Float(7)))
	mul := g.CreateNode(mathgraph.NewNode(mathgraph.KindMultiply))
	out := g.CreateNode(mathgraph.NewNode(mathgraph.KindRecord))
	spare := g.CreateNode(mathgraph.Constant(mathgraph.Int(1)))
	g.MustConnect(nodegraph.OutputAt(five, 0), nodegraph.InputNamed(mul, "a"))
	g.MustConnect(nodegraph.OutputAt(seven, 0), nodegraph.InputNamed(mul, "b"))
	g.MustConnect(nodegraph.OutputAt(mul, 0), nodegraph.InputAt(out, 0))
	g.SetDefaultValue(nodegraph.InputNamed(mul, "b"), mathgraph.Float(1))

	names := map[nodegraph.NodeID]string{five: "five", seven: "seven", mul: "mul", out: "out", spare: "spare"}
	return g, names
}

func TestToDOT_Basic(t *testing.T) {
	g, names := product()
	dot := ToDOT(g, names, Options{})

	for _, want := range []string{
		"digraph G",
		`"mul" [label="{{<i0> a|<i1> b}|mul|{<o0> result}}"`,
		`"out" [label="{{<i0> value}|out}"`,
		`"five" [label="{five|{<o0> value}}"`,
		`"five":o0 -> "mul":i0;`,
		`"seven":o0 -> "mul":i1;`,
		`"mul":o0 -> "out":i0;`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_Categories(t *testing.T) {
	g, names := product()
	dot := ToDOT(g, names, Options{})

	tests := map[string]string{
		`"five"`:  `fillcolor="#d4edda"`,
		`"mul"`:   `fillcolor=white`,
		`"out"`:   `fillcolor="#f8d7da"`,
		`"spare"`: `fillcolor=lightgrey`,
	}
	for node, fill := range tests {
		line := findLine(dot, "  "+node+" [")
		if !strings.Contains(line, fill) {
			t.Errorf("node %s line %q missing %s", node, line, fill)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g, names := product()
	dot := ToDOT(g, names, Options{Detailed: true})

	for _, want := range []string{
		`<i1> b: float = 1`,
		`<o0> result: float`,
		`five\nconstant(5)`,
		`<o0> value: int`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_UnnamedNodes(t *testing.T) {
	g, _ := product()
	dot := ToDOT(g, nil, Options{})
	if !strings.Contains(dot, `"node(0v1)"`) {
		t.Errorf("unnamed node not labelled by handle:\n%s", dot)
	}
}

func TestEscape(t *testing.T) {
	if got, want := escape(`a|b{c}<d>"e"`), `a\|b\{c\}\<d\>\"e\"`; got != want {
		t.Errorf("escape() = %s, want %s", got, want)
	}
}

func TestRenderSVG(t *testing.T) {
	g, names := product()
	svg, err := RenderSVG(context.Background(), ToDOT(g, names, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("RenderSVG() did not normalize the svg tag: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" viewBox="0.00 0.00 120.50 80.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120.50 80.00" width="120" height="80"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}
	if raw := []byte("<svg>"); string(normalizeViewBox(raw)) != "<svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}

func findLine(s, prefix string) string {
	for line := range strings.Lines(s) {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
