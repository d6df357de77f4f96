package pipeline

import (
	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

// Analysis is the analyzer's view of a built scene.
type Analysis struct {
	Categories nodegraph.Categories
	Path       []nodegraph.NodeID
}

// Analyze categorizes the scene's nodes and computes the complete execution
// path. Loose nodes are not on the path.
func Analyze(b *scene.Built) Analysis {
	a := nodegraph.NewAnalyzer(b.Graph)
	cats := a.Categorize()
	return Analysis{
		Categories: cats,
		Path:       a.ExecutionPath(cats.Exit),
	}
}

// PathNames returns the execution path as node names.
func (a Analysis) PathNames(b *scene.Built) []string {
	return names(b, a.Path)
}

// CategoryNames returns the categories as node names.
func (a Analysis) CategoryNames(b *scene.Built) Categories {
	return Categories{
		Loose: names(b, a.Categories.Loose),
		Entry: names(b, a.Categories.Entry),
		Exit:  names(b, a.Categories.Exit),
		Net:   names(b, a.Categories.Net),
	}
}

func names(b *scene.Built, ids []nodegraph.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = b.Name(id)
	}
	return out
}
