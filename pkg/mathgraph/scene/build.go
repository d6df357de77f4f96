package scene

import (
	"io"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/mathgraph"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Output receives print node output. Nil means os.Stdout.
	Output io.Writer
}

// Built is a scene turned into a live graph.
type Built struct {
	Scene *Scene
	Graph *mathgraph.Graph

	// IDs maps node names to handles; Order lists handles in declaration order.
	IDs   map[string]nodegraph.NodeID
	Order []nodegraph.NodeID

	names map[nodegraph.NodeID]string
}

// Name returns the scene name of a node.
func (b *Built) Name(id nodegraph.NodeID) string {
	if name, ok := b.names[id]; ok {
		return name
	}
	return id.String()
}

// Names maps every node handle to its scene name.
func (b *Built) Names() map[nodegraph.NodeID]string {
	out := make(map[nodegraph.NodeID]string, len(b.names))
	for id, name := range b.names {
		out[id] = name
	}
	return out
}

// Build validates s and creates its graph. Every failure, including a link
// the graph rejects, is reported as INVALID_SCENE.
func Build(s *Scene, opts BuildOptions) (*Built, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	b := &Built{
		Scene: s,
		Graph: mathgraph.NewGraph(),
		IDs:   make(map[string]nodegraph.NodeID, len(s.Nodes)),
		names: make(map[nodegraph.NodeID]string, len(s.Nodes)),
	}

	for _, decl := range s.Nodes {
		id := b.create(decl, opts)
		b.IDs[decl.Name] = id
		b.names[id] = decl.Name
		b.Order = append(b.Order, id)

		for port, v := range decl.Defaults {
			if err := b.Graph.SetDefaultValue(nodegraph.InputNamed(id, port), mathgraph.Float(v)); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q default %q", decl.Name, port)
			}
		}
	}

	for _, l := range s.Links {
		from, to, err := b.endpoints(l)
		if err != nil {
			return nil, err
		}
		if _, err := b.Graph.Connect(from, to); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "link %s -> %s", l.From, l.To)
		}
	}
	return b, nil
}

func (b *Built) create(decl NodeDecl, opts BuildOptions) nodegraph.NodeID {
	kind := mathgraph.Kind(decl.Kind)
	switch {
	case kind == mathgraph.KindConstant:
		return b.Graph.CreateNode(mathgraph.Constant(decl.constant()))
	case kind == mathgraph.KindPrint:
		return b.Graph.CreateNode(mathgraph.Printer(decl.Label, opts.Output))
	case decl.Inputs > 0:
		return b.Graph.CreateNodeFrom(mathgraph.Variadic(kind, decl.Inputs))
	default:
		n := mathgraph.NewNode(kind)
		n.Label = decl.Label
		return b.Graph.CreateNode(n)
	}
}

// endpoints turns a link declaration into port references. Numeric ports
// select by position, anything else by name.
func (b *Built) endpoints(l LinkDecl) (nodegraph.OutputRef, nodegraph.InputRef, error) {
	from, err := ParseEndpoint(l.From)
	if err != nil {
		return nodegraph.OutputRef{}, nodegraph.InputRef{}, err
	}
	to, err := ParseEndpoint(l.To)
	if err != nil {
		return nodegraph.OutputRef{}, nodegraph.InputRef{}, err
	}
	return b.IDs[from.Node].Output(portKey(from)), b.IDs[to.Node].Input(portKey(to)), nil
}

func portKey(e Endpoint) nodegraph.PortKey {
	if i, ok := e.Ordinal(); ok {
		return nodegraph.Index(i)
	}
	return nodegraph.Name(e.Port)
}
