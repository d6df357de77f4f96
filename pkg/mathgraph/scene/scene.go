// Package scene describes math graphs in files and builds them.
//
// A scene lists named nodes and the links between their ports. The same
// structure can be written as TOML, HCL, YAML or JSON:
//
//	name = "product"
//
//	[[node]]
//	name  = "five"
//	kind  = "constant"
//	value = 5.0
//
//	[[node]]
//	name = "mul"
//	kind = "multiply"
//
//	[[link]]
//	from = "five.value"
//	to   = "mul.a"
//
// Link endpoints are "node.port", where port is a port name or an ordinal
// position ("mul.0").
package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/mathgraph"
)

// Scene is a declarative math graph.
type Scene struct {
	Name  string     `toml:"name" yaml:"name" json:"name"`
	Nodes []NodeDecl `toml:"node" yaml:"nodes" json:"nodes"`
	Links []LinkDecl `toml:"link" yaml:"links" json:"links"`
}

// NodeDecl declares one node.
type NodeDecl struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Kind string `toml:"kind" yaml:"kind" json:"kind"`

	// Value and Type configure constants. Type is float, int or bool and
	// defaults to float.
	Value *float64 `toml:"value" yaml:"value" json:"value,omitempty"`
	Type  string   `toml:"type" yaml:"type" json:"type,omitempty"`

	// Inputs adds that many extra inputs to sum and max nodes.
	Inputs int `toml:"inputs" yaml:"inputs" json:"inputs,omitempty"`

	// Label prefixes print output.
	Label string `toml:"label" yaml:"label" json:"label,omitempty"`

	// Defaults sets input port defaults by port name.
	Defaults map[string]float64 `toml:"defaults" yaml:"defaults" json:"defaults,omitempty"`
}

// LinkDecl connects an output port to an input port.
type LinkDecl struct {
	From string `toml:"from" yaml:"from" json:"from"`
	To   string `toml:"to" yaml:"to" json:"to"`
}

// Endpoint is a parsed "node.port" reference.
type Endpoint struct {
	Node string
	Port string
}

// ParseEndpoint splits "node.port". Node names may not contain dots, so
// the first dot separates the two parts.
func ParseEndpoint(s string) (Endpoint, error) {
	node, port, ok := strings.Cut(s, ".")
	if !ok || node == "" || port == "" {
		return Endpoint{}, errors.New(errors.ErrCodeInvalidScene, "link endpoint %q is not node.port", s)
	}
	return Endpoint{Node: node, Port: port}, nil
}

// Ordinal returns the port position when Port is a number.
func (e Endpoint) Ordinal() (int, bool) {
	i, err := strconv.Atoi(e.Port)
	return i, err == nil && i >= 0
}

func (e Endpoint) String() string { return e.Node + "." + e.Port }

// Validate checks node names, kinds, constant types and link syntax. It does
// not check that ports exist; Build does.
func (s *Scene) Validate() error {
	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if err := errors.ValidateNodeName(n.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %d", i)
		}
		if seen[n.Name] {
			return errors.New(errors.ErrCodeInvalidScene, "node %q declared twice", n.Name)
		}
		seen[n.Name] = true

		kind, err := mathgraph.ParseKind(n.Kind)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q", n.Name)
		}
		if _, err := n.valueType(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q", n.Name)
		}
		if n.Inputs < 0 || (n.Inputs > 0 && !kind.IsAggregate()) {
			return errors.New(errors.ErrCodeInvalidScene, "node %q: inputs is only valid on sum and max nodes", n.Name)
		}
		for port := range n.Defaults {
			if err := errors.ValidatePortName(port); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q default", n.Name)
			}
		}
	}

	for i, l := range s.Links {
		for _, end := range []string{l.From, l.To} {
			e, err := ParseEndpoint(end)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScene, err, "link %d", i)
			}
			if !seen[e.Node] {
				return errors.New(errors.ErrCodeInvalidScene, "link %d references unknown node %q", i, e.Node)
			}
		}
	}
	return nil
}

func (n NodeDecl) valueType() (mathgraph.Type, error) {
	if n.Type == "" {
		return mathgraph.TypeFloat, nil
	}
	t, err := mathgraph.ParseType(n.Type)
	if err != nil || t == mathgraph.TypeAny {
		return 0, errors.New(errors.ErrCodeInvalidScene, "constant type must be float, int or bool, got %q", n.Type)
	}
	return t, nil
}

// constant returns the value a constant node emits.
func (n NodeDecl) constant() mathgraph.Value {
	t, _ := n.valueType()
	var f float64
	if n.Value != nil {
		f = *n.Value
	}
	switch t {
	case mathgraph.TypeInt:
		return mathgraph.Int(int64(f))
	case mathgraph.TypeBool:
		return mathgraph.Bool(f != 0)
	default:
		return mathgraph.Float(f)
	}
}

// Node returns the declaration of the named node.
func (s *Scene) Node(name string) (NodeDecl, bool) {
	i := slices.IndexFunc(s.Nodes, func(n NodeDecl) bool { return n.Name == name })
	if i < 0 {
		return NodeDecl{}, false
	}
	return s.Nodes[i], true
}

// Hash returns a stable content hash of the scene.
func (s *Scene) Hash() string {
	data, _ := json.Marshal(s)
	return hashBytes(data)
}

// Fingerprints hashes every node's declaration together with the
// fingerprints of the nodes feeding it, so a fingerprint changes whenever
// anything upstream of the node changes. Cyclic scenes fail with
// INVALID_SCENE.
func (s *Scene) Fingerprints() (map[string]string, error) {
	incoming := make(map[string][]LinkDecl)
	for _, l := range s.Links {
		to, err := ParseEndpoint(l.To)
		if err != nil {
			return nil, err
		}
		incoming[to.Node] = append(incoming[to.Node], l)
	}

	decls := make(map[string]NodeDecl, len(s.Nodes))
	for _, n := range s.Nodes {
		decls[n.Name] = n
	}
	out := make(map[string]string, len(s.Nodes))
	visiting := make(map[string]bool)

	var visit func(name string) (string, error)
	visit = func(name string) (string, error) {
		if fp, ok := out[name]; ok {
			return fp, nil
		}
		if visiting[name] {
			return "", errors.New(errors.ErrCodeInvalidScene, "scene has a cycle through %q", name)
		}
		decl, ok := decls[name]
		if !ok {
			return "", errors.New(errors.ErrCodeInvalidScene, "unknown node %q", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		type upstream struct {
			From, To, Fingerprint string
		}
		ups := make([]upstream, 0, len(incoming[name]))
		for _, l := range incoming[name] {
			from, err := ParseEndpoint(l.From)
			if err != nil {
				return "", err
			}
			fp, err := visit(from.Node)
			if err != nil {
				return "", err
			}
			ups = append(ups, upstream{From: from.Port, To: l.To, Fingerprint: fp})
		}

		data, _ := json.Marshal(struct {
			Decl     NodeDecl
			Upstream []upstream
		}{decl, ups})
		fp := hashBytes(data)
		out[name] = fp
		return fp, nil
	}

	for _, n := range s.Nodes {
		if _, err := visit(n.Name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NodeFingerprint returns the fingerprint of one node. See Fingerprints.
func (s *Scene) NodeFingerprint(name string) (string, error) {
	fps, err := s.Fingerprints()
	if err != nil {
		return "", err
	}
	fp, ok := fps[name]
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "no node %q in scene", name)
	}
	return fp, nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
