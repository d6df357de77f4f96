package scene

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v2"

	"github.com/matzehuels/nodegraph/pkg/errors"
)

// Format names a scene encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatHCL  Format = "hcl"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists every supported encoding.
var Formats = []Format{FormatTOML, FormatHCL, FormatYAML, FormatJSON}

// ParseFormat validates a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	if s == "yml" {
		return FormatYAML, nil
	}
	f := Format(s)
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", s)
	}
	return f, nil
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Load reads and decodes a scene file. The format follows the extension.
func Load(path string) (*Scene, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read scene %s", path)
	}
	s, err := decode(data, format, path)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Decode decodes a scene from data. Unknown keys are rejected.
func Decode(data []byte, format Format) (*Scene, error) {
	return decode(data, format, "scene."+string(format))
}

func decode(data []byte, format Format, filename string) (*Scene, error) {
	var (
		s   *Scene
		err error
	)
	switch format {
	case FormatTOML:
		s, err = decodeTOML(data)
	case FormatHCL:
		s, err = decodeHCL(data, filename)
	case FormatYAML:
		s = &Scene{}
		err = yaml.UnmarshalStrict(data, s)
	case FormatJSON:
		s = &Scene{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(s)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode %s", filename)
	}
	return s, nil
}

func decodeTOML(data []byte) (*Scene, error) {
	var s Scene
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown key %q", undecoded[0].String())
	}
	return &s, nil
}

// ====================================================================
// HCL
// ====================================================================

// hclFile mirrors Scene with labelled node blocks:
//
//	node "five" {
//	  kind  = "constant"
//	  value = 5
//	}
//
//	link {
//	  from = "five.value"
//	  to   = "mul.a"
//	}
type hclFile struct {
	Name  string    `hcl:"name,optional"`
	Nodes []hclNode `hcl:"node,block"`
	Links []hclLink `hcl:"link,block"`
}

type hclNode struct {
	Name     string             `hcl:"name,label"`
	Kind     string             `hcl:"kind"`
	Value    *float64           `hcl:"value,optional"`
	Type     string             `hcl:"type,optional"`
	Inputs   int                `hcl:"inputs,optional"`
	Label    string             `hcl:"label,optional"`
	Defaults map[string]float64 `hcl:"defaults,optional"`
}

type hclLink struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// hclEvalContext exposes math.pi and math.e to scene expressions.
func hclEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"math": cty.ObjectVal(map[string]cty.Value{
				"pi": cty.NumberFloatVal(math.Pi),
				"e":  cty.NumberFloatVal(math.E),
			}),
		},
	}
}

func decodeHCL(data []byte, filename string) (*Scene, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, hclEvalContext(), &parsed); diags.HasErrors() {
		return nil, diags
	}

	s := &Scene{Name: parsed.Name}
	for _, n := range parsed.Nodes {
		s.Nodes = append(s.Nodes, NodeDecl(n))
	}
	for _, l := range parsed.Links {
		s.Links = append(s.Links, LinkDecl(l))
	}
	return s, nil
}
