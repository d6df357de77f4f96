// Package mathgraph is a math node set built on package nodegraph.
//
// Nodes compute constants, arithmetic, comparisons and fan-in aggregates over
// [Value]s. Ports carry a [Type] tag: Int converts to Float, and sink inputs
// accept any type. Build graphs directly:
//
//	g := mathgraph.NewGraph()
//	a := g.CreateNode(mathgraph.Constant(mathgraph.Float(5)))
//	b := g.CreateNode(mathgraph.Constant(mathgraph.Float(7)))
//	m := g.CreateNode(mathgraph.NewNode(mathgraph.KindMultiply))
//	g.MustConnect(nodegraph.OutputAt(a, 0), nodegraph.InputNamed(m, "a"))
//	g.MustConnect(nodegraph.OutputAt(b, 0), nodegraph.InputNamed(m, "b"))
//	err := mathgraph.NewWalker(g, nodegraph.WalkOptions{}).Walk(mathgraph.Evaluate)
//
// or declare them in a scene file (see package scene).
package mathgraph

import (
	"math"
	"strconv"

	"github.com/matzehuels/nodegraph/pkg/errors"
)

// Type tags a port.
type Type uint8

const (
	TypeFloat Type = iota
	TypeInt
	TypeBool
	// TypeAny is accepted by sink inputs and converts to nothing else.
	TypeAny
)

// CanConvertTo reports whether a value of type t may feed a port of type
// other. Ints widen to floats and every type feeds an any port.
func (t Type) CanConvertTo(other Type) bool {
	switch {
	case t == other, other == TypeAny:
		return true
	case t == TypeInt && other == TypeFloat:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeAny:
		return "any"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseType parses a type name as printed by String.
func ParseType(s string) (Type, error) {
	for _, t := range []Type{TypeFloat, TypeInt, TypeBool, TypeAny} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown type %q", s)
}

// Value is a tagged number or boolean.
type Value struct {
	Type Type    `msgpack:"t" json:"type"`
	F    float64 `msgpack:"f,omitempty" json:"f,omitempty"`
	I    int64   `msgpack:"i,omitempty" json:"i,omitempty"`
	B    bool    `msgpack:"b,omitempty" json:"b,omitempty"`
}

// Float returns a float value.
func Float(f float64) Value { return Value{Type: TypeFloat, F: f} }

// Int returns an int value.
func Int(i int64) Value { return Value{Type: TypeInt, I: i} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Type: TypeBool, B: b} }

// AsFloat returns v as a float64. Booleans map to 0 and 1.
func (v Value) AsFloat() float64 {
	switch v.Type {
	case TypeInt:
		return float64(v.I)
	case TypeBool:
		if v.B {
			return 1
		}
		return 0
	default:
		return v.F
	}
}

// AsBool reports whether v is true or non-zero.
func (v Value) AsBool() bool {
	if v.Type == TypeBool {
		return v.B
	}
	f := v.AsFloat()
	return f != 0 && !math.IsNaN(f)
}

func (v Value) String() string {
	switch v.Type {
	case TypeInt:
		return strconv.FormatInt(v.I, 10)
	case TypeBool:
		return strconv.FormatBool(v.B)
	default:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	}
}
