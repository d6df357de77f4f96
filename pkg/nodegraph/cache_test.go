package nodegraph_test

import (
	"testing"

	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

type samples []float64

func (s samples) Clone() samples { return append(samples(nil), s...) }

func TestOutputCache_ClonesOnRead(t *testing.T) {
	g := nodegraph.New[*testNode, testType, int]()
	id := g.CreateNode(newNode("n", nil, out("out")))
	port, _ := g.OutputPort(id, "out")

	c := nodegraph.NewOutputCache[samples]()
	if c.Set(port, samples{1, 2}) {
		t.Error("first Set reported a replacement")
	}

	got, _ := c.Get(port)
	got[0] = 99
	again, _ := c.Get(port)
	if again[0] != 1 {
		t.Errorf("cached value was mutated through a read: %v", again)
	}

	if !c.Set(port, samples{3}) {
		t.Error("second Set did not report a replacement")
	}
	for p, v := range c.All() {
		if p != port || len(v) != 1 {
			t.Errorf("All() yielded %v=%v", p, v)
		}
	}
}

func TestOutputCache_CloneIsIndependent(t *testing.T) {
	g := nodegraph.New[*testNode, testType, int]()
	id := g.CreateNode(newNode("n", nil, out("a"), out("b")))
	a, _ := g.OutputPort(id, "a")
	b, _ := g.OutputPort(id, "b")

	c := nodegraph.NewOutputCache[int]()
	c.Set(a, 1)
	cp := c.Clone()
	c.Set(b, 2)
	c.Delete(a)

	if !cp.Has(a) || cp.Has(b) || cp.Len() != 1 {
		t.Errorf("clone changed with the original: has(a)=%v has(b)=%v len=%d", cp.Has(a), cp.Has(b), cp.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}
