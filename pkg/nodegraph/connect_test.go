package nodegraph_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

func TestConnect_Bookkeeping(t *testing.T) {
	g := nodegraph.New[*testNode, testType, int]()
	src := emitter("src", 1)
	dst := recorder("dst")
	a := g.CreateNode(src)
	b := g.CreateNode(dst)
	src.events, dst.events = nil, nil

	cid, err := g.Connect(nodegraph.OutputAt(a, 0), nodegraph.InputAt(b, 0))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	conn, ok := g.Connection(cid)
	if !ok {
		t.Fatal("Connection() not found")
	}
	outID, _ := g.OutputPortAt(a, 0)
	inID, _ := g.InputPortAt(b, 0)
	if conn.From != outID || conn.To != inID {
		t.Errorf("Connection = %+v, want %v -> %v", conn, outID, inID)
	}
	if got := g.Targets(outID.Ref()); len(got) != 1 || got[0] != inID {
		t.Errorf("Targets(out) = %v, want [%v]", got, inID)
	}
	if got := g.Sources(inID.Ref()); len(got) != 1 || got[0] != outID {
		t.Errorf("Sources(in) = %v, want [%v]", got, outID)
	}
	if diff := cmp.Diff([]string{"output connected"}, src.events); diff != "" {
		t.Errorf("src events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"input connected"}, dst.events); diff != "" {
		t.Errorf("dst events mismatch (-want +got):\n%s", diff)
	}
}

func TestConnect_RejectedLeavesGraphUntouched(t *testing.T) {
	g := nodegraph.New[*testNode, testType, int]()
	self := doubler("self")
	text := newNode("text", nil, nodegraph.OutputSpec[testType]{Name: "out", Type: tText})
	a := g.CreateNode(self)
	b := g.CreateNode(recorder("r"))
	c := g.CreateNode(text)
	self.events, text.events = nil, nil

	tests := []struct {
		name string
		from nodegraph.OutputRef
		to   nodegraph.InputRef
		code errors.Code
	}{
		{"self connection", nodegraph.OutputAt(a, 0), nodegraph.InputAt(a, 0), errors.ErrCodeSameNode},
		{"type mismatch", nodegraph.OutputAt(c, 0), nodegraph.InputAt(b, 0), errors.ErrCodeTypeMismatch},
		{"missing output", nodegraph.OutputNamed(a, "nope"), nodegraph.InputAt(b, 0), errors.ErrCodePortNotFound},
		{"missing input", nodegraph.OutputAt(a, 0), nodegraph.InputAt(b, 5), errors.ErrCodePortNotFound},
		{"zero references", nodegraph.OutputRef{}, nodegraph.InputRef{}, errors.ErrCodePortNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g.CanConnect(tt.from, tt.to) {
				t.Error("CanConnect() = true, want false")
			}
			_, err := g.Connect(tt.from, tt.to)
			if !errors.Is(err, tt.code) {
				t.Errorf("Connect() err = %v, want code %s", err, tt.code)
			}
		})
	}

	if g.ConnectionCount() != 0 {
		t.Errorf("ConnectionCount() = %d, want 0", g.ConnectionCount())
	}
	for _, id := range []nodegraph.NodeID{a, b, c} {
		for _, p := range g.InputPorts(id) {
			if srcs := g.Sources(p.ID.Ref()); len(srcs) != 0 {
				t.Errorf("input %s has sources %v after rejected connects", p.Name, srcs)
			}
		}
		for _, p := range g.OutputPorts(id) {
			if tgts := g.Targets(p.ID.Ref()); len(tgts) != 0 {
				t.Errorf("output %s has targets %v after rejected connects", p.Name, tgts)
			}
		}
	}
	if len(self.events) != 0 || len(text.events) != 0 {
		t.Errorf("hooks ran for rejected connects: %v %v", self.events, text.events)
	}
}

func TestCanConnect_Conversion(t *testing.T) {
	g := nodegraph.New[*testNode, testType, int]()
	num := g.CreateNode(emitter("num", 1))
	anyIn := g.CreateNode(newNode("any", []nodegraph.InputSpec[testType, int]{{Name: "in", Type: tAny}}, out("out")))
	numIn := g.CreateNode(recorder("rec"))

	if !g.CanConnect(nodegraph.OutputAt(num, 0), nodegraph.InputAt(anyIn, 0)) {
		t.Error("num -> any should be allowed")
	}
	if !g.CanConnect(nodegraph.OutputAt(num, 0), nodegraph.InputAt(numIn, 0)) {
		t.Error("num -> num should be allowed")
	}

	// anyIn's output is num typed, its input is any typed: only one direction works
	g.MustCreateOutputPort(anyIn, nodegraph.OutputSpec[testType]{Name: "raw", Type: tAny})
	if g.CanConnect(nodegraph.OutputNamed(anyIn, "raw"), nodegraph.InputAt(numIn, 0)) {
		t.Error("any -> num should be rejected")
	}
}

func TestMustConnect_Panics(t *testing.T) {
	g := nodegraph.New[*testNode, testType, int]()
	a := g.CreateNode(doubler("a"))

	defer func() {
		if e := errors.FromPanic(recover()); e == nil || e.Code != errors.ErrCodeSameNode {
			t.Errorf("recovered %v, want SAME_NODE", e)
		}
	}()
	g.MustConnect(nodegraph.OutputAt(a, 0), nodegraph.InputAt(a, 0))
}

func TestDisconnect(t *testing.T) {
	g, a, b, _, _ := chain()
	var aNode, bNode *testNode
	g.View(a, func(n *testNode) { aNode = n })
	g.View(b, func(n *testNode) { bNode = n })
	aNode.events, bNode.events = nil, nil

	info, _ := g.InputPortInfo(nodegraph.InputNamed(b, "in"))
	cid := info.Connections[0]

	if !g.Disconnect(cid) {
		t.Fatal("Disconnect() = false")
	}
	if _, ok := g.Connection(cid); ok {
		t.Error("Connection() resolves after Disconnect")
	}
	if g.Disconnect(cid) {
		t.Error("second Disconnect() = true")
	}
	if srcs := g.Sources(nodegraph.InputNamed(b, "in")); len(srcs) != 0 {
		t.Errorf("Sources(b.in) = %v, want none", srcs)
	}
	if diff := cmp.Diff([]string{"output disconnected"}, aNode.events); diff != "" {
		t.Errorf("a events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"input disconnected"}, bNode.events); diff != "" {
		t.Errorf("b events mismatch (-want +got):\n%s", diff)
	}
}
