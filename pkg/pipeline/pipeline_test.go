package pipeline

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/nodegraph/pkg/cache"
	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/mathgraph"
	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{"no scene", Options{}, "scene_path or scene is required"},
		{"both", Options{ScenePath: "x.toml", Scene: &scene.Scene{}}, "mutually exclusive"},
		{"policy", Options{Scene: &scene.Scene{}, Policy: "sloppy"}, "sloppy"},
		{"format", Options{Scene: &scene.Scene{}, Formats: []string{"gif"}}, "invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateAndSetDefaults() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}

	opts := Options{Scene: &scene.Scene{}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Policy != DefaultPolicy || opts.TTL != cache.TTLOutput || opts.Logger == nil {
		t.Errorf("defaults not applied: policy=%q ttl=%v logger=%v", opts.Policy, opts.TTL, opts.Logger)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(&bytes.Buffer{}))
}

func fileCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func loadScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.Load("testdata/maths.toml")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestExecute(t *testing.T) {
	r := quietRunner(nil)
	res, err := r.Execute(context.Background(), Options{ScenePath: "testdata/maths.toml"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Scene != "maths" || res.RunID == "" || res.SceneHash == "" {
		t.Errorf("result header = %q %q %q", res.Scene, res.RunID, res.SceneHash)
	}
	if diff := cmp.Diff(map[string]mathgraph.Value{"out": mathgraph.Float(8)}, res.Recorded); diff != "" {
		t.Errorf("Recorded mismatch (-want +got):\n%s", diff)
	}
	if got := res.Outputs["add"]["result"]; got != mathgraph.Float(5) {
		t.Errorf("add.result = %v, want 5", got)
	}
	if got := res.Outputs["b"]["value"]; got != mathgraph.Int(3) {
		t.Errorf("b.value = %v, want 3", got)
	}
	if res.Path[len(res.Path)-1] != "out" || len(res.Path) != 5 {
		t.Errorf("Path = %v, want 5 nodes ending in out", res.Path)
	}
	want := Categories{Entry: []string{"a", "b"}, Exit: []string{"out"}, Net: []string{"add", "total"}}
	if diff := cmp.Diff(want, res.Categories, cmp.Comparer(func(a, b []string) bool { return strings.Join(a, ",") == strings.Join(b, ",") })); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
	if res.Stats.Nodes != 5 || res.Stats.Connections != 5 || res.Stats.Walked != 5 || res.Stats.Reused != 0 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestExecute_LooseNodesSkipped(t *testing.T) {
	s := loadScene(t)
	s.Nodes = append(s.Nodes, scene.NodeDecl{Name: "lonely", Kind: "record"})

	res, err := quietRunner(nil).Execute(context.Background(), Options{Scene: s})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"lonely"}, res.Categories.Loose); diff != "" {
		t.Errorf("Loose mismatch (-want +got):\n%s", diff)
	}
	for _, name := range res.Path {
		if name == "lonely" {
			t.Error("loose node on the execution path")
		}
	}
}

func TestExecute_Incremental(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))

	first, err := r.Execute(ctx, Options{Scene: loadScene(t), Incremental: true})
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.Stats.Walked != 5 || first.Stats.Reused != 0 {
		t.Errorf("first run stats = %+v, want 5 walked", first.Stats)
	}

	second, err := r.Execute(ctx, Options{Scene: loadScene(t), Incremental: true})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	// Only the record sink runs again.
	if second.Stats.Walked != 1 || second.Stats.Reused != 4 {
		t.Errorf("second run stats = %+v, want 1 walked and 4 reused", second.Stats)
	}
	if diff := cmp.Diff(first.Recorded, second.Recorded); diff != "" {
		t.Errorf("Recorded differs between runs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Outputs, second.Outputs); diff != "" {
		t.Errorf("Outputs differ between runs (-first +second):\n%s", diff)
	}

	// Changing a invalidates a, add and total; b stays cached.
	changed := loadScene(t)
	ten := 10.0
	changed.Nodes[0].Value = &ten
	third, err := r.Execute(ctx, Options{Scene: changed, Incremental: true})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.Stats.Walked != 4 || third.Stats.Reused != 1 {
		t.Errorf("third run stats = %+v, want 4 walked and 1 reused", third.Stats)
	}
	if got := third.Recorded["out"]; got != mathgraph.Float(16) {
		t.Errorf("out = %v, want 16", got)
	}

	// Refresh ignores the cache.
	fourth, err := r.Execute(ctx, Options{Scene: loadScene(t), Incremental: true, Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if fourth.Stats.Reused != 0 {
		t.Errorf("refresh run reused %d nodes", fourth.Stats.Reused)
	}
}

func TestExecute_StoresWithoutIncremental(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"plain", Options{}},
		{"refresh", Options{Refresh: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := quietRunner(fileCache(t))

			first := tt.opts
			first.Scene = loadScene(t)
			res, err := r.Execute(ctx, first)
			if err != nil {
				t.Fatalf("first Execute: %v", err)
			}
			if res.Stats.Walked != 5 || res.Stats.Reused != 0 {
				t.Errorf("first run stats = %+v, want 5 walked", res.Stats)
			}

			res, err = r.Execute(ctx, Options{Scene: loadScene(t), Incremental: true})
			if err != nil {
				t.Fatalf("incremental Execute: %v", err)
			}
			if res.Stats.Walked != 1 || res.Stats.Reused != 4 {
				t.Errorf("incremental run stats = %+v, want 1 walked and 4 reused", res.Stats)
			}
			if res.Stats.CacheHits != 4 {
				t.Errorf("CacheHits = %d, want 4", res.Stats.CacheHits)
			}
		})
	}
}

func TestExecute_Print(t *testing.T) {
	s := loadScene(t)
	s.Nodes = append(s.Nodes, scene.NodeDecl{Name: "show", Kind: "print", Label: "total"})
	s.Links = append(s.Links, scene.LinkDecl{From: "total.result", To: "show.value"})

	var out bytes.Buffer
	res, err := quietRunner(nil).Execute(context.Background(), Options{Scene: s, Output: &out})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Printed != "total: 8\n" || out.String() != res.Printed {
		t.Errorf("Printed = %q, writer got %q", res.Printed, out.String())
	}
}

func TestExecute_Errors(t *testing.T) {
	missing := &scene.Scene{
		Nodes: []scene.NodeDecl{{Name: "add", Kind: "add"}, {Name: "out", Kind: "record"}},
		Links: []scene.LinkDecl{{From: "add.result", To: "out.value"}},
	}
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing value", Options{Scene: missing}, errors.ErrCodeMissingValue},
		{"missing file", Options{ScenePath: "testdata/nope.toml"}, errors.ErrCodeFileNotFound},
		{"bad link", Options{Scene: &scene.Scene{
			Nodes: []scene.NodeDecl{{Name: "a", Kind: "add"}},
			Links: []scene.LinkDecl{{From: "a.result", To: "a.b"}},
		}}, errors.ErrCodeSameNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quietRunner(nil).Execute(context.Background(), tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecute_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := quietRunner(nil).Execute(ctx, Options{Scene: loadScene(t)}); err != context.Canceled {
		t.Errorf("Execute() err = %v, want context.Canceled", err)
	}
}

func TestExecuteAll(t *testing.T) {
	var opts []Options
	for i := range 4 {
		s := loadScene(t)
		v := float64(i)
		s.Nodes[0].Value = &v
		opts = append(opts, Options{Scene: s})
	}

	results, err := quietRunner(nil).ExecuteAll(context.Background(), opts)
	if err != nil {
		t.Fatalf("ExecuteAll: %v", err)
	}
	for i, res := range results {
		// out = (a + 3) + 3
		if want := mathgraph.Float(float64(i) + 6); res.Recorded["out"] != want {
			t.Errorf("scene %d: out = %v, want %v", i, res.Recorded["out"], want)
		}
	}

	opts = append(opts, Options{ScenePath: "testdata/nope.toml"})
	if _, err := quietRunner(nil).ExecuteAll(context.Background(), opts); !strings.Contains(err.Error(), "scene 4") {
		t.Errorf("ExecuteAll() err = %v, want it to name scene 4", err)
	}
}

func TestExecute_RenderCached(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	opts := Options{Scene: loadScene(t), Formats: []string{FormatDOT}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.Stats.RenderCache {
		t.Error("first render should not come from the cache")
	}
	if !strings.Contains(string(first.Artifacts[FormatDOT]), `"add":o0 -> "total":i0;`) {
		t.Errorf("dot artifact missing edge:\n%s", first.Artifacts[FormatDOT])
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.Stats.RenderCache {
		t.Error("second render should come from the cache")
	}
	if second.Stats.CacheHits != 1 {
		t.Errorf("CacheHits = %d, want 1 artifact", second.Stats.CacheHits)
	}
	if !bytes.Equal(first.Artifacts[FormatDOT], second.Artifacts[FormatDOT]) {
		t.Error("cached artifact differs")
	}
}

func TestRenderDOT_Unsupported(t *testing.T) {
	if _, err := RenderDOT(context.Background(), "digraph G {}", []string{"gif"}); err == nil {
		t.Error("RenderDOT should reject unknown formats")
	}
}

func TestExamples(t *testing.T) {
	near := func(v mathgraph.Value, want float64) bool { return math.Abs(v.AsFloat()-want) < 1e-9 }

	t.Run("clamp", func(t *testing.T) {
		res, err := quietRunner(nil).Execute(context.Background(), Options{ScenePath: "../../examples/clamp.toml"})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if res.Printed != "clamped: 5\n" {
			t.Errorf("Printed = %q", res.Printed)
		}
		if got := res.Outputs["over"]["result"]; got != mathgraph.Bool(true) {
			t.Errorf("over.result = %v, want true", got)
		}
	})

	t.Run("circle", func(t *testing.T) {
		res, err := quietRunner(nil).Execute(context.Background(), Options{ScenePath: "../../examples/circle.hcl"})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got := res.Recorded["area_out"]; !near(got, 4*math.Pi) {
			t.Errorf("area = %v, want 4π", got)
		}
		if got := res.Recorded["half_out"]; !near(got, 2*math.Pi) {
			t.Errorf("half = %v, want 2π", got)
		}
		if len(res.Categories.Exit) != 2 {
			t.Errorf("Exit = %v, want both record nodes", res.Categories.Exit)
		}
	})
}

// readOnlyCache misses every lookup and refuses every write.
type readOnlyCache struct{ cache.NullCache }

func (readOnlyCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New(errors.ErrCodeUnsupported, "read-only cache")
}

func TestExecute_CacheWriteFailuresLogged(t *testing.T) {
	var logs bytes.Buffer
	r := NewRunner(readOnlyCache{}, nil, log.New(&logs))

	res, err := r.Execute(context.Background(), Options{Scene: loadScene(t), Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(res.Artifacts[FormatDOT]) == 0 {
		t.Error("render failed alongside the cache")
	}
	for _, want := range []string{"output cache write failed", "artifact cache write failed"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}
}
