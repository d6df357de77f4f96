// Package pipeline runs math scenes end to end.
//
// This package implements the complete load → analyze → evaluate → render
// pipeline shared by the CLI and the HTTP server. By centralizing this logic,
// both entry points cache, log and report results the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: Decode the scene file and build its graph
//  2. Analyze: Categorize nodes and compute the execution path
//  3. Evaluate: Walk the path, reusing cached node outputs when incremental
//  4. Render: Optionally produce DOT, SVG, PDF or PNG diagrams of the graph
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ScenePath:   "maths.toml",
//	    Incremental: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Recorded["out"])
//
// Run individual stages:
//
//	built, err := runner.Load(ctx, opts)
//	analysis := pipeline.Analyze(built)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodegraph/pkg/mathgraph"
	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// DefaultPolicy is the miss policy used when Options.Policy is empty.
const DefaultPolicy = "strict"

// Format constants for rendered outputs.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// ValidFormats is the set of supported render formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options: exactly one of ScenePath and Scene.
	ScenePath string       `json:"scene_path,omitempty"`
	Scene     *scene.Scene `json:"scene,omitempty"`

	// Evaluate options
	Policy      string        `json:"policy,omitempty"`      // strict or lenient
	Incremental bool          `json:"incremental,omitempty"` // reuse cached node outputs
	Refresh     bool          `json:"refresh,omitempty"`     // ignore cached outputs but store new ones
	TTL         time.Duration `json:"-"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Output io.Writer   `json:"-"` // receives print node output as it happens
	Logger *log.Logger `json:"-"`

	policy    nodegraph.MissPolicy
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	RunID     string `json:"run_id"`
	Scene     string `json:"scene"`
	SceneHash string `json:"scene_hash"`

	// Path lists node names in evaluation order.
	Path       []string   `json:"path"`
	Categories Categories `json:"categories"`

	// Outputs maps node name to output port name to the value computed (or
	// reused) for it.
	Outputs map[string]map[string]mathgraph.Value `json:"outputs"`

	// Recorded holds the value each record node saw.
	Recorded map[string]mathgraph.Value `json:"recorded,omitempty"`

	// Printed is everything print nodes wrote.
	Printed string `json:"printed,omitempty"`

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte `json:"-"`

	Stats Stats `json:"stats"`

	// Built is the graph the run evaluated.
	Built *scene.Built `json:"-"`
}

// Categories lists node names per connectivity category.
type Categories struct {
	Loose []string `json:"loose"`
	Entry []string `json:"entry"`
	Exit  []string `json:"exit"`
	Net   []string `json:"net"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes       int           `json:"nodes"`
	Connections int           `json:"connections"`
	Walked      int           `json:"walked"`
	Reused      int           `json:"reused"`
	LoadTime    time.Duration `json:"load_time"`
	WalkTime    time.Duration `json:"walk_time"`
	RenderTime  time.Duration `json:"render_time"`
	CacheHits   int           `json:"cache_hits"`   // node outputs and artifacts read from the cache
	RenderCache bool          `json:"render_cache"` // artifacts came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.ScenePath == "" && o.Scene == nil {
		return fmt.Errorf("scene_path or scene is required")
	}
	if o.ScenePath != "" && o.Scene != nil {
		return fmt.Errorf("scene_path and scene are mutually exclusive")
	}

	if o.Policy == "" {
		o.Policy = DefaultPolicy
	}
	policy, err := nodegraph.ParseMissPolicy(o.Policy)
	if err != nil {
		return err
	}
	o.policy = policy

	if o.TTL == 0 {
		o.TTL = defaultTTL
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// MissPolicy returns the parsed policy. Valid after ValidateAndSetDefaults.
func (o *Options) MissPolicy() nodegraph.MissPolicy { return o.policy }
