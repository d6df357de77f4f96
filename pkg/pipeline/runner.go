package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nodegraph/pkg/cache"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options; every run builds its own graph.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → analyze → evaluate → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	var printed bytes.Buffer
	var w io.Writer = &printed
	if opts.Output != nil {
		w = io.MultiWriter(&printed, opts.Output)
	}

	// Stage 1: Load
	loadStart := time.Now()
	built, err := r.Load(ctx, opts, w)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result := &Result{
		RunID:     uuid.NewString(),
		Scene:     built.Scene.Name,
		SceneHash: built.Scene.Hash(),
		Built:     built,
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Nodes = built.Graph.NodeCount()
	result.Stats.Connections = built.Graph.ConnectionCount()

	// Stage 2: Analyze
	analysis := Analyze(built)
	result.Path = analysis.PathNames(built)
	result.Categories = analysis.CategoryNames(built)

	// Stage 3: Evaluate
	walkStart := time.Now()
	outputs, stats, err := r.Evaluate(ctx, built, analysis, opts, result.RunID)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	result.Stats.WalkTime = time.Since(walkStart)
	result.Stats.Walked = stats.Walked
	result.Stats.Reused = stats.Reused
	result.Stats.CacheHits = stats.Reused
	result.Outputs = collectOutputs(built, analysis.Path, outputs)
	result.Recorded = collectRecorded(built, analysis.Path)
	result.Printed = printed.String()

	opts.Logger.Info("evaluated scene",
		"scene", result.Scene,
		"walked", stats.Walked,
		"reused", stats.Reused,
		"duration", result.Stats.WalkTime)

	// Stage 4: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, hit, err := r.Render(ctx, built, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.Stats.RenderCache = hit
		if hit {
			result.Stats.CacheHits += len(artifacts)
		}

		opts.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"cached", hit,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// ExecuteAll runs several independent scenes concurrently, one graph and
// walker per scene. Results keep the order of opts. The first failure
// cancels the context passed to the remaining runs.
func (r *Runner) ExecuteAll(ctx context.Context, opts []Options) ([]*Result, error) {
	results := make([]*Result, len(opts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, o := range opts {
		g.Go(func() error {
			res, err := r.Execute(ctx, o)
			if err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
