package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

// Load decodes the scene named by opts and builds its graph. Print node
// output goes to w.
func (r *Runner) Load(ctx context.Context, opts Options, w io.Writer) (*scene.Built, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	source := opts.ScenePath
	if source == "" {
		source = "scene:" + opts.Scene.Name
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	built, err := load(opts, w)

	nodes := 0
	if built != nil {
		nodes = built.Graph.NodeCount()
	}
	hooks.OnLoadComplete(ctx, source, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("loaded scene",
		"scene", built.Scene.Name,
		"nodes", nodes,
		"connections", built.Graph.ConnectionCount())
	return built, nil
}

func load(opts Options, w io.Writer) (*scene.Built, error) {
	s := opts.Scene
	if s == nil {
		var err error
		if s, err = scene.Load(opts.ScenePath); err != nil {
			return nil, err
		}
	}
	return scene.Build(s, scene.BuildOptions{Output: w})
}
