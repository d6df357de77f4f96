package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/nodegraph/pkg/cache"
	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
	"github.com/matzehuels/nodegraph/pkg/observability"
	"github.com/matzehuels/nodegraph/pkg/render"
	"github.com/matzehuels/nodegraph/pkg/render/nodelink"
)

// Render draws the scene graph in every requested format. Diagrams depend
// only on the scene, so artifacts are cached by scene hash. The boolean
// reports whether every artifact came from the cache.
func (r *Runner) Render(ctx context.Context, b *scene.Built, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, hit, err := r.render(ctx, b, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, hit, err
}

func (r *Runner) render(ctx context.Context, b *scene.Built, opts Options) (map[string][]byte, bool, error) {
	sceneHash := b.Scene.Hash()
	key := func(format string) string {
		return r.Keyer.ArtifactKey(sceneHash, cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed})
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, key(format))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	dot := nodelink.ToDOT(b.Graph, b.Names(), nodelink.Options{Detailed: opts.Detailed})
	rendered, err := RenderDOT(ctx, dot, opts.Formats)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, key(format), data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("artifact cache write failed", "format", format, "err", err)
		}
	}
	return rendered, false, nil
}

// RenderDOT converts DOT source into the given formats. SVG is rendered at
// most once and reused for PDF and PNG.
func RenderDOT(ctx context.Context, dot string, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	var svg []byte
	toSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return svg, err
	}

	for _, format := range formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = toSVG()
		case FormatPDF:
			if data, err = toSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatPNG:
			if data, err = toSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, 2.0)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
