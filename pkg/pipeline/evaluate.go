package pipeline

import (
	"context"

	"github.com/matzehuels/nodegraph/pkg/cache"
	"github.com/matzehuels/nodegraph/pkg/mathgraph"
	"github.com/matzehuels/nodegraph/pkg/mathgraph/scene"
	"github.com/matzehuels/nodegraph/pkg/nodegraph"
)

const defaultTTL = cache.TTLOutput

// nodeOutputs is the cached form of one node's outputs, keyed by port name.
type nodeOutputs map[string]mathgraph.Value

// EvalStats counts what Evaluate did.
type EvalStats struct {
	Walked int // nodes evaluated
	Reused int // nodes whose outputs came from the cache
}

// Evaluate walks the analysis path and returns the computed outputs.
//
// Every node that runs has its outputs stored under its fingerprint. With
// opts.Incremental (and not opts.Refresh), a node whose fingerprint already
// has cached outputs is dropped from the path and its outputs are seeded
// into the walker cache instead. Nodes without outputs always run.
func (r *Runner) Evaluate(ctx context.Context, b *scene.Built, a Analysis, opts Options, runID string) (*mathgraph.Cache, EvalStats, error) {
	var stats EvalStats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}

	fingerprints, err := b.Scene.Fingerprints()
	if err != nil {
		return nil, stats, err
	}
	reuse := opts.Incremental && !opts.Refresh

	seed := nodegraph.NewOutputCache[mathgraph.Value]()
	path := make([]nodegraph.NodeID, 0, len(a.Path))
	for _, id := range a.Path {
		if reuse && r.reuse(ctx, b, id, fingerprints[b.Name(id)], seed, opts) {
			stats.Reused++
			continue
		}
		path = append(path, id)
	}

	w := nodegraph.WalkerFromPath(b.Graph, path, seed, nodegraph.WalkOptions{
		Policy: opts.MissPolicy(),
		Logger: opts.Logger,
		RunID:  runID,
	})
	if err := w.WalkContext(ctx, mathgraph.Evaluate); err != nil {
		return nil, stats, err
	}
	stats.Walked = len(path)
	results := w.ReleaseCache()

	for _, id := range path {
		r.store(ctx, b, id, fingerprints[b.Name(id)], results, opts)
	}
	return results, stats, nil
}

// reuse seeds the outputs of id from the cache. It reports false for sinks,
// misses, and entries that lack one of the node's current ports.
func (r *Runner) reuse(ctx context.Context, b *scene.Built, id nodegraph.NodeID, fingerprint string, seed *mathgraph.Cache, opts Options) bool {
	ports := b.Graph.OutputPorts(id)
	if len(ports) == 0 {
		return false
	}

	var outs nodeOutputs
	ok, err := cache.GetValue(ctx, r.Cache, r.Keyer.OutputKey(fingerprint), &outs)
	if err != nil {
		opts.Logger.Warn("output cache read failed", "node", b.Name(id), "err", err)
		return false
	}
	if !ok {
		return false
	}
	for _, p := range ports {
		if _, ok := outs[p.Name]; !ok {
			return false
		}
	}

	for _, p := range ports {
		seed.Set(p.ID, outs[p.Name])
	}
	opts.Logger.Debug("reused cached outputs", "node", b.Name(id))
	return true
}

func (r *Runner) store(ctx context.Context, b *scene.Built, id nodegraph.NodeID, fingerprint string, results *mathgraph.Cache, opts Options) {
	ports := b.Graph.OutputPorts(id)
	if len(ports) == 0 {
		return
	}
	outs := make(nodeOutputs, len(ports))
	for _, p := range ports {
		v, ok := results.Get(p.ID)
		if !ok {
			return
		}
		outs[p.Name] = v
	}
	if err := cache.SetValue(ctx, r.Cache, r.Keyer.OutputKey(fingerprint), outs, opts.TTL); err != nil {
		opts.Logger.Warn("output cache write failed", "node", b.Name(id), "err", err)
	}
}

// collectOutputs maps node and port names to the values in results.
func collectOutputs(b *scene.Built, path []nodegraph.NodeID, results *mathgraph.Cache) map[string]map[string]mathgraph.Value {
	out := make(map[string]map[string]mathgraph.Value)
	for _, id := range path {
		for _, p := range b.Graph.OutputPorts(id) {
			v, ok := results.Get(p.ID)
			if !ok {
				continue
			}
			name := b.Name(id)
			if out[name] == nil {
				out[name] = make(map[string]mathgraph.Value)
			}
			out[name][p.Name] = v
		}
	}
	return out
}

// collectRecorded returns the latest value of every record node on path.
func collectRecorded(b *scene.Built, path []nodegraph.NodeID) map[string]mathgraph.Value {
	out := make(map[string]mathgraph.Value)
	for _, id := range path {
		b.Graph.View(id, func(n *mathgraph.Node) {
			if n.Kind == mathgraph.KindRecord && len(n.Recorded) > 0 {
				out[b.Name(id)] = n.Recorded[len(n.Recorded)-1]
			}
		})
	}
	return out
}
