package nodegraph

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

// MissPolicy decides what [Context.Get] does when an input is connected but
// none of its producers has a cached value.
type MissPolicy int

const (
	// Strict treats a connected but uncached input as UNCACHED_DEPENDENCY.
	// With a correct execution path every producer runs first, so a miss
	// means the path or the seeded cache is wrong.
	Strict MissPolicy = iota
	// Lenient falls back to the port default on any miss.
	Lenient
)

func (p MissPolicy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// ParseMissPolicy parses "strict" or "lenient". The empty string is Strict.
func ParseMissPolicy(s string) (MissPolicy, error) {
	switch s {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, errors.New(errors.ErrCodeInvalidInput, "unknown miss policy %q", s)
	}
}

// WalkOptions configures a [Walker].
type WalkOptions struct {
	// Policy selects the cache miss behavior. Default: Strict.
	Policy MissPolicy

	// ResetCache clears the cache at the start of every walk. Without it
	// successive walks accumulate into the same cache.
	ResetCache bool

	// Logger receives per-node debug logs and overwrite warnings.
	// Default: log.Default().
	Logger *log.Logger

	// RunID tags log lines and hook events. A random id is generated per
	// walk when empty.
	RunID string
}

// Walker evaluates the nodes of a fixed execution path in order, threading
// an [OutputCache] through them.
type Walker[N Node[T, V], T DataType[T], V any] struct {
	g      *Graph[N, T, V]
	path   []NodeID
	cache  *OutputCache[V]
	opts   WalkOptions
	walked bool
}

// NewWalker creates a walker over the complete execution path of g.
func NewWalker[N Node[T, V], T DataType[T], V any](g *Graph[N, T, V], opts WalkOptions) *Walker[N, T, V] {
	return WalkerFromPath(g, NewAnalyzer(g).CompleteExecutionPath(), nil, opts)
}

// NewWalkerFor creates a walker over the execution path leading to exits.
func NewWalkerFor[N Node[T, V], T DataType[T], V any](g *Graph[N, T, V], exits []NodeID, opts WalkOptions) *Walker[N, T, V] {
	return WalkerFromPath(g, NewAnalyzer(g).ExecutionPath(exits), nil, opts)
}

// WalkerFromPath creates a walker over a precomputed path, starting from
// cache. A nil cache starts empty. Seeding the cache of a previous walk and
// passing only the nodes that need recomputing re-evaluates incrementally.
func WalkerFromPath[N Node[T, V], T DataType[T], V any](g *Graph[N, T, V], path []NodeID, cache *OutputCache[V], opts WalkOptions) *Walker[N, T, V] {
	if cache == nil {
		cache = NewOutputCache[V]()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Walker[N, T, V]{g: g, path: path, cache: cache, opts: opts}
}

// Path returns the execution path.
func (w *Walker[N, T, V]) Path() []NodeID { return w.path }

// Graph returns the graph being walked.
func (w *Walker[N, T, V]) Graph() *Graph[N, T, V] { return w.g }

// Cache returns the walker's output cache.
func (w *Walker[N, T, V]) Cache() *OutputCache[V] { return w.cache }

// Walked reports whether Walk has run at least once.
func (w *Walker[N, T, V]) Walked() bool { return w.walked }

// ReleaseCache hands the cache to the caller and leaves the walker with an
// empty one.
func (w *Walker[N, T, V]) ReleaseCache() *OutputCache[V] {
	c := w.cache
	w.cache = NewOutputCache[V]()
	return c
}

// Walk calls fn once per node of the path, in order, with the node's state
// under its write lock and a [Context] scoped to that node.
//
// Contract violations raised by the context (Get on an input without value
// or default, Set on an unknown output) abort the walk and are returned as
// *errors.Error. Any other panic propagates.
func (w *Walker[N, T, V]) Walk(fn func(node *N, c *Context[N, T, V])) error {
	return w.WalkContext(context.Background(), fn)
}

// WalkContext is Walk with a context for observability hooks. The walk itself
// is not cancellable.
func (w *Walker[N, T, V]) WalkContext(ctx context.Context, fn func(node *N, c *Context[N, T, V])) error {
	runID := w.opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := w.opts.Logger.With("run", runID)
	hooks := observability.Walk()

	if w.opts.ResetCache {
		w.cache.Clear()
	}

	start := time.Now()
	hooks.OnWalkStart(ctx, runID, len(w.path))
	logger.Debug("walk started", "nodes", len(w.path), "policy", w.opts.Policy)

	var err error
	walked := 0
	for _, id := range w.path {
		if err = w.visit(ctx, runID, logger, id, fn); err != nil {
			break
		}
		walked++
	}
	w.walked = true

	elapsed := time.Since(start)
	hooks.OnWalkComplete(ctx, runID, walked, elapsed, err)
	if err != nil {
		logger.Debug("walk aborted", "walked", walked, "error", err)
		return err
	}
	logger.Debug("walk complete", "walked", walked, "cached", w.cache.Len(), "duration", elapsed)
	return nil
}

func (w *Walker[N, T, V]) visit(ctx context.Context, runID string, logger *log.Logger, id NodeID, fn func(*N, *Context[N, T, V])) (err error) {
	c := w.g.cell(id)
	if c == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "%v in execution path does not exist", id)
	}

	wc := &Context[N, T, V]{
		g:      w.g,
		cache:  w.cache,
		node:   id,
		policy: w.opts.Policy,
		logger: logger,
		ctx:    ctx,
		runID:  runID,
	}

	start := time.Now()
	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		if r := recover(); r != nil {
			e := errors.FromPanic(r)
			if e == nil {
				panic(r)
			}
			err = e
		}
		observability.Walk().OnNodeEvaluated(ctx, runID, id.String(), time.Since(start), err)
	}()

	logger.Debug("evaluating", "node", id)
	fn(&c.state, wc)
	return nil
}

// Context returns a context bound to an arbitrary node, for reading results
// after a walk. It does not lock the node's state.
func (w *Walker[N, T, V]) Context(node NodeID) *Context[N, T, V] {
	return &Context[N, T, V]{
		g:      w.g,
		cache:  w.cache,
		node:   node,
		policy: w.opts.Policy,
		logger: w.opts.Logger,
		ctx:    context.Background(),
		runID:  w.opts.RunID,
	}
}

// Output returns the cached value of the output port ref resolves to.
func (w *Walker[N, T, V]) Output(ref OutputRef) (V, bool) {
	w.g.mu.RLock()
	id, ok := ref.Resolve(w.g.view())
	w.g.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	return w.cache.Get(id)
}
