package nodegraph

import (
	"context"
	"iter"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodegraph/pkg/errors"
	"github.com/matzehuels/nodegraph/pkg/observability"
)

// Context is the surface a node callback uses to read its inputs and write
// its outputs. Port keys are resolved against the context's node on every
// call.
type Context[N Node[T, V], T DataType[T], V any] struct {
	g      *Graph[N, T, V]
	cache  *OutputCache[V]
	node   NodeID
	policy MissPolicy
	logger *log.Logger
	ctx    context.Context
	runID  string
}

// Node returns the id of the node being evaluated.
func (c *Context[N, T, V]) Node() NodeID { return c.node }

// Graph returns the graph being walked.
func (c *Context[N, T, V]) Graph() *Graph[N, T, V] { return c.g }

// Get returns the value of an input: the first cached value among its
// producers in connection order, else its default. It panics with an
// *errors.Error when the port does not exist (PORT_NOT_FOUND), when a
// connected producer has no cached value under [Strict]
// (UNCACHED_DEPENDENCY), or when there is no value and no default
// (MISSING_VALUE). [Walker.Walk] turns the panic into its return value.
//
// With several producers Get does not combine their values; use GetAll.
func (c *Context[N, T, V]) Get(key PortKey) V {
	v, err := c.Lookup(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Lookup is the non-panicking form of Get.
func (c *Context[N, T, V]) Lookup(key PortKey) (V, error) {
	var zero V

	c.g.mu.RLock()
	id, ok := c.node.Input(key).Resolve(c.g.view())
	if !ok {
		c.g.mu.RUnlock()
		return zero, errors.New(errors.ErrCodePortNotFound, "%v has no input %v", c.node, key)
	}
	p := c.g.inputs.Ptr(id.key)
	name, def, hasDefault := p.name, p.def, p.hasDefault
	sources := c.g.sources(id)
	c.g.mu.RUnlock()

	for _, src := range sources {
		if v, ok := c.cache.Get(src); ok {
			return v, nil
		}
	}
	if len(sources) > 0 && c.policy == Strict {
		return zero, errors.New(errors.ErrCodeUncachedDependency,
			"input %q of %v is connected but no producer has a value", name, c.node)
	}
	if hasDefault {
		return cloneValue(def), nil
	}
	return zero, errors.New(errors.ErrCodeMissingValue,
		"input %q of %v has no value and no default", name, c.node)
}

// GetAll yields the cached value of every producer feeding an input, in
// connection order. Producers without a cached value are skipped, and an
// unknown port yields nothing. Values are read lazily as the sequence is
// consumed.
func (c *Context[N, T, V]) GetAll(key PortKey) iter.Seq[V] {
	return func(yield func(V) bool) {
		c.g.mu.RLock()
		id, ok := c.node.Input(key).Resolve(c.g.view())
		var sources []OutputPortID
		if ok {
			sources = c.g.sources(id)
		}
		c.g.mu.RUnlock()

		for _, src := range sources {
			v, ok := c.cache.Get(src)
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Set caches v for an output of the node. Replacing an existing value is
// allowed but logged as a warning, since it usually means the cache was not
// reset between walks or the node wrote the port twice. Set panics with a
// PORT_NOT_FOUND *errors.Error when the port does not exist.
func (c *Context[N, T, V]) Set(key PortKey, v V) {
	c.g.mu.RLock()
	id, ok := c.node.Output(key).Resolve(c.g.view())
	var name string
	if ok {
		name = c.g.outputs.Ptr(id.key).name
	}
	c.g.mu.RUnlock()

	if !ok {
		panic(errors.New(errors.ErrCodePortNotFound, "%v has no output %v", c.node, key))
	}
	if c.cache.Set(id, v) {
		c.logger.Warn("output overwritten", "node", c.node, "port", name)
		observability.Walk().OnCacheOverwrite(c.ctx, c.runID, c.node.String(), name)
	}
}

// CanGet reports whether the node has the input port.
func (c *Context[N, T, V]) CanGet(key PortKey) bool {
	c.g.mu.RLock()
	defer c.g.mu.RUnlock()
	_, ok := c.node.Input(key).Resolve(c.g.view())
	return ok
}

// CanSet reports whether the node has the output port.
func (c *Context[N, T, V]) CanSet(key PortKey) bool {
	c.g.mu.RLock()
	defer c.g.mu.RUnlock()
	_, ok := c.node.Output(key).Resolve(c.g.view())
	return ok
}

// Output returns the value cached for one of the node's outputs.
func (c *Context[N, T, V]) Output(key PortKey) (V, bool) {
	c.g.mu.RLock()
	id, ok := c.node.Output(key).Resolve(c.g.view())
	c.g.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	return c.cache.Get(id)
}
