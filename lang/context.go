package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/aexpr/log"
)

// Context is a layered variable mapping used to resolve the identifiers of
// an expression.
//
// A Context has two layers. The original layer is seeded when the Context is
// created, and the updates layer receives every [Context.Set]. Updates
// always shadow the original layer. Lookups in the original layer are
// qualified by an ordered list of prefixes (namespaces) after an optional
// alias rewrite.
//
// A Context is safe for concurrent use. Views created internally (guarded or
// observed) share the same layers but carry their own flags, so the recursion
// guard of one call stack never leaks into another.
type Context struct {
	*store

	guard    bool     // direct lookups only, no prefix search
	observer *Tracker // records successful lookups
}

// store holds the state shared by a Context and all of its views.
type store struct {
	mu       sync.RWMutex
	original map[string]any
	updates  map[string]any
	prefixes []string
	aliases  map[string]string
	interp   Interpreter
	logger   log.Logger
}

// NewContext returns a standalone Context configured by opts.
// Without [WithPrefixes], the only prefix is the empty prefix.
func NewContext(opts ...Option) *Context {
	return makeConfig(opts...).context()
}

// qualify joins a prefix and a name into a lookup key.
func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}

// Has reports whether name is present in either layer.
// Neither aliases nor prefixes are applied.
func (c *Context) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.updates[name]; ok {
		return true
	}

	_, ok := c.original[name]

	return ok
}

// Get resolves name and reports whether a value was found.
//
// The updates layer is consulted first. Then the name is rewritten by its
// alias (if any) and qualified by each prefix in order. A prefixed key that
// is missing from the original layer is evaluated as an expression against a
// guarded view of the Context, which only performs direct lookups. The first
// prefix that produces a value wins.
//
// Late-bound values are bound on first access and the result replaces the
// stored entry.
func (c *Context) Get(name string) (any, bool) {
	v, ok := c.get(name)
	if ok {
		c.observer.Record(name, v)
	}

	return v, ok
}

func (c *Context) get(name string) (any, bool) {
	if v, ok := c.load(layerUpdates, name); ok {
		return v, true
	}

	if c.guard {
		return c.load(layerOriginal, name)
	}

	c.mu.RLock()
	target, aliased := c.aliases[name]
	prefixes := c.prefixes
	c.mu.RUnlock()

	if !aliased {
		target = name
	}

	for _, prefix := range prefixes {
		key := qualify(prefix, target)

		c.logger.Trace("probe",
			slog.String("name", name),
			slog.String("key", key))

		if v, ok := c.load(layerOriginal, key); ok {
			return v, true
		}

		if prefix == "" {
			continue
		}

		if v, ok := c.indirect(key); ok {
			return v, true
		}
	}

	return nil, false
}

// indirect evaluates key as an expression against a guarded view.
func (c *Context) indirect(key string) (any, bool) {
	root, _, _ := strings.Cut(key, ".")
	if !c.Has(root) {
		return nil, false
	}

	v, err := c.interp.Interpret(key, c.guarded())
	if err != nil {
		c.logger.Trace("indirect lookup failed",
			slog.String("key", key),
			slog.Any("error", err))

		return nil, false
	}

	c.logger.Trace("indirect lookup",
		slog.String("key", key),
		slog.Bool("found", v != nil))

	return v, v != nil
}

type layer bool

const (
	layerOriginal layer = false
	layerUpdates  layer = true
)

func (s *store) layer(l layer) map[string]any {
	if l == layerUpdates {
		return s.updates
	}

	return s.original
}

// load reads key from a single layer, binding a late-bound value if needed.
// The lock is never held while a thunk runs.
func (s *store) load(l layer, key string) (any, bool) {
	s.mu.RLock()
	v, ok := s.layer(l)[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	lb, ok := v.(*LateBound)
	if !ok {
		return v, true
	}

	bound, err := lb.Resolve()
	if err != nil {
		s.logger.Warn("late-bound value failed",
			slog.String("key", key),
			slog.Any("error", ErrLateBound.Wrap(err)))

		return nil, false
	}

	s.mu.Lock()
	// The layer may have been cleared or reassigned while binding.
	m := s.layer(l)
	if cur, ok := m[key]; ok && cur == any(lb) {
		m[key] = bound
	}
	s.mu.Unlock()

	s.logger.Trace("bind late value", slog.String("key", key))

	return bound, true
}

// Set assigns value to name in the updates layer.
func (c *Context) Set(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updates[name] = value
}

// Unset removes names from the updates layer, uncovering the original
// values they shadowed.
func (c *Context) Unset(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, name := range names {
		delete(c.updates, name)
	}
}

// Clear empties both layers.
//
// Clear must not be called while another goroutine still expects the prior
// state of the Context.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.original = make(map[string]any)
	c.updates = make(map[string]any)
}

// Keys returns the sorted names defined in either layer.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make(map[string]struct{}, len(c.original)+len(c.updates))
	for k := range c.original {
		keys[k] = struct{}{}
	}

	for k := range c.updates {
		keys[k] = struct{}{}
	}

	return slices.Sorted(maps.Keys(keys))
}

// Prefixes returns a copy of the ordered prefix list.
func (c *Context) Prefixes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.prefixes)
}

// Aliases returns a copy of the alias mapping.
func (c *Context) Aliases() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.aliases)
}

// guarded returns a view that performs direct lookups only.
func (c *Context) guarded() *Context {
	v := *c
	v.guard = true

	return &v
}

// observed returns a view that records successful lookups in t.
func (c *Context) observed(t *Tracker) *Context {
	v := *c
	v.observer = t

	return &v
}
