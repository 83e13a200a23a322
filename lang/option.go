package lang

import (
	"maps"
	"slices"

	"github.com/ardnew/aexpr/log"
)

// Default bounds on recursive evaluation and template substitution.
const (
	DefaultMaxDepth         = 5
	DefaultMaxPasses        = 10
	DefaultGrowthMultiplier = 10
	DefaultGrowthFloor      = 256 << 10
)

// Limits bounds the work performed by a single evaluation.
type Limits struct {
	// MaxDepth is the deepest recursion of the recursive evaluator.
	MaxDepth int `mapstructure:"max-depth" yaml:"max-depth"`
	// MaxPasses is the number of substitution passes before giving up.
	MaxPasses int `mapstructure:"max-passes" yaml:"max-passes"`
	// GrowthMultiplier and GrowthFloor bound the substituted output length to
	// max(GrowthFloor, GrowthMultiplier × input length).
	GrowthMultiplier int `mapstructure:"growth-multiplier" yaml:"growth-multiplier"`
	GrowthFloor      int `mapstructure:"growth-floor"      yaml:"growth-floor"`
}

// DefaultLimits returns the default [Limits].
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:         DefaultMaxDepth,
		MaxPasses:        DefaultMaxPasses,
		GrowthMultiplier: DefaultGrowthMultiplier,
		GrowthFloor:      DefaultGrowthFloor,
	}
}

// normalize replaces unset (non-positive) fields with their defaults.
func (l Limits) normalize() Limits {
	d := DefaultLimits()

	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}

	if l.MaxPasses <= 0 {
		l.MaxPasses = d.MaxPasses
	}

	if l.GrowthMultiplier <= 0 {
		l.GrowthMultiplier = d.GrowthMultiplier
	}

	if l.GrowthFloor <= 0 {
		l.GrowthFloor = d.GrowthFloor
	}

	return l
}

// maxLength returns the longest substituted output allowed for an input of
// length n.
func (l Limits) maxLength(n int) int {
	return max(l.GrowthFloor, l.GrowthMultiplier*n)
}

// Option configures an [Engine] or a [Context].
type Option func(*config)

// config collects everything needed to create a Context and its evaluators.
type config struct {
	values   map[string]any
	prefixes []string
	aliases  map[string]string
	limits   Limits
	logger   log.Logger
	tracker  *Tracker
	interp   Interpreter
	builtins bool
}

// makeConfig returns a config with defaults applied, overridden by opts.
func makeConfig(opts ...Option) *config {
	cfg := &config{
		values:   make(map[string]any),
		aliases:  make(map[string]string),
		limits:   DefaultLimits(),
		builtins: true,
	}

	return cfg.apply(opts...)
}

func (c *config) apply(opts ...Option) *config {
	for _, opt := range opts {
		opt(c)
	}

	c.limits = c.limits.normalize()

	return c
}

// clone returns a copy of c that can be modified independently.
func (c *config) clone() *config {
	cc := *c
	cc.values = maps.Clone(c.values)
	cc.aliases = maps.Clone(c.aliases)
	cc.prefixes = slices.Clone(c.prefixes)

	return &cc
}

// interpreter returns the configured Interpreter or the default one.
func (c *config) interpreter() Interpreter {
	if c.interp != nil {
		return c.interp
	}

	return NewExprInterpreter(c.logger)
}

// context builds a new Context. The original layer is a shallow copy of the
// configured values in which every top-level [LateBound] is replaced by a
// fresh pending copy, so values bound by one Context never leak into another.
func (c *config) context() *Context {
	original := make(map[string]any, len(c.values)+16)

	if c.builtins {
		maps.Copy(original, builtins())
	}

	maps.Copy(original, c.values)

	for k, v := range original {
		if lb, ok := v.(*LateBound); ok {
			original[k] = lb.fresh()
		}
	}

	prefixes := slices.Clone(c.prefixes)
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	return &Context{
		store: &store{
			original: original,
			updates:  make(map[string]any),
			prefixes: prefixes,
			aliases:  maps.Clone(c.aliases),
			interp:   c.interpreter(),
			logger:   c.logger,
		},
	}
}

// WithValues adds every entry of values to the original layer.
func WithValues(values map[string]any) Option {
	return func(c *config) {
		maps.Copy(c.values, values)
	}
}

// WithValue adds a single entry to the original layer.
func WithValue(name string, value any) Option {
	return func(c *config) {
		c.values[name] = value
	}
}

// WithFunctor registers a named functor in the original layer.
//
// A functor is any value reachable from the expression grammar, typically a
// map of functions or a struct with methods, e.g. "regex.extract(p, s)".
// Registration is append-only: an existing name is not replaced.
func WithFunctor(name string, functor any) Option {
	return func(c *config) {
		if _, exists := c.values[name]; !exists {
			c.values[name] = functor
		}
	}
}

// WithLate adds a late-bound entry computed by fn on first access.
func WithLate(name string, fn Thunk) Option {
	return WithValue(name, Late(fn))
}

// WithPrefixes sets the ordered prefix list, most specific first.
// Include the empty prefix to also search unqualified names.
func WithPrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.prefixes = slices.Clone(prefixes)
	}
}

// WithAliases adds every entry of aliases to the alias mapping.
func WithAliases(aliases map[string]string) Option {
	return func(c *config) {
		maps.Copy(c.aliases, aliases)
	}
}

// WithAlias rewrites name to target before prefix search.
func WithAlias(name, target string) Option {
	return func(c *config) {
		c.aliases[name] = target
	}
}

// WithLimits sets all evaluation bounds. Non-positive fields keep their
// defaults.
func WithLimits(limits Limits) Option {
	return func(c *config) {
		c.limits = limits
	}
}

// WithMaxDepth sets the recursion bound of the recursive evaluator.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.limits.MaxDepth = depth
	}
}

// WithMaxPasses sets the number of substitution passes.
func WithMaxPasses(passes int) Option {
	return func(c *config) {
		c.limits.MaxPasses = passes
	}
}

// WithGrowth sets the substitution growth bound.
func WithGrowth(multiplier, floor int) Option {
	return func(c *config) {
		c.limits.GrowthMultiplier = multiplier
		c.limits.GrowthFloor = floor
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracker sets the usage tracker observed by the interpolator.
func WithTracker(t *Tracker) Option {
	return func(c *config) {
		c.tracker = t
	}
}

// WithInterpreter replaces the default expression interpreter.
func WithInterpreter(i Interpreter) Option {
	return func(c *config) {
		c.interp = i
	}
}

// WithBuiltins controls whether the built-in functors are added to the
// original layer. They are enabled by default.
func WithBuiltins(enable bool) Option {
	return func(c *config) {
		c.builtins = enable
	}
}
