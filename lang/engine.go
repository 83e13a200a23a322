package lang

// Engine is a reusable, concurrency-safe set of base values, functors and
// bounds from which per-call contexts are created.
//
// The configuration of an Engine is fixed by [New]. Every top-level
// evaluation should use its own [Context] from [Engine.NewContext], which
// copies the base values and gives each late-bound entry a fresh binding.
type Engine struct {
	cfg    *config
	eval   *Evaluator
	render *Interpolator
	walker *Walker
}

// New returns an Engine configured by opts.
// Unless [WithTracker] is given, the Engine creates its own [Tracker].
func New(opts ...Option) *Engine {
	cfg := makeConfig(opts...)
	cfg.interp = cfg.interpreter()

	if cfg.tracker == nil {
		cfg.tracker = NewTracker()
	}

	return &Engine{
		cfg:    cfg,
		eval:   NewEvaluator(cfg.interp, cfg.limits.MaxDepth, cfg.logger),
		render: NewInterpolator(cfg.interp, cfg.limits, cfg.tracker, cfg.logger),
		walker: NewWalker(cfg.logger),
	}
}

// NewContext returns a new Context seeded with the Engine's values.
//
// The given opts add to or replace the Engine's values, prefixes and aliases
// for this Context only. Evaluation bounds are fixed by [New].
func (e *Engine) NewContext(opts ...Option) *Context {
	return e.cfg.clone().apply(opts...).context()
}

// context returns ctx, or a new default Context if ctx is nil.
func (e *Engine) context(ctx *Context) *Context {
	if ctx == nil {
		return e.NewContext()
	}

	return ctx
}

// Limits returns the bounds used by the Engine.
func (e *Engine) Limits() Limits { return e.cfg.limits }

// Tracker returns the usage tracker updated by [Engine.Substitute].
func (e *Engine) Tracker() *Tracker { return e.cfg.tracker }

// Evaluate evaluates a single expression. Interpretation failures are
// returned as errors matching [ErrInterpret].
func (e *Engine) Evaluate(expression string, ctx *Context) (any, error) {
	return e.eval.Evaluate(expression, e.context(ctx))
}

// EvaluateRecursive evaluates expression with bounded recursion and
// degrades to literal text on failure. See [Evaluator.EvaluateRecursive].
func (e *Engine) EvaluateRecursive(expression string, ctx *Context) any {
	return e.eval.EvaluateRecursive(expression, e.context(ctx))
}

// EvaluateOptional evaluates expression and reports whether it produced a
// value. See [Evaluator.EvaluateOptional].
func (e *Engine) EvaluateOptional(expression string, ctx *Context) (any, bool) {
	return e.eval.EvaluateOptional(expression, e.context(ctx))
}

// Substitute expands every delimited expression in template.
// See [Interpolator.Substitute].
func (e *Engine) Substitute(template string, ctx *Context) (string, error) {
	return e.render.Substitute(template, e.context(ctx))
}

// Resolve resolves the expressions in the object graph rooted at root.
// See [Walker.Walk].
func (e *Engine) Resolve(root any, ctx *Context) (any, error) {
	return e.walker.Walk(root, e.Resolver(ctx))
}

// Resolver returns the [Resolver] evaluating against ctx.
func (e *Engine) Resolver(ctx *Context) Resolver {
	return &contextResolver{engine: e, ctx: e.context(ctx)}
}

type contextResolver struct {
	engine *Engine
	ctx    *Context
}

func (r *contextResolver) Render(text string) (string, error) {
	return r.engine.Substitute(text, r.ctx)
}

func (r *contextResolver) EvaluateOptional(expression string) (any, bool) {
	return r.engine.EvaluateOptional(expression, r.ctx)
}
