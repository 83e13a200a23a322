package lang

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ardnew/aexpr/log"
)

// Interpolator substitutes every delimited expression in a template.
type Interpolator struct {
	interp  Interpreter
	limits  Limits
	tracker *Tracker
	logger  log.Logger
}

// NewInterpolator returns an Interpolator bounded by limits. Variables read
// while substituting are recorded in tracker, which may be nil.
func NewInterpolator(
	interp Interpreter,
	limits Limits,
	tracker *Tracker,
	logger log.Logger,
) *Interpolator {
	return &Interpolator{
		interp:  interp,
		limits:  limits.normalize(),
		tracker: tracker,
		logger:  logger,
	}
}

// Substitute expands all delimited expressions in template.
//
// Each pass replaces every delimited expression with the string form of its
// value. Expressions that fail or evaluate to nil are kept as literal text.
// Values that contain further expressions are expanded by the next pass, and
// substitution stops at the first pass that changes nothing.
//
// Substitute fails with [ErrExpansionGrowth] when a pass produces more than
// max(GrowthFloor, GrowthMultiplier × len(template)) bytes, and with
// [ErrExpansionLoop] when MaxPasses passes do not reach a fixed point. Both
// match [ErrRuntimeExpansion].
func (r *Interpolator) Substitute(template string, ctx *Context) (string, error) {
	if !HasExpression(template) {
		return template, nil
	}

	limit := r.limits.maxLength(len(template))
	holder := newPlaceholders()
	view := ctx.observed(r.tracker)

	defer func() { ctx.Unset(holder.names...) }()

	current := template

	for pass := 1; pass <= r.limits.MaxPasses; pass++ {
		next := r.pass(current, view, holder)

		r.logger.Trace("substitute pass",
			slog.Int("pass", pass),
			slog.Int("input_bytes", len(current)),
			slog.Int("output_bytes", len(next)))

		if next == current {
			return next, nil
		}

		if len(next) > limit {
			return "", ErrExpansionGrowth.With(
				slog.Int("pass", pass),
				slog.Int("length", len(next)),
				slog.Int("limit", limit),
			)
		}

		current = next
	}

	return "", ErrExpansionLoop.With(
		slog.Int("passes", r.limits.MaxPasses),
		slog.Int("length", len(current)),
	)
}

// pass performs a single substitution pass.
//
// Values are first registered in the Context under unique placeholder names,
// and only then are the placeholders replaced by their literal values. A
// value containing delimiters therefore cannot become a substitution target
// within the pass that produced it.
func (r *Interpolator) pass(text string, ctx *Context, holder *placeholders) string {
	out := delimitedPattern.ReplaceAllStringFunc(text, func(match string) string {
		value, err := r.interp.Interpret(Inner(match), ctx)
		if err != nil {
			r.logger.Debug("keep literal",
				slog.String("expression", match),
				slog.Any("error", err))

			return match
		}

		if value == nil {
			return match
		}

		return holder.register(ctx, value)
	})

	for range r.limits.MaxPasses {
		if !holder.pattern.MatchString(out) {
			break
		}

		out = holder.pattern.ReplaceAllStringFunc(out, func(name string) string {
			value, ok := ctx.load(layerUpdates, name)
			if !ok {
				return name
			}

			return Stringify(value)
		})
	}

	return out
}

// placeholders generates the unique names of one substitution call.
// A name is a random prefix, a counter and a random suffix.
type placeholders struct {
	prefix  string
	suffix  string
	pattern *regexp.Regexp
	names   []string
}

func newPlaceholders() *placeholders {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	prefix, suffix := "_"+id[:12]+"_", "_"+id[20:]

	return &placeholders{
		prefix: prefix,
		suffix: suffix,
		pattern: regexp.MustCompile(
			regexp.QuoteMeta(prefix) + `[0-9]+` + regexp.QuoteMeta(suffix),
		),
	}
}

// register assigns value to the next placeholder name and returns the name.
func (p *placeholders) register(ctx *Context, value any) string {
	name := p.prefix + strconv.Itoa(len(p.names)) + p.suffix
	p.names = append(p.names, name)
	ctx.Set(name, value)

	return name
}
