package lang

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/ardnew/aexpr/log"
)

// Evaluator evaluates expressions whose results may themselves be
// expressions.
type Evaluator struct {
	interp   Interpreter
	maxDepth int
	logger   log.Logger
}

// NewEvaluator returns an Evaluator that recurses at most maxDepth times.
// A non-positive maxDepth selects [DefaultMaxDepth].
func NewEvaluator(interp Interpreter, maxDepth int, logger log.Logger) *Evaluator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Evaluator{
		interp:   interp,
		maxDepth: maxDepth,
		logger:   logger,
	}
}

// EvaluateRecursive evaluates expression and keeps evaluating while the
// result is a string containing delimited expressions.
//
// It never fails. Blank input yields the empty string. An expression the
// interpreter rejects yields the original text unchanged, and recursion
// deeper than the configured bound yields nil.
func (e *Evaluator) EvaluateRecursive(expression string, ctx *Context) any {
	return e.recurse(expression, ctx, 0)
}

func (e *Evaluator) recurse(expression string, ctx *Context, depth int) any {
	stripped := Strip(expression)
	if strings.TrimSpace(stripped) == "" {
		return ""
	}

	if depth > e.maxDepth {
		e.logger.Trace("recursion bound reached",
			slog.String("expression", expression),
			slog.Int("depth", depth))

		return nil
	}

	value, err := e.interp.Interpret(stripped, ctx)
	if err != nil {
		e.logger.Debug("degrade to literal",
			slog.String("expression", expression),
			slog.Any("error", err))

		return expression
	}

	if s, ok := value.(string); ok && HasExpression(s) {
		return e.recurse(s, ctx, depth+1)
	}

	return value
}

// Evaluate evaluates a single expression for a caller that asked for a
// value. Unlike [Evaluator.EvaluateRecursive], an interpretation failure of
// the expression itself is returned as an error matching [ErrInterpret].
// Results that are themselves expressions are evaluated recursively.
func (e *Evaluator) Evaluate(expression string, ctx *Context) (any, error) {
	stripped := Strip(expression)
	if strings.TrimSpace(stripped) == "" {
		return nil, nil
	}

	value, err := e.interp.Interpret(stripped, ctx)
	if err != nil {
		if !errors.Is(err, ErrInterpret) {
			err = ErrInterpret.Wrap(err)
		}

		return nil, err
	}

	if s, ok := value.(string); ok && HasExpression(s) {
		return e.recurse(s, ctx, 1), nil
	}

	return value, nil
}

// EvaluateOptional evaluates expression recursively and reports whether it
// produced a value. Nil results and expressions that degraded to their own
// literal text produce no value.
func (e *Evaluator) EvaluateOptional(expression string, ctx *Context) (any, bool) {
	value := e.EvaluateRecursive(expression, ctx)
	if value == nil {
		return nil, false
	}

	if s, ok := value.(string); ok && s == expression {
		return nil, false
	}

	return value, true
}
