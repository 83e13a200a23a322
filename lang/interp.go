package lang

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/aexpr/log"
)

// Interpreter evaluates a single bare expression against a [Context].
//
// Implementations return an error matching [ErrInterpret] when the grammar
// rejects the expression or a function it calls fails. A blank expression
// evaluates to nil without error.
type Interpreter interface {
	Interpret(expression string, ctx *Context) (any, error)
}

// Unwrapper is implemented by values that know how to produce their own
// concrete payload. The interpreter unwraps a result once before returning
// it.
type Unwrapper interface {
	Unwrap() any
}

// ExprInterpreter is the default [Interpreter] built on expr-lang.
//
// Expressions are compiled per call. Identifier and member chains are
// resolved through the Context during compilation (see contextPatcher), and
// the resolved values are bound in the runtime environment.
type ExprInterpreter struct {
	logger  log.Logger
	options []expr.Option
}

// NewExprInterpreter returns an ExprInterpreter. The given expr options are
// applied after the defaults, e.g. to register extra [expr.Function]s.
func NewExprInterpreter(
	logger log.Logger,
	options ...expr.Option,
) *ExprInterpreter {
	return &ExprInterpreter{
		logger:  logger,
		options: slices.Clone(options),
	}
}

// Interpret implements [Interpreter].
func (i *ExprInterpreter) Interpret(
	expression string,
	ctx *Context,
) (any, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}

	env := make(map[string]any)
	scan := newChainCollector()
	patch := &contextPatcher{
		ctx:    ctx,
		env:    env,
		scan:   scan,
		logger: i.logger,
	}

	opts := append(
		[]expr.Option{
			expr.Env(env),
			expr.AllowUndefinedVariables(),
			expr.Patch(scan),
			expr.Patch(patch),
		},
		i.options...,
	)

	program, err := expr.Compile(expression, opts...)
	if err != nil {
		return nil, ErrInterpret.Wrap(err).
			With(slog.String("expression", expression))
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrInterpret.Wrap(err).
			With(slog.String("expression", expression))
	}

	if u, ok := result.(Unwrapper); ok {
		result = u.Unwrap()
	}

	i.logger.Trace("interpret",
		slog.String("expression", expression),
		slog.Int("bindings", len(env)),
		slog.String("result_type", resultTypeName(result)))

	return result, nil
}
