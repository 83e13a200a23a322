package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/aexpr/lang"
	"github.com/ardnew/aexpr/log"
)

// Eval evaluates a single expression against a new context.
type Eval struct {
	Expression string `arg:"" help:"Expression to evaluate" name:"expression"`
	Format     string `       help:"Output format"                             default:"text" enum:"text,json,yaml" short:"o"`
	Indent     int    `       help:"Indentation of JSON and YAML output (0 for compact)" default:"2"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out, err := lang.ParseOutput(e.Format)
	if err != nil {
		return err
	}

	engine := engineFrom(ctx)

	result, err := engine.Evaluate(e.Expression, engine.NewContext())
	if err != nil {
		return ErrEvaluate.
			With(slog.String("expression", e.Expression)).
			Wrap(err)
	}

	log.TraceContext(ctx, "eval result",
		slog.String("expression", e.Expression),
		slog.String("type", resultType(result)),
	)

	if err := lang.WriteResult(ctx, stdout(ctx), result, out, e.Indent); err != nil {
		return ErrWriteOutput.
			With(slog.String("format", out.String())).
			Wrap(err)
	}

	return nil
}
