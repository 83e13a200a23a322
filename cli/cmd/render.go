package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ardnew/aexpr/log"
	"github.com/ardnew/aexpr/pkg"
)

// Render expands every delimited expression of a template.
//
// The template is the argument if given, or else the concatenated source
// files.
type Render struct {
	Template string `arg:"" help:"Template text (default: read --source files)" name:"template" optional:""`
	Usage    bool   `       help:"Log the variables read while rendering"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	template, err := r.template(ctx)
	if err != nil {
		return err
	}

	engine := engineFrom(ctx)

	text, err := engine.Substitute(template, engine.NewContext())
	if err != nil {
		return ErrRender.
			With(slog.Int("length", len(template))).
			Wrap(err)
	}

	if r.Usage {
		logUsage(ctx, engine.Tracker().Usage())
	}

	if _, err := fmt.Fprint(stdout(ctx), text); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// template returns the template argument, or the content of the source files.
func (r *Render) template(ctx context.Context) (string, error) {
	if r.Template != "" {
		return r.Template, nil
	}

	src := sourceFilesFrom(ctx)
	if src == nil {
		return "", pkg.ErrNoInput
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", pkg.ErrReadInput.Wrap(err)
	}

	return string(data), nil
}

// logUsage logs one record per variable read, with its count per value.
func logUsage(ctx context.Context, usage map[string]map[string]int) {
	names := make([]string, 0, len(usage))
	for name := range usage {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		attrs := make([]any, 0, len(usage[name]))
		for value, count := range usage[name] {
			attrs = append(attrs, slog.Int(value, count))
		}

		log.InfoContext(ctx, "variable usage",
			slog.String("name", name),
			slog.Group("values", attrs...),
		)
	}
}
