package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/aexpr/lang"
	"github.com/ardnew/aexpr/log"
	"github.com/ardnew/aexpr/pkg"
)

// documentSeparator begins every document after the first in a YAML stream.
const documentSeparator = "---\n"

// Resolve rewrites every expression found in the string values of YAML
// documents and prints the result as a YAML stream.
//
// Each document is resolved against its own context, so late-bound values
// and assignments never leak from one document into the next. A document
// that fails is reported and skipped. The errors of all failed documents
// are returned together.
type Resolve struct {
	Files  []string `arg:"" help:"YAML files to resolve (default: read --source files)" name:"file" optional:"" type:"existingfile"`
	Indent int      `       help:"Indentation of the YAML output" default:"2"`
}

// Run executes the resolve command.
func (r *Resolve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	readers, closeAll, err := r.readers(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	engine := engineFrom(ctx)
	w := stdout(ctx)

	var (
		errs    []error
		written int
	)

	for i, reader := range readers {
		dec := yaml.NewDecoder(reader, yaml.UseOrderedMap())

		for n := 0; ; n++ {
			attrs := []slog.Attr{
				slog.Int("source", i),
				slog.Int("document", n),
			}

			var doc any

			if err := dec.DecodeContext(ctx, &doc); err != nil {
				if !errors.Is(err, io.EOF) {
					errs = append(errs, pkg.ErrDecodeDocument.Wrap(err))
				}

				// The decoder cannot recover from a syntax error.
				break
			}

			resolved, err := engine.Resolve(doc, engine.NewContext())
			if err != nil {
				errs = append(errs, ErrResolve.With(attrs...).Wrap(err))

				continue
			}

			log.TraceContext(ctx, "resolved document", attrs...)

			if err := r.write(ctx, w, resolved, written); err != nil {
				return err
			}

			written++
		}
	}

	return pkg.MakeError(errs...).Err()
}

// readers opens the named files, or falls back to the source files.
func (r *Resolve) readers(ctx context.Context) ([]io.Reader, func(), error) {
	if len(r.Files) == 0 {
		src := sourceFilesFrom(ctx)
		if src == nil {
			return nil, func() {}, pkg.ErrNoInput
		}

		return src.Readers(), func() {}, nil
	}

	var (
		readers []io.Reader
		files   []*os.File
	)

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, name := range r.Files {
		f, err := os.Open(name)
		if err != nil {
			closeAll()

			return nil, func() {}, pkg.ErrReadInput.Wrap(err)
		}

		files = append(files, f)
		readers = append(readers, f)
	}

	return readers, closeAll, nil
}

func (r *Resolve) write(ctx context.Context, w io.Writer, doc any, index int) error {
	if index > 0 {
		if _, err := io.WriteString(w, documentSeparator); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if err := lang.WriteResult(ctx, w, doc, lang.OutputYAML, max(r.Indent, 1)); err != nil {
		return pkg.ErrEncodeDocument.Wrap(err)
	}

	return nil
}
