package cmd

import (
	"context"
	"io"
	"os"
	"reflect"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aexpr/lang"
)

type contextKey struct{}

// WithContext returns ctx carrying the parsed command line.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the output writer of the kong.Context in ctx, or os.Stdout.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

type engineKey struct{}

// WithEngine returns ctx carrying the Engine used by every command.
func WithEngine(ctx context.Context, engine *lang.Engine) context.Context {
	return context.WithValue(ctx, engineKey{}, engine)
}

// engineFrom returns the Engine stored in ctx by WithEngine, or a default
// Engine if none was stored.
func engineFrom(ctx context.Context) *lang.Engine {
	if e, ok := ctx.Value(engineKey{}).(*lang.Engine); ok && e != nil {
		return e
	}

	return lang.New()
}

// resultType names the dynamic type of an evaluation result for logging.
func resultType(value any) string {
	if value == nil {
		return "nil"
	}

	return reflect.TypeOf(value).String()
}
