package cmd

import (
	"context"

	"github.com/ardnew/aexpr/cli/cmd/repl"
	"github.com/ardnew/aexpr/log"
)

// Repl starts an interactive session. Every line is evaluated against one
// context, so assignments persist for the session.
type Repl struct {
	History bool `default:"true" help:"Keep input history in the cache directory" negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	var cacheDir string

	if r.History {
		if ktx := kongContextFrom(ctx); ktx != nil {
			cacheDir = ktx.Model.Vars()[CacheIdentifier]
		}
	}

	return repl.Run(ctx, engineFrom(ctx), cacheDir, log.Default())
}
