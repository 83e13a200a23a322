package cli

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/aexpr/lang"
	"github.com/ardnew/aexpr/log"
)

// limitConfig holds the evaluation bounds. Zero leaves a bound to the scope
// file or its default.
type limitConfig struct {
	Depth  int `help:"Maximum recursive evaluation depth (default ${limitDepth})."          placeholder:"N"`
	Passes int `help:"Maximum substitution passes (default ${limitPasses})."                placeholder:"N"`
	Growth int `help:"Maximum output growth as a multiple of input (default ${limitGrowth})." placeholder:"N"`
	Floor  int `help:"Output length always allowed, in bytes (default ${limitFloor})."       placeholder:"BYTES"`
}

func (*limitConfig) vars() kong.Vars {
	return kong.Vars{
		"limitDepth":  strconv.Itoa(lang.DefaultMaxDepth),
		"limitPasses": strconv.Itoa(lang.DefaultMaxPasses),
		"limitGrowth": strconv.Itoa(lang.DefaultGrowthMultiplier),
		"limitFloor":  strconv.Itoa(lang.DefaultGrowthFloor),
	}
}

func (*limitConfig) group() kong.Group {
	return kong.Group{Key: "limit", Title: "Evaluation limits"}
}

func (f *limitConfig) limits() lang.Limits {
	return lang.Limits{
		MaxDepth:         f.Depth,
		MaxPasses:        f.Passes,
		GrowthMultiplier: f.Growth,
		GrowthFloor:      f.Floor,
	}
}

// scopeConfig holds the flags that seed the resolution context.
type scopeConfig struct {
	Scope  string            `help:"Read prefixes, aliases, values and limits from a YAML scope file." placeholder:"FILE"       type:"existingfile"`
	Set    []string          `help:"Assign a value (repeatable)."                                      placeholder:"NAME=VALUE" sep:"none"`
	Prefix []string          `help:"Search names under a prefix (repeatable, most specific first)."    placeholder:"PREFIX"`
	Alias  map[string]string `help:"Rewrite a name before prefix search (repeatable)."                 placeholder:"NAME=TARGET"`
}

func (*scopeConfig) group() kong.Group {
	return kong.Group{Key: "scope", Title: "Scope options"}
}

// scope returns the scope file, if any, overlaid with the flag values and
// the given limits.
func (f *scopeConfig) scope(limits lang.Limits) (lang.Scope, error) {
	var base lang.Scope

	if f.Scope != "" {
		file, err := os.Open(f.Scope)
		if err != nil {
			return base, lang.ErrReadScope.
				With(slog.String("file", f.Scope)).
				Wrap(err)
		}
		defer file.Close()

		base, err = lang.LoadScope(file)
		if err != nil {
			return base, err
		}
	}

	flags := lang.Scope{
		Prefixes: f.Prefix,
		Aliases:  f.Alias,
		Values:   make(map[string]any, len(f.Set)),
		Limits:   limits,
	}

	for _, assignment := range f.Set {
		name, value, err := lang.ParseAssignment(assignment)
		if err != nil {
			return base, err
		}

		flags.Values[name] = value
	}

	return base.Merge(flags), nil
}

// engine returns the Engine configured by the scope and limit flags.
func engine(ctx context.Context, scope lang.Scope) *lang.Engine {
	logger := log.Default()

	logger.DebugContext(ctx, "engine configured",
		slog.Any("prefixes", scope.Prefixes),
		slog.Int("aliases", len(scope.Aliases)),
		slog.Int("values", len(scope.Values)),
	)

	return lang.New(append(scope.Options(), lang.WithLogger(logger))...)
}
