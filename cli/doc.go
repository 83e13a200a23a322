// Package cli contains the command line interface for aexpr.
//
// # Usage
//
//	aexpr 'user.name + "!"' --set user.name=ada
//	aexpr render 'http://${host}:${port}/' --scope scope.yaml
//	aexpr resolve deploy.yaml --prefix prod --prefix ""
//	aexpr repl
//
// The eval command is the default, so a bare expression is evaluated.
//
// # Scope
//
// Every command evaluates through one engine built from the scope options.
// A scope file supplies prefixes, aliases, values and limits:
//
//	prefixes: [prod, ""]
//	aliases:
//	  db: database
//	values:
//	  prod.database.host: db.internal
//	limits:
//	  max-passes: 20
//
// The --set, --prefix, --alias and --limit-* flags override the file.
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory. Nested keys are joined with hyphens, so log.level sets
// --log-level. The init command writes the current flag values there.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o aexpr .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/aexpr/pprof)
package cli
