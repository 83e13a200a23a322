// Package cmd implements the aexpr subcommands.
//
//   - eval evaluates one expression and prints the result.
//   - render expands the delimited expressions of a template.
//   - resolve rewrites every expression found in YAML documents.
//   - repl starts an interactive session.
//   - init writes the current flag values to the configuration file.
//
// Every command evaluates through the [lang.Engine] stored in its
// context.Context by [WithEngine].
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
