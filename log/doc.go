// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// A [Logger] is configured once with functional options and is safe to copy
// and share:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//
//	logger.Debug("degrade to literal", slog.String("expression", "${1 +}"))
//
// Attributes are always typed [slog.Attr] values. Errors that implement
// [slog.LogValuer] are expanded into their own attributes.
//
// # Levels
//
// In addition to the [slog] levels, [LevelTrace] sits below [LevelDebug]
// for very chatty diagnostics such as per-pass interpolation statistics.
// Messages below the configured level are discarded.
//
// # Output
//
// Records are written as JSON ([FormatJSON], the default) or as key=value
// text ([FormatText]). With [WithPretty], both are colorized for a terminal.
// Time stamps use any named layout of the [time] package or a custom
// layout, and an empty layout disables them.
//
// # Package-level logging
//
// The package-level functions such as [Info] write to a default logger,
// which [Config] reconfigures. Context-free functions and methods use
// [DefaultContextProvider] for their context.
package log
