package log

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
)

// Level is the severity of a record. It extends [slog.Level] with
// [LevelTrace].
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is the level of a [Logger] made without [WithLevel].
const DefaultLevel = LevelInfo

type levelName struct {
	level Level
	name  string
}

var levelNames = []levelName{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// Levels yields the names of the named levels, lowest first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, ln := range levelNames {
			if !yield(ln.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, ignoring case. A name may carry
// a signed offset such as "info+2", as accepted by [slog.Level]. Anything
// else is [DefaultLevel].
func ParseLevel(s string) Level {
	if strings.EqualFold(s, "trace") {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// String returns the lower-case name of l. Unnamed levels are an offset
// from the nearest named level below them, e.g. "info+2".
func (l Level) String() string {
	if i := slices.IndexFunc(levelNames, func(ln levelName) bool {
		return ln.level == l
	}); i >= 0 {
		return levelNames[i].name
	}

	if l < LevelDebug {
		return fmt.Sprintf("trace%+d", int(l-LevelTrace))
	}

	return strings.ToLower(slog.Level(l).String())
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText never fails. Unknown names select [DefaultLevel].
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))

	return nil
}

// Format selects the encoding of records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a [Logger] made without [WithFormat].
const DefaultFormat = FormatJSON

// Formats yields the names of the formats.
func Formats() iter.Seq[string] {
	return slices.Values([]string{FormatJSON.String(), FormatText.String()})
}

// ParseFormat returns the format named by s, or [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText
	case "json":
		return FormatJSON
	}

	return DefaultFormat
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}

	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText never fails. Unknown names select [DefaultFormat].
func (f *Format) UnmarshalText(text []byte) error {
	*f = ParseFormat(string(text))

	return nil
}
