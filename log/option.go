package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeLayout is the time stamp layout of a [Logger] made without
// [WithTimeLayout].
const DefaultTimeLayout = time.RFC3339

const (
	DefaultCaller = false
	DefaultPretty = true
)

// settings is the immutable configuration of a [Logger]. Options apply to a
// copy, so a Logger never observes a change after it is made.
type settings struct {
	output io.Writer
	stamp  func(time.Time) string
	level  Level
	format Format
	caller bool
	pretty bool
}

func defaultSettings(w io.Writer) settings {
	if w == nil {
		w = io.Discard
	}

	return settings{
		output: w,
		stamp:  timeFormatter(DefaultTimeLayout),
		level:  DefaultLevel,
		format: DefaultFormat,
		caller: DefaultCaller,
		pretty: DefaultPretty,
	}
}

// with returns a copy of s with opts applied.
func (s settings) with(opts ...Option) settings {
	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// handler builds the [slog.Handler] described by s.
func (s settings) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   s.caller,
		Level:       slog.Level(s.level),
		ReplaceAttr: s.replaceAttr,
	}

	switch {
	case s.format != FormatJSON && s.format != FormatText:
		return slog.DiscardHandler
	case s.pretty:
		return newPrettyHandler(s.output, opts, s.format == FormatJSON)
	case s.format == FormatJSON:
		return slog.NewJSONHandler(s.output, opts)
	default:
		return slog.NewTextHandler(s.output, opts)
	}
}

// replaceAttr formats time stamps with the configured layout and writes
// levels by name, so trace records say TRACE rather than DEBUG-4.
func (s settings) replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch v := a.Value.Any().(type) {
	case time.Time:
		if a.Key != slog.TimeKey {
			break
		}

		text := s.stamp(v)
		if text == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(text)

	case slog.Level:
		if a.Key == slog.LevelKey {
			a.Value = slog.StringValue(strings.ToUpper(Level(v).String()))
		}
	}

	return a
}

// Option configures a [Logger].
type Option func(*settings)

// WithOutput writes records to w. A nil w discards them.
func WithOutput(w io.Writer) Option {
	if w == nil {
		w = io.Discard
	}

	return func(s *settings) { s.output = w }
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithTimeLayout formats time stamps with layout. The layout is either the
// name of a [time] package layout such as "RFC3339" or "Kitchen", matched
// without regard to case or punctuation, or a custom layout used verbatim.
// An empty layout or "none" omits time stamps.
func WithTimeLayout(layout string) Option {
	stamp := timeFormatter(layout)

	return func(s *settings) { s.stamp = stamp }
}

// WithCaller adds the source position of the logging call to each record.
func WithCaller(enable bool) Option {
	return func(s *settings) { s.caller = enable }
}

// WithPretty colorizes records for a terminal. Text records stay on one
// line, and JSON records are written one attribute per line.
func WithPretty(enable bool) Option {
	return func(s *settings) { s.pretty = enable }
}

func timeFormatter(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if key == "" || layout == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}

var namedLayouts = func() map[string]string {
	m := map[string]string{
		"none":        "",
		"rfc3339":     time.RFC3339,
		"rfc3339nano": time.RFC3339Nano,
		"ansic":       time.ANSIC,
		"unixdate":    time.UnixDate,
		"rubydate":    time.RubyDate,
		"rfc822":      time.RFC822,
		"rfc822z":     time.RFC822Z,
		"rfc850":      time.RFC850,
		"kitchen":     time.Kitchen,
		"stamp":       time.Stamp,
		"datetime":    time.DateTime,
	}

	for layout, aliases := range map[string][]string{
		time.StampMilli: {"stampmilli", "milli", "millis", "ms"},
		time.StampMicro: {"stampmicro", "micro", "micros", "us"},
		time.StampNano:  {"stampnano", "nano", "nanos", "ns"},
	} {
		for _, alias := range aliases {
			m[alias] = layout
		}
	}

	return m
}()
