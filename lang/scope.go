package lang

import (
	"io"
	"log/slog"
	"maps"
	"math"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
)

// Scope is the per-call configuration read from a scope file.
//
//	prefixes: [user, ""]
//	aliases:
//	  uid: id
//	values:
//	  user.id: "42"
//	limits:
//	  max-depth: 5
type Scope struct {
	Prefixes []string          `mapstructure:"prefixes" yaml:"prefixes,omitempty"`
	Aliases  map[string]string `mapstructure:"aliases"  yaml:"aliases,omitempty"`
	Values   map[string]any    `mapstructure:"values"   yaml:"values,omitempty"`
	Limits   Limits            `mapstructure:"limits"   yaml:"limits,omitempty"`
}

// LoadScope reads a YAML scope document from r.
//
// Scalars are weakly typed, so "5" is accepted wherever a number is
// expected. Unknown top-level keys are rejected.
func LoadScope(r io.Reader) (Scope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Scope{}, ErrReadScope.Wrap(err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Scope{}, ErrDecodeScope.Wrap(err)
	}

	var scope Scope

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		Result:           &scope,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Scope{}, ErrDecodeScope.Wrap(err)
	}

	if err := dec.Decode(raw); err != nil {
		return Scope{}, ErrDecodeScope.Wrap(err)
	}

	return scope, nil
}

// Merge returns s overlaid with the non-empty parts of o.
func (s Scope) Merge(o Scope) Scope {
	if len(o.Prefixes) > 0 {
		s.Prefixes = o.Prefixes
	}

	s.Aliases = merged(s.Aliases, o.Aliases)
	s.Values = merged(s.Values, o.Values)

	s.Limits = s.Limits.overlay(o.Limits)

	return s
}

// overlay returns l with every positive field of o copied over it.
func (l Limits) overlay(o Limits) Limits {
	for _, f := range []struct{ dst, src *int }{
		{&l.MaxDepth, &o.MaxDepth},
		{&l.MaxPasses, &o.MaxPasses},
		{&l.GrowthMultiplier, &o.GrowthMultiplier},
		{&l.GrowthFloor, &o.GrowthFloor},
	} {
		if *f.src > 0 {
			*f.dst = *f.src
		}
	}

	return l
}

func merged[V any](a, b map[string]V) map[string]V {
	if len(b) == 0 {
		return a
	}

	m := make(map[string]V, len(a)+len(b))
	maps.Copy(m, a)
	maps.Copy(m, b)

	return m
}

// Options returns the options that apply s to an [Engine] or [Context].
func (s Scope) Options() []Option {
	opts := []Option{
		WithValues(s.Values),
		WithAliases(s.Aliases),
	}

	if len(s.Prefixes) > 0 {
		opts = append(opts, WithPrefixes(s.Prefixes...))
	}

	if s.Limits != (Limits{}) {
		opts = append(opts, WithLimits(s.Limits))
	}

	return opts
}

// ParseAssignment parses a name=value assignment as given on the command
// line. Values that read as YAML booleans or numbers are typed accordingly,
// with integers as int where they fit.
// Anything else, including text with delimited expressions, is kept as a
// string.
func ParseAssignment(text string) (string, any, error) {
	name, raw, ok := strings.Cut(text, "=")

	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, ErrInvalidAssignment.With(slog.String("assignment", text))
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err == nil {
		switch v := value.(type) {
		case uint64:
			if v <= math.MaxInt {
				return name, int(v), nil
			}

			return name, v, nil

		case int64:
			return name, int(v), nil

		case bool, int, float64:
			return name, value, nil
		}
	}

	return name, raw, nil
}
