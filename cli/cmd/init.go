package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/aexpr/log"
	"github.com/ardnew/aexpr/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// configFileMode is the permission mode of a new configuration file.
const configFileMode os.FileMode = 0o600

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, i.document(ctx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, data, configFileMode); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// document returns the configuration document built from the current flag
// values. A flag whose name begins with its group key is nested under that
// key, so --log-level is written as
//
//	log:
//	  level: info
//
// Unset limits are written with the bounds in effect.
func (i *Init) document(ctx context.Context) yaml.MapSlice {
	ktx := kongContextFrom(ctx)
	limits := engineFrom(ctx).Limits()

	effective := map[string]any{
		"limit-depth":  limits.MaxDepth,
		"limit-passes": limits.MaxPasses,
		"limit-growth": limits.GrowthMultiplier,
		"limit-floor":  limits.GrowthFloor,
	}

	ignore := []string{"help", "version", "source", profile.Tag}

	var doc yaml.MapSlice

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		value := configValue(ktx.FlagValue(flag))
		if value == nil {
			if value = effective[flag.Name]; value == nil {
				continue
			}
		}

		doc = insert(doc, flag, value)
	}

	return doc
}

// insert appends value to doc under the flag's group key, if the flag name
// carries one, or at the top level otherwise.
func insert(doc yaml.MapSlice, flag *kong.Flag, value any) yaml.MapSlice {
	if flag.Group == nil {
		return append(doc, yaml.MapItem{Key: flag.Name, Value: value})
	}

	name, ok := strings.CutPrefix(flag.Name, flag.Group.Key+"-")
	if !ok {
		return append(doc, yaml.MapItem{Key: flag.Name, Value: value})
	}

	idx := slices.IndexFunc(doc, func(item yaml.MapItem) bool {
		return item.Key == flag.Group.Key
	})
	if idx == -1 {
		doc = append(doc, yaml.MapItem{Key: flag.Group.Key, Value: yaml.MapSlice{}})
		idx = len(doc) - 1
	}

	group, _ := doc[idx].Value.(yaml.MapSlice)
	doc[idx].Value = append(group, yaml.MapItem{Key: name, Value: value})

	return doc
}

// configValue returns the value to write for a flag, or nil if the flag is
// unset. Booleans are always written.
func configValue(v any) any {
	if v == nil {
		return nil
	}

	if _, ok := v.(bool); ok {
		return v
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return nil
		}

	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		// Named string types such as log levels are written as plain text.
		return rv.String()

	default:
		if rv.IsZero() {
			return nil
		}
	}

	return v
}
