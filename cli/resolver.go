package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"
)

// loadConfig is a [kong.ConfigurationLoader] for YAML configuration files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(loadConfig, "/path/to/config.yaml")
//
// Nested mappings are joined into hyphenated flag names, so both of these
// set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Sequences resolve as lists and mappings also resolve as NAME=VALUE maps,
// e.g. for --alias:
//
//	alias:
//	  uid: user.id
//
// Keys may use underscores in place of hyphens. Command-line flags override
// config file values.
func loadConfig(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	c := make(config)
	c.flatten("", doc)

	return c, nil
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

// flatten stores every value of doc under its hyphenated path.
func (c config) flatten(prefix string, doc map[string]any) {
	for key, value := range doc {
		name := strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			name = prefix + "-" + name
		}

		switch v := value.(type) {
		case nil:

		case map[string]any:
			c[name] = joinMap(v)
			c.flatten(name, v)

		case []any:
			list := make([]any, len(v))
			for i, elem := range v {
				list[i] = cast.ToString(elem)
			}

			c[name] = list

		default:
			c[name] = cast.ToString(v)
		}
	}
}

// joinMap formats m in kong's default NAME=VALUE;... map syntax.
func joinMap(m map[string]any) string {
	pairs := make([]string, 0, len(m))

	for _, key := range slices.Sorted(maps.Keys(m)) {
		switch m[key].(type) {
		case map[string]any, []any:
			continue
		}

		pairs = append(pairs, key+"="+cast.ToString(m[key]))
	}

	return strings.Join(pairs, ";")
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	// Not found: let kong use the default.
	return nil, nil
}
