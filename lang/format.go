package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"
)

// Stringify returns the external string form of a value, as inserted into
// substituted templates.
//
// Nil becomes the empty string. Scalars, byte slices, [fmt.Stringer]s and
// errors use their natural string form. Maps, slices, arrays and structs are
// encoded as compact JSON.
func Stringify(value any) string {
	if u, ok := value.(Unwrapper); ok {
		value = u.Unwrap()
	}

	switch value.(type) {
	case nil:
		return ""

	case []byte, fmt.Stringer, error:
		return cast.ToString(value)
	}

	switch reflect.Indirect(reflect.ValueOf(value)).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if data, err := json.Marshal(value); err == nil {
			return string(data)
		}

		return fmt.Sprintf("%v", value)
	}

	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return s
}

// Output selects how an evaluation result is written by [WriteResult].
type Output int

const (
	OutputText Output = iota // text
	OutputJSON               // json
	OutputYAML               // yaml
)

// Outputs returns the names of all output formats.
func Outputs() []string {
	return []string{OutputText.String(), OutputJSON.String(), OutputYAML.String()}
}

// String implements [fmt.Stringer].
func (o Output) String() string {
	switch o {
	case OutputText:
		return "text"
	case OutputJSON:
		return "json"
	case OutputYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Output(%d)", int(o))
	}
}

// ParseOutput parses the name of an output format.
func ParseOutput(s string) (Output, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	case "yaml", "yml":
		return OutputYAML, nil
	default:
		return OutputText, ErrInvalidFormat.
			With(
				slog.String("format", s),
				slog.String("valid", strings.Join(Outputs(), ",")),
			)
	}
}

// FormatResult formats a result for human-readable text output.
// Composite values are written as JSON.
func FormatResult(result any) string {
	switch v := result.(type) {
	case nil:
		return "nil"

	case string:
		return v
	}

	return Stringify(result)
}

// WriteResult writes value to w in the given output format. A positive indent
// enables multi-line JSON and YAML.
func WriteResult(
	ctx context.Context,
	w io.Writer,
	value any,
	out Output,
	indent int,
) error {
	switch out {
	case OutputJSON:
		var (
			data []byte
			err  error
		)

		if indent > 0 {
			data, err = json.MarshalIndent(value, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(value)
		}

		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case OutputYAML:
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err := yaml.MarshalContext(ctx, value, opts...)
		if err != nil {
			return err
		}

		_, err = fmt.Fprint(w, string(data))

		return err

	default:
		_, err := fmt.Fprintln(w, FormatResult(value))

		return err
	}
}
