package lang

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cast"
)

// Field holds a value of type T that may be given as an expression.
//
// An expression Field stays unresolved until [Field.SetValue] stores a
// concrete value, which the [Walker] does when the expression evaluates to
// something. The zero Field holds the zero T.
type Field[T any] struct {
	expr    string
	value   T
	pending bool
}

// Expression returns an unresolved Field for expression.
func Expression[T any](expression string) Field[T] {
	return Field[T]{expr: expression, pending: true}
}

// Value returns a resolved Field holding value.
func Value[T any](value T) Field[T] {
	return Field[T]{value: value}
}

// IsExpression reports whether the Field is still unresolved.
func (f Field[T]) IsExpression() bool { return f.pending }

// ExpressionValue returns the raw expression text, or the empty string if the
// Field was never an expression.
func (f Field[T]) ExpressionValue() string { return f.expr }

// Get returns the current value. An unresolved Field returns the zero T.
func (f Field[T]) Get() T { return f.value }

// Unwrap implements [Unwrapper].
func (f Field[T]) Unwrap() any {
	if f.pending {
		return nil
	}

	return f.value
}

// SetValue converts value to T and marks the Field resolved.
func (f *Field[T]) SetValue(value any) error {
	v, err := convert[T](value)
	if err != nil {
		return err
	}

	f.value = v
	f.pending = false

	return nil
}

// UnmarshalYAML decodes a string containing a delimited expression as an
// unresolved Field. Any other node is decoded as T.
func (f *Field[T]) UnmarshalYAML(data []byte) error {
	var s string
	if err := yaml.Unmarshal(data, &s); err == nil && HasExpression(s) {
		*f = Expression[T](s)

		return nil
	}

	var v T
	if err := yaml.Unmarshal(data, &v); err != nil {
		return ErrConvert.Wrap(err)
	}

	*f = Value(v)

	return nil
}

// MarshalYAML encodes an unresolved Field as its expression text.
func (f Field[T]) MarshalYAML() (any, error) {
	if f.pending {
		return f.expr, nil
	}

	return f.value, nil
}

// MarshalJSON encodes an unresolved Field as its expression text.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.pending {
		return json.Marshal(f.expr)
	}

	return json.Marshal(f.value)
}

// convert converts value to T. Exact types are returned as-is, common scalar
// targets go through spf13/cast, and anything else must be convertible by
// reflection.
//
//nolint:cyclop
func convert[T any](value any) (T, error) {
	var zero T

	if v, ok := value.(T); ok {
		return v, nil
	}

	var (
		out any
		err error
	)

	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(value)
	case bool:
		out, err = cast.ToBoolE(value)
	case int:
		out, err = cast.ToIntE(value)
	case int64:
		out, err = cast.ToInt64E(value)
	case int32:
		out, err = cast.ToInt32E(value)
	case uint:
		out, err = cast.ToUintE(value)
	case uint64:
		out, err = cast.ToUint64E(value)
	case float64:
		out, err = cast.ToFloat64E(value)
	case float32:
		out, err = cast.ToFloat32E(value)
	case time.Duration:
		out, err = cast.ToDurationE(value)
	case time.Time:
		out, err = cast.ToTimeE(value)
	case []string:
		out, err = cast.ToStringSliceE(value)
	case map[string]any:
		out, err = cast.ToStringMapE(value)
	case map[string]string:
		out, err = cast.ToStringMapStringE(value)
	default:
		rv := reflect.ValueOf(value)
		to := reflect.TypeFor[T]()

		if !rv.IsValid() || !rv.Type().ConvertibleTo(to) {
			return zero, ErrConvert.With(
				slog.String("from", resultTypeName(value)),
				slog.String("to", to.String()),
			)
		}

		out = rv.Convert(to).Interface()
	}

	if err != nil {
		return zero, ErrConvert.Wrap(err).With(
			slog.String("from", resultTypeName(value)),
			slog.String("to", reflect.TypeFor[T]().String()),
		)
	}

	v, ok := out.(T)
	if !ok {
		return zero, ErrConvert.With(slog.String("from", resultTypeName(out)))
	}

	return v, nil
}
