package lang

import (
	"log/slog"
	"reflect"
	"strconv"

	"github.com/ardnew/aexpr/log"
)

// Struct fields tagged `resolve:"-"` are never treated as expressions.
const (
	resolveTag     = "resolve"
	resolveExclude = "-"
)

// Resolver is the evaluation surface used by a [Walker].
type Resolver interface {
	// Render substitutes the delimited expressions of a string value.
	Render(text string) (string, error)
	// EvaluateOptional evaluates the expression of a [Deferred] value and
	// reports whether it produced a value.
	EvaluateOptional(expression string) (any, bool)
}

// Deferred is implemented by value holders whose value may be given as an
// expression that is evaluated later. See [Field].
type Deferred interface {
	IsExpression() bool
	ExpressionValue() string
	SetValue(value any) error
}

//nolint:gochecknoglobals
var deferredType = reflect.TypeFor[Deferred]()

// Walker resolves the expressions found in an arbitrary object graph.
type Walker struct {
	logger log.Logger
}

// NewWalker returns a Walker that logs skipped fields to logger.
func NewWalker(logger log.Logger) *Walker {
	return &Walker{logger: logger}
}

// Walk visits root recursively and returns it with every string passed
// through [Resolver.Render] and every unresolved [Deferred] value evaluated
// with [Resolver.EvaluateOptional].
//
// Reference types (pointers, maps and slices) are mutated in place and the
// same reference is returned. Any other root is copied, and the resolved
// copy is returned.
//
// Each pointer, map and slice is visited at most once per call, so cyclic
// graphs terminate. Fields that cannot be accessed are logged and skipped.
// Errors returned by Render abort the walk.
func (w *Walker) Walk(root any, resolver Resolver) (any, error) {
	if root == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(root)
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)

	s := &walkState{
		Walker:   w,
		resolver: resolver,
		visited:  make(map[identity]struct{}),
	}

	if err := s.visit(cp, "$"); err != nil {
		return root, err
	}

	return cp.Interface(), nil
}

// identity distinguishes reference values by address rather than content.
type identity struct {
	typ reflect.Type
	ptr uintptr
	len int
}

type walkState struct {
	*Walker

	resolver Resolver
	visited  map[identity]struct{}
}

// enter marks v as visited and reports whether it was seen for the first
// time.
func (s *walkState) enter(v reflect.Value) bool {
	id := identity{typ: v.Type(), ptr: v.Pointer()}
	if v.Kind() == reflect.Slice {
		id.len = v.Len()
	}

	if _, seen := s.visited[id]; seen {
		return false
	}

	s.visited[id] = struct{}{}

	return true
}

// visit resolves v and recovers from reflection panics so that one field
// cannot abort the entire walk.
func (s *walkState) visit(v reflect.Value, path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.skip(path, ErrFieldAccess.With(slog.Any("panic", r)))

			err = nil
		}
	}()

	return s.value(v, path)
}

func (s *walkState) skip(path string, err error) {
	s.logger.Debug("skip field",
		slog.String("path", path),
		slog.Any("error", err))
}

//nolint:cyclop,funlen
func (s *walkState) value(v reflect.Value, path string) error {
	if !v.IsValid() {
		return nil
	}

	if d, ok := deferredOf(v); ok {
		s.deferred(d, path)

		return nil
	}

	switch v.Kind() {
	case reflect.String:
		if !v.CanSet() {
			s.skip(path, ErrFieldAccess.With(slog.String("reason", "not settable")))

			return nil
		}

		out, err := s.resolver.Render(v.String())
		if err != nil {
			return err
		}

		v.SetString(out)

	case reflect.Pointer:
		if v.IsNil() || !s.enter(v) {
			return nil
		}

		return s.visit(v.Elem(), path)

	case reflect.Interface:
		if v.IsNil() {
			return nil
		}

		// The dynamic value of an interface is not addressable.
		elem := v.Elem()
		cp := reflect.New(elem.Type()).Elem()
		cp.Set(elem)

		if err := s.visit(cp, path); err != nil {
			return err
		}

		if !v.CanSet() {
			s.skip(path, ErrFieldAccess.With(slog.String("reason", "not settable")))

			return nil
		}

		v.Set(cp)

	case reflect.Struct:
		t := v.Type()
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Tag.Get(resolveTag) == resolveExclude {
				continue
			}

			sub := path + "." + f.Name
			if !f.IsExported() {
				s.skip(sub, ErrFieldAccess.With(slog.String("reason", "unexported")))

				continue
			}

			if err := s.visit(v.Field(i), sub); err != nil {
				return err
			}
		}

	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || !s.enter(v) {
			return nil
		}

		return s.elements(v, path)

	case reflect.Array:
		return s.elements(v, path)

	case reflect.Map:
		if v.IsNil() || !s.enter(v) {
			return nil
		}

		for _, key := range v.MapKeys() {
			elem := v.MapIndex(key)
			cp := reflect.New(elem.Type()).Elem()
			cp.Set(elem)

			if err := s.visit(cp, path+"["+keyString(key)+"]"); err != nil {
				return err
			}

			v.SetMapIndex(key, cp)
		}

	default:
		// Numbers, booleans, channels and functions hold no expressions.
	}

	return nil
}

func (s *walkState) elements(v reflect.Value, path string) error {
	for i := range v.Len() {
		if err := s.visit(v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
			return err
		}
	}

	return nil
}

// deferred evaluates an unresolved Deferred value. A value is stored only
// when the evaluation produced one.
func (s *walkState) deferred(d Deferred, path string) {
	if !d.IsExpression() {
		return
	}

	value, ok := s.resolver.EvaluateOptional(d.ExpressionValue())
	if !ok {
		s.logger.Debug("leave unresolved",
			slog.String("path", path),
			slog.String("expression", d.ExpressionValue()))

		return
	}

	if err := d.SetValue(value); err != nil {
		s.skip(path, err)
	}
}

// deferredOf returns the Deferred implementation of v or of its address.
func deferredOf(v reflect.Value) (Deferred, bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() || !v.Type().Implements(deferredType) || !v.CanInterface() {
			return nil, false
		}

		d, ok := v.Interface().(Deferred)

		return d, ok
	}

	if !v.CanAddr() || !v.Addr().Type().Implements(deferredType) {
		return nil, false
	}

	a := v.Addr()
	if !a.CanInterface() {
		return nil, false
	}

	d, ok := a.Interface().(Deferred)

	return d, ok
}

func keyString(key reflect.Value) string {
	if key.Kind() == reflect.String {
		return strconv.Quote(key.String())
	}

	return Stringify(key.Interface())
}
