package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors derived from a sentinel via [Error.Wrap] or [Error.With] still match
// it with [errors.Is].
var (
	// ErrInterpret is returned when the expression grammar rejects the input or
	// a function called by the expression fails.
	ErrInterpret = NewError("expression interpretation failed")

	// ErrRuntimeExpansion is returned when template substitution exceeds one
	// of its bounds. It is never recovered internally.
	ErrRuntimeExpansion = NewError("runtime expansion failed")

	// ErrExpansionGrowth is returned when the expanded output outgrows the
	// configured growth limit.
	ErrExpansionGrowth = ErrRuntimeExpansion.Derive(
		"exponentially growing interpretation",
	)

	// ErrExpansionLoop is returned when no fixed point is reached within the
	// configured number of passes.
	ErrExpansionLoop = ErrRuntimeExpansion.Derive(
		"infinite loop or too-deep indirection",
	)

	ErrFieldAccess       = NewError("field access failed")
	ErrConvert           = NewError("value conversion failed")
	ErrLateBound         = NewError("late-bound value failed")
	ErrReadScope         = NewError("failed to read scope")
	ErrDecodeScope       = NewError("failed to decode scope")
	ErrInvalidFormat     = NewError("invalid output format")
	ErrInvalidAssignment = NewError("invalid assignment")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind  *Error      // Sentinel this error was created from
	msg   string      // Message of the sentinel (or ad hoc message)
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// Derive creates a new sentinel Error that also matches the receiver with
// [errors.Is].
func (e *Error) Derive(msg string) *Error {
	d := NewError(msg)
	d.err = e

	return d
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Derived sentinels wrap their parent only for matching.
	// Exclude the parent message if it is the only wrapped error.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil && !e.derived() {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel (or an ancestor of the sentinel)
// from which e was created.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e.kind == nil {
		return false
	}

	for k := e.kind; k != nil; {
		if k == t {
			return true
		}

		parent, ok := k.err.(*Error)
		if !ok || !k.derived() {
			break
		}

		k = parent
	}

	return false
}

// derived reports whether e is a sentinel created with [Error.Derive].
func (e *Error) derived() bool {
	if e.kind != e {
		return false
	}

	_, ok := e.err.(*Error)

	return ok
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil && !e.derived() {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	err := e.err
	if e.derived() {
		// Keep the derived sentinel's message; the parent is matched via kind.
		err = nil
	}

	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   err,
		attrs: newAttrs,
	}
}
