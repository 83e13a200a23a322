package lang

import "sync"

// Thunk computes the value of a [LateBound] on first access.
type Thunk func() (any, error)

// lateState tags the variant held by a [LateBound].
type lateState uint8

const (
	statePending lateState = iota
	stateResolved
)

// LateBound is a deferred value computed at most once.
//
// A LateBound is either Pending (holding its thunk) or Resolved (holding the
// thunk's result). The transition happens exactly once under the value's own
// lock, so concurrent readers observe either state but never a partial one.
// A failing thunk is memoized as well.
type LateBound struct {
	mu    sync.Mutex
	state lateState
	thunk Thunk
	value any
	err   error
}

// Late returns a pending [LateBound] that computes its value with fn.
func Late(fn Thunk) *LateBound {
	return &LateBound{thunk: fn}
}

// LateValue returns a pending [LateBound] for a thunk that cannot fail.
func LateValue[T any](fn func() T) *LateBound {
	return Late(func() (any, error) { return fn(), nil })
}

// Resolve binds the value on first call and returns the memoized result on
// every call.
func (l *LateBound) Resolve() (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == statePending {
		if l.thunk != nil {
			l.value, l.err = l.thunk()
		}

		l.state = stateResolved
		l.thunk = nil
	}

	return l.value, l.err
}

// Resolved reports whether the value has been bound.
func (l *LateBound) Resolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state == stateResolved
}

// Unwrap implements [Unwrapper]. Errors resolve to nil.
func (l *LateBound) Unwrap() any {
	v, err := l.Resolve()
	if err != nil {
		return nil
	}

	return v
}

// fresh returns a new pending LateBound sharing the receiver's thunk, or the
// receiver itself if it has already been bound.
func (l *LateBound) fresh() *LateBound {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == stateResolved {
		return l
	}

	return &LateBound{thunk: l.thunk}
}
