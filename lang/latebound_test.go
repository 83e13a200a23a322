package lang

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLateBoundResolveOnce(t *testing.T) {
	var calls atomic.Int32

	lb := Late(func() (any, error) {
		calls.Add(1)

		return "value", nil
	})

	if lb.Resolved() {
		t.Fatal("new LateBound is resolved")
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			if v, err := lb.Resolve(); err != nil || v != "value" {
				t.Errorf("Resolve() = %v, %v", v, err)
			}
		})
	}

	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("thunk called %d times, want 1", n)
	}

	if !lb.Resolved() {
		t.Error("LateBound not resolved after Resolve")
	}
}

func TestLateBoundError(t *testing.T) {
	var calls int

	boom := errors.New("boom")
	lb := Late(func() (any, error) {
		calls++

		return nil, boom
	})

	for range 2 {
		if _, err := lb.Resolve(); !errors.Is(err, boom) {
			t.Errorf("Resolve() error = %v, want %v", err, boom)
		}
	}

	if calls != 1 {
		t.Errorf("thunk called %d times, want 1", calls)
	}

	if v := lb.Unwrap(); v != nil {
		t.Errorf("Unwrap() = %v, want nil", v)
	}
}

func TestLateBoundFresh(t *testing.T) {
	var calls int

	lb := LateValue(func() int {
		calls++

		return calls
	})

	a, b := lb.fresh(), lb.fresh()
	if a == b {
		t.Fatal("fresh returned the same pending value twice")
	}

	if v := a.Unwrap(); v != 1 {
		t.Errorf("a = %v, want 1", v)
	}

	if v := b.Unwrap(); v != 2 {
		t.Errorf("b = %v, want 2", v)
	}

	if a.fresh() != a {
		t.Error("fresh copy of a resolved value was not the value itself")
	}
}
