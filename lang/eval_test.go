package lang

import (
	"errors"
	"testing"
)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()

	return NewEvaluator(NewExprInterpreter(testLogger(t)), 0, testLogger(t))
}

func TestEvaluateRecursive(t *testing.T) {
	ctx := NewContext(WithBuiltins(false), WithValues(map[string]any{
		"a":     "${b}",
		"b":     "${c}",
		"c":     5,
		"x":     "${y}",
		"y":     "${x}",
		"plain": "no expressions",
		"mixed": "c is ${c}",
	}))

	tests := []struct {
		name string
		expr string
		want any
	}{
		{"blank", "", ""},
		{"blank delimited", "${ }", ""},
		{"arithmetic", "${1 + 1}", 2},
		{"bare", "1 + 1", 2},
		{"chain", "${a}", 5},
		{"plain string result", "${plain}", "no expressions"},
		{"mixed string recurses", "${mixed}", "c is ${c}"},
		{"cycle bottoms out", "${x}", nil},
		{"syntax error degrades", "${1 +}", "${1 +}"},
		{"missing", "${nope}", nil},
	}

	e := newTestEvaluator(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.EvaluateRecursive(tt.expr, ctx); got != tt.want {
				t.Errorf("EvaluateRecursive(%q) = %v (%T), want %v (%T)",
					tt.expr, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestEvaluateRecursiveDepth(t *testing.T) {
	// d0 → d1 → ... → d9 → "end"
	values := map[string]any{"d9": "end"}
	for i, next := range []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9"} {
		values["d"+string(rune('0'+i))] = "${" + next + "}"
	}

	ctx := NewContext(WithBuiltins(false), WithValues(values))

	shallow := NewEvaluator(NewExprInterpreter(testLogger(t)), 5, testLogger(t))
	if got := shallow.EvaluateRecursive("${d0}", ctx); got != nil {
		t.Errorf("depth 5: got %v, want nil", got)
	}

	deep := NewEvaluator(NewExprInterpreter(testLogger(t)), 10, testLogger(t))
	if got := deep.EvaluateRecursive("${d0}", ctx); got != "end" {
		t.Errorf("depth 10: got %v, want end", got)
	}
}

func TestEvaluate(t *testing.T) {
	ctx := NewContext(WithBuiltins(false), WithValues(map[string]any{
		"a": "${b}",
		"b": 5,
	}))

	e := newTestEvaluator(t)

	if got, err := e.Evaluate("${a}", ctx); err != nil || got != 5 {
		t.Errorf("Evaluate(${a}) = %v, %v, want 5", got, err)
	}

	if got, err := e.Evaluate("  ", ctx); err != nil || got != nil {
		t.Errorf("Evaluate(blank) = %v, %v, want nil", got, err)
	}

	if _, err := e.Evaluate("${1 +}", ctx); !errors.Is(err, ErrInterpret) {
		t.Errorf("Evaluate(${1 +}) error = %v, want ErrInterpret", err)
	}
}

func TestEvaluateOptional(t *testing.T) {
	ctx := NewContext(WithBuiltins(false), WithValue("port", 8080))
	e := newTestEvaluator(t)

	tests := []struct {
		expr string
		want any
		ok   bool
	}{
		{"${port}", 8080, true},
		{"${port + 1}", 8081, true},
		{"${missing}", nil, false},
		{"${1 +}", nil, false},
	}

	for _, tt := range tests {
		got, ok := e.EvaluateOptional(tt.expr, ctx)
		if ok != tt.ok || got != tt.want {
			t.Errorf("EvaluateOptional(%q) = %v, %v, want %v, %v",
				tt.expr, got, ok, tt.want, tt.ok)
		}
	}
}
