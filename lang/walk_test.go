package lang

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

// countingResolver upper-cases rendered strings and counts calls.
type countingResolver struct {
	renders  map[string]int
	values   map[string]any
	renderOK bool
}

func newCountingResolver(values map[string]any) *countingResolver {
	return &countingResolver{renders: make(map[string]int), values: values, renderOK: true}
}

func (r *countingResolver) Render(text string) (string, error) {
	r.renders[text]++
	if !r.renderOK {
		return "", ErrExpansionLoop
	}

	return strings.ToUpper(text), nil
}

func (r *countingResolver) EvaluateOptional(expression string) (any, bool) {
	v, ok := r.values[expression]

	return v, ok
}

type walkNode struct {
	Name   string
	ID     string `resolve:"-"`
	Child  *walkNode
	Tags   []string
	Meta   map[string]any
	Port   Field[int]
	Any    any
	Count  int
	hidden string
}

func TestWalkSelfReference(t *testing.T) {
	n := &walkNode{Name: "node"}
	n.Child = n

	r := newCountingResolver(nil)

	got, err := NewWalker(testLogger(t)).Walk(n, r)
	if err != nil {
		t.Fatal(err)
	}

	if got != any(n) {
		t.Error("Walk did not return the root pointer")
	}

	if r.renders["node"] != 1 || len(r.renders) != 1 {
		t.Errorf("renders = %v, want node once", r.renders)
	}

	if n.Name != "NODE" {
		t.Errorf("Name = %q, want NODE", n.Name)
	}
}

func TestWalkFields(t *testing.T) {
	shared := &walkNode{Name: "shared"}
	n := &walkNode{
		Name:   "root",
		ID:     "id-1",
		Child:  shared,
		Tags:   []string{"a", "b"},
		Meta:   map[string]any{"k": "v", "n": 1, "list": []any{"x", 2}, "ptr": shared},
		Port:   Expression[int]("${port}"),
		Any:    "any",
		Count:  3,
		hidden: "hidden",
	}

	r := newCountingResolver(map[string]any{"${port}": "8080"})

	if _, err := NewWalker(testLogger(t)).Walk(n, r); err != nil {
		t.Fatal(err)
	}

	port := Expression[int]("${port}")
	if err := port.SetValue(8080); err != nil {
		t.Fatal(err)
	}

	want := &walkNode{
		Name:   "ROOT",
		ID:     "id-1",
		Child:  shared,
		Tags:   []string{"A", "B"},
		Meta:   map[string]any{"k": "V", "n": 1, "list": []any{"X", 2}, "ptr": shared},
		Port:   port,
		Any:    "ANY",
		Count:  3,
		hidden: "hidden",
	}

	if !reflect.DeepEqual(n, want) {
		t.Errorf("Walk result:\n got %+v\nwant %+v", n, want)
	}

	if shared.Name != "SHARED" || r.renders["shared"] != 1 {
		t.Errorf("shared node rendered %d times, Name = %q", r.renders["shared"], shared.Name)
	}
}

func TestWalkUnresolvedField(t *testing.T) {
	n := &walkNode{Port: Expression[int]("${missing}")}

	if _, err := NewWalker(testLogger(t)).Walk(n, newCountingResolver(nil)); err != nil {
		t.Fatal(err)
	}

	if !n.Port.IsExpression() || n.Port.ExpressionValue() != "${missing}" {
		t.Errorf("Port = %+v, want unresolved ${missing}", n.Port)
	}
}

func TestWalkConversionFailureSkipped(t *testing.T) {
	n := &walkNode{Name: "x", Port: Expression[int]("${port}")}
	r := newCountingResolver(map[string]any{"${port}": "not a number"})

	if _, err := NewWalker(testLogger(t)).Walk(n, r); err != nil {
		t.Fatal(err)
	}

	if !n.Port.IsExpression() {
		t.Error("Port resolved despite conversion failure")
	}

	if n.Name != "X" {
		t.Errorf("Name = %q, want X", n.Name)
	}
}

func TestWalkValueRoot(t *testing.T) {
	root := walkNode{Name: "value"}

	got, err := NewWalker(testLogger(t)).Walk(root, newCountingResolver(nil))
	if err != nil {
		t.Fatal(err)
	}

	if root.Name != "value" {
		t.Errorf("value root mutated: %q", root.Name)
	}

	if w, ok := got.(walkNode); !ok || w.Name != "VALUE" {
		t.Errorf("Walk = %+v, want copy with Name VALUE", got)
	}

	s, err := NewWalker(testLogger(t)).Walk("text", newCountingResolver(nil))
	if err != nil || s != "TEXT" {
		t.Errorf("Walk(string) = %v, %v", s, err)
	}

	if v, err := NewWalker(testLogger(t)).Walk(nil, newCountingResolver(nil)); v != nil || err != nil {
		t.Errorf("Walk(nil) = %v, %v", v, err)
	}
}

func TestWalkRenderError(t *testing.T) {
	r := newCountingResolver(nil)
	r.renderOK = false

	_, err := NewWalker(testLogger(t)).Walk(&walkNode{Name: "x"}, r)
	if !errors.Is(err, ErrRuntimeExpansion) {
		t.Errorf("error = %v, want ErrRuntimeExpansion", err)
	}
}

func TestWalkCyclicMap(t *testing.T) {
	m := map[string]any{"s": "v"}
	m["self"] = m

	r := newCountingResolver(nil)
	if _, err := NewWalker(testLogger(t)).Walk(m, r); err != nil {
		t.Fatal(err)
	}

	if m["s"] != "V" || r.renders["v"] != 1 {
		t.Errorf("m[s] = %v after %d renders", m["s"], r.renders["v"])
	}
}
