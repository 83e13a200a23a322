package lang

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

const testScope = `
prefixes: [user, ""]
aliases:
  uid: id
values:
  user.id: "42"
  db:
    host: localhost
    port: 5432
limits:
  max-depth: "3"
  max-passes: 4
`

func TestLoadScope(t *testing.T) {
	s, err := LoadScope(strings.NewReader(testScope))
	if err != nil {
		t.Fatal(err)
	}

	if want := []string{"user", ""}; !slices.Equal(s.Prefixes, want) {
		t.Errorf("Prefixes = %q, want %q", s.Prefixes, want)
	}

	if s.Aliases["uid"] != "id" {
		t.Errorf("Aliases = %v", s.Aliases)
	}

	if s.Limits.MaxDepth != 3 || s.Limits.MaxPasses != 4 {
		t.Errorf("Limits = %+v", s.Limits)
	}

	e := New(append(s.Options(), WithBuiltins(false))...)

	if l := e.Limits(); l.MaxDepth != 3 || l.GrowthMultiplier != DefaultGrowthMultiplier {
		t.Errorf("engine Limits = %+v", l)
	}

	ctx := e.NewContext()

	if v, err := e.Evaluate("${uid}", ctx); err != nil || v != "42" {
		t.Errorf("Evaluate(${uid}) = %v, %v", v, err)
	}

	if out, err := e.Substitute("${db.host}:${db.port}", ctx); err != nil || out != "localhost:5432" {
		t.Errorf("Substitute = %q, %v", out, err)
	}
}

func TestLoadScopeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "prefix: [a]\n"},
		{"wrong type", "aliases: [a, b]\n"},
		{"bad limit", "limits:\n  max-depth: deep\n"},
		{"not yaml", "values: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScope(strings.NewReader(tt.doc)); !errors.Is(err, ErrDecodeScope) {
				t.Errorf("LoadScope error = %v, want ErrDecodeScope", err)
			}
		})
	}
}

func TestScopeMerge(t *testing.T) {
	base := Scope{
		Prefixes: []string{"a"},
		Aliases:  map[string]string{"x": "y"},
		Values:   map[string]any{"k": 1},
	}

	got := base.Merge(Scope{
		Values: map[string]any{"k": 2, "j": 3},
		Limits: Limits{MaxDepth: 2},
	})

	if !slices.Equal(got.Prefixes, []string{"a"}) || got.Aliases["x"] != "y" {
		t.Errorf("Merge dropped base settings: %+v", got)
	}

	if got.Values["k"] != 2 || got.Values["j"] != 3 || base.Values["k"] != 1 {
		t.Errorf("Merge values = %v, base = %v", got.Values, base.Values)
	}

	if got.Limits.MaxDepth != 2 {
		t.Errorf("Merge limits = %+v", got.Limits)
	}
}

func TestScopeMergeLimitsFieldwise(t *testing.T) {
	base := Scope{Limits: Limits{MaxDepth: 3, MaxPasses: 4}}

	got := base.Merge(Scope{Limits: Limits{MaxPasses: 7}})
	if got.Limits.MaxDepth != 3 || got.Limits.MaxPasses != 7 {
		t.Errorf("Merge limits = %+v", got.Limits)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		text   string
		name   string
		typed  bool
		str    string
		errors bool
	}{
		{text: "port=8080", name: "port", typed: true},
		{text: "debug=true", name: "debug", typed: true},
		{text: "ratio=0.5", name: "ratio", typed: true},
		{text: "host=localhost", name: "host", str: "localhost"},
		{text: " url = ${host}:8080", name: "url", str: " ${host}:8080"},
		{text: "color=#fff", name: "color", str: "#fff"},
		{text: "pair=a: b", name: "pair", str: "a: b"},
		{text: "empty=", name: "empty", str: ""},
		{text: "a=b=c", name: "a", str: "b=c"},
		{text: "novalue", errors: true},
		{text: "=value", errors: true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			name, value, err := ParseAssignment(tt.text)
			if tt.errors {
				if !errors.Is(err, ErrInvalidAssignment) {
					t.Fatalf("ParseAssignment(%q) error = %v", tt.text, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseAssignment(%q) error = %v", tt.text, err)
			}

			if name != tt.name {
				t.Errorf("name = %q, want %q", name, tt.name)
			}

			s, isString := value.(string)
			if tt.typed {
				if isString {
					t.Errorf("value = %q, want a typed scalar", s)
				}

				return
			}

			if !isString || s != tt.str {
				t.Errorf("value = %#v, want %q", value, tt.str)
			}
		})
	}
}

func TestParseAssignmentInt(t *testing.T) {
	for text, want := range map[string]int{"n=42": 42, "n=-7": -7} {
		if _, v, err := ParseAssignment(text); err != nil || v != want {
			t.Errorf("ParseAssignment(%q) = %#v, %v, want int %d", text, v, err, want)
		}
	}
}
