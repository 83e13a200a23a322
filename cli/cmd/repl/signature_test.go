package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/aexpr/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		cursor     int
		wantName   string
		wantIndex  int
		wantInCall bool
	}{
		{"no call", "greeting", 8, "", 0, false},
		{"first arg", "add(", 4, "add", 0, true},
		{"first arg with value", "add(1", 5, "add", 0, true},
		{"second arg", "add(1,", 6, "add", 1, true},
		{"second arg with value", "add(1, 2", 8, "add", 1, true},
		{"member function", "path.cat(", 9, "path.cat", 0, true},
		{"member function third arg", "path.cat('/a', '/b',", 20, "path.cat", 2, true},
		{"nested parens", "add(len(s), ", 12, "add", 1, true},
		{"cursor inside nested call", "add(len(s), 4)", 8, "len", 0, true},
		{"commas inside list", "filter([1, 2, 3], ", 18, "filter", 1, true},
		{"closed call", "add(1, 2)", 9, "", 0, false},
		{"inside template", "${text.upper(", 13, "text.upper", 0, true},
		{"bare paren", "(1 + ", 5, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFunctionCall(tt.input, tt.cursor)

			if got.name != tt.wantName || got.argIndex != tt.wantIndex ||
				got.inCall != tt.wantInCall {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want {%s %d %v}",
					tt.input, tt.cursor, got, tt.wantName, tt.wantIndex, tt.wantInCall)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	ctx := lang.New(lang.WithValues(map[string]any{
		"add":  func(a, b int) int { return a + b },
		"len":  func(s string) int { return len(s) },
		"name": "ada",
	})).NewContext()

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"add", "add(int, int)", []string{"int", "int"}},
		{"len", "len(string)", []string{"string"}},
		{"filter", "filter(array, predicate)", []string{"array", "predicate"}},
		{"path.cat", "path.cat(...string)", []string{"...string"}},
		{"mung.prefix", "mung.prefix(string, ...string)", []string{"string", "...string"}},
		{"file.exists", "file.exists(string)", []string{"string"}},
		{"name", "", nil},
		{"missing", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(ctx, tt.name)
			if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
				t.Errorf("getSignature(%q) = %q, %v, want %q, %v",
					tt.name, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

func TestExprLangBuiltinNames(t *testing.T) {
	names := ExprLangBuiltinNames()

	if !slices.IsSorted(names) {
		t.Error("ExprLangBuiltinNames() is not sorted")
	}

	for _, want := range []string{"len", "filter", "upper", "toJSON"} {
		if !slices.Contains(names, want) {
			t.Errorf("ExprLangBuiltinNames() is missing %q", want)
		}
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		params    []string
		arg       int
	}{
		{"no params", "now()", nil, 0},
		{"first param", "add(int, int)", []string{"int", "int"}, 0},
		{"past last param", "add(int, int)", []string{"int", "int"}, 5},
		{"variadic", "path.cat(...string)", []string{"...string"}, 3},
		{"not a call", "value", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint(tt.signature, tt.params, tt.arg)
			if got == "" {
				t.Fatalf("renderSignatureHint(%q) = empty", tt.signature)
			}

			name, _, _ := strings.Cut(tt.signature, "(")
			if !strings.Contains(got, name) {
				t.Errorf("renderSignatureHint(%q) = %q, missing %q", tt.signature, got, name)
			}

			for _, p := range tt.params {
				if !strings.Contains(got, p) {
					t.Errorf("renderSignatureHint(%q) = %q, missing %q", tt.signature, got, p)
				}
			}
		})
	}
}
