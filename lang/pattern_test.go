package lang

import (
	"slices"
	"testing"
)

func TestFindAll(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   \t", nil},
		{"none", "hello world", nil},
		{"single", "hello ${name}", []string{"${name}"}},
		{"multiple", "${a}-${b.c}", []string{"${a}", "${b.c}"}},
		{"ends at first close", "${a{b}c}", []string{"${a{b}"}},
		{"unterminated", "${a", nil},
		{"dollar only", "$a {b}", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindAll(%q) = %q, want %q", tt.text, got, tt.want)
			}

			if has := HasExpression(tt.text); has != (len(tt.want) > 0) {
				t.Errorf("HasExpression(%q) = %v", tt.text, has)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"foo_bar1", true},
		{"_x", true},
		{"X", true},
		{"foo-bar", false},
		{"1abc", false},
		{"a.b", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidIdentifier(tt.name); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"${a.b}", "a.b"},
		{"  ${1 + 1} ", "1 + 1"},
		{"a.b", "a.b"},
		{"x ${a}", "x ${a}"},
		{"${a}${b}", "${a}${b}"},
		{"${}", ""},
	}

	for _, tt := range tests {
		if got := Strip(tt.text); got != tt.want {
			t.Errorf("Strip(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}
