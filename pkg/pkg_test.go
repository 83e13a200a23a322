package pkg

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "aexpr"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestDescription(t *testing.T) {
	expected := "Hierarchical expression resolver"
	if Description != expected {
		t.Errorf("Expected Description to be %q, got %q", expected, Description)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if Version != strings.TrimSpace(string(buf)) {
		t.Errorf("Expected Version to be %q, got %q", buf, Version)
	}

	if Version == "" || strings.ContainsAny(Version, " \n") {
		t.Errorf("Expected a trimmed non-empty Version, got %q", Version)
	}
}

func TestErrorChain(t *testing.T) {
	err := ErrReadInput.Wrap(io.ErrUnexpectedEOF)

	if got, want := err.Error(), "failed to read input: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrReadInput) {
		t.Error("errors.Is(err, ErrReadInput) = false")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is(err, io.ErrUnexpectedEOF) = false")
	}

	if errors.Is(err, ErrNoInput) {
		t.Error("errors.Is(err, ErrNoInput) = true")
	}

	if len(ErrReadInput) != 1 {
		t.Errorf("Wrap modified the sentinel: %v", ErrReadInput)
	}
}

func TestMakeError(t *testing.T) {
	tests := []struct {
		name string
		errs []error
		want string
		len  int
	}{
		{"empty", nil, "", 0},
		{"nil dropped", []error{nil, io.EOF, nil}, "EOF", 1},
		{"flattened", []error{ErrNoInput, ErrDecodeDocument.Wrap(io.EOF)}, "no input: failed to decode document: EOF", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MakeError(tt.errs...)
			if len(err) != tt.len {
				t.Fatalf("len = %d, want %d (%v)", len(err), tt.len, err)
			}

			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestErrorErr(t *testing.T) {
	if err := MakeError(nil, nil).Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	if err := MakeError(io.EOF).Err(); !errors.Is(err, io.EOF) {
		t.Errorf("Err() = %v, want EOF", err)
	}
}

func TestUnwrapErrors(t *testing.T) {
	inner := errors.New("inner")
	outer := errors.Join(inner)

	chain := UnwrapErrors(outer)
	if len(chain) != 2 || chain[0] != inner {
		t.Errorf("UnwrapErrors = %v", chain)
	}

	if UnwrapErrors(nil) != nil {
		t.Error("UnwrapErrors(nil) != nil")
	}
}

func TestPaths(t *testing.T) {
	if got := filepath.Base(ConfigDir()); got != Prefix() {
		t.Errorf("ConfigDir() = %q, want base %q", ConfigDir(), Prefix())
	}

	if got, want := ConfigPath("config.yaml"), filepath.Join(ConfigDir(), "config.yaml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}

	if got, want := CachePath("history"), filepath.Join(CacheDir(), "history"); got != want {
		t.Errorf("CachePath() = %q, want %q", got, want)
	}
}
