package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestErrorIs(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"sentinel", ErrInterpret, ErrInterpret, true},
		{"wrapped", ErrInterpret.Wrap(cause), ErrInterpret, true},
		{"wrapped cause", ErrInterpret.Wrap(cause), cause, true},
		{"with attrs", ErrInterpret.With(slog.Int("n", 1)), ErrInterpret, true},
		{"other sentinel", ErrInterpret.Wrap(cause), ErrConvert, false},
		{"derived", ErrExpansionGrowth, ErrRuntimeExpansion, true},
		{"derived with", ErrExpansionLoop.With(slog.Int("n", 1)), ErrRuntimeExpansion, true},
		{"derived sibling", ErrExpansionLoop, ErrExpansionGrowth, false},
		{"parent is not child", ErrRuntimeExpansion, ErrExpansionLoop, false},
		{"fmt wrapped", fmt.Errorf("ctx: %w", ErrExpansionGrowth), ErrRuntimeExpansion, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := ErrInterpret.Wrap(errors.New("unexpected token"))
	if got, want := err.Error(), "expression interpretation failed: unexpected token"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if got, want := ErrExpansionLoop.With().Error(), "infinite loop or too-deep indirection"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
