package log

import (
	"slices"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", Level(2)},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelText(t *testing.T) {
	for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError} {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatal(err)
		}

		var back Level
		if err := back.UnmarshalText(text); err != nil || back != l {
			t.Errorf("round trip of %v = %v, %v", l, back, err)
		}
	}

	if got := slices.Collect(Levels()); !slices.Equal(got,
		[]string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("Levels() = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{" Text ", FormatText},
		{"xml", DefaultFormat},
	}

	for _, tt := range tests {
		if got := ParseFormat(tt.in); got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var f Format
	if err := f.UnmarshalText([]byte("text")); err != nil || f != FormatText {
		t.Errorf("UnmarshalText(text) = %v, %v", f, err)
	}
}

func TestWithTimeLayout(t *testing.T) {
	now := time.Date(2023, 10, 15, 14, 30, 45, 123456789, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2023-10-15T14:30:45Z"},
		{"rfc-3339-nano", "2023-10-15T14:30:45.123456789Z"},
		{"kitchen", "2:30PM"},
		{"2006/01/02", "2023/10/15"},
		{"none", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		var s settings

		WithTimeLayout(tt.layout)(&s)

		if got := s.stamp(now); got != tt.want {
			t.Errorf("layout %q formatted %q, want %q", tt.layout, got, tt.want)
		}
	}
}
