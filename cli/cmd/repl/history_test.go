package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file = %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 1", modeEval},
		{"keys", modeCtrl},
		{"user.name", modeEval},
		{"1 + 1", modeEval},
		{"1 + 1", modeEval},
		{"  ", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) = %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"keys", modeCtrl},
		{"user.name", modeEval},
		{"1 + 1", modeEval},
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	for _, hist := range []*History{h, reloaded} {
		if hist.Len() != len(want) {
			t.Fatalf("Len() = %d, want %d", hist.Len(), len(want))
		}

		for i, w := range want {
			got, err := hist.Entry(i)
			if err != nil || got != w {
				t.Errorf("Entry(%d) = %+v, %v, want %+v", i, got, err, w)
			}
		}
	}

	if _, err := h.Entry(len(want)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(%d) error = %v, want %v", len(want), err, ErrOutOfBounds)
	}
}

func TestHistorySameLineBothModes(t *testing.T) {
	h := NewHistory("")

	_ = h.Add("help", modeEval)
	_ = h.Add("help", modeCtrl)

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestHistoryInMemory(t *testing.T) {
	dir := t.TempDir()

	h := NewHistory("")
	if err := h.Load(); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if err := h.Add("x", modeEval); err != nil {
		t.Fatalf("Add() = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Errorf("ReadDir() = %v, %v, want empty", entries, err)
	}
}

func TestDecodeHistoryEntry(t *testing.T) {
	tests := map[string]HistoryEntry{
		"E:1 + 1":  {"1 + 1", modeEval},
		"C:keys":   {"keys", modeCtrl},
		"user.name": {"user.name", modeEval},
	}

	for line, want := range tests {
		if got := decodeHistoryEntry(line); got != want {
			t.Errorf("decodeHistoryEntry(%q) = %+v, want %+v", line, got, want)
		}

		if got := decodeHistoryEntry(want.encode()); got != want {
			t.Errorf("decodeHistoryEntry(encode(%+v)) = %+v", want, got)
		}
	}
}
