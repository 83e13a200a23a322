package lang

import (
	"maps"
	"slices"
	"sync"
)

// Tracker records which variables were read and with what value.
//
// Values are keyed by their external string form (see [Stringify]), so
// unhashable values are counted as well. Counts only ever increase.
// A Tracker is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	usage map[string]map[string]int
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{usage: make(map[string]map[string]int)}
}

// Record increments the occurrence count of value for the variable name.
// Recording on a nil Tracker is a no-op.
func (t *Tracker) Record(name string, value any) {
	if t == nil {
		return
	}

	key := Stringify(value)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.usage == nil {
		t.usage = make(map[string]map[string]int)
	}

	counts, ok := t.usage[name]
	if !ok {
		counts = make(map[string]int)
		t.usage[name] = counts
	}

	counts[key]++
}

// Count returns how many times name was read with value.
func (t *Tracker) Count(name string, value any) int {
	if t == nil {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return t.usage[name][Stringify(value)]
}

// Names returns the sorted names of all recorded variables.
func (t *Tracker) Names() []string {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Sorted(maps.Keys(t.usage))
}

// Usage returns a copy of the recorded usage.
func (t *Tracker) Usage() map[string]map[string]int {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]map[string]int, len(t.usage))
	for name, counts := range t.usage {
		out[name] = maps.Clone(counts)
	}

	return out
}
