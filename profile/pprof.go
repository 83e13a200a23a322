//go:build pprof

package profile

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Enabled reports whether the binary was built with the pprof tag.
const Enabled = true

// Modes returns the sorted list of supported profiling modes.
func Modes() []string {
	return slices.Sorted(maps.Keys(mode))
}

//nolint:gochecknoglobals
var mode = map[string]func(*profile.Profile){
	"allocs":    profile.MemProfileAllocs,
	"block":     profile.BlockProfile,
	"clock":     profile.ClockProfile,
	"cpu":       profile.CPUProfile,
	"goroutine": profile.GoroutineProfile,
	"heap":      profile.MemProfileHeap,
	"mem":       profile.MemProfile,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// option appends a profile option derived from a Profiler field.
type option func(Profiler, []func(*profile.Profile)) []func(*profile.Profile)

func withMode(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	if fn, ok := mode[p.Mode]; ok {
		return append(opts, fn)
	}

	return opts
}

func withPath(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	if p.Dir != "" {
		return append(opts, profile.ProfilePath(p.Dir))
	}

	return opts
}

func withQuiet(p Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	if p.Quiet {
		return append(opts, profile.Quiet)
	}

	return opts
}

// noShutdownHook keeps the profile package from installing its own SIGINT
// handler, which would exit without running the command's deferred calls.
func noShutdownHook(_ Profiler, opts []func(*profile.Profile)) []func(*profile.Profile) {
	return append(opts, profile.NoShutdownHook)
}

func start(p Profiler) Stopper {
	if _, ok := mode[p.Mode]; !ok {
		return ignore{}
	}

	var opts []func(*profile.Profile)

	for _, opt := range []option{withMode, withPath, withQuiet, noShutdownHook} {
		opts = opt(p, opts)
	}

	return profile.Start(opts...)
}
