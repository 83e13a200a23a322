// Package profile provides optional runtime profiling for the aexpr command.
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof -o aexpr .
//
// Without the tag every [Profiler] is a no-op and [Modes] is empty.
//
// # Modes
//
// The supported modes are allocs, block, clock, cpu, goroutine, heap, mem,
// mutex, thread and trace. Profiles are written by [github.com/pkg/profile]
// into the configured directory, e.g. cpu.pprof, and can be analyzed with
//
//	go tool pprof -http=: ./aexpr /path/to/cpu.pprof
//
// The pprof build also imports [net/http/pprof], which registers its handlers
// on [net/http.DefaultServeMux] for programs that serve it.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
