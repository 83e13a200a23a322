package lang

import (
	"bufio"
	"io/fs"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ardnew/mung"
)

// Target names an operating system and instruction set architecture.
type Target struct {
	OS   string
	Arch string
}

// builtinTable holds the process-wide built-in values placed under the
// caller values of every Context made with builtins enabled.
//
//nolint:gochecknoglobals
var builtinTable = sync.OnceValue(func() map[string]any {
	platform := hostPlatform()

	return map[string]any{
		"platform": platform,
		"target":   gnuTarget(platform),

		"now":      LateValue(time.Now),
		"hostname": LateValue(hostname),
		"user":     LateValue(currentUser),
		"shell":    LateValue(loginShell),
		"cwd":      LateValue(workingDir),
		"env": LateValue(func() map[string]string {
			return environMap(os.Environ())
		}),

		"file": map[string]any{
			"exists":    exists,
			"isDir":     statIs(os.Stat, fs.FileMode.IsDir),
			"isRegular": statIs(os.Stat, fs.FileMode.IsRegular),
			"isSymlink": statIs(os.Lstat, func(m fs.FileMode) bool { return m&fs.ModeSymlink != 0 }),
		},
		"path": map[string]any{
			"abs": absPath,
			"cat": func(elem ...string) string { return filepath.Join(elem...) },
			"rel": relPath,
		},
		"mung": map[string]any{
			"prefix": func(list string, prefix ...string) string {
				return prependList(list, nil, prefix)
			},
			"prefixif": func(list string, keep func(string) bool, prefix ...string) string {
				return prependList(list, keep, prefix)
			},
		},

		"regex": regexFunctor(),
		"json":  jsonFunctor(),
		"yaml":  yamlFunctor(),
		"text":  textFunctor(),
	}
})

// builtins returns a shallow copy of the built-in values. Its top-level
// [LateBound] entries are shared and must be replaced with fresh copies per
// Context.
func builtins() map[string]any { return maps.Clone(builtinTable()) }

// BuiltinKeys returns the sorted top-level names of the built-in values.
func BuiltinKeys() []string {
	return slices.Sorted(maps.Keys(builtins()))
}

// BuiltinLookup returns the sorted member names of the built-in functor at
// the dot-separated path, or nil if path does not name a functor. An empty
// path returns [BuiltinKeys]. The "env" path returns the names of the
// process environment variables.
func BuiltinLookup(path string) []string {
	switch path {
	case "":
		return BuiltinKeys()
	case "env":
		return slices.Sorted(maps.Keys(environMap(os.Environ())))
	}

	if v, ok := BuiltinValue(path); ok {
		if m, ok := v.(map[string]any); ok {
			return slices.Sorted(maps.Keys(m))
		}
	}

	return nil
}

// BuiltinValue returns the built-in value at the dot-separated path.
// Late-bound values are returned unresolved.
func BuiltinValue(path string) (any, bool) {
	var v any = builtins()

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}

		if v, ok = m[seg]; !ok {
			return nil, false
		}
	}

	return v, true
}

// hostPlatform returns the host target in Go naming. GOHOSTOS and
// GOHOSTARCH take precedence over GOOS and GOARCH.
func hostPlatform() Target {
	return Target{
		OS:   firstEnv(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: firstEnv(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

func firstEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
	}

	return fallback
}

// gnuTarget converts a Go target to GNU GCC/LLVM naming.
func gnuTarget(t Target) Target {
	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "mipsle":
		t.Arch = "mipsel"
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "arm":
		v, _, _ := strings.Cut(os.Getenv("GOARM"), ",")
		switch v = strings.TrimSpace(v); v {
		case "5", "6", "7":
			t.Arch = "armv" + v
		}
	}

	return t
}

func hostname() string {
	name, _ := os.Hostname()

	return name
}

func currentUser() *user.User {
	u, err := user.Current()
	if err != nil {
		return nil
	}

	return u
}

// loginShell returns $SHELL, or the shell of the current user in
// /etc/passwd.
func loginShell() string {
	if sh, ok := os.LookupEnv("SHELL"); ok {
		return sh
	}

	u := currentUser()
	if u == nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	for s := bufio.NewScanner(f); s.Scan(); {
		fields := strings.Split(s.Text(), ":")
		if len(fields) >= 7 && fields[0] == u.Username {
			return fields[6]
		}
	}

	return ""
}

func workingDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return absPath(".")
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

// statIs returns a predicate reporting whether the file at a path exists
// and its mode satisfies is.
func statIs(
	stat func(string) (fs.FileInfo, error),
	is func(fs.FileMode) bool,
) func(string) bool {
	return func(path string) bool {
		info, err := stat(path)

		return err == nil && is(info.Mode())
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return path
}

// relPath returns to relative to from, or the two joined if no relative
// path exists.
func relPath(from, to string) string {
	if rel, err := filepath.Rel(absPath(from), absPath(to)); err == nil {
		return rel
	}

	return filepath.Join(from, to)
}

// prependList prepends prefix to the PATH-like list, dropping duplicates and
// any item rejected by keep.
func prependList(list string, keep func(string) bool, prefix []string) string {
	subject := mung.WithSubjectItems(list)
	delim := mung.WithDelim(string(os.PathListSeparator))
	items := mung.WithPrefixItems(prefix...)

	if keep == nil {
		return mung.Make(subject, delim, items).String()
	}

	return mung.Make(subject, delim, items, mung.WithFilter(keep)).String()
}

// environMap converts KEY=VALUE entries to a map. Entries without "=" are
// ignored.
func environMap(entries []string) map[string]string {
	env := make(map[string]string, len(entries))

	for _, entry := range entries {
		if k, v, ok := strings.Cut(entry, "="); ok {
			env[k] = v
		}
	}

	return env
}
