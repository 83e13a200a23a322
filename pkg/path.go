package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// DirMode is the permission mode of the directories created by [MkdirAll].
const DirMode os.FileMode = 0o700

var (
	debugBinary = regexp.MustCompile(`^__debug_bin\d*$`)
	leadingDots = regexp.MustCompile(`^\.+`)
)

// Prefix is the base name of the running executable without its extension
// or leading dots. A binary built by the dlv debugger is named [Name].
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	base := filepath.Base(exe)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if debugBinary.MatchString(base) {
		return Name
	}

	return leadingDots.ReplaceAllString(base, "")
})

// userDir returns the [Prefix] directory under the directory named by
// primary. When primary fails it falls back to home/sub, then to the
// working directory.
func userDir(primary func() (string, error), sub string) func() string {
	return sync.OnceValue(func() string {
		if dir, err := primary(); err == nil {
			return filepath.Join(dir, Prefix())
		}

		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, sub, Prefix())
		}

		if wd, err := os.Getwd(); err == nil {
			return filepath.Join(wd, Prefix())
		}

		return Prefix()
	})
}

// ConfigDir is the directory holding the configuration file.
//
//nolint:gochecknoglobals
var ConfigDir = userDir(os.UserConfigDir, ".config")

// CacheDir is the directory holding the REPL history and profiles.
//
//nolint:gochecknoglobals
var CacheDir = userDir(os.UserCacheDir, ".cache")

// ConfigPath joins elem to [ConfigDir].
func ConfigPath(elem ...string) string {
	return filepath.Join(append([]string{ConfigDir()}, elem...)...)
}

// CachePath joins elem to [CacheDir].
func CachePath(elem ...string) string {
	return filepath.Join(append([]string{CacheDir()}, elem...)...)
}

// MkdirAll creates [ConfigDir] and [CacheDir].
func MkdirAll() error {
	for _, dir := range []string{ConfigDir(), CacheDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return err
		}
	}

	return nil
}
