package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// stdinSource names standard input on the command line.
const stdinSource = "-"

// Sources reads the input files named on the command line in order,
// followed by standard input if it was named. Each file is read once no
// matter how many paths name it.
type Sources struct {
	files []io.Reader
	stdin bool
}

type sourcesKey struct{}

// WithSourceFiles returns ctx carrying the [Sources] opened from paths.
// Paths that cannot be opened are skipped, and every "-" collapses into a
// single read of standard input after the files.
func WithSourceFiles(ctx context.Context, paths []string) context.Context {
	if src := openSources(paths); src != nil {
		return context.WithValue(ctx, sourcesKey{}, src)
	}

	return ctx
}

// sourceFilesFrom returns the Sources stored in ctx, or nil when none of the
// named sources could be opened.
func sourceFilesFrom(ctx context.Context) *Sources {
	src, _ := ctx.Value(sourcesKey{}).(*Sources)

	return src
}

func openSources(paths []string) *Sources {
	var (
		src  Sources
		seen []os.FileInfo
	)

	stdinInfo, _ := os.Stdin.Stat()

	isSeen := func(info os.FileInfo) bool {
		return slices.ContainsFunc(seen, func(s os.FileInfo) bool {
			return os.SameFile(s, info)
		})
	}

	for _, path := range paths {
		if path == stdinSource {
			src.stdin = true

			continue
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			continue
		}

		info, err := os.Stat(resolved)
		if err != nil || isSeen(info) {
			continue
		}

		// A path naming the terminal or pipe behind stdin is read as stdin.
		if stdinInfo != nil && os.SameFile(info, stdinInfo) {
			src.stdin = true

			continue
		}

		f, err := os.Open(resolved)
		if err != nil {
			continue
		}

		seen = append(seen, info)
		src.files = append(src.files, f)
	}

	if len(src.files) == 0 && !src.stdin {
		return nil
	}

	return &src
}

// HasStdin reports whether standard input is one of the sources.
func (s *Sources) HasStdin() bool { return s.stdin }

// Readers returns one reader per source, standard input last.
func (s *Sources) Readers() []io.Reader {
	if s.stdin {
		return append(slices.Clip(s.files), os.Stdin)
	}

	return s.files
}

// Read reads the sources as one stream. Exhausted files are dropped.
func (s *Sources) Read(p []byte) (int, error) {
	for len(s.files) > 0 {
		n, err := s.files[0].Read(p)
		if errors.Is(err, io.EOF) {
			s.files, err = s.files[1:], nil
		}

		if n > 0 || err != nil {
			return n, err
		}
	}

	if s.stdin {
		return os.Stdin.Read(p)
	}

	return 0, io.EOF
}

// WriteTo writes every source to w in order.
func (s *Sources) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, io.MultiReader(s.Readers()...))
}
