// Package pkg holds the identity of the aexpr program and the errors and
// paths shared by its commands.
package pkg

import (
	_ "embed"
	"strings"
)

// Name is the program name. It is also the default base name of the
// configuration and cache directories.
const Name = "aexpr"

// Description is the one-line summary shown in help output.
const Description = "Hierarchical expression resolver"

//go:embed VERSION
var version string

// Version is the release version of the program, without surrounding space.
//
//nolint:gochecknoglobals
var Version = strings.TrimSpace(version)
