package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/aexpr/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-decode-retry loop
// over the session's assignments. The assignments are written as a YAML
// mapping to a temp file and opened in the user's editor. On a decode error
// the user is asked whether to edit again. Declining exits the REPL.
type editCommand struct {
	ctx      context.Context
	logger   log.Logger
	assigned map[string]any

	// edited holds the decoded assignments, or nil if the user emptied the
	// file.
	edited map[string]any

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run edits the assignments until they decode or the user gives up, in
// which case it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	content, err := encodeAssignments(c.assigned)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "aexpr-repl-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(c.ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		if content, err = os.ReadFile(path); err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		edited, decodeErr := decodeAssignments(content)

		c.logger.TraceContext(c.ctx, "editor decode attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", decodeErr == nil))

		if decodeErr == nil {
			c.edited = edited

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// encodeAssignments writes values as a YAML mapping sorted by name.
func encodeAssignments(values map[string]any) ([]byte, error) {
	if len(values) == 0 {
		return []byte("# name: value\n"), nil
	}

	doc := make(yaml.MapSlice, 0, len(values))
	for _, name := range slices.Sorted(maps.Keys(values)) {
		doc = append(doc, yaml.MapItem{Key: name, Value: values[name]})
	}

	return yaml.Marshal(doc)
}

// decodeAssignments reads a YAML mapping of names to values. A document
// holding only comments decodes to an empty, non-nil map.
func decodeAssignments(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, err
	}

	if values == nil {
		values = make(map[string]any)
	}

	return values, nil
}

// runEditor runs $EDITOR on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
