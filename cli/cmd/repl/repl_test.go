package repl

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ardnew/aexpr/lang"
	"github.com/ardnew/aexpr/log"
)

func testLogger() log.Logger { return log.Make(io.Discard) }

func testModel(t *testing.T) model {
	t.Helper()

	engine := lang.New(lang.WithValues(map[string]any{
		"user": map[string]any{"name": "ada"},
		"port": 8080,
	}))

	return newModel(t.Context(), engine, NewHistory(""), testLogger())
}

func TestModelEvaluate(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "port + 1", want: "8081"},
		{input: `user.name + "!"`, want: "ada!"},
		{input: "hello ${user.name}:${port}", want: "hello ada:8080"},
		{input: "1 +", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := m.evaluate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("evaluate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}

			if !tt.wantErr && lang.FormatResult(got) != tt.want {
				t.Errorf("evaluate(%q) = %v, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModelEvaluateTrace(t *testing.T) {
	var buf bytes.Buffer

	m := testModel(t)
	m.logger = log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithPretty(false))

	if _, err := m.evaluate("port + 1"); err != nil {
		t.Fatalf("evaluate(port + 1) error: %v", err)
	}

	if _, err := m.evaluate("1 +"); err == nil {
		t.Fatal("evaluate(1 +) error = nil")
	}

	out := buf.String()
	for _, want := range []string{
		`"msg":"repl eval"`,
		`"input":"port + 1"`,
		`"result_type":"int"`,
		`"input":"1 +"`,
		`"error"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %s:\n%s", want, out)
		}
	}
}

func TestModelSetUnset(t *testing.T) {
	m := testModel(t)

	if err := m.set("port=9090"); err != nil {
		t.Fatalf("set() = %v", err)
	}

	if err := m.set("host=${user.name}.local"); err != nil {
		t.Fatalf("set() = %v", err)
	}

	if got, err := m.evaluate("port"); err != nil || got != 9090 {
		t.Errorf("port after set = %v, %v, want 9090", got, err)
	}

	if got, err := m.evaluate("at ${host}"); err != nil || got != "at ada.local" {
		t.Errorf("template after set = %v, %v, want %q", got, err, "at ada.local")
	}

	if err := m.set("novalue"); !errors.Is(err, lang.ErrInvalidAssignment) {
		t.Errorf("set(novalue) error = %v, want %v", err, lang.ErrInvalidAssignment)
	}

	if err := m.unset("port host"); err != nil {
		t.Fatalf("unset() = %v", err)
	}

	if got, err := m.evaluate("port"); err != nil || got != 8080 {
		t.Errorf("port after unset = %v, %v, want original 8080", got, err)
	}

	if len(m.assign) != 0 {
		t.Errorf("assign after unset = %v, want empty", m.assign)
	}

	if err := m.unset(""); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("unset() error = %v, want %v", err, ErrMissingArgument)
	}
}

func TestModelApplyEdit(t *testing.T) {
	m := testModel(t)

	_ = m.set("a=1")
	_ = m.set("port=1")

	m.applyEdit(map[string]any{"a": 2, "b": "x"})

	for name, want := range map[string]any{"a": 2, "b": "x", "port": 8080} {
		if got, ok := m.vars.Get(name); !ok || got != want {
			t.Errorf("Get(%q) = %v, %v, want %v", name, got, ok, want)
		}
	}

	if _, ok := m.assign["port"]; ok {
		t.Error("assign still holds port after edit removed it")
	}
}

func TestModelListKeys(t *testing.T) {
	m := testModel(t)

	_ = m.set("user_note=hi")

	out := m.listKeys("user")
	if !strings.Contains(out, "user") || !strings.Contains(out, "* user_note") {
		t.Errorf("listKeys(user) = %q", out)
	}

	if strings.Contains(out, "port") {
		t.Errorf("listKeys(user) = %q, unexpected port", out)
	}
}

func TestModelListUsage(t *testing.T) {
	m := testModel(t)

	if out := m.listUsage(); !strings.Contains(out, "no variables used") {
		t.Errorf("listUsage() before rendering = %q", out)
	}

	if _, err := m.evaluate("${port}/${port}"); err != nil {
		t.Fatalf("evaluate() = %v", err)
	}

	out := m.listUsage()
	if !strings.Contains(out, "port") || !strings.Contains(out, "8080") {
		t.Errorf("listUsage() = %q, want port recorded with 8080", out)
	}
}

func TestModelExecuteCommand(t *testing.T) {
	m := testModel(t)

	m, _ = m.executeCommand("set x=1", nil)
	if got, ok := m.vars.Get("x"); !ok || got != 1 {
		t.Errorf("Get(x) after set command = %v, %v", got, ok)
	}

	m, _ = m.executeCommand("bogus", nil)
	if m.quitting {
		t.Error("unknown command quit the REPL")
	}

	m, _ = m.executeCommand("quit", nil)
	if !m.quitting {
		t.Error("quit command did not quit")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("a\n  b"); got != "a b" {
		t.Errorf("preview() = %q, want %q", got, "a b")
	}

	long := strings.Repeat("x", 2*previewWidth)
	if got := preview(long); len(got) != previewWidth || !strings.HasSuffix(got, "...") {
		t.Errorf("preview(long) = %q", got)
	}
}
