package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/aexpr/lang"
)

// initCLI mirrors the shape of the real command line: grouped flags whose
// names carry the group key, plus flags that are never written.
type initCLI struct {
	LogLevel  string            `default:"info"  group:"log"   name:"log-level"`
	LogPretty bool              `group:"log"     name:"log-pretty"`
	Depth     int               `group:"limit"   name:"limit-depth"`
	Prefix    []string          `name:"prefix"`
	Alias     map[string]string `name:"alias"`
	Source    []string          `name:"source"`
	Version   kong.VersionFlag  `name:"version"`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithEngine(WithContext(t.Context(), ktx), lang.New(lang.WithMaxDepth(7)))
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create"},
		{name: "overwrite_with_force", force: true, exists: true},
		{name: "exists_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var doc map[string]any
			if err := yaml.Unmarshal(data, &doc); err != nil {
				t.Fatalf("generated config is not YAML: %v\n%s", err, data)
			}

			if _, ok := doc["existing"]; ok {
				t.Error("existing content was not replaced")
			}
		})
	}
}

func TestInitDocument(t *testing.T) {
	ctx := initContext(t, "",
		"--log-level=debug", "--prefix=user", "--prefix=env", "--alias=uid=id", "--source=x")

	data, err := yaml.Marshal((&Init{}).document(ctx))
	if err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Log struct {
			Level  string `yaml:"level"`
			Pretty *bool  `yaml:"pretty"`
		} `yaml:"log"`
		Limit struct {
			Depth int `yaml:"depth"`
		} `yaml:"limit"`
		Prefix  []string          `yaml:"prefix"`
		Alias   map[string]string `yaml:"alias"`
		Source  []string          `yaml:"source"`
		Version any               `yaml:"version"`
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("document is not YAML: %v\n%s", err, data)
	}

	if doc.Log.Level != "debug" {
		t.Errorf("log.level = %q, want debug", doc.Log.Level)
	}

	if doc.Log.Pretty == nil || *doc.Log.Pretty {
		t.Errorf("log.pretty = %v, want explicit false", doc.Log.Pretty)
	}

	if doc.Limit.Depth != 7 {
		t.Errorf("limit.depth = %d, want effective bound 7", doc.Limit.Depth)
	}

	if len(doc.Prefix) != 2 || doc.Prefix[0] != "user" || doc.Prefix[1] != "env" {
		t.Errorf("prefix = %q, want [user env]", doc.Prefix)
	}

	if doc.Alias["uid"] != "id" {
		t.Errorf("alias = %v, want uid=id", doc.Alias)
	}

	if doc.Source != nil || doc.Version != nil {
		t.Errorf("ignored flags written: source=%v version=%v", doc.Source, doc.Version)
	}
}

func TestConfigValue(t *testing.T) {
	type level string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"false", false, false},
		{"zero", 0, nil},
		{"int", 3, 3},
		{"empty_string", "", nil},
		{"named_string", level("warn"), "warn"},
		{"empty_slice", []string{}, nil},
		{"empty_map", map[string]string{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configValue(tt.in); got != tt.want {
				t.Errorf("configValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
