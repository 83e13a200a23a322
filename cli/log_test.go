package cli

import "testing"

func TestLogScan(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantLevel  logLevel
		wantFormat logFormat
		wantPretty bool
		wantCaller bool
	}{
		{
			name:       "defaults_untouched",
			args:       []string{"eval", "1 + 1"},
			wantPretty: true,
		},
		{
			name:       "assigned_values",
			args:       []string{"--log-level=debug", "--log-format=text"},
			wantLevel:  "debug",
			wantFormat: "text",
			wantPretty: true,
		},
		{
			name:       "separate_values",
			args:       []string{"render", "--log-level", "warn", "x"},
			wantLevel:  "warn",
			wantPretty: true,
		},
		{
			name:       "value_looks_like_flag",
			args:       []string{"--log-level", "--log-caller"},
			wantPretty: true,
			wantCaller: true,
		},
		{
			name: "negated_toggles",
			args: []string{"--no-log-pretty", "--log-caller=true"},
			wantCaller: true,
		},
		{
			name:       "invalid_bool_ignored",
			args:       []string{"--log-pretty=maybe"},
			wantPretty: true,
		},
		{
			name:       "stops_at_terminator",
			args:       []string{"--", "--log-level=error", "--no-log-pretty"},
			wantPretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := logConfig{Pretty: true}
			f.scan(tt.args)

			if f.Level != tt.wantLevel || f.Format != tt.wantFormat ||
				f.Pretty != tt.wantPretty || f.Caller != tt.wantCaller {
				t.Errorf("scan(%q) = %+v, want level=%q format=%q pretty=%v caller=%v",
					tt.args, f, tt.wantLevel, tt.wantFormat, tt.wantPretty, tt.wantCaller)
			}
		})
	}

	// Restore the default logger for the other tests.
	(&logConfig{Level: "info", Format: "json", TimeLayout: "RFC3339", Pretty: true}).start(t.Context())
}
