package config

import (
	"strings"
	"testing"
)

func TestValidateYAMLContent_ExampleIsValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Chart.Bins != 20 || cfg.Chart.HistogramColumns != 3 {
		t.Fatalf("unexpected chart config: %+v", cfg.Chart)
	}
	if cfg.Serve.Port != 8080 {
		t.Fatalf("unexpected port: %d", cfg.Serve.Port)
	}
	if !cfg.History.Enabled {
		t.Fatalf("expected history to be enabled by default")
	}
}

func TestValidateYAMLContent_DefaultsFillMissingSections(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("chart:\n  bins: 5\n"))
	if err != nil {
		t.Fatalf("expected partial config to validate: %v", err)
	}
	if cfg.Chart.Bins != 5 {
		t.Fatalf("expected override, got %d", cfg.Chart.Bins)
	}
	if cfg.Chart.Width != 12 || cfg.Chart.Height != 8 {
		t.Fatalf("expected default size, got %vx%v", cfg.Chart.Width, cfg.Chart.Height)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Fatalf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestValidateYAMLContent_NormalizesCase(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("log:\n  level: DEBUG\n  format: JSON\nimport:\n  header: Present\n"))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Import.Header != "present" {
		t.Fatalf("unexpected header mode: %q", cfg.Import.Header)
	}
}

func TestValidateYAMLContent_RejectsInvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "zero width", content: "chart:\n  width: 0\n", field: "Width"},
		{name: "negative height", content: "chart:\n  height: -1\n", field: "Height"},
		{name: "no bins", content: "chart:\n  bins: 0\n", field: "Bins"},
		{name: "too many histogram columns", content: "chart:\n  histogram_columns: 11\n", field: "HistogramColumns"},
		{name: "port out of range", content: "serve:\n  port: 70000\n", field: "Port"},
		{name: "unknown log level", content: "log:\n  level: verbose\n", field: "Level"},
		{name: "unknown log format", content: "log:\n  format: xml\n", field: "Format"},
		{name: "bad seq url", content: "log:\n  seq_url: not a url\n", field: "SeqURL"},
		{name: "unknown header mode", content: "import:\n  header: maybe\n", field: "Header"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ValidateYAMLContent([]byte(tc.content))
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected error to mention %s, got: %v", tc.field, err)
			}
		})
	}
}

func TestConfigHistoryPath(t *testing.T) {
	t.Parallel()

	cfg := &Config{History: HistoryConfig{DB: " /tmp/history.db "}}
	if got := cfg.HistoryPath(); got != "/tmp/history.db" {
		t.Fatalf("unexpected history path: %q", got)
	}

	cfg.History.DB = ""
	if got := cfg.HistoryPath(); !strings.HasSuffix(got, ".goplot.db") {
		t.Fatalf("unexpected default history path: %q", got)
	}
}
