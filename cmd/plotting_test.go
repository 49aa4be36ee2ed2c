package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goplot/chart"
	"goplot/config"
	"goplot/importer"
	"goplot/internal/failure"
	"goplot/menu"
	"goplot/storage"
)

type fakeHistory struct {
	records []storage.RenderRecord
	err     error
}

func (f *fakeHistory) InsertRender(record storage.RenderRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, record)
	return int64(len(f.records)), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.ValidateYAMLContent([]byte(config.ExampleYAML()))
	if err != nil {
		t.Fatalf("load example config: %v", err)
	}
	cfg.Chart.Width = 3
	cfg.Chart.Height = 2
	return cfg
}

func testTable(t *testing.T, content string) *importer.Table {
	t.Helper()
	table, err := importer.ParseText([]byte(content), importer.HeaderAuto, nil)
	if err != nil {
		t.Fatalf("parse table: %v", err)
	}
	table.Source = filepath.Join("some", "dir", "data.csv")
	return table
}

func TestChartPlotter_WritesPNGOpensAndRecords(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Dir = t.TempDir()
	history := &fakeHistory{}

	var opened []string
	plotter := newChartPlotter(cfg, &bytes.Buffer{}, history)
	plotter.opener = func(target string) error {
		opened = append(opened, target)
		return nil
	}

	table := testTable(t, "x,a,b\n1,2,3\n2,4,5\n3,1,2\n")
	plan, err := buildPlan(chartSelector(cfg), table, "line", "", "", "")
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}

	target, err := plotter.Plot(table, plan)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	want := filepath.Join(cfg.Output.Dir, "data_line.png")
	if target != want {
		t.Fatalf("expected %s, got %s", want, target)
	}

	file, err := os.Open(target)
	if err != nil {
		t.Fatalf("open chart: %v", err)
	}
	defer file.Close()
	if _, err := png.Decode(file); err != nil {
		t.Fatalf("decode chart: %v", err)
	}

	if len(opened) != 1 || opened[0] != want {
		t.Fatalf("expected viewer to open %s, got %v", want, opened)
	}
	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	record := history.records[0]
	if record.Kind != "line" || record.Rows != 3 || strings.Join(record.Columns, ",") != "x,a,b" {
		t.Fatalf("unexpected history record: %+v", record)
	}
	if record.Title != "Chart from file: data.csv" {
		t.Fatalf("unexpected recorded title: %q", record.Title)
	}
}

func TestChartPlotter_OutputPathAndNoOpen(t *testing.T) {
	cfg := testConfig(t)
	plotter := newChartPlotter(cfg, &bytes.Buffer{}, nil)
	plotter.open = false
	plotter.opener = func(string) error {
		t.Fatalf("viewer must not be opened")
		return nil
	}
	plotter.outputPath = filepath.Join(t.TempDir(), "charts", "custom.png")

	table := testTable(t, "x,y\n1,2\n2,3\n")
	plan, err := buildPlan(chartSelector(cfg), table, "bar", "", "", "Custom")
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	target, err := plotter.Plot(table, plan)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if target != plotter.outputPath {
		t.Fatalf("expected explicit output path, got %s", target)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected chart file: %v", err)
	}
}

func TestChartPlotter_ViewerAndHistoryFailuresAreNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Dir = t.TempDir()
	plotter := newChartPlotter(cfg, &bytes.Buffer{}, &fakeHistory{err: errors.New("disk full")})
	plotter.opener = func(string) error { return errors.New("no viewer") }

	table := testTable(t, "x,y\n1,2\n2,3\n")
	plan, err := buildPlan(chartSelector(cfg), table, "scatter", "", "", "")
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	if _, err := plotter.Plot(table, plan); err != nil {
		t.Fatalf("expected plot to succeed, got %v", err)
	}
}

func TestChartPlotter_Terminal(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	history := &fakeHistory{}
	plotter := newChartPlotter(cfg, &out, history)
	plotter.useTerminal(cfg)

	table := testTable(t, "x,y\n1,2\n2,5\n3,3\n")
	plan, err := buildPlan(chartSelector(cfg), table, "line", "", "", "Temps")
	if err != nil {
		t.Fatalf("build plan: %v", err)
	}
	target, err := plotter.Plot(table, plan)
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if target != targetTerminal {
		t.Fatalf("unexpected target %q", target)
	}
	if !strings.Contains(out.String(), "Temps") {
		t.Fatalf("expected caption in terminal output, got:\n%s", out.String())
	}
	if len(history.records) != 1 || history.records[0].Target != targetTerminal {
		t.Fatalf("unexpected history: %+v", history.records)
	}

	pie, err := buildPlan(chartSelector(cfg), table, "pie", "", "", "")
	if err != nil {
		t.Fatalf("build pie plan: %v", err)
	}
	if _, err := plotter.Plot(table, pie); !errors.Is(err, failure.ErrRender) {
		t.Fatalf("expected render error for pie in terminal, got %v", err)
	}
}

func TestBuildPlan(t *testing.T) {
	cfg := testConfig(t)
	table := testTable(t, "t,a,b,c,d\n1,2,3,4,5\n")

	tests := []struct {
		name    string
		kind    string
		x       string
		y       string
		wantErr error
		values  int
	}{
		{name: "line uses every other column", kind: "line", values: 4},
		{name: "histogram capped by config", kind: "hist", values: 3},
		{name: "explicit x and y", kind: "scatter", x: "b", y: "d", values: 1},
		{name: "unknown kind", kind: "radar", wantErr: failure.ErrInvalidSelection},
		{name: "unknown column", kind: "bar", x: "missing", wantErr: failure.ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := buildPlan(chartSelector(cfg), table, tt.kind, tt.x, tt.y, "")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := len(plan.Values()); got != tt.values {
				t.Fatalf("expected %d value columns, got %d", tt.values, got)
			}
			if plan.Title == "" {
				t.Fatalf("expected default title")
			}
		})
	}
}

func TestImportOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Import.Sheet = "Data"

	options, err := importOptions(cfg, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if options.Header != importer.HeaderAuto || options.Sheet != "Data" {
		t.Fatalf("unexpected options from config: %+v", options)
	}

	options, err = importOptions(cfg, "absent", "Other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if options.Header != importer.HeaderAbsent || options.Sheet != "Other" {
		t.Fatalf("expected flag overrides, got %+v", options)
	}

	if _, err := importOptions(cfg, "sometimes", ""); err == nil {
		t.Fatalf("expected invalid header mode error")
	}
}

func TestPromptTable_RetriesUntilLoaded(t *testing.T) {
	var out bytes.Buffer
	shell := menu.New(strings.NewReader("missing.csv\ngood.csv\n"), &out)

	var attempts []string
	load := func(path string) (*importer.Table, error) {
		attempts = append(attempts, path)
		if path != "good.csv" {
			return nil, fmt.Errorf("open %s: %w", path, failure.ErrFileNotFound)
		}
		return testTable(t, "x,y\n1,2\n"), nil
	}

	table, err := promptTable(shell, &out, "first.csv", load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table == nil {
		t.Fatalf("expected table")
	}
	if strings.Join(attempts, ",") != "first.csv,missing.csv,good.csv" {
		t.Fatalf("unexpected load attempts: %v", attempts)
	}
	if strings.Count(out.String(), "Error: open") != 2 {
		t.Fatalf("expected two printed errors, got:\n%s", out.String())
	}
}

func TestPromptTable_EndOfInput(t *testing.T) {
	shell := menu.New(strings.NewReader(""), &bytes.Buffer{})
	table, err := promptTable(shell, &bytes.Buffer{}, "", func(string) (*importer.Table, error) {
		t.Fatalf("load must not be called")
		return nil, nil
	})
	if err != nil || table != nil {
		t.Fatalf("expected nil table and nil error, got %v, %v", table, err)
	}
}

func TestBuildPlan_InsufficientColumns(t *testing.T) {
	cfg := testConfig(t)
	table := testTable(t, "v\n1\n2\n")

	_, err := buildPlan(chartSelector(cfg), table, "line", "", "", "")
	if !errors.Is(err, failure.ErrInsufficientColumns) {
		t.Fatalf("expected insufficient columns, got %v", err)
	}
	if _, err := buildPlan(chartSelector(cfg), table, string(chart.Histogram), "", "", ""); err != nil {
		t.Fatalf("histogram on one column should work: %v", err)
	}
}
