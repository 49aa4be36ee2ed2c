package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"goplot/chart"
	"goplot/config"
	"goplot/importer"
	"goplot/render"
	"goplot/storage"
)

const (
	targetTerminal = "terminal"
)

type historyRecorder interface {
	InsertRender(record storage.RenderRecord) (int64, error)
}

// chartPlotter renders a plan either into the terminal or into a PNG that is
// then handed to the system image viewer.
type chartPlotter struct {
	render     render.Options
	terminal   *render.Terminal
	out        io.Writer
	outputDir  string
	outputPath string
	open       bool
	opener     func(target string) error
	history    historyRecorder
	logger     *slog.Logger
}

func newChartPlotter(cfg *config.Config, out io.Writer, history historyRecorder) *chartPlotter {
	return &chartPlotter{
		render:    renderOptions(cfg),
		out:       out,
		outputDir: cfg.Output.Dir,
		open:      cfg.Output.Open,
		opener:    openExternal,
		history:   history,
		logger:    logger,
	}
}

func (p *chartPlotter) useTerminal(cfg *config.Config) {
	p.terminal = &render.Terminal{Width: cfg.Terminal.Width, Height: cfg.Terminal.Height}
}

func (p *chartPlotter) Plot(table *importer.Table, plan chart.Plan) (string, error) {
	target := targetTerminal
	if p.terminal != nil {
		if err := p.terminal.Render(p.out, table, plan); err != nil {
			return "", err
		}
	} else {
		target = p.outputPath
		if strings.TrimSpace(target) == "" {
			target = render.OutputPath(p.outputDir, table.Source, plan.Kind)
		}
		if err := render.RenderFile(render.NewPNG(p.render), target, table, plan); err != nil {
			return "", err
		}
		if p.open && p.opener != nil {
			if err := p.opener(target); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open image viewer: %v\n", err)
			}
		}
	}

	p.logger.Info("chart rendered",
		"source", table.Source,
		"kind", plan.Kind,
		"columns", strings.Join(plan.ColumnNames(), ","),
		"target", target,
	)
	p.record(table, plan, target)
	return target, nil
}

func (p *chartPlotter) record(table *importer.Table, plan chart.Plan, target string) {
	if p.history == nil {
		return
	}
	_, err := p.history.InsertRender(storage.RenderRecord{
		SourceFile: table.Source,
		Kind:       string(plan.Kind),
		Title:      plan.Title,
		Columns:    plan.ColumnNames(),
		Rows:       table.NumRows(),
		Target:     target,
	})
	if err != nil {
		p.logger.Warn("record render history", "error", err)
	}
}

func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Width:   cfg.Chart.Width,
		Height:  cfg.Chart.Height,
		Bins:    cfg.Chart.Bins,
		Grid:    cfg.Chart.Grid,
		Markers: cfg.Chart.Markers,
	}
}

func chartSelector(cfg *config.Config) chart.Selector {
	return chart.Selector{HistogramCap: cfg.Chart.HistogramColumns}
}

func importOptions(cfg *config.Config, headerOverride, sheetOverride string) (importer.Options, error) {
	headerValue := cfg.Import.Header
	if strings.TrimSpace(headerOverride) != "" {
		headerValue = headerOverride
	}
	header, err := importer.ParseHeaderMode(headerValue)
	if err != nil {
		return importer.Options{}, err
	}

	sheet := cfg.Import.Sheet
	if strings.TrimSpace(sheetOverride) != "" {
		sheet = sheetOverride
	}
	return importer.Options{Header: header, Sheet: sheet}, nil
}

func loadTable(path, format string, options importer.Options) (*importer.Table, error) {
	table, err := importer.Load(path, format, options)
	if err != nil {
		return nil, err
	}
	logger.Debug("table loaded",
		"source", table.Source,
		"format", table.Format,
		"delimiter", table.Delimiter.String(),
		"rows", table.NumRows(),
		"columns", table.NumColumns(),
	)
	return table, nil
}

// openHistory returns nil when history is disabled.
func openHistory(cfg *config.Config) (*storage.SQLiteStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := storage.OpenSQLite(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open render history: %w", err)
	}
	return store, nil
}

// asRecorder keeps a nil store from becoming a non-nil interface.
func asRecorder(store *storage.SQLiteStore) historyRecorder {
	if store == nil {
		return nil
	}
	return store
}
