// Package render draws a chart.Plan for an importer.Table. Every renderer
// carries its own settings; nothing is kept in package state.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"goplot/chart"
	"goplot/importer"
	"goplot/internal/failure"
)

var (
	ErrNotNumeric      = fmt.Errorf("column is not numeric: %w", failure.ErrRender)
	ErrUnsupportedKind = fmt.Errorf("chart kind not supported by this renderer: %w", failure.ErrRender)
	ErrNoData          = fmt.Errorf("no plottable values: %w", failure.ErrRender)
)

type Renderer interface {
	Render(w io.Writer, table *importer.Table, plan chart.Plan) error
}

type Options struct {
	// Width and Height are in inches for image output.
	Width   float64
	Height  float64
	Bins    int
	Grid    bool
	Markers bool
}

func DefaultOptions() Options {
	return Options{Width: 12, Height: 8, Bins: 20, Grid: true, Markers: true}
}

// RenderFile renders into path, creating parent directories as needed.
func RenderFile(r Renderer, path string, table *importer.Table, plan chart.Plan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file %s: %w", path, err)
	}
	if err := r.Render(file, table, plan); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close chart file %s: %w", path, err)
	}
	return nil
}

// OutputPath names the image for a source file and chart kind inside dir.
func OutputPath(dir, source string, kind chart.Kind) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "chart"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", base, kind))
}

func numericColumn(table *importer.Table, a chart.Assignment) (importer.Column, error) {
	if a.Column < 0 || a.Column >= table.NumColumns() {
		return importer.Column{}, fmt.Errorf("column %d out of range: %w", a.Column, failure.ErrInsufficientColumns)
	}
	column := table.Columns[a.Column]
	if column.Type != importer.Numeric {
		return column, fmt.Errorf("%w: %s", ErrNotNumeric, column.Name)
	}
	return column, nil
}

// axisValues returns positions for an X column. Categorical columns are laid
// out at 0..n-1 and their cells returned as tick labels.
func axisValues(column importer.Column) ([]float64, []string) {
	if column.Type == importer.Numeric {
		return column.Values, nil
	}
	xs := make([]float64, len(column.Cells))
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs, column.Cells
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
