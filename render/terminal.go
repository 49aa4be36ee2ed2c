package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"goplot/chart"
	"goplot/importer"

	"github.com/guptarohit/asciigraph"
)

// Terminal draws line and scatter plans as ASCII charts. Points are spaced
// by row order; the X column only names the caption.
type Terminal struct {
	Width  int
	Height int
}

func (r *Terminal) Render(w io.Writer, table *importer.Table, plan chart.Plan) error {
	if !plan.Kind.SharesX() {
		return fmt.Errorf("%w: %s in terminal", ErrUnsupportedKind, plan.Kind)
	}

	series := plan.Values()
	data := make([][]float64, 0, len(series))
	names := make([]string, 0, len(series))
	for _, a := range series {
		column, err := numericColumn(table, a)
		if err != nil {
			return err
		}
		filled := carryForward(column.Values)
		if len(filled) == 0 {
			return fmt.Errorf("%w in column %s", ErrNoData, column.Name)
		}
		data = append(data, filled)
		names = append(names, column.Name)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: no series", ErrNoData)
	}

	caption := plan.Title
	if xa, ok := plan.Find(chart.RoleX); ok {
		caption = fmt.Sprintf("%s (x: %s; y: %s)", plan.Title, xa.Name, strings.Join(names, ", "))
	}

	height := r.Height
	if height <= 0 {
		height = 15
	}
	options := []asciigraph.Option{asciigraph.Height(height), asciigraph.Caption(caption)}
	if r.Width > 0 {
		options = append(options, asciigraph.Width(r.Width))
	}

	if _, err := fmt.Fprintln(w, asciigraph.PlotMany(data, options...)); err != nil {
		return fmt.Errorf("write terminal chart: %w", err)
	}
	return nil
}

// carryForward replaces gaps with the previous value; leading gaps are
// dropped. A column with no finite value yields nil.
func carryForward(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(out) == 0 {
				continue
			}
			v = out[len(out)-1]
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
