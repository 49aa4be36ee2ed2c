package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"goplot/chart"
	"goplot/importer"
	"goplot/internal/failure"

	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PNG renders images: pie charts through go-chart, everything else through
// gonum/plot.
type PNG struct {
	opts Options
}

func NewPNG(opts Options) *PNG {
	defaults := DefaultOptions()
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if opts.Bins <= 0 {
		opts.Bins = defaults.Bins
	}
	return &PNG{opts: opts}
}

func (r *PNG) Render(w io.Writer, table *importer.Table, plan chart.Plan) error {
	if plan.Kind == chart.Pie {
		return r.renderPie(w, table, plan)
	}

	p := plot.New()
	p.Title.Text = plan.Title

	var err error
	switch plan.Kind {
	case chart.Line, chart.Scatter:
		err = r.addXY(p, table, plan)
	case chart.Bar:
		err = r.addBars(p, table, plan)
	case chart.Histogram:
		err = r.addHistograms(p, table, plan)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedKind, plan.Kind)
	}
	if err != nil {
		return err
	}
	if r.opts.Grid {
		p.Add(plotter.NewGrid())
	}

	writer, err := p.WriterTo(vg.Length(r.opts.Width)*vg.Inch, vg.Length(r.opts.Height)*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("create plot writer: %w: %w", failure.ErrRender, err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w: %w", failure.ErrRender, err)
	}
	return nil
}

func (r *PNG) addXY(p *plot.Plot, table *importer.Table, plan chart.Plan) error {
	xa, ok := plan.Find(chart.RoleX)
	if !ok {
		return fmt.Errorf("%s chart without x column: %w", plan.Kind, failure.ErrInsufficientColumns)
	}
	xs, labels := axisValues(table.Columns[xa.Column])
	p.X.Label.Text = xa.Name

	series := plan.Values()
	if len(series) == 1 {
		p.Y.Label.Text = series[0].Name
	} else {
		p.Y.Label.Text = "Y"
	}

	for i, a := range series {
		column, err := numericColumn(table, a)
		if err != nil {
			return err
		}
		pts := xyPoints(xs, column.Values)
		if len(pts) == 0 {
			return fmt.Errorf("%w in column %s", ErrNoData, column.Name)
		}

		c := plotutil.Color(i)
		var thumbs []plot.Thumbnailer
		if plan.Kind == chart.Line {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return fmt.Errorf("create line for %s: %w: %w", column.Name, failure.ErrRender, err)
			}
			line.Color = c
			line.Width = vg.Points(2)
			p.Add(line)
			thumbs = append(thumbs, line)
		}
		if plan.Kind == chart.Scatter || r.opts.Markers {
			points, err := plotter.NewScatter(pts)
			if err != nil {
				return fmt.Errorf("create points for %s: %w: %w", column.Name, failure.ErrRender, err)
			}
			points.Color = c
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(3)
			p.Add(points)
			thumbs = append(thumbs, points)
		}
		if len(series) > 1 {
			p.Legend.Add(column.Name, thumbs...)
		}
	}

	if labels != nil {
		p.NominalX(labels...)
	}
	return nil
}

func (r *PNG) addBars(p *plot.Plot, table *importer.Table, plan chart.Plan) error {
	xa, ok := plan.Find(chart.RoleX)
	if !ok {
		return fmt.Errorf("bar chart without x column: %w", failure.ErrInsufficientColumns)
	}
	ya, ok := plan.Find(chart.RoleY)
	if !ok {
		return fmt.Errorf("bar chart without y column: %w", failure.ErrInsufficientColumns)
	}
	column, err := numericColumn(table, ya)
	if err != nil {
		return err
	}

	values := make(plotter.Values, len(column.Values))
	for i, v := range column.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values[i] = v
	}
	if len(values) == 0 {
		return fmt.Errorf("%w in column %s", ErrNoData, column.Name)
	}

	width := vg.Length(r.opts.Width) * vg.Inch * 0.6 / vg.Length(len(values))
	bars, err := plotter.NewBarChart(values, min(width, vg.Points(40)))
	if err != nil {
		return fmt.Errorf("create bars for %s: %w: %w", column.Name, failure.ErrRender, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)

	p.X.Label.Text = xa.Name
	p.Y.Label.Text = column.Name
	p.NominalX(table.Columns[xa.Column].Cells...)
	return nil
}

func (r *PNG) addHistograms(p *plot.Plot, table *importer.Table, plan chart.Plan) error {
	series := plan.Values()
	if len(series) == 0 {
		return fmt.Errorf("histogram without columns: %w", failure.ErrInsufficientColumns)
	}
	p.Y.Label.Text = "Count"
	if len(series) == 1 {
		p.X.Label.Text = series[0].Name
	} else {
		p.X.Label.Text = "Value"
	}

	for i, a := range series {
		column, err := numericColumn(table, a)
		if err != nil {
			return err
		}
		values := finite(column.Values)
		if len(values) == 0 {
			return fmt.Errorf("%w in column %s", ErrNoData, column.Name)
		}

		hist, err := plotter.NewHist(plotter.Values(values), r.opts.Bins)
		if err != nil {
			return fmt.Errorf("create histogram for %s: %w: %w", column.Name, failure.ErrRender, err)
		}
		c := plotutil.Color(i)
		hist.FillColor = translucent(c)
		hist.LineStyle.Color = c
		p.Add(hist)
		if len(series) > 1 {
			p.Legend.Add(column.Name, hist)
		}
	}
	return nil
}

func (r *PNG) renderPie(w io.Writer, table *importer.Table, plan chart.Plan) error {
	names, ok := plan.Find(chart.RoleNames)
	if !ok {
		return fmt.Errorf("pie chart without names column: %w", failure.ErrInsufficientColumns)
	}
	va, ok := plan.Find(chart.RoleValues)
	if !ok {
		return fmt.Errorf("pie chart without values column: %w", failure.ErrInsufficientColumns)
	}
	column, err := numericColumn(table, va)
	if err != nil {
		return err
	}
	labels := table.Columns[names.Column].Cells

	slices := make([]gochart.Value, 0, len(column.Values))
	for i, v := range column.Values {
		if math.IsNaN(v) || v <= 0 {
			continue
		}
		slices = append(slices, gochart.Value{Value: v, Label: labels[i]})
	}
	if len(slices) == 0 {
		return fmt.Errorf("%w in column %s", ErrNoData, column.Name)
	}

	pie := gochart.PieChart{
		Title:  plan.Title,
		Width:  int(r.opts.Width * 96),
		Height: int(r.opts.Height * 96),
		Values: slices,
	}
	if err := pie.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w: %w", failure.ErrRender, err)
	}
	return nil
}

func xyPoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(ys))
	for i := range min(len(xs), len(ys)) {
		x, y := xs[i], ys[i]
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

func translucent(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0x80}
}
