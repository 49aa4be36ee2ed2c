package output

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"goplot/importer"

	"github.com/montanaflynn/stats"
)

// ColumnStats holds descriptive statistics for one column. Numeric fields are
// NaN for categorical columns and the categorical fields are zero for numeric
// ones.
type ColumnStats struct {
	Name   string
	Type   importer.ColumnType
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
	Unique int
	Top    string
	Freq   int
}

type Summary struct {
	Source  string
	Rows    int
	Columns int
	Names   []string
	Head    [][]string
	Stats   []ColumnStats
}

func Describe(table *importer.Table, headRows int) (Summary, error) {
	summary := Summary{
		Source:  table.Source,
		Rows:    table.NumRows(),
		Columns: table.NumColumns(),
		Names:   table.ColumnNames(),
		Head:    table.Head(headRows),
		Stats:   make([]ColumnStats, 0, table.NumColumns()),
	}

	for _, column := range table.Columns {
		var (
			columnStats ColumnStats
			err         error
		)
		if column.Type == importer.Numeric {
			columnStats, err = describeNumeric(column)
		} else {
			columnStats = describeCategorical(column)
		}
		if err != nil {
			return summary, fmt.Errorf("describe column %s: %w", column.Name, err)
		}
		summary.Stats = append(summary.Stats, columnStats)
	}
	return summary, nil
}

func describeNumeric(column importer.Column) (ColumnStats, error) {
	out := ColumnStats{Name: column.Name, Type: importer.Numeric}
	nan := math.NaN()
	out.Mean, out.Std, out.Min, out.Q25, out.Median, out.Q75, out.Max = nan, nan, nan, nan, nan, nan, nan

	data := make(stats.Float64Data, 0, len(column.Values))
	for _, v := range column.Values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			data = append(data, v)
		}
	}
	out.Count = len(data)
	if out.Count == 0 {
		return out, nil
	}

	var err error
	if out.Mean, err = stats.Mean(data); err != nil {
		return out, fmt.Errorf("mean: %w", err)
	}
	if out.Count > 1 {
		if out.Std, err = stats.StandardDeviationSample(data); err != nil {
			return out, fmt.Errorf("standard deviation: %w", err)
		}
	}
	if out.Min, err = stats.Min(data); err != nil {
		return out, fmt.Errorf("min: %w", err)
	}
	if out.Max, err = stats.Max(data); err != nil {
		return out, fmt.Errorf("max: %w", err)
	}
	if out.Median, err = stats.Median(data); err != nil {
		return out, fmt.Errorf("median: %w", err)
	}
	if out.Q25, err = stats.PercentileNearestRank(data, 25); err != nil {
		return out, fmt.Errorf("25th percentile: %w", err)
	}
	if out.Q75, err = stats.PercentileNearestRank(data, 75); err != nil {
		return out, fmt.Errorf("75th percentile: %w", err)
	}
	return out, nil
}

func describeCategorical(column importer.Column) ColumnStats {
	nan := math.NaN()
	out := ColumnStats{
		Name: column.Name, Type: importer.Categorical,
		Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan,
	}

	counts := make(map[string]int)
	for _, cell := range column.Cells {
		if cell == "" {
			continue
		}
		counts[cell]++
		out.Count++
	}
	out.Unique = len(counts)

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if counts[key] > out.Freq {
			out.Top = key
			out.Freq = counts[key]
		}
	}
	return out
}

// WriteSummary prints the overview the menu's "show data info" choice shows.
func WriteSummary(w io.Writer, summary Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if summary.Source != "" {
		fmt.Fprintf(tw, "Source:\t%s\n", summary.Source)
	}
	fmt.Fprintf(tw, "Rows:\t%d\n", summary.Rows)
	fmt.Fprintf(tw, "Columns:\t%d\n", summary.Columns)
	fmt.Fprintf(tw, "Column names:\t%s\n", strings.Join(summary.Names, ", "))

	if len(summary.Head) > 0 {
		fmt.Fprintf(tw, "\nFirst %d rows:\n", len(summary.Head))
		fmt.Fprintln(tw, strings.Join(summary.Names, "\t"))
		for _, row := range summary.Head {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}

	fmt.Fprintln(tw, "\nStatistics:")
	header := statsHeader()
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range statsRows(summary) {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// StatsTable returns the statistics as a header plus one formatted row per
// column, the layout every summary writer shares.
func StatsTable(summary Summary) ([]string, [][]string) {
	return statsHeader(), statsRows(summary)
}

func statsHeader() []string {
	return []string{"column", "type", "count", "mean", "std", "min", "25%", "50%", "75%", "max", "unique", "top", "freq"}
}

func statsRows(summary Summary) [][]string {
	rows := make([][]string, 0, len(summary.Stats))
	for _, s := range summary.Stats {
		row := []string{s.Name, s.Type.String(), strconv.Itoa(s.Count)}
		for _, v := range []float64{s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max} {
			row = append(row, formatStat(v))
		}
		if s.Type == importer.Numeric {
			row = append(row, "", "", "")
		} else {
			row = append(row, strconv.Itoa(s.Unique), s.Top, strconv.Itoa(s.Freq))
		}
		rows = append(rows, row)
	}
	return rows
}

func formatStat(value float64) string {
	if math.IsNaN(value) {
		return ""
	}
	return strconv.FormatFloat(value, 'g', 6, 64)
}
