package cmd

import (
	"fmt"
	"strings"

	"goplot/chart"
	"goplot/importer"

	"github.com/spf13/cobra"
)

var (
	plotInput    string
	plotFormat   string
	plotKind     string
	plotX        string
	plotY        string
	plotTitle    string
	plotOutput   string
	plotHeader   string
	plotSheet    string
	plotTerminal bool
	plotNoOpen   bool
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render one chart from a data file",
	Long: `Render one chart from a delimited text or Excel file.

The delimiter is detected from the first data line (comma, semicolon, tab, then
whitespace). Column roles:
- line/scatter: first column is X, every other column is a series
- bar: first column is X, second column is Y
- histogram: the first columns (chart.histogram_columns) are overlaid
- pie: first column names the slices, second column holds the values

--x and --y override the columns by name. Without --output the PNG is written to
output.dir as <file>_<kind>.png and opened in the system image viewer.`,
	Example: `
  # Line chart of every column against the first
  goplot plot -i data.txt

  # Bar chart of two named columns
  goplot plot -i sales.csv --kind bar --x month --y revenue --title "Revenue 2025"

  # Histogram of a sheet in a workbook, written to a fixed path
  goplot plot -i book.xlsx --sheet Measurements --kind histogram -o ./hist.png --no-open

  # ASCII chart in the terminal
  goplot plot -i data.txt --terminal
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig

		options, err := importOptions(cfg, plotHeader, plotSheet)
		if err != nil {
			return err
		}
		table, err := loadTable(plotInput, plotFormat, options)
		if err != nil {
			return err
		}

		plan, err := buildPlan(chartSelector(cfg), table, plotKind, plotX, plotY, plotTitle)
		if err != nil {
			return err
		}

		history, err := openHistory(cfg)
		if err != nil {
			return err
		}
		if history != nil {
			defer history.Close()
		}

		plotter := newChartPlotter(cfg, cmd.OutOrStdout(), asRecorder(history))
		plotter.outputPath = plotOutput
		if plotNoOpen {
			plotter.open = false
		}
		if plotTerminal {
			plotter.useTerminal(cfg)
		}

		target, err := plotter.Plot(table, plan)
		if err != nil {
			return err
		}
		if target != targetTerminal {
			fmt.Fprintf(cmd.OutOrStdout(), "Chart saved to: %s\n", target)
		}
		return nil
	},
}

func buildPlan(selector chart.Selector, table *importer.Table, kindValue, x, y, title string) (chart.Plan, error) {
	kind, err := chart.ParseKind(kindValue)
	if err != nil {
		return chart.Plan{}, err
	}
	plan, err := selector.Select(table.ColumnNames(), chart.Request{
		Kind:  kind,
		X:     strings.TrimSpace(x),
		Y:     strings.TrimSpace(y),
		Title: strings.TrimSpace(title),
	})
	if err != nil {
		return chart.Plan{}, err
	}
	return plan.WithDefaultTitle(table.Source), nil
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().StringVarP(&plotInput, "input", "i", "", "Input file path")
	plotCmd.Flags().StringVarP(&plotFormat, "format", "f", "", "Input format: text|csv|excel (optional, inferred from file extension)")
	plotCmd.Flags().StringVarP(&plotKind, "kind", "k", "line", "Chart kind: line|scatter|bar|histogram|pie")
	plotCmd.Flags().StringVar(&plotX, "x", "", "X column name (line/scatter/bar) or names column (pie)")
	plotCmd.Flags().StringVar(&plotY, "y", "", "Y column name (line/scatter/bar) or values column (pie)")
	plotCmd.Flags().StringVarP(&plotTitle, "title", "t", "", "Chart title (default: \"Chart from file: <name>\")")
	plotCmd.Flags().StringVarP(&plotOutput, "output", "o", "", "Output PNG path (default: <output.dir>/<file>_<kind>.png)")
	plotCmd.Flags().StringVar(&plotHeader, "header", "", "Header row: auto|present|absent (default from config)")
	plotCmd.Flags().StringVar(&plotSheet, "sheet", "", "Excel sheet name (default: first sheet)")
	plotCmd.Flags().BoolVar(&plotTerminal, "terminal", false, "Draw an ASCII chart in the terminal instead of a PNG")
	plotCmd.Flags().BoolVar(&plotNoOpen, "no-open", false, "Do not open the image viewer")

	_ = plotCmd.MarkFlagRequired("input")
}
