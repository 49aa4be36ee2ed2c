package cmd

import (
	"fmt"
	"io"
	"strings"

	"goplot/importer"
	"goplot/output"

	"github.com/spf13/cobra"
)

var (
	infoInput        string
	infoFormat       string
	infoHead         int
	infoExport       string
	infoExportFormat string
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show rows, columns and summary statistics of a data file",
	Long: `Print the shape, column names, first rows and per-column statistics of a data file.

Numeric columns report count, mean, std, min, quartiles and max. Other columns
report count, unique values and the most frequent value.

With --export the statistics table is also written to CSV or Excel; the format
is inferred from the extension unless --export-format is set.`,
	Example: `
  # Summary on stdout
  goplot info -i data.txt

  # Show 10 rows and export statistics to Excel
  goplot info -i data.csv --head 10 --export ./stats.xlsx
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		options, err := importOptions(appConfig, "", "")
		if err != nil {
			return err
		}
		table, err := loadTable(infoInput, infoFormat, options)
		if err != nil {
			return err
		}
		return writeInfo(cmd.OutOrStdout(), table, infoHead, infoExport, infoExportFormat)
	},
}

func writeInfo(out io.Writer, table *importer.Table, head int, exportPath, exportFormat string) error {
	summary, err := output.Describe(table, head)
	if err != nil {
		return err
	}
	if err := output.WriteSummary(out, summary); err != nil {
		return err
	}

	if strings.TrimSpace(exportPath) == "" {
		return nil
	}
	format := exportFormat
	if strings.TrimSpace(format) == "" {
		format = output.DetectFormat(exportPath)
	}
	writer, err := output.WriterForFormat(format)
	if err != nil {
		return err
	}
	if err := writer.Write(exportPath, summary); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nExport completed. Columns: %d, Format: %s, File: %s\n", len(summary.Stats), format, exportPath)
	return nil
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoInput, "input", "i", "", "Input file path")
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "", "Input format: text|csv|excel (optional, inferred from file extension)")
	infoCmd.Flags().IntVarP(&infoHead, "head", "n", 5, "Number of leading rows to show")
	infoCmd.Flags().StringVar(&infoExport, "export", "", "Write the statistics table to this file")
	infoCmd.Flags().StringVar(&infoExportFormat, "export-format", "", "Export format: csv|excel (optional, inferred from export extension)")

	_ = infoCmd.MarkFlagRequired("input")
}
