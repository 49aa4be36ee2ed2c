package cmd

import (
	"fmt"
	"io"
	"os"

	"goplot/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the effective configuration (file values, environment overrides and
defaults) and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  goplot config show

  # Show with an environment override
  GOPLOT_CHART_BINS=40 goplot config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded; showing defaults.")
		}
		writeConfigValues(os.Stdout, cfg)
	},
}

func writeConfigValues(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Configuration:")
	fmt.Fprintf(out, "%s: %g\n", config.KeyChartWidth, cfg.Chart.Width)
	fmt.Fprintf(out, "%s: %g\n", config.KeyChartHeight, cfg.Chart.Height)
	fmt.Fprintf(out, "%s: %d\n", config.KeyChartBins, cfg.Chart.Bins)
	fmt.Fprintf(out, "%s: %d\n", config.KeyChartHistogramColumns, cfg.Chart.HistogramColumns)
	fmt.Fprintf(out, "%s: %t\n", config.KeyChartGrid, cfg.Chart.Grid)
	fmt.Fprintf(out, "%s: %t\n", config.KeyChartMarkers, cfg.Chart.Markers)
	fmt.Fprintf(out, "%s: %s\n", config.KeyOutputDir, cfg.Output.Dir)
	fmt.Fprintf(out, "%s: %t\n", config.KeyOutputOpen, cfg.Output.Open)
	fmt.Fprintf(out, "%s: %s\n", config.KeyImportHeader, cfg.Import.Header)
	fmt.Fprintf(out, "%s: %s\n", config.KeyImportSheet, valueOrDefault(cfg.Import.Sheet, "(first sheet)"))
	fmt.Fprintf(out, "%s: %d\n", config.KeyTerminalWidth, cfg.Terminal.Width)
	fmt.Fprintf(out, "%s: %d\n", config.KeyTerminalHeight, cfg.Terminal.Height)
	fmt.Fprintf(out, "%s: %d\n", config.KeyServePort, cfg.Serve.Port)
	fmt.Fprintf(out, "%s: %t\n", config.KeyHistoryEnabled, cfg.History.Enabled)
	fmt.Fprintf(out, "%s: %s\n", config.KeyHistoryDB, cfg.HistoryPath())
	fmt.Fprintf(out, "%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
	fmt.Fprintf(out, "%s: %s\n", config.KeyLogFormat, cfg.Log.Format)
	fmt.Fprintf(out, "%s: %s\n", config.KeyLogSeqURL, valueOrDefault(cfg.Log.SeqURL, "(disabled)"))
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
