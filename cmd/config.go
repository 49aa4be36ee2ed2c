package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage goplot configuration file values.",
	Long: `Create, edit, display, and delete the goplot configuration file.

The configuration stores application-wide defaults:
- chart.width / chart.height / chart.bins / chart.histogram_columns / chart.grid / chart.markers
- output.dir / output.open
- import.header / import.sheet
- terminal.width / terminal.height
- serve.port
- history.enabled / history.db
- log.level / log.format / log.seq_url

Every key can also be set through the environment, e.g. GOPLOT_LOG_LEVEL=debug,
including from a .env file in the working directory.`,
	Example: `
  # Create default config in $HOME/.goplot.yaml
  goplot config create

  # Show active config and source file
  goplot config show

  # Open active config in editor (creates example if missing)
  goplot config edit

  # Delete active config file
  goplot config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
