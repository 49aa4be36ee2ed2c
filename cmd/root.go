/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"goplot/config"
	"goplot/internal/logging"
)

var cfgFile string

var (
	appConfig   *config.Config
	logger      = slog.New(slog.DiscardHandler)
	closeLogger = func() {}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "goplot",
	Short: "Plot charts from delimited text and Excel files.",
	Long: `
**********************************************
*              GO PLOT GO                    *
**********************************************

This CLI loads tabular data (plain text, CSV, TSV, Excel), detects the delimiter
and header row, and renders line, scatter, bar, histogram and pie charts as PNG
images, terminal charts, or in a local browser dashboard.

Supported input formats:
- Text: .txt, .dat, .csv, .tsv (comma, semicolon, tab or whitespace separated)
- Excel: .xlsx, .xlsm, .xls
`,
	Example: `
  # Create configuration file
  goplot config create

  # Plot a file with the default line chart and open it in the image viewer
  goplot plot -i data.txt

  # Scatter two named columns into a file without opening it
  goplot plot -i measurements.csv --kind scatter --x time --y temp -o ./temp.png --no-open

  # Interactive menu (asks for the file name)
  goplot menu

  # Summary statistics exported to Excel
  goplot info -i data.csv --export ./stats.xlsx

  # Browser dashboard
  goplot serve --port 9090

  # Recent renders
  goplot history --limit 10
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		appConfig = cfg
		logger, closeLogger = logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format, cfg.Log.SeqURL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.goplot.yaml, then ./.goplot.yaml)")
}

// requiresConfig is false for the config subcommands, which must work on a
// missing or broken config file.
func requiresConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c == configCmd {
			return false
		}
	}
	return cmd != nil
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".goplot" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".goplot")
	}

	// GOPLOT_LOG_LEVEL overrides log.level and so on.
	viper.SetEnvPrefix("goplot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Without a config file the defaults apply.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config file: %v\n", err)
		}
	}
}
