package cmd

import (
	"errors"
	"fmt"
	"io"

	"goplot/importer"
	"goplot/menu"

	"github.com/spf13/cobra"
)

var (
	menuInput    string
	menuFormat   string
	menuTerminal bool
	menuNoOpen   bool
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive chart menu for one data file",
	Long: `Load a data file and choose charts from a numbered menu:

1. Line chart
2. Scatter chart
3. Bar chart
4. Histogram
5. Show data info
6. Exit

Without --input the file name is asked for. Errors are printed and the menu
continues; only Exit or end of input ends the session.`,
	Example: `
  # Ask for the file name
  goplot menu

  # Start with a file and draw charts in the terminal
  goplot menu -i data.txt --terminal
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		out := cmd.OutOrStdout()
		shell := menu.New(cmd.InOrStdin(), out)

		options, err := importOptions(cfg, "", "")
		if err != nil {
			return err
		}

		table, err := promptTable(shell, out, menuInput, func(path string) (*importer.Table, error) {
			return loadTable(path, menuFormat, options)
		})
		if err != nil {
			return err
		}
		if table == nil {
			return nil
		}

		history, err := openHistory(cfg)
		if err != nil {
			return err
		}
		if history != nil {
			defer history.Close()
		}

		plotter := newChartPlotter(cfg, out, asRecorder(history))
		if menuNoOpen {
			plotter.open = false
		}
		if menuTerminal {
			plotter.useTerminal(cfg)
		}

		return shell.Run(menu.Session{
			Table:    table,
			Selector: chartSelector(cfg),
			Plotter:  plotter,
			Logger:   logger,
		})
	},
}

// promptTable loads path, asking again after every failure. A nil table with
// a nil error means input ended before a file could be loaded.
func promptTable(shell *menu.Shell, out io.Writer, path string, load func(string) (*importer.Table, error)) (*importer.Table, error) {
	for {
		if path == "" {
			answer, err := shell.PromptPath()
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			path = answer
		}

		table, err := load(path)
		if err == nil {
			fmt.Fprintf(out, "Loaded %s\n", table.Describe())
			return table, nil
		}
		fmt.Fprintf(out, "Error: %v\n", err)
		path = ""
	}
}

func init() {
	rootCmd.AddCommand(menuCmd)

	menuCmd.Flags().StringVarP(&menuInput, "input", "i", "", "Input file path (asked for when omitted)")
	menuCmd.Flags().StringVarP(&menuFormat, "format", "f", "", "Input format: text|csv|excel (optional, inferred from file extension)")
	menuCmd.Flags().BoolVar(&menuTerminal, "terminal", false, "Draw ASCII charts in the terminal instead of PNGs")
	menuCmd.Flags().BoolVar(&menuNoOpen, "no-open", false, "Do not open the image viewer")
}
