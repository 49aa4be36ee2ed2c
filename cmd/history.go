package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"goplot/storage"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyClear bool
	historyYes   bool
)

var (
	historyPromptInput  io.Reader = os.Stdin
	historyPromptOutput io.Writer = os.Stdout
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or clear previously rendered charts",
	Long: `List the charts rendered by plot, menu and serve, newest first.

History is stored in a local SQLite database (history.db, default $HOME/.goplot.db)
while history.enabled is true. --clear deletes every entry after an interactive
prompt that requires typing exactly "Y" (skip it with --yes).`,
	Example: `
  # Last 20 renders
  goplot history

  # Everything
  goplot history --limit 0

  # Delete all entries
  goplot history --clear
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if !cfg.History.Enabled {
			fmt.Fprintln(os.Stderr, "Note: history.enabled is false; new renders are not recorded.")
		}

		store, err := storage.OpenSQLite(cfg.HistoryPath())
		if err != nil {
			return fmt.Errorf("open render history: %w", err)
		}
		defer store.Close()

		if historyClear {
			if !historyYes {
				confirmed, err := confirmPrompt(historyPromptInput, historyPromptOutput, "Delete all render history? Type Y to confirm: ")
				if err != nil {
					return err
				}
				if !confirmed {
					return fmt.Errorf("clear aborted: confirmation was not 'Y'")
				}
			}
			deleted, err := store.ClearRenders()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d history entries.\n", deleted)
			return nil
		}

		records, err := store.ListRenders(historyLimit)
		if err != nil {
			return err
		}
		return writeHistory(cmd.OutOrStdout(), records)
	},
}

func writeHistory(out io.Writer, records []storage.RenderRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No renders recorded yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tKIND\tSOURCE\tCOLUMNS\tROWS\tTARGET\tTITLE")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind,
			r.SourceFile,
			strings.Join(r.Columns, ", "),
			r.Rows,
			r.Target,
			r.Title,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func confirmPrompt(input io.Reader, output io.Writer, prompt string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprint(output, prompt); err != nil {
		return false, fmt.Errorf("write confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries to list (0 = all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all history entries")
	historyCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Skip the confirmation prompt for --clear")
}
