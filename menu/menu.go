// Package menu is the interactive numbered shell around a loaded table.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"goplot/chart"
	"goplot/importer"
	"goplot/output"
)

// Plotter draws a validated plan and reports where the chart went (a file
// path, "terminal", ...).
type Plotter interface {
	Plot(table *importer.Table, plan chart.Plan) (string, error)
}

type Session struct {
	Table    *importer.Table
	Selector chart.Selector
	Plotter  Plotter
	HeadRows int
	Logger   *slog.Logger
}

type choice struct {
	key   string
	label string
	kind  chart.Kind
}

var choices = []choice{
	{key: "1", label: "Line chart", kind: chart.Line},
	{key: "2", label: "Scatter chart", kind: chart.Scatter},
	{key: "3", label: "Bar chart", kind: chart.Bar},
	{key: "4", label: "Histogram", kind: chart.Histogram},
	{key: "5", label: "Show data info"},
	{key: "6", label: "Exit"},
}

// Shell reads answers line by line. PromptPath and Run share one scanner so
// buffered input is never lost between them.
type Shell struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func New(in io.Reader, out io.Writer) *Shell {
	return &Shell{scanner: bufio.NewScanner(in), out: out}
}

// Run is New(in, out).Run(session).
func Run(in io.Reader, out io.Writer, session Session) error {
	return New(in, out).Run(session)
}

// PromptPath asks for a file name until a non-empty answer arrives.
func (s *Shell) PromptPath() (string, error) {
	for {
		fmt.Fprint(s.out, "File name (e.g. data.txt): ")
		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			if err := s.scanner.Err(); err != nil {
				return "", fmt.Errorf("read file name: %w", err)
			}
			return "", fmt.Errorf("read file name: %w", io.ErrUnexpectedEOF)
		}
		if line != "" {
			return line, nil
		}
	}
}

// Run loops until the user picks Exit or input ends. Errors from a choice are
// printed and the loop continues; only a failing reader ends Run with an
// error.
func (s *Shell) Run(session Session) error {
	if session.Table == nil {
		return errors.New("menu needs a loaded table")
	}
	if session.HeadRows <= 0 {
		session.HeadRows = 5
	}
	logger := session.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for {
		s.printMenu()
		fmt.Fprint(s.out, "> ")
		line, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			if err := s.scanner.Err(); err != nil {
				return fmt.Errorf("read menu choice: %w", err)
			}
			return nil
		}

		switch line {
		case "1", "2", "3", "4":
			if err := s.plot(session, choiceKind(line), logger); err != nil {
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
		case "5":
			if err := s.info(session); err != nil {
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
		case "6":
			return nil
		default:
			fmt.Fprintln(s.out, "invalid choice")
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out)
	for _, c := range choices {
		fmt.Fprintf(s.out, "%s. %s\n", c.key, c.label)
	}
}

func (s *Shell) plot(session Session, kind chart.Kind, logger *slog.Logger) error {
	fmt.Fprint(s.out, "Title (empty for default): ")
	title, _ := s.readLine()

	table := session.Table
	plan, err := session.Selector.Select(table.ColumnNames(), chart.Request{Kind: kind, Title: title})
	if err != nil {
		return err
	}
	plan = plan.WithDefaultTitle(table.Source)

	if session.Plotter == nil {
		return errors.New("no plotter configured")
	}
	target, err := session.Plotter.Plot(table, plan)
	if err != nil {
		return err
	}
	logger.Info("menu chart rendered", "kind", plan.Kind, "target", target)
	if target != "" {
		fmt.Fprintf(s.out, "Chart: %s\n", target)
	}
	return nil
}

func (s *Shell) info(session Session) error {
	summary, err := output.Describe(session.Table, session.HeadRows)
	if err != nil {
		return err
	}
	return output.WriteSummary(s.out, summary)
}

func (s *Shell) readLine() (string, bool) {
	if !s.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.scanner.Text()), true
}

func choiceKind(key string) chart.Kind {
	for _, c := range choices {
		if c.key == key {
			return c.kind
		}
	}
	return ""
}
