package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"goplot/web"

	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveInputs []string
	serveFormat string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a local browser dashboard for uploading and plotting tables",
	Long: `Start a local HTTP server where data files can be uploaded, inspected and plotted.

Uploaded tables are kept in memory for the lifetime of the server. Charts are
rendered as PNG on request. The server has no authentication and is meant for
localhost use only.`,
	Example: `
  # Start on the configured port (default 8080) and open the browser
  goplot serve

  # Preload two files on a custom port
  goplot serve --port 9090 -i data.txt -i sales.xlsx --no-open
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		port := cfg.Serve.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid --port %d (expected 1..65535)", port)
		}

		options, err := importOptions(cfg, "", "")
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

		handler := web.NewServer(web.Options{
			Load:     options,
			Selector: chartSelector(cfg),
			Render:   renderOptions(cfg),
			Recorder: asRecorder(history),
			Logger:   logger,
		})

		firstTable := ""
		for _, input := range serveInputs {
			table, err := loadTable(input, serveFormat, options)
			if err != nil {
				return err
			}
			id := handler.AddTable(table.Source, table)
			if firstTable == "" {
				firstTable = id
			}
			fmt.Printf("Loaded %s\n", table.Describe())
		}

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", port)
		fmt.Printf("Listening on %s\n", listenURL)
		logger.Info("dashboard started", "addr", server.Addr, "preloaded", len(serveInputs))
		if !serveNoOpen {
			target := listenURL
			if firstTable != "" {
				target = target + "/table/" + firstTable
			}
			if openErr := openExternal(target); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server (default from serve.port)")
	serveCmd.Flags().StringArrayVarP(&serveInputs, "input", "i", nil, "Data file to preload (repeatable)")
	serveCmd.Flags().StringVarP(&serveFormat, "format", "f", "", "Input format for preloaded files: text|csv|excel")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

// openExternal hands a URL or file path to the desktop's default handler:
// the browser for URLs, the image viewer for PNG files.
func openExternal(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
