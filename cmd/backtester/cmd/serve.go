package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/api"
	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve backtest runs over HTTP",
	Long: `Start the HTTP API. Each GET /api/backtest request runs a fresh
simulation over the loaded bar series and returns metrics, trades,
chart data, and summary as JSON.

Example:
  backtester serve -d data/reliance.csv -p 8080`,
	RunE: runServe,
}

var (
	serveDataPath   string
	serveConfigPath string
	servePort       int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveDataPath, "data", "d", "", "path to CSV bar data (required)")
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "listen port")
	serveCmd.MarkFlagRequired("data")
}

func runServe(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error

	if serveConfigPath != "" {
		cfg, err = config.LoadFromFile(serveConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	bars, err := backtest.LoadBarsCSV(serveDataPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	srv, err := api.NewServer(cfg, bars, servePort, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Shut down cleanly on SIGINT/SIGTERM.
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case <-sig:
		logger.Info("shutting down")
		return srv.Shutdown()
	}
}
