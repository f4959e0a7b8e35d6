package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "A daily-bar backtest simulator for single-asset long-only strategies",
	Long: `Backtester replays a strategy over historical daily bars with realistic
execution costs and reports how it would have performed.

It provides tools for:
  - Backtesting strategies over CSV bar data
  - Itemized trade charges with side-asymmetric taxes
  - Journaling trades and equity curves to CSV or SQLite
  - Serving run results over an HTTP API
  - Performance metrics: return, CAGR, drawdown, Sharpe, win rate`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
