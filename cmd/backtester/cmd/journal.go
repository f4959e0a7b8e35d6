package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query recorded backtest runs",
	Long: `Query and display backtest records from a SQLite journal.

Subcommands:
  runs    - List recorded runs, most recent first
  trades  - List the fills of a specific run

Examples:
  backtester journal runs
  backtester journal trades <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List the fills of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalTradesCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./backtester.sqlite", "path to SQLite journal DB")
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%s  %s  %s\n", r.RunID, r.Created.Format(time.DateOnly), r.Strategy)
		fmt.Printf("    dataset: %s (%s to %s)\n", r.Dataset,
			r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
		fmt.Printf("    capital %.2f -> %.2f  return %.2f%%  cagr %.2f%%  maxdd %.2f%%  sharpe %.2f\n",
			r.Capital, r.FinalEquity, r.TotalReturn*100, r.CAGR*100, r.MaxDrawdown*100, r.Sharpe)
		fmt.Printf("    trades %d  wins %d  losses %d  win rate %.2f%%\n",
			r.Trades, r.Wins, r.Losses, r.WinRate*100)
		fmt.Println()
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	trades, err := j.ListTradesByRun(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	if len(trades) == 0 {
		fmt.Printf("No trades recorded for run %s.\n", args[0])
		return nil
	}

	for _, t := range trades {
		fmt.Printf("%s  %-4s price=%.2f qty=%d value=%.2f charges=%.2f cash=%.2f\n",
			t.Date.Format(time.DateOnly), t.Side, t.Price, t.Quantity, t.Value, t.ChargesTotal, t.CashAfter)
		if t.Side == "SELL" {
			fmt.Printf("            held %d days, P&L %.2f\n", t.HoldingDays, t.PnL)
		}
	}
	return nil
}
