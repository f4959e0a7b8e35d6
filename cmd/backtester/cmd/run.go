package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/internal/id"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest over a CSV bar series",
	Long: `Run a backtest: replay a strategy over daily bars loaded from a CSV file
and print the performance report.

The CSV must have "date" and "close" columns; extra columns are ignored.
Settings come from an optional config file, with flags overriding.

Examples:
  backtester run -d data/reliance.csv
  backtester run -d data/reliance.csv -f config.yaml
  backtester run -d data/reliance.csv --strategy sma-cross --fast 10 --slow 30`,
	RunE: runRun,
}

var (
	runDataPath   string
	runConfigPath string
	runCapital    float64
	runSlippage   float64
	runStrategy   string
	runFast       int
	runSlow       int
	runDBPath     string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runDataPath, "data", "d", "", "path to CSV bar data (required)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().Float64Var(&runCapital, "capital", 0, "initial capital (overrides config)")
	runCmd.Flags().Float64Var(&runSlippage, "slippage", 0, "slippage fraction (overrides config)")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "", "strategy name (overrides config)")
	runCmd.Flags().IntVar(&runFast, "fast", 0, "fast SMA period (overrides config)")
	runCmd.Flags().IntVar(&runSlow, "slow", 0, "slow SMA period (overrides config)")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "journal run to SQLite DB (overrides config)")
	runCmd.MarkFlagRequired("data")
}

// loadRunConfig merges the config file (or defaults) with flag overrides.
func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if runConfigPath != "" {
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	if cmd.Flags().Changed("capital") {
		cfg.Account.Capital = runCapital
	}
	if cmd.Flags().Changed("slippage") {
		cfg.Trading.Slippage = runSlippage
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy.Name = runStrategy
	}
	if cmd.Flags().Changed("fast") {
		cfg.Strategy.Fast = runFast
	}
	if cmd.Flags().Changed("slow") {
		cfg.Strategy.Slow = runSlow
	}
	if cmd.Flags().Changed("db") {
		cfg.Journal = config.JournalConfig{Type: "sqlite", DBPath: runDBPath}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		j, err := journal.NewCSV(jc.TradesFile, jc.EquityFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	bars, err := backtest.LoadBarsCSV(runDataPath)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, cfg.Strategy.Fast, cfg.Strategy.Slow)
	if err != nil {
		return err
	}

	fmt.Printf("Running backtest: %s\n", runDataPath)
	fmt.Printf("  Bars: %d (%s to %s)\n", len(bars),
		bars[0].Date.Format(time.DateOnly), bars[len(bars)-1].Date.Format(time.DateOnly))
	fmt.Printf("  Strategy: %s\n", strat.Name())
	fmt.Printf("  Capital: %.2f, Slippage: %.4f\n", cfg.Account.Capital, cfg.Trading.Slippage)
	fmt.Println()

	j, err := newJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}

	runner := &backtest.Runner{
		Portfolio: sim.NewPortfolio(cfg.Account.Capital),
		Executor:  sim.NewExecutor(cfg.Trading.Slippage, cfg.Trading.Costs),
		Strategy:  strat,
		FeeBuffer: cfg.Trading.FeeBuffer,
	}

	runID := ""
	if j != nil {
		defer j.Close()
		runID = id.New()
		runner.Journal = j
		runner.RunID = runID
	}

	res, err := runner.Run(bars)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	backtest.PrintResult(os.Stdout, res)

	if sj, ok := j.(*journal.SQLiteJournal); ok {
		rep := res.Report
		err := sj.RecordRun(journal.Run{
			RunID:       runID,
			Created:     time.Now().UTC(),
			Strategy:    strat.Name(),
			Dataset:     runDataPath,
			Start:       bars[0].Date,
			End:         bars[len(bars)-1].Date,
			Capital:     res.InitialCapital,
			FinalEquity: res.FinalEquity(),
			TotalReturn: rep.TotalReturn,
			CAGR:        rep.CAGR,
			MaxDrawdown: rep.MaxDrawdown,
			Sharpe:      rep.SharpeRatio,
			Trades:      rep.CompletedTrades,
			Wins:        rep.WinningTrades,
			Losses:      rep.LosingTrades,
			WinRate:     rep.WinRate,
		})
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		fmt.Printf("Run %s saved to %s\n", runID, cfg.Journal.DBPath)
	}

	return nil
}
