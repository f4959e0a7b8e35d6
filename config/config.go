package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/backtester/costs"
)

// Config represents the complete backtest configuration
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Trading  TradingConfig  `json:"trading" yaml:"trading"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains portfolio initialization parameters
type AccountConfig struct {
	Capital float64 `json:"capital" yaml:"capital"`
}

// TradingConfig contains execution and sizing parameters
type TradingConfig struct {
	Slippage  float64        `json:"slippage" yaml:"slippage"`
	FeeBuffer float64        `json:"fee_buffer" yaml:"fee_buffer"`
	Costs     costs.Schedule `json:"costs" yaml:"costs"`
}

// StrategyConfig contains strategy selection and parameters
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`
	Fast int    `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow int    `json:"slow,omitempty" yaml:"slow,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Capital <= 0 {
		return fmt.Errorf("account.capital must be positive")
	}
	if c.Trading.Slippage < 0 || c.Trading.Slippage >= 1 {
		return fmt.Errorf("trading.slippage must be in [0, 1)")
	}
	if c.Trading.FeeBuffer < 0 {
		return fmt.Errorf("trading.fee_buffer must be non-negative")
	}
	if err := c.Trading.Costs.Validate(); err != nil {
		return fmt.Errorf("trading.costs: %w", err)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Name == "sma-cross" || c.Strategy.Name == "smacross" {
		if c.Strategy.Fast <= 0 || c.Strategy.Slow <= 0 {
			return fmt.Errorf("strategy fast and slow periods must be positive")
		}
		if c.Strategy.Fast >= c.Strategy.Slow {
			return fmt.Errorf("strategy.fast must be less than strategy.slow")
		}
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Capital: 1_000_000,
		},
		Trading: TradingConfig{
			Slippage:  0.001,
			FeeBuffer: 0.002,
			Costs:     costs.DefaultSchedule(),
		},
		Strategy: StrategyConfig{
			Name: "sma-cross",
			Fast: 20,
			Slow: 50,
		},
		Journal: JournalConfig{
			Type: "none",
		},
	}
}
