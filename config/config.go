// Package config loads and validates backtest run configuration from YAML
// or JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes a complete backtest run: the instruments and their data
// files, the strategy, capital and allocation, and journaling.
type Config struct {
	Capital  float64 `json:"capital" yaml:"capital"`
	Mode     string  `json:"mode" yaml:"mode"` // mark-to-market | close-on-finish
	RiskFree float64 `json:"risk_free,omitempty" yaml:"risk_free,omitempty"`

	Instruments []InstrumentConfig `json:"instruments" yaml:"instruments"`
	Strategy    StrategyConfig     `json:"strategy" yaml:"strategy"`
	Allocation  AllocationConfig   `json:"allocation,omitempty" yaml:"allocation,omitempty"`
	Journal     JournalConfig      `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// InstrumentConfig names one instrument and its OHLC CSV file.
type InstrumentConfig struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// StrategyConfig contains strategy selection and parameters.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`

	Fast int `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow int `json:"slow,omitempty" yaml:"slow,omitempty"`

	Period     int     `json:"period,omitempty" yaml:"period,omitempty"`
	Oversold   float64 `json:"oversold,omitempty" yaml:"oversold,omitempty"`
	Overbought float64 `json:"overbought,omitempty" yaml:"overbought,omitempty"`

	Short      bool    `json:"short,omitempty" yaml:"short,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty" yaml:"take_profit,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty" yaml:"stop_loss,omitempty"`
	Volume     float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	Size       float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Cost       float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// AllocationConfig selects the capital-allocation policy for portfolios.
type AllocationConfig struct {
	Mode    string    `json:"mode,omitempty" yaml:"mode,omitempty"` // equal | free | weighted
	Weights []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// JournalConfig contains journaling parameters. An empty Type disables
// journaling.
type JournalConfig struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"` // "csv" or "sqlite"
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes the configuration, format chosen by extension.
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

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for structural errors. Strategy and
// order parameters are validated again at construction by their owners.
func (c *Config) Validate() error {
	if c.Capital <= 0 {
		return fmt.Errorf("capital must be positive")
	}

	switch strings.ToLower(c.Mode) {
	case "", "mark-to-market", "mtm", "close-on-finish", "close":
	default:
		return fmt.Errorf("mode must be 'mark-to-market' or 'close-on-finish', got %q", c.Mode)
	}

	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	for i, inst := range c.Instruments {
		if inst.Name == "" {
			return fmt.Errorf("instruments[%d].name is required", i)
		}
		if inst.Path == "" {
			return fmt.Errorf("instruments[%d].path is required", i)
		}
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Cost < 0 || c.Strategy.Cost >= 1 {
		return fmt.Errorf("strategy.cost must be in [0,1)")
	}

	switch strings.ToLower(c.Allocation.Mode) {
	case "", "equal", "free":
	case "weighted", "weights":
		if len(c.Allocation.Weights) != len(c.Instruments) {
			return fmt.Errorf("allocation.weights has %d entries for %d instruments",
				len(c.Allocation.Weights), len(c.Instruments))
		}
	default:
		return fmt.Errorf("allocation.mode must be 'equal', 'free' or 'weighted', got %q", c.Allocation.Mode)
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite', got %q", c.Journal.Type)
	}

	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Capital: 100_000,
		Mode:    "mark-to-market",
		Instruments: []InstrumentConfig{
			{Name: "GM", Path: "./data/gm.csv"},
		},
		Strategy: StrategyConfig{
			Name:  "ema-cross",
			Fast:  5,
			Slow:  20,
			Short: true,
			Size:  0.2,
			Cost:  0.003,
		},
		Allocation: AllocationConfig{Mode: "equal"},
		Journal: JournalConfig{
			Type:       "csv",
			OrdersFile: "./orders.csv",
			EquityFile: "./equity.csv",
		},
	}
}
