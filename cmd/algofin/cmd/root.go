package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "algofin",
	Short: "Backtest trading strategies against historical price data",
	Long: `Algofin simulates trading strategies over historical OHLC series and
produces a time-indexed performance ledger.

It provides tools for:
  - Backtesting a strategy against one instrument
  - Running multi-instrument portfolio backtests with capital allocation
  - Journaling order audits and equity curves to CSV or SQLite
  - Fetching historical OHLC data files`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
