package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eric-ycw/algofin/backtest"
	"github.com/eric-ycw/algofin/journal"
	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/pkg/id"
	"github.com/eric-ycw/algofin/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a single-instrument backtest",
	Long: `Backtest runs one strategy over one instrument's historical OHLC data.

Supported strategies:
  - ema-cross: fast/slow EMA crossover, optional shorting
  - rsi: RSI mean reversion (oversold buy, overbought sell)

Example:
  algofin backtest --data data/gm.csv --instrument GM --strategy ema-cross \
    --fast 5 --slow 20 --short --size 0.2 --cost 0.003`,
	RunE: runBacktest,
}

var (
	btDataPath   string
	btInstrument string
	btCapital    float64
	btMode       string
	btRiskFree   float64
	btDBPath     string
	btOrdersCSV  string
	btEquityCSV  string
	btOrgPath    string

	btStrategy   string
	btFast       int
	btSlow       int
	btPeriod     int
	btOversold   float64
	btOverbought float64
	btShort      bool
	btTakeProfit float64
	btStopLoss   float64
	btVolume     float64
	btSize       float64
	btCost       float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btDataPath, "data", "d", "", "path to OHLC CSV (date,open,high,low,close[,volume]) (required)")
	backtestCmd.Flags().StringVarP(&btInstrument, "instrument", "i", "", "instrument name (required)")
	backtestCmd.Flags().Float64VarP(&btCapital, "capital", "c", 100_000, "initial capital")
	backtestCmd.Flags().StringVarP(&btMode, "mode", "m", "mark-to-market", "completion mode (mark-to-market, close-on-finish)")
	backtestCmd.Flags().Float64Var(&btRiskFree, "risk-free", 0, "annual risk-free rate for the Sharpe ratio (0.02 = 2%)")
	backtestCmd.Flags().StringVar(&btDBPath, "db", "", "journal to this SQLite database")
	backtestCmd.Flags().StringVar(&btOrdersCSV, "orders-csv", "", "journal orders to this CSV file")
	backtestCmd.Flags().StringVar(&btEquityCSV, "equity-csv", "", "journal equity curve to this CSV file")
	backtestCmd.Flags().StringVar(&btOrgPath, "org", "", "write an org-mode run report to this path")

	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "ema-cross", "strategy name (ema-cross, rsi)")
	backtestCmd.Flags().IntVar(&btFast, "fast", 5, "ema-cross: fast EMA period")
	backtestCmd.Flags().IntVar(&btSlow, "slow", 20, "ema-cross: slow EMA period")
	backtestCmd.Flags().IntVar(&btPeriod, "period", 14, "rsi: lookback period")
	backtestCmd.Flags().Float64Var(&btOversold, "oversold", 30, "rsi: oversold threshold")
	backtestCmd.Flags().Float64Var(&btOverbought, "overbought", 70, "rsi: overbought threshold")
	backtestCmd.Flags().BoolVar(&btShort, "short", false, "allow short positions")
	backtestCmd.Flags().Float64Var(&btTakeProfit, "take-profit", 0, "take-profit ratio (>1, e.g. 1.15; 0 disables)")
	backtestCmd.Flags().Float64Var(&btStopLoss, "stop-loss", 0, "stop-loss ratio (<1, e.g. 0.95; 0 disables)")
	backtestCmd.Flags().Float64VarP(&btVolume, "volume", "u", 1, "fixed units per order")
	backtestCmd.Flags().Float64Var(&btSize, "size", 0, "order size as a fraction of available capital (overrides volume)")
	backtestCmd.Flags().Float64Var(&btCost, "cost", 0, "fractional transaction cost rate (0.003 = 0.3%)")

	backtestCmd.MarkFlagRequired("data")
	backtestCmd.MarkFlagRequired("instrument")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	mode, err := backtest.ParseCompletionMode(btMode)
	if err != nil {
		return err
	}

	hist, err := market.LoadCSV(btDataPath, btInstrument)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	strat, err := strategies.ByName(btStrategy, strategyParams())
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	bt, err := backtest.New(strat, hist, btCapital, mode)
	if err != nil {
		return err
	}
	bt.RiskFree = btRiskFree

	fmt.Printf("Running backtest: %s on %s (%d bars)\n\n", strat.Name(), btInstrument, hist.Len())

	if err := bt.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	summary, err := bt.Summary()
	if err != nil {
		return err
	}
	backtest.PrintSummary(os.Stdout, summary)

	j, err := openJournal()
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		if err := bt.WriteJournal(j); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	run := summaryToRun(summary, btDataPath, mode.String())
	if sj, ok := j.(*journal.SQLite); ok {
		if err := sj.RecordRun(run); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		fmt.Printf("Run %s journaled to %s\n", run.RunID, btDBPath)
	}
	if btOrgPath != "" {
		run.OrgPath = btOrgPath
		if err := run.WriteOrg(); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		fmt.Printf("Org report written to %s\n", btOrgPath)
	}

	return nil
}

func strategyParams() strategies.Params {
	return strategies.Params{
		Fast:       btFast,
		Slow:       btSlow,
		Period:     btPeriod,
		Oversold:   btOversold,
		Overbought: btOverbought,
		Short:      btShort,
		TakeProfit: btTakeProfit,
		StopLoss:   btStopLoss,
		Volume:     btVolume,
		Size:       btSize,
		Cost:       btCost,
	}
}

// openJournal builds a journal from the --db/--orders-csv/--equity-csv
// flags, or nil when journaling is disabled.
func openJournal() (journal.Journal, error) {
	switch {
	case btDBPath != "":
		j, err := journal.NewSQLite(btDBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	case btOrdersCSV != "" && btEquityCSV != "":
		j, err := journal.NewCSV(btOrdersCSV, btEquityCSV)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil
	case btOrdersCSV != "" || btEquityCSV != "":
		return nil, fmt.Errorf("csv journaling needs both --orders-csv and --equity-csv")
	default:
		return nil, nil
	}
}

func summaryToRun(s backtest.Summary, dataset, mode string) journal.Run {
	return journal.Run{
		RunID:        id.New(),
		Created:      time.Now().UTC(),
		Instrument:   s.Instrument,
		Strategy:     s.Strategy,
		Dataset:      dataset,
		Mode:         mode,
		Start:        s.Start,
		End:          s.End,
		Capital:      btCapital,
		RealizedPL:   s.RealizedPL,
		TotalPL:      s.TotalPL,
		AnnualReturn: s.AnnualReturn,
		Sharpe:       s.Sharpe,
		Trades:       s.Trades,
		Wins:         s.Wins,
		Losses:       s.Losses,
		WinRate:      s.WinRate,
		MaxDrawdown:  s.MaxDrawdown,
	}
}
