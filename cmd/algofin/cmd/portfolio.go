package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eric-ycw/algofin/backtest"
	"github.com/eric-ycw/algofin/config"
	"github.com/eric-ycw/algofin/journal"
	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/pkg/id"
	"github.com/eric-ycw/algofin/strategies"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Run a multi-instrument portfolio backtest",
	Long: `Portfolio runs one independent backtest per instrument, each with its own
copy of the strategy and an allocated capital share, then merges the results
into portfolio-level P&L and capital curves.

The run is described by a YAML (or JSON) config file:

  capital: 100000
  mode: mark-to-market
  allocation:
    mode: equal
  strategy:
    name: ema-cross
    fast: 5
    slow: 20
    short: true
    size: 0.2
    cost: 0.003
  instruments:
    - name: GM
      path: data/gm.csv
    - name: F
      path: data/f.csv`,
	RunE: runPortfolio,
}

var pfConfigPath string

func init() {
	rootCmd.AddCommand(portfolioCmd)

	portfolioCmd.Flags().StringVarP(&pfConfigPath, "config", "f", "", "path to run config (YAML or JSON) (required)")
	portfolioCmd.MarkFlagRequired("config")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(pfConfigPath)
	if err != nil {
		return err
	}

	mode, err := backtest.ParseCompletionMode(cfg.Mode)
	if err != nil {
		return err
	}
	alloc, err := backtest.ParseAllocation(cfg.Allocation.Mode, cfg.Allocation.Weights)
	if err != nil {
		return err
	}

	hists := make([]*market.History, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		h, err := market.LoadCSV(inst.Path, inst.Name)
		if err != nil {
			return fmt.Errorf("load %s: %w", inst.Name, err)
		}
		hists = append(hists, h)
	}

	// The prototype itself is never run; every instrument gets a clone.
	prototype, err := strategies.ByName(cfg.Strategy.Name, strategies.Params{
		Fast:       cfg.Strategy.Fast,
		Slow:       cfg.Strategy.Slow,
		Period:     cfg.Strategy.Period,
		Oversold:   cfg.Strategy.Oversold,
		Overbought: cfg.Strategy.Overbought,
		Short:      cfg.Strategy.Short,
		TakeProfit: cfg.Strategy.TakeProfit,
		StopLoss:   cfg.Strategy.StopLoss,
		Volume:     cfg.Strategy.Volume,
		Size:       cfg.Strategy.Size,
		Cost:       cfg.Strategy.Cost,
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	pf, err := backtest.NewPortfolio(prototype, hists, cfg.Capital, alloc, mode)
	if err != nil {
		return err
	}
	for _, bt := range pf.Runs {
		bt.RiskFree = cfg.RiskFree
	}

	fmt.Printf("Running portfolio backtest: %s over %d instruments\n\n",
		prototype.Name(), len(hists))

	if err := pf.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	for _, bt := range pf.Runs {
		s, err := bt.Summary()
		if err != nil {
			return err
		}
		backtest.PrintSummary(os.Stdout, s)
	}

	agg, err := pf.Summary()
	if err != nil {
		return err
	}
	fmt.Println("Portfolio (aggregate)")
	backtest.PrintSummary(os.Stdout, agg)

	j, err := journalFromConfig(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		if err := pf.WriteJournal(j); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		if sj, ok := j.(*journal.SQLite); ok {
			run := journal.Run{
				RunID:        id.New(),
				Created:      time.Now().UTC(),
				Instrument:   agg.Instrument,
				Strategy:     agg.Strategy,
				Dataset:      pfConfigPath,
				Mode:         mode.String(),
				Start:        agg.Start,
				End:          agg.End,
				Capital:      cfg.Capital,
				RealizedPL:   agg.RealizedPL,
				TotalPL:      agg.TotalPL,
				AnnualReturn: agg.AnnualReturn,
				Trades:       agg.Trades,
				Wins:         agg.Wins,
				Losses:       agg.Losses,
				WinRate:      agg.WinRate,
				MaxDrawdown:  agg.MaxDrawdown,
			}
			if err := sj.RecordRun(run); err != nil {
				return fmt.Errorf("record run: %w", err)
			}
		}
	}

	return nil
}

func journalFromConfig(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return nil, nil
	case "csv":
		j, err := journal.NewCSV(jc.OrdersFile, jc.EquityFile)
		if err != nil {
			return nil, fmt.Errorf("open csv journal: %w", err)
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(jc.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}
