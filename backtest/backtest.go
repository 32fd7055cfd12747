// Package backtest drives strategy simulations over historical price series
// and aggregates the resulting performance ledgers.
package backtest

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/orders"
	"github.com/eric-ycw/algofin/strategies"
)

// ErrAlreadyRun is returned when Run is called on a completed backtest.
// Runs are exactly-once; re-running would double-apply ledger state.
var ErrAlreadyRun = errors.New("backtest: already run")

// ErrNotRun is returned when results are requested before Run.
var ErrNotRun = errors.New("backtest: not run yet")

// CompletionMode selects what happens to open positions at the end of a run.
type CompletionMode int8

const (
	// MarkToMarket leaves open positions open; the final profit point
	// carries their unrealized P&L.
	MarkToMarket CompletionMode = iota
	// CloseOnFinish force-closes remaining open positions at the last bar,
	// realizing their exposure.
	CloseOnFinish
)

func (m CompletionMode) String() string {
	switch m {
	case MarkToMarket:
		return "mark-to-market"
	case CloseOnFinish:
		return "close-on-finish"
	default:
		return fmt.Sprintf("CompletionMode(%d)", int8(m))
	}
}

func ParseCompletionMode(s string) (CompletionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mark-to-market", "mtm":
		return MarkToMarket, nil
	case "close-on-finish", "close":
		return CloseOnFinish, nil
	default:
		return 0, fmt.Errorf("unknown completion mode %q", s)
	}
}

// Backtest simulates one strategy over one instrument's history. Per bar it
// ticks the ledger, queries the strategy, applies capital admission, and
// records performance points. The bar ordering is load-bearing: ledger tick
// before signal before admission before recording.
type Backtest struct {
	Strategy strategies.Strategy
	Hist     *market.History
	Book     *orders.Book

	InitialCapital float64
	Mode           CompletionMode
	RiskFree       float64 // annual risk-free rate used for the Sharpe ratio

	Start time.Time
	End   time.Time

	// Performance series, one point per bar after Run.
	Dates    []time.Time
	Profit   []float64
	Return   []float64 // annualized
	CumMax   []float64
	Drawdown []float64

	done bool
}

func New(strat strategies.Strategy, hist *market.History, capital float64, mode CompletionMode) (*Backtest, error) {
	if strat == nil {
		return nil, fmt.Errorf("backtest: nil strategy")
	}
	if hist == nil || hist.Len() == 0 {
		return nil, fmt.Errorf("backtest: empty history")
	}
	if capital <= 0 {
		return nil, fmt.Errorf("backtest: initial capital must be positive, got %g", capital)
	}

	return &Backtest{
		Strategy:       strat,
		Hist:           hist,
		Book:           orders.NewBook(),
		InitialCapital: capital,
		Mode:           mode,
		Start:          hist.Start(),
		End:            hist.End(),
	}, nil
}

// Run executes the simulation. A second call returns ErrAlreadyRun.
func (b *Backtest) Run() error {
	if b.done {
		return ErrAlreadyRun
	}

	if err := b.Strategy.Prepare(b.Hist); err != nil {
		return fmt.Errorf("prepare %s: %w", b.Strategy.Name(), err)
	}

	n := b.Hist.Len()
	b.Dates = make([]time.Time, 0, n)
	b.Profit = make([]float64, 0, n)
	b.Return = make([]float64, 0, n)

	for _, bar := range b.Hist.Bars {
		// Advance existing positions before evaluating new signals.
		b.Book.Tick(bar.Close, bar.Date)

		capital := b.InitialCapital + b.Book.Exposure()

		ord, err := b.Strategy.Order(bar.Date, capital)
		if err != nil {
			return fmt.Errorf("signal at %s: %w", bar.Date.Format("2006-01-02"), err)
		}
		// Admission control: discard silently when the adjusted entry value
		// exceeds available capital. No retry, no partial fill.
		if ord != nil && ord.AdjEntry <= capital {
			b.Book.Add(ord)
		}

		last, _ := b.Book.LastPL()
		years := bar.Date.Sub(b.Start).Hours() / (24 * 365.25)

		b.Dates = append(b.Dates, bar.Date)
		b.Profit = append(b.Profit, last.Total)
		b.Return = append(b.Return, AnnualReturn(b.InitialCapital, b.InitialCapital+last.Total, years))
	}

	if b.Mode == CloseOnFinish {
		b.Book.CloseAll(b.End)
		if last, ok := b.Book.LastPL(); ok {
			b.Profit[len(b.Profit)-1] = last.Total
			years := b.End.Sub(b.Start).Hours() / (24 * 365.25)
			b.Return[len(b.Return)-1] = AnnualReturn(b.InitialCapital, b.InitialCapital+last.Total, years)
		}
	}

	b.CumMax = CumMax(b.Profit)
	b.Drawdown = DrawdownSeries(b.Profit, b.CumMax, b.InitialCapital)

	b.done = true
	return nil
}

// Done reports whether Run has completed.
func (b *Backtest) Done() bool { return b.done }

// Summary collects the end-of-run report values.
type Summary struct {
	Instrument string
	Strategy   string
	Start      time.Time
	End        time.Time

	RealizedPL   float64
	TotalPL      float64
	AnnualReturn float64
	Sharpe       float64

	Trades int
	Wins   int
	Losses int
	// WinRate is wins over closed trades (not wins over losses, which is
	// undefined for a flawless run). Zero when nothing closed.
	WinRate float64

	MaxDrawdown float64
}

func (b *Backtest) Summary() (Summary, error) {
	if !b.done {
		return Summary{}, ErrNotRun
	}

	last, _ := b.Book.LastPL()

	s := Summary{
		Instrument:   b.Hist.Instrument,
		Strategy:     b.Strategy.Name(),
		Start:        b.Start,
		End:          b.End,
		RealizedPL:   last.Realized,
		TotalPL:      last.Total,
		AnnualReturn: b.Return[len(b.Return)-1],
		Sharpe:       SharpeRatio(b.Return, b.RiskFree),
		Trades:       len(b.Book.Orders),
		Wins:         b.Book.Wins(),
		Losses:       b.Book.Losses(),
		MaxDrawdown:  MaxDrawdown(b.Drawdown),
	}
	if closed := b.Book.Closed(); closed > 0 {
		s.WinRate = float64(s.Wins) / float64(closed)
	}

	return s, nil
}
