package backtest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/strategies"
)

// ErrMisaligned is returned when per-instrument series cannot be merged
// elementwise because their date indexes differ (holidays, listing dates).
var ErrMisaligned = errors.New("backtest: portfolio series are not date-aligned")

// AllocationMode selects how the portfolio's initial capital is split
// across instruments.
type AllocationMode int8

const (
	// AllocEqual gives every instrument capital/N.
	AllocEqual AllocationMode = iota
	// AllocFree gives every instrument the full capital independently.
	// Intentionally not additive; a per-instrument what-if, not a budget.
	AllocFree
	// AllocWeighted splits capital per explicit weights.
	AllocWeighted
)

// Allocation is a capital-allocation policy.
type Allocation struct {
	Mode    AllocationMode
	Weights []float64 // AllocWeighted only; must match instrument count, sum to 1
}

func ParseAllocation(mode string, weights []float64) (Allocation, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "equal":
		return Allocation{Mode: AllocEqual}, nil
	case "free":
		return Allocation{Mode: AllocFree}, nil
	case "weighted", "weights":
		return Allocation{Mode: AllocWeighted, Weights: weights}, nil
	default:
		return Allocation{}, fmt.Errorf("unknown allocation mode %q", mode)
	}
}

// shares resolves the per-instrument capital allocations.
func (a Allocation) shares(n int, capital float64) ([]float64, error) {
	out := make([]float64, n)

	switch a.Mode {
	case AllocEqual:
		for i := range out {
			out[i] = capital / float64(n)
		}
	case AllocFree:
		for i := range out {
			out[i] = capital
		}
	case AllocWeighted:
		if len(a.Weights) != n {
			return nil, fmt.Errorf("allocation: %d weights for %d instruments", len(a.Weights), n)
		}
		sum := 0.0
		for _, w := range a.Weights {
			if w < 0 {
				return nil, fmt.Errorf("allocation: negative weight %g", w)
			}
			sum += w
		}
		if math.Abs(sum-1) > 1e-9 {
			return nil, fmt.Errorf("allocation: weights sum to %g, want 1", sum)
		}
		for i, w := range a.Weights {
			out[i] = capital * w
		}
	default:
		return nil, fmt.Errorf("allocation: unknown mode %d", a.Mode)
	}

	return out, nil
}

// Portfolio runs one independent backtest per instrument and merges the
// resulting series into portfolio-level curves. Each sub-backtest owns a
// cloned strategy and its own ledger, so the runs share no mutable state.
type Portfolio struct {
	Runs           []*Backtest
	InitialCapital float64
	Allocation     Allocation

	// Merged series after Run, aligned to the shared date index.
	Dates    []time.Time
	Realized []float64
	Total    []float64
	Capital  []float64 // summed net exposure

	done bool
}

// NewPortfolio builds one sub-backtest per history. The strategy prototype
// is cloned per instrument; its own instance is never run.
func NewPortfolio(prototype strategies.Strategy, hists []*market.History, capital float64, alloc Allocation, mode CompletionMode) (*Portfolio, error) {
	if len(hists) == 0 {
		return nil, fmt.Errorf("portfolio: no instruments")
	}

	shares, err := alloc.shares(len(hists), capital)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{
		InitialCapital: capital,
		Allocation:     alloc,
	}
	for i, h := range hists {
		bt, err := New(prototype.Clone(), h, shares[i], mode)
		if err != nil {
			return nil, fmt.Errorf("portfolio %s: %w", h.Instrument, err)
		}
		p.Runs = append(p.Runs, bt)
	}

	return p, nil
}

// Run executes every sub-backtest concurrently, joins, then merges. The
// merge never starts before all sub-runs complete.
func (p *Portfolio) Run() error {
	if p.done {
		return ErrAlreadyRun
	}

	errs := make([]error, len(p.Runs))
	var wg sync.WaitGroup
	for i, bt := range p.Runs {
		wg.Add(1)
		go func(i int, bt *Backtest) {
			defer wg.Done()
			errs[i] = bt.Run()
		}(i, bt)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("portfolio %s: %w", p.Runs[i].Hist.Instrument, err)
		}
	}

	if err := p.merge(); err != nil {
		return err
	}

	p.done = true
	return nil
}

// merge validates date alignment across sub-backtests, then sums the
// per-instrument series elementwise.
func (p *Portfolio) merge() error {
	ref := p.Runs[0]
	n := len(ref.Dates)

	for _, bt := range p.Runs[1:] {
		if len(bt.Dates) != n {
			return fmt.Errorf("%w: %s has %d bars, %s has %d",
				ErrMisaligned, ref.Hist.Instrument, n, bt.Hist.Instrument, len(bt.Dates))
		}
		for i, d := range bt.Dates {
			if !d.Equal(ref.Dates[i]) {
				return fmt.Errorf("%w: bar %d is %s for %s but %s for %s",
					ErrMisaligned, i,
					ref.Dates[i].Format("2006-01-02"), ref.Hist.Instrument,
					d.Format("2006-01-02"), bt.Hist.Instrument)
			}
		}
	}

	p.Dates = append([]time.Time(nil), ref.Dates...)
	p.Realized = make([]float64, n)
	p.Total = make([]float64, n)
	p.Capital = make([]float64, n)

	for _, bt := range p.Runs {
		for i := 0; i < n; i++ {
			p.Realized[i] += bt.Book.PLHist[i].Realized
			p.Total[i] += bt.Book.PLHist[i].Total
			p.Capital[i] += bt.Book.CapitalHist[i].Exposure
		}
	}

	return nil
}

// Done reports whether Run has completed.
func (p *Portfolio) Done() bool { return p.done }

// Summary aggregates the sub-backtest summaries. Allocated is the summed
// capital base actually handed to sub-backtests (N·capital under free
// allocation).
func (p *Portfolio) Summary() (Summary, error) {
	if !p.done {
		return Summary{}, ErrNotRun
	}

	allocated := 0.0
	var names []string
	agg := Summary{
		Strategy: p.Runs[0].Strategy.Name(),
		Start:    p.Dates[0],
		End:      p.Dates[len(p.Dates)-1],
	}

	for _, bt := range p.Runs {
		s, err := bt.Summary()
		if err != nil {
			return Summary{}, err
		}
		names = append(names, s.Instrument)
		allocated += bt.InitialCapital
		agg.RealizedPL += s.RealizedPL
		agg.TotalPL += s.TotalPL
		agg.Trades += s.Trades
		agg.Wins += s.Wins
		agg.Losses += s.Losses
	}

	agg.Instrument = strings.Join(names, "+")
	if closed := agg.Wins + agg.Losses; closed > 0 {
		agg.WinRate = float64(agg.Wins) / float64(closed)
	}

	years := agg.End.Sub(agg.Start).Hours() / (24 * 365.25)
	agg.AnnualReturn = AnnualReturn(allocated, allocated+agg.TotalPL, years)

	cm := CumMax(p.Total)
	agg.MaxDrawdown = MaxDrawdown(DrawdownSeries(p.Total, cm, allocated))

	return agg, nil
}
