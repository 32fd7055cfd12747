package strategies

import (
	"fmt"
	"math"
	"time"

	"github.com/eric-ycw/algofin/indicators"
	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/orders"
)

// EMACrossoverConfig parameterizes an EMA crossover strategy. Fast must be
// strictly below Slow.
type EMACrossoverConfig struct {
	Fast       int
	Slow       int
	Short      bool // emit Sell signals on downward crosses
	TakeProfit float64
	StopLoss   float64
	Volume     float64
	Size       float64
	Cost       float64
}

// EMACrossover goes long when the fast EMA crosses above the slow EMA and,
// when shorting is enabled, short on the opposite cross.
type EMACrossover struct {
	cfg EMACrossoverConfig

	instrument string
	signals    map[time.Time]Signal
	closes     map[time.Time]float64
}

func NewEMACrossover(cfg EMACrossoverConfig) (*EMACrossover, error) {
	if cfg.Fast <= 0 || cfg.Slow <= 0 {
		return nil, fmt.Errorf("ema-cross: periods must be positive, got fast=%d slow=%d", cfg.Fast, cfg.Slow)
	}
	if cfg.Fast >= cfg.Slow {
		return nil, fmt.Errorf("ema-cross: fast period %d must be below slow period %d", cfg.Fast, cfg.Slow)
	}
	if cfg.Volume <= 0 && cfg.Size <= 0 {
		return nil, fmt.Errorf("ema-cross: either volume or size must be set")
	}
	if cfg.TakeProfit != 0 && cfg.TakeProfit <= 1 {
		return nil, fmt.Errorf("ema-cross: take-profit ratio must exceed 1, got %g", cfg.TakeProfit)
	}
	if cfg.StopLoss != 0 && (cfg.StopLoss <= 0 || cfg.StopLoss >= 1) {
		return nil, fmt.Errorf("ema-cross: stop-loss ratio must be below 1, got %g", cfg.StopLoss)
	}

	return &EMACrossover{cfg: cfg}, nil
}

func (s *EMACrossover) Name() string {
	return fmt.Sprintf("ema-cross(%d,%d)", s.cfg.Fast, s.cfg.Slow)
}

// Prepare annotates each date with a crossover signal. Signals use only the
// current and previous bar's EMAs, so there is no look-ahead.
func (s *EMACrossover) Prepare(hist *market.History) error {
	s.instrument = hist.Instrument
	closes := hist.Closes()

	fast, err := indicators.EMA(closes, s.cfg.Fast)
	if err != nil {
		return fmt.Errorf("ema-cross: %w", err)
	}
	slow, err := indicators.EMA(closes, s.cfg.Slow)
	if err != nil {
		return fmt.Errorf("ema-cross: %w", err)
	}

	s.signals = make(map[time.Time]Signal, len(hist.Bars))
	s.closes = make(map[time.Time]float64, len(hist.Bars))

	for i, bar := range hist.Bars {
		s.closes[bar.Date] = bar.Close

		if i == 0 || math.IsNaN(slow[i]) || math.IsNaN(slow[i-1]) {
			continue
		}

		prevAbove := fast[i-1] > slow[i-1]
		above := fast[i] > slow[i]

		switch {
		case above && !prevAbove:
			s.signals[bar.Date] = Buy
		case !above && prevAbove && s.cfg.Short:
			s.signals[bar.Date] = Sell
		}
	}

	return nil
}

// Order maps the date's annotation to an order. Dates absent from the
// annotated history are explicitly a Hold.
func (s *EMACrossover) Order(date time.Time, capital float64) (*orders.Order, error) {
	sig, ok := s.signals[date]
	if !ok || sig == Hold {
		return nil, nil
	}

	price := s.closes[date]
	volume := sizeOrder(s.cfg.Volume, s.cfg.Size, capital, price)
	if volume <= 0 {
		return nil, nil
	}

	dir := orders.Long
	if sig == Sell {
		dir = orders.Short
	}

	return orders.New(s.instrument, dir, price, volume, date, orders.Config{
		Cost:       s.cfg.Cost,
		TakeProfit: s.cfg.TakeProfit,
		StopLoss:   s.cfg.StopLoss,
	})
}

func (s *EMACrossover) Clone() Strategy {
	return &EMACrossover{cfg: s.cfg}
}
