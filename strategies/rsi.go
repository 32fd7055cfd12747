package strategies

import (
	"fmt"
	"math"
	"time"

	"github.com/eric-ycw/algofin/indicators"
	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/orders"
)

// RSIReversalConfig parameterizes an RSI mean-reversion strategy.
type RSIReversalConfig struct {
	Period     int
	Oversold   float64 // default 30
	Overbought float64 // default 70
	Short      bool
	TakeProfit float64
	StopLoss   float64
	Volume     float64
	Size       float64
	Cost       float64
}

// RSIReversal buys when the RSI drops into the oversold zone and, when
// shorting is enabled, sells when it rises into the overbought zone. A
// signal fires on the bar the threshold is crossed, not on every bar inside
// the zone.
type RSIReversal struct {
	cfg RSIReversalConfig

	instrument string
	signals    map[time.Time]Signal
	closes     map[time.Time]float64
}

func NewRSIReversal(cfg RSIReversalConfig) (*RSIReversal, error) {
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("rsi: period must be positive, got %d", cfg.Period)
	}
	if cfg.Oversold == 0 {
		cfg.Oversold = 30
	}
	if cfg.Overbought == 0 {
		cfg.Overbought = 70
	}
	if cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("rsi: oversold %g must be below overbought %g", cfg.Oversold, cfg.Overbought)
	}
	if cfg.Volume <= 0 && cfg.Size <= 0 {
		return nil, fmt.Errorf("rsi: either volume or size must be set")
	}
	if cfg.TakeProfit != 0 && cfg.TakeProfit <= 1 {
		return nil, fmt.Errorf("rsi: take-profit ratio must exceed 1, got %g", cfg.TakeProfit)
	}
	if cfg.StopLoss != 0 && (cfg.StopLoss <= 0 || cfg.StopLoss >= 1) {
		return nil, fmt.Errorf("rsi: stop-loss ratio must be below 1, got %g", cfg.StopLoss)
	}

	return &RSIReversal{cfg: cfg}, nil
}

func (s *RSIReversal) Name() string {
	return fmt.Sprintf("rsi(%d)", s.cfg.Period)
}

func (s *RSIReversal) Prepare(hist *market.History) error {
	s.instrument = hist.Instrument
	closes := hist.Closes()

	rsi, err := indicators.RSI(closes, s.cfg.Period)
	if err != nil {
		return fmt.Errorf("rsi: %w", err)
	}

	s.signals = make(map[time.Time]Signal, len(hist.Bars))
	s.closes = make(map[time.Time]float64, len(hist.Bars))

	for i, bar := range hist.Bars {
		s.closes[bar.Date] = bar.Close

		if i == 0 || math.IsNaN(rsi[i]) || math.IsNaN(rsi[i-1]) {
			continue
		}

		switch {
		case rsi[i] < s.cfg.Oversold && rsi[i-1] >= s.cfg.Oversold:
			s.signals[bar.Date] = Buy
		case rsi[i] > s.cfg.Overbought && rsi[i-1] <= s.cfg.Overbought && s.cfg.Short:
			s.signals[bar.Date] = Sell
		}
	}

	return nil
}

func (s *RSIReversal) Order(date time.Time, capital float64) (*orders.Order, error) {
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

func (s *RSIReversal) Clone() Strategy {
	return &RSIReversal{cfg: s.cfg}
}
