// Package strategies defines the strategy contract consumed by the backtest
// driver, plus the built-in strategies.
package strategies

import (
	"fmt"
	"strings"
	"time"

	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/orders"
)

// Signal is a strategy's per-date output. It is deliberately distinct from
// orders.Direction: Hold never reaches order construction.
type Signal int8

const (
	Hold Signal = 0
	Buy  Signal = 1
	Sell Signal = -1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	default:
		return fmt.Sprintf("Signal(%d)", int8(s))
	}
}

// Strategy is the contract between a signal generator and the driver.
//
// Prepare annotates the price history with a per-date signal. It must be
// deterministic and free of look-ahead: the signal for a date may only use
// data up to and including that date.
//
// Order returns at most one new order for the given date, sized against the
// capital currently available. A date with no annotation is a Hold and
// yields nil. The driver decides admission; the strategy never sees whether
// an order was accepted.
//
// Clone returns a fresh instance sharing immutable parameters but owning its
// mutable state, so portfolio sub-backtests never alias annotated histories.
type Strategy interface {
	Name() string
	Prepare(hist *market.History) error
	Order(date time.Time, capital float64) (*orders.Order, error)
	Clone() Strategy
}

// Params carries the knobs understood by the built-in strategies.
type Params struct {
	Fast int // ema-cross
	Slow int

	Period     int // rsi
	Oversold   float64
	Overbought float64

	Short      bool
	TakeProfit float64
	StopLoss   float64
	Volume     float64 // fixed units per order
	Size       float64 // fraction of available capital; overrides Volume when set
	Cost       float64 // fractional transaction cost rate
}

// ByName builds a registered strategy from its name.
func ByName(name string, p Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ema-cross", "emacross":
		return NewEMACrossover(EMACrossoverConfig{
			Fast:       p.Fast,
			Slow:       p.Slow,
			Short:      p.Short,
			TakeProfit: p.TakeProfit,
			StopLoss:   p.StopLoss,
			Volume:     p.Volume,
			Size:       p.Size,
			Cost:       p.Cost,
		})

	case "rsi":
		return NewRSIReversal(RSIReversalConfig{
			Period:     p.Period,
			Oversold:   p.Oversold,
			Overbought: p.Overbought,
			Short:      p.Short,
			TakeProfit: p.TakeProfit,
			StopLoss:   p.StopLoss,
			Volume:     p.Volume,
			Size:       p.Size,
			Cost:       p.Cost,
		})

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: ema-cross, rsi)", name)
	}
}

// sizeOrder resolves the order volume: a capital fraction divided by price
// when size is set, a fixed unit volume otherwise. Returns 0 when no viable
// volume exists (e.g. negative available capital).
func sizeOrder(volume, size, capital, price float64) float64 {
	if size > 0 {
		v := size * capital / price
		if v <= 0 {
			return 0
		}
		return v
	}
	return volume
}
