// Package orders implements the position lifecycle and the per-instrument
// ledger that aggregates positions into P&L and capital-exposure series.
package orders

import (
	"fmt"
	"time"

	"github.com/eric-ycw/algofin/pkg/id"
)

// Direction is the side of an open position. It is distinct from a strategy
// signal: a Hold signal never reaches order construction.
type Direction int8

const (
	Long  Direction = 1
	Short Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return fmt.Sprintf("Direction(%d)", int8(d))
	}
}

// Config carries the optional economics of a new order. Cost is a fractional
// transaction cost rate (0.01 = 1%), applied on both entry and exit.
// TakeProfit is a gross return ratio above 1; StopLoss below 1. Zero means
// unset.
type Config struct {
	Cost       float64
	TakeProfit float64
	StopLoss   float64
}

// Order is a single directional position. It opens at construction and
// closes exactly once, either automatically on a take-profit/stop-loss
// breach during Tick or explicitly via Close. A closed order is frozen.
type Order struct {
	ID         string
	Instrument string
	Direction  Direction

	Entry  float64
	Exit   float64
	Volume float64
	Cost   float64

	TakeProfit float64
	StopLoss   float64

	// Cost-adjusted economics, recomputed on every tick.
	AdjEntry float64
	AdjExit  float64

	Open         bool
	PL           float64 // realized, frozen at close
	UnrealizedPL float64

	OpenDate  time.Time
	CloseDate time.Time
}

// New opens an order. All preconditions are checked here; a failed
// construction never produces a partially valid order.
func New(instrument string, dir Direction, entry, volume float64, date time.Time, cfg Config) (*Order, error) {
	if dir != Long && dir != Short {
		return nil, fmt.Errorf("order: invalid direction %d", dir)
	}
	if entry <= 0 {
		return nil, fmt.Errorf("order: entry price must be positive, got %g", entry)
	}
	if volume <= 0 {
		return nil, fmt.Errorf("order: volume must be positive, got %g", volume)
	}
	if cfg.Cost < 0 || cfg.Cost >= 1 {
		return nil, fmt.Errorf("order: cost rate must be in [0,1), got %g", cfg.Cost)
	}
	if cfg.TakeProfit != 0 && cfg.TakeProfit <= 1 {
		return nil, fmt.Errorf("order: take-profit ratio must exceed 1, got %g", cfg.TakeProfit)
	}
	if cfg.StopLoss != 0 && (cfg.StopLoss <= 0 || cfg.StopLoss >= 1) {
		return nil, fmt.Errorf("order: stop-loss ratio must be below 1, got %g", cfg.StopLoss)
	}

	o := &Order{
		ID:         id.New(),
		Instrument: instrument,
		Direction:  dir,
		Entry:      entry,
		Exit:       entry,
		Volume:     volume,
		Cost:       cfg.Cost,
		TakeProfit: cfg.TakeProfit,
		StopLoss:   cfg.StopLoss,
		Open:       true,
		OpenDate:   date,
	}
	o.recompute()

	return o, nil
}

// Tick marks the order to price. Closed orders are untouched. After the
// revaluation the take-profit and stop-loss thresholds are checked against
// the gross return on entry value, take-profit first.
func (o *Order) Tick(price float64, date time.Time) {
	if !o.Open {
		return
	}

	o.Exit = price
	o.recompute()

	gross := 1 + o.UnrealizedPL/(o.Entry*o.Volume)
	switch {
	case o.TakeProfit != 0 && gross >= o.TakeProfit:
		o.Close(date)
	case o.StopLoss != 0 && gross <= o.StopLoss:
		o.Close(date)
	}
}

// Close freezes the order at its current valuation. Closing an already
// closed order is a no-op.
func (o *Order) Close(date time.Time) {
	if !o.Open {
		return
	}

	o.PL = o.UnrealizedPL
	o.UnrealizedPL = 0
	o.Open = false
	o.CloseDate = date
}

// recompute refreshes the cost-adjusted entry/exit values and the unrealized
// P&L from the current exit price. For a long the entry is inflated and the
// exit discounted by the cost rate; for a short the signs invert.
func (o *Order) recompute() {
	switch o.Direction {
	case Long:
		o.AdjEntry = o.Entry * o.Volume * (1 + o.Cost)
		o.AdjExit = o.Exit * o.Volume * (1 - o.Cost)
		o.UnrealizedPL = o.AdjExit - o.AdjEntry
	case Short:
		o.AdjEntry = o.Entry * o.Volume * (1 - o.Cost)
		o.AdjExit = o.Exit * o.Volume * (1 + o.Cost)
		o.UnrealizedPL = o.AdjEntry - o.AdjExit
	}
}
