package market

import (
	"fmt"
	"time"
)

// History is a chronologically ordered, date-keyed OHLCV series for one
// instrument. Bars are validated at construction: strictly increasing dates,
// no duplicates.
type History struct {
	Instrument string
	Bars       []Candle

	index map[time.Time]int
}

func NewHistory(instrument string, bars []Candle) (*History, error) {
	if instrument == "" {
		return nil, fmt.Errorf("history: instrument required")
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("history %s: no bars", instrument)
	}

	index := make(map[time.Time]int, len(bars))
	for i, b := range bars {
		if b.Date.IsZero() {
			return nil, fmt.Errorf("history %s: bar %d has zero date", instrument, i)
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return nil, fmt.Errorf("history %s: dates not strictly increasing at %s",
				instrument, b.Date.Format("2006-01-02"))
		}
		index[b.Date] = i
	}

	return &History{Instrument: instrument, Bars: bars, index: index}, nil
}

func (h *History) Len() int { return len(h.Bars) }

// Start returns the date of the first bar.
func (h *History) Start() time.Time { return h.Bars[0].Date }

// End returns the date of the last bar.
func (h *History) End() time.Time { return h.Bars[len(h.Bars)-1].Date }

// At looks up the bar for an exact date.
func (h *History) At(date time.Time) (Candle, bool) {
	i, ok := h.index[date]
	if !ok {
		return Candle{}, false
	}
	return h.Bars[i], true
}

// Closes returns the close price series in bar order.
func (h *History) Closes() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high price series in bar order.
func (h *History) Highs() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low price series in bar order.
func (h *History) Lows() []float64 {
	out := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Low
	}
	return out
}

// Dates returns the bar dates in order.
func (h *History) Dates() []time.Time {
	out := make([]time.Time, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = b.Date
	}
	return out
}
