// Package market holds price data types: OHLCV bars and the date-indexed
// histories backtests run over.
package market

import "time"

// Candle is one OHLCV bar.
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
