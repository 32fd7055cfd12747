// Package journal persists backtest audit records: per-order fills and the
// per-bar equity series, to CSV files or a SQLite database.
package journal

import "time"

// OrderRecord is the audit row for one order.
type OrderRecord struct {
	OrderID    string
	Instrument string
	Direction  string
	Volume     float64
	EntryPrice float64
	ExitPrice  float64
	AdjEntry   float64
	AdjExit    float64
	Cost       float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
}

// EquityPoint is one bar of the aggregate ledger series.
type EquityPoint struct {
	Time       time.Time
	Instrument string
	Realized   float64
	Total      float64
	Exposure   float64
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquityPoint) error
	Close() error
}
