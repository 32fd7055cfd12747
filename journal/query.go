package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetOrder returns a single order record by ID.
func (j *SQLite) GetOrder(orderID string) (OrderRecord, error) {
	row := j.db.QueryRow(`
		SELECT order_id, instrument, direction, volume, entry_price, exit_price, adj_entry, adj_exit, cost, open_time, close_time, realized_pl
		FROM orders
		WHERE order_id = ?`, orderID)

	rec, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return OrderRecord{}, fmt.Errorf("order %q not found", orderID)
		}
		return OrderRecord{}, err
	}
	return rec, nil
}

// ListOrders returns all order records for an instrument, oldest first.
func (j *SQLite) ListOrders(instrument string) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, instrument, direction, volume, entry_price, exit_price, adj_entry, adj_exit, cost, open_time, close_time, realized_pl
		FROM orders
		WHERE instrument = ?
		ORDER BY open_time ASC`, instrument)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListEquity returns the equity series for an instrument within [start, end).
func (j *SQLite) ListEquity(instrument string, start, end time.Time) ([]EquityPoint, error) {
	rows, err := j.db.Query(`
		SELECT time, instrument, realized, total, exposure
		FROM equity
		WHERE instrument = ? AND time >= ? AND time < ?
		ORDER BY time ASC`, instrument, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityPoint
	for rows.Next() {
		var e EquityPoint
		if err := rows.Scan(&e.Time, &e.Instrument, &e.Realized, &e.Total, &e.Exposure); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetRun returns a run summary row by ID.
func (j *SQLite) GetRun(runID string) (Run, error) {
	var r Run
	row := j.db.QueryRow(`
		SELECT run_id, created, instrument, strategy, dataset, mode, start_date, end_date, capital,
		       realized_pl, total_pl, annual_return, sharpe, trades, wins, losses, win_rate, max_drawdown
		FROM runs
		WHERE run_id = ?`, runID)

	var dataset sql.NullString
	err := row.Scan(
		&r.RunID, &r.Created, &r.Instrument, &r.Strategy, &dataset, &r.Mode, &r.Start, &r.End, &r.Capital,
		&r.RealizedPL, &r.TotalPL, &r.AnnualReturn, &r.Sharpe, &r.Trades, &r.Wins, &r.Losses, &r.WinRate, &r.MaxDrawdown,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	r.Dataset = dataset.String
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (OrderRecord, error) {
	var rec OrderRecord
	var closeTime sql.NullTime

	err := row.Scan(
		&rec.OrderID,
		&rec.Instrument,
		&rec.Direction,
		&rec.Volume,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.AdjEntry,
		&rec.AdjExit,
		&rec.Cost,
		&rec.OpenTime,
		&closeTime,
		&rec.RealizedPL,
	)
	if err != nil {
		return OrderRecord{}, err
	}
	if closeTime.Valid {
		rec.CloseTime = closeTime.Time
	}
	return rec, nil
}
