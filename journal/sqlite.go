package journal

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists journal records to a SQLite database. The schema is
// created on open.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(r OrderRecord) error {
	var closeTime any
	if !r.CloseTime.IsZero() {
		closeTime = r.CloseTime
	}

	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, instrument, direction, volume, entry_price, exit_price, adj_entry, adj_exit, cost, open_time, close_time, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OrderID, r.Instrument, r.Direction, r.Volume, r.EntryPrice,
		r.ExitPrice, r.AdjEntry, r.AdjExit, r.Cost, r.OpenTime, closeTime, r.RealizedPL,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, instrument, realized, total, exposure)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Instrument, e.Realized, e.Total, e.Exposure,
	)
	return err
}

// RecordRun stores a run summary row.
func (j *SQLite) RecordRun(r Run) error {
	created := r.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, instrument, strategy, dataset, mode, start_date, end_date, capital,
		 realized_pl, total_pl, annual_return, sharpe, trades, wins, losses, win_rate, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, created, r.Instrument, r.Strategy, r.Dataset, r.Mode, r.Start, r.End, r.Capital,
		r.RealizedPL, r.TotalPL, r.AnnualReturn, r.Sharpe, r.Trades, r.Wins, r.Losses, r.WinRate, r.MaxDrawdown,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
