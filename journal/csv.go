package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes orders and equity points to two CSV files, flushing after every
// record so partial runs still leave usable output.
type CSV struct {
	orders *csv.Writer
	equity *csv.Writer
	of, ef *os.File
}

func NewCSV(ordersPath, equityPath string) (*CSV, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	ew := csv.NewWriter(ef)

	if err := ow.Write([]string{"order_id", "instrument", "direction", "volume", "entry_price", "exit_price", "adj_entry", "adj_exit", "cost", "open_time", "close_time", "realized_pl"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "instrument", "realized", "total", "exposure"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{orders: ow, equity: ew, of: of, ef: ef}, nil
}

func (j *CSV) RecordOrder(r OrderRecord) error {
	closeTime := ""
	if !r.CloseTime.IsZero() {
		closeTime = r.CloseTime.Format(time.RFC3339)
	}

	err := j.orders.Write([]string{
		r.OrderID,
		r.Instrument,
		r.Direction,
		f(r.Volume),
		f(r.EntryPrice),
		f(r.ExitPrice),
		f(r.AdjEntry),
		f(r.AdjExit),
		f(r.Cost),
		r.OpenTime.Format(time.RFC3339),
		closeTime,
		f(r.RealizedPL),
	})
	if err != nil {
		return err
	}

	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSV) RecordEquity(e EquityPoint) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		e.Instrument,
		f(e.Realized),
		f(e.Total),
		f(e.Exposure),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.orders.Flush()
	j.equity.Flush()

	err := j.of.Close()
	if err2 := j.ef.Close(); err == nil {
		err = err2
	}
	return err
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
