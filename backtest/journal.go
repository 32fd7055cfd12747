package backtest

import (
	"fmt"

	"github.com/eric-ycw/algofin/journal"
)

// WriteJournal dumps a completed run's order audit and equity series into a
// journal.
func (b *Backtest) WriteJournal(j journal.Journal) error {
	if !b.done {
		return ErrNotRun
	}

	for _, o := range b.Book.Orders {
		rec := journal.OrderRecord{
			OrderID:    o.ID,
			Instrument: o.Instrument,
			Direction:  o.Direction.String(),
			Volume:     o.Volume,
			EntryPrice: o.Entry,
			ExitPrice:  o.Exit,
			AdjEntry:   o.AdjEntry,
			AdjExit:    o.AdjExit,
			Cost:       o.Cost,
			OpenTime:   o.OpenDate,
			CloseTime:  o.CloseDate,
			RealizedPL: o.PL,
		}
		if err := j.RecordOrder(rec); err != nil {
			return fmt.Errorf("record order %s: %w", o.ID, err)
		}
	}

	for i, p := range b.Book.PLHist {
		e := journal.EquityPoint{
			Time:       p.Date,
			Instrument: b.Hist.Instrument,
			Realized:   p.Realized,
			Total:      p.Total,
			Exposure:   b.Book.CapitalHist[i].Exposure,
		}
		if err := j.RecordEquity(e); err != nil {
			return fmt.Errorf("record equity at %s: %w", p.Date.Format("2006-01-02"), err)
		}
	}

	return nil
}

// WriteJournal dumps every sub-backtest of a completed portfolio run.
func (p *Portfolio) WriteJournal(j journal.Journal) error {
	if !p.done {
		return ErrNotRun
	}

	for _, bt := range p.Runs {
		if err := bt.WriteJournal(j); err != nil {
			return err
		}
	}
	return nil
}
