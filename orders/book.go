package orders

import "time"

// PLPoint is one entry of the ledger's profit history.
type PLPoint struct {
	Date     time.Time
	Realized float64
	Total    float64
}

// CapitalPoint is one entry of the ledger's net capital-exposure history.
type CapitalPoint struct {
	Date     time.Time
	Exposure float64
}

// Book is the ledger for one instrument. It retains every order ever added,
// open or closed, and records a time-ordered history of aggregate P&L and
// capital exposure. Orders are never removed; audit counts (trades, wins,
// losses) derive from the retained set.
type Book struct {
	Orders []*Order

	PL           float64 // realized, sum of closed orders
	UnrealizedPL float64 // sum of open orders

	PLHist      []PLPoint
	CapitalHist []CapitalPoint
}

func NewBook() *Book {
	return &Book{}
}

// Add appends an order to the ledger. Capital admission is the caller's
// responsibility; Add never rejects.
func (b *Book) Add(o *Order) {
	b.Orders = append(b.Orders, o)
}

// Tick advances every open order to price, then refreshes the aggregates and
// appends to both histories. Profit is recomputed before capital: exposure
// depends on the frozen P&L of orders that may have auto-closed this tick.
func (b *Book) Tick(price float64, date time.Time) {
	for _, o := range b.Orders {
		o.Tick(price, date)
	}

	b.refresh()
	b.PLHist = append(b.PLHist, PLPoint{Date: date, Realized: b.PL, Total: b.PL + b.UnrealizedPL})
	b.CapitalHist = append(b.CapitalHist, CapitalPoint{Date: date, Exposure: b.Exposure()})
}

// CloseAll closes every open order at its current valuation.
func (b *Book) CloseAll(date time.Time) {
	b.closeWhere(date, func(*Order) bool { return true })
}

// CloseLongs closes every open long order.
func (b *Book) CloseLongs(date time.Time) {
	b.closeWhere(date, func(o *Order) bool { return o.Direction == Long })
}

// CloseShorts closes every open short order.
func (b *Book) CloseShorts(date time.Time) {
	b.closeWhere(date, func(o *Order) bool { return o.Direction == Short })
}

func (b *Book) closeWhere(date time.Time, match func(*Order) bool) {
	for _, o := range b.Orders {
		if o.Open && match(o) {
			o.Close(date)
		}
	}
	b.refresh()
	b.touch(date)
}

// Exposure is the net capital currently committed plus banked profit:
// adjusted entries of open longs count against it, open shorts and realized
// P&L of closed orders count toward it.
func (b *Book) Exposure() float64 {
	x := 0.0
	for _, o := range b.Orders {
		switch {
		case o.Open && o.Direction == Long:
			x -= o.AdjEntry
		case o.Open && o.Direction == Short:
			x += o.AdjEntry
		default:
			x += o.PL
		}
	}
	return x
}

// LastPL returns the most recent profit history point.
func (b *Book) LastPL() (PLPoint, bool) {
	if len(b.PLHist) == 0 {
		return PLPoint{}, false
	}
	return b.PLHist[len(b.PLHist)-1], true
}

// OpenCount returns the number of open orders.
func (b *Book) OpenCount() int {
	n := 0
	for _, o := range b.Orders {
		if o.Open {
			n++
		}
	}
	return n
}

// Wins and Losses count closed orders by sign of realized P&L. Breakeven
// orders count as losses.
func (b *Book) Wins() int {
	n := 0
	for _, o := range b.Orders {
		if !o.Open && o.PL > 0 {
			n++
		}
	}
	return n
}

func (b *Book) Losses() int {
	n := 0
	for _, o := range b.Orders {
		if !o.Open && o.PL <= 0 {
			n++
		}
	}
	return n
}

// Closed returns the number of closed orders.
func (b *Book) Closed() int {
	n := 0
	for _, o := range b.Orders {
		if !o.Open {
			n++
		}
	}
	return n
}

// refresh recomputes the running aggregates from order state.
func (b *Book) refresh() {
	realized, unrealized := 0.0, 0.0
	for _, o := range b.Orders {
		if o.Open {
			unrealized += o.UnrealizedPL
		} else {
			realized += o.PL
		}
	}
	b.PL = realized
	b.UnrealizedPL = unrealized
}

// touch records refreshed aggregates after a bulk close. When the last
// history point carries the same date the point is updated in place, keeping
// the series aligned with the bar index; otherwise a new point is appended.
func (b *Book) touch(date time.Time) {
	pl := PLPoint{Date: date, Realized: b.PL, Total: b.PL + b.UnrealizedPL}
	cp := CapitalPoint{Date: date, Exposure: b.Exposure()}

	if n := len(b.PLHist); n > 0 && b.PLHist[n-1].Date.Equal(date) {
		b.PLHist[n-1] = pl
	} else {
		b.PLHist = append(b.PLHist, pl)
	}
	if n := len(b.CapitalHist); n > 0 && b.CapitalHist[n-1].Date.Equal(date) {
		b.CapitalHist[n-1] = cp
	} else {
		b.CapitalHist = append(b.CapitalHist, cp)
	}
}
