package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustOrder(t *testing.T, dir Direction, entry, volume float64, cfg Config) *Order {
	t.Helper()
	o, err := New("GM", dir, entry, volume, date(1), cfg)
	require.NoError(t, err)
	return o
}

func TestBookExposure(t *testing.T) {
	t.Parallel()

	b := NewBook()
	b.Add(mustOrder(t, Long, 100, 10, Config{Cost: 0.01}))

	// One open long commits its adjusted entry value.
	assert.InDelta(t, -1010, b.Exposure(), 1e-9)
}

func TestBookExposureMixed(t *testing.T) {
	t.Parallel()

	b := NewBook()
	long := mustOrder(t, Long, 100, 10, Config{})
	short := mustOrder(t, Short, 200, 5, Config{})
	closed := mustOrder(t, Long, 50, 2, Config{})

	b.Add(long)
	b.Add(short)
	b.Add(closed)

	closed.Tick(60, date(2))
	closed.Close(date(2))

	// -1000 (open long) + 1000 (open short) + 20 (realized on the closed one).
	assert.InDelta(t, 20, b.Exposure(), 1e-9)
}

func TestBookTickAggregates(t *testing.T) {
	t.Parallel()

	b := NewBook()
	b.Add(mustOrder(t, Long, 100, 10, Config{Cost: 0.01}))
	b.Add(mustOrder(t, Long, 100, 5, Config{Cost: 0.01}))

	b.Tick(110, date(2))

	assert.Zero(t, b.PL)
	assert.InDelta(t, 79+39.5, b.UnrealizedPL, 1e-9)

	require.Len(t, b.PLHist, 1)
	assert.Equal(t, date(2), b.PLHist[0].Date)
	assert.Zero(t, b.PLHist[0].Realized)
	assert.InDelta(t, 118.5, b.PLHist[0].Total, 1e-9)

	require.Len(t, b.CapitalHist, 1)
	assert.InDelta(t, -1010-505, b.CapitalHist[0].Exposure, 1e-9)
}

func TestBookTickMovesAutoClosedToRealized(t *testing.T) {
	t.Parallel()

	b := NewBook()
	b.Add(mustOrder(t, Long, 100, 1, Config{TakeProfit: 1.15}))
	b.Add(mustOrder(t, Long, 100, 1, Config{}))

	b.Tick(120, date(2))

	// The take-profit order closed on this tick, so the same tick's history
	// point already carries its frozen P&L as realized.
	assert.InDelta(t, 20, b.PL, 1e-9)
	assert.InDelta(t, 20, b.UnrealizedPL, 1e-9)

	last, ok := b.LastPL()
	require.True(t, ok)
	assert.InDelta(t, 20, last.Realized, 1e-9)
	assert.InDelta(t, 40, last.Total, 1e-9)

	// Exposure releases the closed order's entry and banks its profit.
	assert.InDelta(t, -100+20, b.Exposure(), 1e-9)
}

func TestBookBulkClose(t *testing.T) {
	t.Parallel()

	newBook := func(t *testing.T) *Book {
		t.Helper()
		b := NewBook()
		b.Add(mustOrder(t, Long, 100, 1, Config{}))
		b.Add(mustOrder(t, Short, 100, 1, Config{}))
		b.Tick(110, date(2))
		return b
	}

	t.Run("close all", func(t *testing.T) {
		t.Parallel()
		b := newBook(t)
		b.CloseAll(date(3))
		assert.Zero(t, b.OpenCount())
		assert.Zero(t, b.UnrealizedPL)
		assert.InDelta(t, 0, b.PL, 1e-9, "long +10 and short -10 net out")
	})

	t.Run("close longs only", func(t *testing.T) {
		t.Parallel()
		b := newBook(t)
		b.CloseLongs(date(3))
		assert.Equal(t, 1, b.OpenCount())
		assert.InDelta(t, 10, b.PL, 1e-9)
		assert.InDelta(t, -10, b.UnrealizedPL, 1e-9)
	})

	t.Run("close shorts only", func(t *testing.T) {
		t.Parallel()
		b := newBook(t)
		b.CloseShorts(date(3))
		assert.Equal(t, 1, b.OpenCount())
		assert.InDelta(t, -10, b.PL, 1e-9)
		assert.InDelta(t, 10, b.UnrealizedPL, 1e-9)
	})
}

func TestBookBulkCloseHistory(t *testing.T) {
	t.Parallel()

	b := NewBook()
	b.Add(mustOrder(t, Long, 100, 1, Config{}))
	b.Tick(110, date(2))
	require.Len(t, b.PLHist, 1)

	t.Run("same date updates in place", func(t *testing.T) {
		b.CloseAll(date(2))
		require.Len(t, b.PLHist, 1, "series stays aligned with the bar index")
		assert.InDelta(t, 10, b.PLHist[0].Realized, 1e-9)
		assert.InDelta(t, 10, b.PLHist[0].Total, 1e-9)
		require.Len(t, b.CapitalHist, 1)
		assert.InDelta(t, 10, b.CapitalHist[0].Exposure, 1e-9)
	})

	t.Run("new date appends", func(t *testing.T) {
		b2 := NewBook()
		b2.Add(mustOrder(t, Long, 100, 1, Config{}))
		b2.Tick(110, date(2))
		b2.CloseAll(date(3))
		require.Len(t, b2.PLHist, 2)
		assert.Equal(t, date(3), b2.PLHist[1].Date)
		assert.InDelta(t, 10, b2.PLHist[1].Realized, 1e-9)
	})
}

func TestBookCounts(t *testing.T) {
	t.Parallel()

	b := NewBook()
	win := mustOrder(t, Long, 100, 1, Config{})
	loss := mustOrder(t, Long, 100, 1, Config{})
	flat := mustOrder(t, Long, 100, 1, Config{})
	open := mustOrder(t, Long, 100, 1, Config{})
	b.Add(win)
	b.Add(loss)
	b.Add(flat)
	b.Add(open)

	win.Tick(110, date(2))
	win.Close(date(2))
	loss.Tick(90, date(2))
	loss.Close(date(2))
	flat.Close(date(2))

	assert.Equal(t, 1, b.Wins())
	assert.Equal(t, 2, b.Losses(), "breakeven counts as a loss")
	assert.Equal(t, 3, b.Closed())
	assert.Equal(t, 1, b.OpenCount())
}
