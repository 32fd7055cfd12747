package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eric-ycw/algofin/market"
	"github.com/eric-ycw/algofin/orders"
	"github.com/eric-ycw/algofin/strategies"
)

// scripted is a stub strategy that places pre-planned orders, recording the
// capital it was offered at each bar.
type scripted struct {
	name       string
	pick       func(instrument string, date time.Time, capital float64) (*orders.Order, error)
	prepErr    error
	instrument string
	capitals   []float64
}

func (s *scripted) Name() string { return s.name }

func (s *scripted) Prepare(h *market.History) error {
	s.instrument = h.Instrument
	return s.prepErr
}

func (s *scripted) Order(date time.Time, capital float64) (*orders.Order, error) {
	s.capitals = append(s.capitals, capital)
	if s.pick == nil {
		return nil, nil
	}
	return s.pick(s.instrument, date, capital)
}

func (s *scripted) Clone() strategies.Strategy {
	return &scripted{name: s.name, pick: s.pick, prepErr: s.prepErr}
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func hist(t *testing.T, instrument string, closes ...float64) *market.History {
	t.Helper()
	bars := make([]market.Candle, len(closes))
	for i, c := range closes {
		bars[i] = market.Candle{Date: day(i + 1), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	h, err := market.NewHistory(instrument, bars)
	require.NoError(t, err)
	return h
}

// buyOnce returns a pick that goes long on the given date and holds.
func buyOnce(t *testing.T, on time.Time, entry, volume float64) func(string, time.Time, float64) (*orders.Order, error) {
	t.Helper()
	return func(instrument string, date time.Time, capital float64) (*orders.Order, error) {
		if !date.Equal(on) {
			return nil, nil
		}
		return orders.New(instrument, orders.Long, entry, volume, date, orders.Config{})
	}
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	h := hist(t, "GM", 100)

	_, err := New(nil, h, 10000, MarkToMarket)
	assert.Error(t, err)

	_, err = New(&scripted{name: "stub"}, nil, 10000, MarkToMarket)
	assert.Error(t, err)

	_, err = New(&scripted{name: "stub"}, h, 0, MarkToMarket)
	assert.Error(t, err)
}

func TestRunMarkToMarket(t *testing.T) {
	t.Parallel()

	strat := &scripted{name: "stub", pick: buyOnce(t, day(1), 100, 1)}
	bt, err := New(strat, hist(t, "GM", 100, 110, 120), 10000, MarkToMarket)
	require.NoError(t, err)
	require.NoError(t, bt.Run())

	// The order is admitted after the day-1 tick, so the first profit point
	// predates it; subsequent bars carry its unrealized P&L.
	require.Equal(t, []time.Time{day(1), day(2), day(3)}, bt.Dates)
	assert.InDelta(t, 0, bt.Profit[0], 1e-9)
	assert.InDelta(t, 10, bt.Profit[1], 1e-9)
	assert.InDelta(t, 20, bt.Profit[2], 1e-9)

	assert.Equal(t, 1, bt.Book.OpenCount(), "mark-to-market leaves positions open")

	s, err := bt.Summary()
	require.NoError(t, err)
	assert.Equal(t, "GM", s.Instrument)
	assert.Equal(t, "stub", s.Strategy)
	assert.Zero(t, s.RealizedPL)
	assert.InDelta(t, 20, s.TotalPL, 1e-9)
	assert.Equal(t, 1, s.Trades)
	assert.Zero(t, s.Wins)
	assert.Zero(t, s.WinRate, "no closed trades, rate undefined")
}

func TestRunCloseOnFinish(t *testing.T) {
	t.Parallel()

	strat := &scripted{name: "stub", pick: buyOnce(t, day(1), 100, 1)}
	bt, err := New(strat, hist(t, "GM", 100, 110, 120), 10000, CloseOnFinish)
	require.NoError(t, err)
	require.NoError(t, bt.Run())

	assert.Zero(t, bt.Book.OpenCount())
	assert.InDelta(t, 20, bt.Profit[len(bt.Profit)-1], 1e-9)

	s, err := bt.Summary()
	require.NoError(t, err)
	assert.InDelta(t, 20, s.RealizedPL, 1e-9)
	assert.InDelta(t, 20, s.TotalPL, 1e-9)
	assert.Equal(t, 1, s.Wins)
	assert.InDelta(t, 1, s.WinRate, 1e-9)
	assert.Equal(t, day(3), bt.Book.Orders[0].CloseDate)
}

func TestRunCapitalOffered(t *testing.T) {
	t.Parallel()

	strat := &scripted{name: "stub", pick: buyOnce(t, day(1), 100, 1)}
	bt, err := New(strat, hist(t, "GM", 100, 110, 120), 10000, MarkToMarket)
	require.NoError(t, err)
	require.NoError(t, bt.Run())

	// Bar 1 offers the full stake; once the long is on, its adjusted entry is
	// committed and unavailable. Unrealized P&L does not free capital.
	require.Len(t, strat.capitals, 3)
	assert.InDelta(t, 10000, strat.capitals[0], 1e-9)
	assert.InDelta(t, 9900, strat.capitals[1], 1e-9)
	assert.InDelta(t, 9900, strat.capitals[2], 1e-9)
}

func TestRunAdmissionControl(t *testing.T) {
	t.Parallel()

	strat := &scripted{name: "stub", pick: buyOnce(t, day(1), 100, 1)}
	bt, err := New(strat, hist(t, "GM", 100, 110, 120), 50, MarkToMarket)
	require.NoError(t, err)
	require.NoError(t, bt.Run())

	// Adjusted entry 100 exceeds the 50 stake; the order is dropped silently.
	assert.Empty(t, bt.Book.Orders)

	s, err := bt.Summary()
	require.NoError(t, err)
	assert.Zero(t, s.Trades)
	assert.Zero(t, s.TotalPL)
}

func TestRunExactlyOnce(t *testing.T) {
	t.Parallel()

	bt, err := New(&scripted{name: "stub"}, hist(t, "GM", 100, 110), 10000, MarkToMarket)
	require.NoError(t, err)

	require.NoError(t, bt.Run())
	assert.ErrorIs(t, bt.Run(), ErrAlreadyRun)
}

func TestSummaryBeforeRun(t *testing.T) {
	t.Parallel()

	bt, err := New(&scripted{name: "stub"}, hist(t, "GM", 100), 10000, MarkToMarket)
	require.NoError(t, err)

	_, err = bt.Summary()
	assert.ErrorIs(t, err, ErrNotRun)
}

func TestRunPropagatesStrategyErrors(t *testing.T) {
	t.Parallel()

	t.Run("prepare", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("bad params")
		bt, err := New(&scripted{name: "stub", prepErr: boom}, hist(t, "GM", 100), 10000, MarkToMarket)
		require.NoError(t, err)
		assert.ErrorIs(t, bt.Run(), boom)
	})

	t.Run("order", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("no signal table")
		strat := &scripted{name: "stub", pick: func(string, time.Time, float64) (*orders.Order, error) {
			return nil, boom
		}}
		bt, err := New(strat, hist(t, "GM", 100), 10000, MarkToMarket)
		require.NoError(t, err)
		assert.ErrorIs(t, bt.Run(), boom)
	})
}

func TestRunDrawdown(t *testing.T) {
	t.Parallel()

	strat := &scripted{name: "stub", pick: buyOnce(t, day(1), 100, 1)}
	bt, err := New(strat, hist(t, "GM", 100, 110, 120, 105), 10000, MarkToMarket)
	require.NoError(t, err)
	require.NoError(t, bt.Run())

	require.Len(t, bt.Drawdown, 4)
	assert.Zero(t, bt.Drawdown[0])
	assert.Zero(t, bt.Drawdown[1], "at a new peak, drawdown is zero")
	assert.Zero(t, bt.Drawdown[2])
	assert.InDelta(t, (5.0-20.0)/(20.0+10000.0), bt.Drawdown[3], 1e-12)

	s, err := bt.Summary()
	require.NoError(t, err)
	assert.InDelta(t, (5.0-20.0)/(20.0+10000.0), s.MaxDrawdown, 1e-12)
}

func TestParseCompletionMode(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in   string
		want CompletionMode
	}{
		{"", MarkToMarket},
		{"mark-to-market", MarkToMarket},
		{"MTM", MarkToMarket},
		{"close-on-finish", CloseOnFinish},
		{"close", CloseOnFinish},
	} {
		m, err := ParseCompletionMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, m, tt.in)
	}

	_, err := ParseCompletionMode("liquidate")
	assert.Error(t, err)
}
