package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func bars(closes ...float64) []Candle {
	out := make([]Candle, len(closes))
	for i, c := range closes {
		out[i] = Candle{Date: day(i + 1), Open: c - 1, High: c + 1, Low: c - 2, Close: c, Volume: 1000}
	}
	return out
}

func TestNewHistory(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		h, err := NewHistory("GM", bars(100, 110, 120))
		require.NoError(t, err)
		assert.Equal(t, "GM", h.Instrument)
		assert.Equal(t, 3, h.Len())
		assert.Equal(t, day(1), h.Start())
		assert.Equal(t, day(3), h.End())
	})

	t.Run("missing instrument", func(t *testing.T) {
		t.Parallel()
		_, err := NewHistory("", bars(100))
		assert.Error(t, err)
	})

	t.Run("no bars", func(t *testing.T) {
		t.Parallel()
		_, err := NewHistory("GM", nil)
		assert.Error(t, err)
	})

	t.Run("zero date", func(t *testing.T) {
		t.Parallel()
		_, err := NewHistory("GM", []Candle{{Close: 100}})
		assert.Error(t, err)
	})

	t.Run("duplicate date", func(t *testing.T) {
		t.Parallel()
		_, err := NewHistory("GM", []Candle{
			{Date: day(1), Close: 100},
			{Date: day(1), Close: 110},
		})
		assert.Error(t, err)
	})

	t.Run("out of order", func(t *testing.T) {
		t.Parallel()
		_, err := NewHistory("GM", []Candle{
			{Date: day(2), Close: 100},
			{Date: day(1), Close: 110},
		})
		assert.Error(t, err)
	})
}

func TestHistoryAt(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("GM", bars(100, 110, 120))
	require.NoError(t, err)

	c, ok := h.At(day(2))
	require.True(t, ok)
	assert.Equal(t, 110.0, c.Close)

	_, ok = h.At(day(9))
	assert.False(t, ok)
}

func TestHistorySeries(t *testing.T) {
	t.Parallel()

	h, err := NewHistory("GM", bars(100, 110, 120))
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 110, 120}, h.Closes())
	assert.Equal(t, []float64{101, 111, 121}, h.Highs())
	assert.Equal(t, []float64{98, 108, 118}, h.Lows())
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, h.Dates())
}
