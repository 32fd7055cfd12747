package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, n, 0, 0, 0, 0, time.UTC)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(ordersPath, equityPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID:    "01ABC",
		Instrument: "GM",
		Direction:  "LONG",
		Volume:     10,
		EntryPrice: 100,
		ExitPrice:  110,
		AdjEntry:   1010,
		AdjExit:    1089,
		Cost:       0.01,
		OpenTime:   day(1),
		CloseTime:  day(3),
		RealizedPL: 79,
	}))
	require.NoError(t, j.RecordEquity(EquityPoint{
		Time:       day(2),
		Instrument: "GM",
		Realized:   0,
		Total:      79,
		Exposure:   -1010,
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, ordersPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "order_id", rows[0][0])
	assert.Equal(t, []string{
		"01ABC", "GM", "LONG", "10", "100", "110", "1010", "1089", "0.01",
		"2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z", "79",
	}, rows[1])

	rows = readCSV(t, equityPath)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2024-01-02T00:00:00Z", "GM", "0", "79", "-1010"}, rows[1])
}

func TestCSVJournalOpenOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "orders.csv"), filepath.Join(dir, "equity.csv"))
	require.NoError(t, err)

	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID:    "01DEF",
		Instrument: "GM",
		Direction:  "LONG",
		Volume:     1,
		EntryPrice: 100,
		ExitPrice:  105,
		OpenTime:   day(1),
	}))
	require.NoError(t, j.Close())

	rows := readCSV(t, filepath.Join(dir, "orders.csv"))
	require.Len(t, rows, 2)
	assert.Empty(t, rows[1][10], "open orders have no close time")
}

func TestCSVJournalBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "missing", "orders.csv"), filepath.Join(dir, "equity.csv"))
	assert.Error(t, err)
}
