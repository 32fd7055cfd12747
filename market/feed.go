package market

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// CSVBarFeed reads daily OHLCV rows:
//
//	date,open,high,low,close[,volume]
//
// where date is YYYY-MM-DD or RFC3339. A header row ("date,...") is allowed.
// Empty/short rows are skipped. Files ending in .gz or .xz are decompressed
// transparently.
type CSVBarFeed struct {
	f *os.File
	z io.Closer // decompressor, if any
	r *csv.Reader

	sawFirst bool
}

func NewCSVBarFeed(path string) (*CSVBarFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var in io.Reader = f
	feed := &CSVBarFeed{f: f}

	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		feed.z = zr
		in = zr
	case strings.HasSuffix(path, ".xz"):
		zr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz %s: %w", path, err)
		}
		in = zr
	}

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	feed.r = r

	return feed, nil
}

func (f *CSVBarFeed) Close() error {
	if f.z != nil {
		f.z.Close()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// Next returns the next bar, or ok=false at EOF.
func (f *CSVBarFeed) Next() (Candle, bool, error) {
	for {
		row, err := f.r.Read()
		if err == io.EOF {
			return Candle{}, false, nil
		}
		if err != nil {
			return Candle{}, false, err
		}
		if len(row) == 0 {
			continue
		}

		// Allow a single header row
		if !f.sawFirst {
			f.sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		c, ok, err := parseBarRow(row)
		if err != nil {
			return Candle{}, false, err
		}
		if !ok {
			continue
		}
		return c, true, nil
	}
}

func parseBarRow(row []string) (Candle, bool, error) {
	// Need at least: date,open,high,low,close
	if len(row) < 5 {
		return Candle{}, false, nil
	}

	ds := strings.TrimSpace(row[0])
	if ds == "" {
		return Candle{}, false, nil
	}
	date, err := time.Parse("2006-01-02", ds)
	if err != nil {
		d2, err2 := time.Parse(time.RFC3339, ds)
		if err2 != nil {
			return Candle{}, false, fmt.Errorf("bad date %q: %w", ds, err)
		}
		date = d2
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Candle{}, false, fmt.Errorf("bad value %q: %w", row[i+1], err)
		}
		vals[i] = v
	}

	c := Candle{
		Date:  date.UTC(),
		Open:  vals[0],
		High:  vals[1],
		Low:   vals[2],
		Close: vals[3],
	}

	if len(row) > 5 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64); err == nil {
			c.Volume = v
		}
	}

	return c, true, nil
}

// LoadCSV drains a CSV bar feed into a validated History.
func LoadCSV(path, instrument string) (*History, error) {
	feed, err := NewCSVBarFeed(path)
	if err != nil {
		return nil, err
	}
	defer feed.Close()

	var bars []Candle
	for {
		c, ok, err := feed.Next()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !ok {
			break
		}
		bars = append(bars, c)
	}

	return NewHistory(instrument, bars)
}
