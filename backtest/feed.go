package backtest

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/rustyeddy/backtester/market"
)

// barRow is the raw CSV shape. Dates and closes stay strings here:
// exported datasets mix day-first and ISO dates and write prices with
// thousands separators.
type barRow struct {
	Date  string `csv:"date"`
	Close string `csv:"close"`
}

var barDateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
}

// LoadBarsCSV reads a daily bar series from a CSV file with at least
// "date" and "close" columns. Extra columns (indicators, volume) are
// ignored. The parsed series is validated before it is returned, so a
// caller can hand the result straight to Runner.Run.
func LoadBarsCSV(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*barRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("backtest: parse %s: %w", path, err)
	}

	bars := make([]market.Bar, 0, len(rows))
	for i, row := range rows {
		date, err := parseBarDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("backtest: %s row %d: %w", path, i+1, err)
		}
		px, err := parseBarPrice(row.Close)
		if err != nil {
			return nil, fmt.Errorf("backtest: %s row %d: %w", path, i+1, err)
		}
		bars = append(bars, market.Bar{Date: date, Close: px})
	}

	if err := market.ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func parseBarDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range barDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

func parseBarPrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad close %q", s)
	}
	return v, nil
}
