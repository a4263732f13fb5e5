// Package domain defines the core data types shared across the StockLens
// platform: quotes, historical price points, and time periods.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Quote is a single point-in-time price and metadata record for a ticker
// symbol. IsDemo marks a value produced by the fallback generator rather
// than a live data source; it is set only by the market-data layer and
// never inferred from other fields.
type Quote struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	ChangePercent    float64 `json:"changePercent"`
	Volume           int64   `json:"volume,omitempty"`
	MarketCap        float64 `json:"marketCap,omitempty"`
	FiftyTwoWeekHigh float64 `json:"fiftyTwoWeekHigh,omitempty"`
	FiftyTwoWeekLow  float64 `json:"fiftyTwoWeekLow,omitempty"`
	IsDemo           bool    `json:"isDemo"`
}

// Validate reports whether the quote satisfies the schema invariants:
// a non-empty upper-case symbol and a strictly positive price.
func (q *Quote) Validate() error {
	if q.Symbol == "" {
		return fmt.Errorf("quote: empty symbol")
	}
	if q.Symbol != strings.ToUpper(q.Symbol) {
		return fmt.Errorf("quote %s: symbol not upper-case", q.Symbol)
	}
	if q.Price <= 0 {
		return fmt.Errorf("quote %s: price %v not positive", q.Symbol, q.Price)
	}
	return nil
}

// HistoryPoint is one bar of a historical price series. Date carries day
// resolution; Open/High/Low are always populated so OHLC consumers never
// see missing fields.
type HistoryPoint struct {
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Volume int64     `json:"volume"`
}

// HistorySeries is an ordered sequence of HistoryPoints, ascending by date.
// An empty series is a valid "no data" state distinct from loading.
type HistorySeries []HistoryPoint

// Validate checks date ordering and positive prices across the series.
func (s HistorySeries) Validate() error {
	for i := range s {
		if s[i].Price <= 0 {
			return fmt.Errorf("history[%d]: price %v not positive", i, s[i].Price)
		}
		if i > 0 && s[i].Date.Before(s[i-1].Date) {
			return fmt.Errorf("history[%d]: date %s before predecessor %s",
				i, s[i].Date.Format("2006-01-02"), s[i-1].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Period is a requested history span.
type Period string

// Supported history periods.
const (
	Period1D  Period = "1d"
	Period5D  Period = "5d"
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period1Y  Period = "1y"
	Period5Y  Period = "5y"
)

// Periods lists all supported periods in ascending span order.
var Periods = []Period{Period1D, Period5D, Period1Mo, Period3Mo, Period1Y, Period5Y}

// ParsePeriod validates a period string. The empty string defaults to 1mo.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return Period1Mo, nil
	}
	for _, p := range Periods {
		if Period(s) == p {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Points returns the conventional point count a fallback series must have
// for this period: calendar days for short spans, trading days for 1y/5y.
func (p Period) Points() int {
	switch p {
	case Period1D:
		return 1
	case Period5D:
		return 5
	case Period1Mo:
		return 30
	case Period3Mo:
		return 90
	case Period1Y:
		return 252
	case Period5Y:
		return 1260
	default:
		return 30
	}
}

// NormalizeSymbol canonicalizes a user-entered ticker: trimmed and
// upper-cased. Returns the empty string for blank input, which callers
// treat as a no-op rather than an error.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
