package domain

import "fmt"

// Holding is one portfolio position. AssetClass and Sector are free-form
// display labels ("stock", "crypto", "Technology"); both may be empty.
type Holding struct {
	Symbol     string  `json:"symbol"`
	Shares     float64 `json:"shares"`
	AvgPrice   float64 `json:"avgPrice"`
	AssetClass string  `json:"assetClass,omitempty"`
	Sector     string  `json:"sector,omitempty"`
}

// MarketValue returns the holding's value at the given price.
func (h Holding) MarketValue(price float64) float64 {
	return h.Shares * price
}

// GainPercent returns the unrealized gain at the given price, as a
// percentage of cost basis. Zero cost basis yields zero.
func (h Holding) GainPercent(price float64) float64 {
	if h.AvgPrice == 0 {
		return 0
	}
	return (price - h.AvgPrice) / h.AvgPrice * 100
}

// AlertCondition says which side of the threshold fires an alert.
type AlertCondition string

const (
	AlertAbove AlertCondition = "above"
	AlertBelow AlertCondition = "below"
)

// Alert is a price-threshold alert on a symbol.
type Alert struct {
	ID        int64          `json:"id"`
	Symbol    string         `json:"symbol"`
	Condition AlertCondition `json:"condition"`
	Threshold float64        `json:"threshold"`
	Triggered bool           `json:"triggered"`
}

// Validate checks the alert's symbol, condition, and threshold.
func (a *Alert) Validate() error {
	if NormalizeSymbol(a.Symbol) == "" {
		return fmt.Errorf("alert: empty symbol")
	}
	if a.Condition != AlertAbove && a.Condition != AlertBelow {
		return fmt.Errorf("alert %s: unknown condition %q", a.Symbol, a.Condition)
	}
	if a.Threshold <= 0 {
		return fmt.Errorf("alert %s: threshold %v not positive", a.Symbol, a.Threshold)
	}
	return nil
}

// ShouldFire reports whether the alert condition holds at the given price.
func (a *Alert) ShouldFire(price float64) bool {
	switch a.Condition {
	case AlertAbove:
		return price >= a.Threshold
	case AlertBelow:
		return price <= a.Threshold
	default:
		return false
	}
}
