package domain

import (
	"math"
	"testing"
)

func TestHolding(t *testing.T) {
	h := Holding{Symbol: "AAPL", Shares: 10, AvgPrice: 150}
	if got := h.MarketValue(178.42); math.Abs(got-1784.2) > 1e-9 {
		t.Errorf("MarketValue = %v, want 1784.2", got)
	}
	if got := h.GainPercent(180); got < 19.9 || got > 20.1 {
		t.Errorf("GainPercent = %v, want about 20", got)
	}

	zero := Holding{Symbol: "X", Shares: 1}
	if got := zero.GainPercent(100); got != 0 {
		t.Errorf("GainPercent with zero cost basis = %v, want 0", got)
	}
}

func TestAlertValidate(t *testing.T) {
	tests := []struct {
		name  string
		alert Alert
		ok    bool
	}{
		{"valid above", Alert{Symbol: "TSLA", Condition: AlertAbove, Threshold: 300}, true},
		{"valid below", Alert{Symbol: "TSLA", Condition: AlertBelow, Threshold: 200}, true},
		{"empty symbol", Alert{Condition: AlertAbove, Threshold: 300}, false},
		{"bad condition", Alert{Symbol: "TSLA", Condition: "sideways", Threshold: 300}, false},
		{"zero threshold", Alert{Symbol: "TSLA", Condition: AlertAbove}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alert.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestAlertShouldFire(t *testing.T) {
	above := Alert{Symbol: "TSLA", Condition: AlertAbove, Threshold: 300}
	if above.ShouldFire(299.99) {
		t.Error("above alert fired under threshold")
	}
	if !above.ShouldFire(300) {
		t.Error("above alert did not fire at threshold")
	}

	below := Alert{Symbol: "TSLA", Condition: AlertBelow, Threshold: 200}
	if !below.ShouldFire(199) {
		t.Error("below alert did not fire under threshold")
	}
	if below.ShouldFire(201) {
		t.Error("below alert fired over threshold")
	}
}
