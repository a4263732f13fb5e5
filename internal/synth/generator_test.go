package synth

import (
	"testing"

	"stocklens/internal/domain"
)

func TestQuoteAlwaysValid(t *testing.T) {
	g := NewSeededGenerator(1)
	symbols := []string{"AAPL", "BTC-USD", "ZZZZ", "UNLISTED-XYZ", "X"}

	for _, sym := range symbols {
		q := g.Quote(sym)
		if err := q.Validate(); err != nil {
			t.Errorf("Quote(%q) invalid: %v", sym, err)
		}
		if !q.IsDemo {
			t.Errorf("Quote(%q).IsDemo = false, want true", sym)
		}
		if q.ChangePercent < -5 || q.ChangePercent > 5 {
			t.Errorf("Quote(%q).ChangePercent = %v, want within [-5, 5]", sym, q.ChangePercent)
		}
	}
}

func TestQuoteAnchoredToBasePrice(t *testing.T) {
	g := NewSeededGenerator(7)
	q := g.Quote("AAPL")
	base := BasePrice("AAPL")
	if q.Price < base*0.9 || q.Price > base*1.1 {
		t.Errorf("Quote(AAPL).Price = %v, want near anchor %v", q.Price, base)
	}
	if q.Name != "Apple Inc." {
		t.Errorf("Quote(AAPL).Name = %q", q.Name)
	}
}

func TestBasePriceDeterministicForUnknown(t *testing.T) {
	a := BasePrice("SOMEUNKNOWN")
	b := BasePrice("SOMEUNKNOWN")
	if a != b {
		t.Errorf("BasePrice not deterministic: %v != %v", a, b)
	}
	if a < 100 || a >= 600 {
		t.Errorf("BasePrice(unknown) = %v, want in [100, 600)", a)
	}
}

func TestHistoryShape(t *testing.T) {
	g := NewSeededGenerator(42)

	for _, p := range domain.Periods {
		series := g.History("TSLA", p)
		if len(series) != p.Points() {
			t.Errorf("History(%s) length = %d, want %d", p, len(series), p.Points())
		}
		if err := series.Validate(); err != nil {
			t.Errorf("History(%s) invalid: %v", p, err)
		}
		for i, pt := range series {
			if pt.Open <= 0 || pt.High <= 0 || pt.Low <= 0 {
				t.Fatalf("History(%s)[%d] has non-positive OHLC: %+v", p, i, pt)
			}
			if pt.High < pt.Price || pt.Low > pt.Price {
				t.Fatalf("History(%s)[%d] OHLC offsets inverted: %+v", p, i, pt)
			}
		}
	}
}

func TestHistoryBounded(t *testing.T) {
	g := NewSeededGenerator(99)
	series := g.History("NVDA", domain.Period5Y)
	base := BasePrice("NVDA")
	for i, pt := range series {
		// The walk drifts but must stay within a sane envelope of the anchor.
		if pt.Price <= 0 || pt.Price > base*100 {
			t.Fatalf("point %d escaped bounds: %v (base %v)", i, pt.Price, base)
		}
	}
}

func TestPredictions(t *testing.T) {
	g := NewSeededGenerator(3)
	points, stats := g.Predictions(178.42, 100)

	if len(points) != 100 {
		t.Fatalf("got %d points, want 100", len(points))
	}
	for i, p := range points {
		if p.Day != i+1 {
			t.Errorf("points[%d].Day = %d, want %d", i, p.Day, i+1)
		}
		if p.Actual <= 0 || p.Predicted <= 0 {
			t.Errorf("points[%d] non-positive: %+v", i, p)
		}
	}
	if stats.Accuracy < 0 || stats.Accuracy > 100 {
		t.Errorf("Accuracy = %v, want within [0, 100]", stats.Accuracy)
	}
	if stats.RMSE < stats.MAE {
		t.Errorf("RMSE %v < MAE %v; RMSE must dominate", stats.RMSE, stats.MAE)
	}
}

func TestMovingAverages(t *testing.T) {
	g := NewSeededGenerator(11)
	points := g.MovingAverages(250.0, 60)

	if len(points) != 60 {
		t.Fatalf("got %d points, want 60", len(points))
	}
	for i, p := range points {
		if p.MA50 <= 0 || p.MA200 <= 0 {
			t.Fatalf("points[%d] has undefined moving average: %+v", i, p)
		}
		if i > 0 && p.Date.Before(points[i-1].Date) {
			t.Fatalf("points[%d] date out of order", i)
		}
	}
}
