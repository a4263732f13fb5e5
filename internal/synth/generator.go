// Package synth generates plausible synthetic market data. It is the single
// fallback source used whenever the live backend is unreachable or returns
// malformed data, and also feeds the demo analysis and prediction views.
package synth

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"stocklens/internal/domain"
)

// Well-known symbols anchor demo data near their familiar price levels so
// the dashboard stays believable offline.
var basePrices = map[string]float64{
	"AAPL":    178.42,
	"GOOGL":   141.80,
	"MSFT":    378.91,
	"AMZN":    178.25,
	"TSLA":    248.50,
	"META":    505.75,
	"NVDA":    875.28,
	"BTC-USD": 67542.18,
	"ETH-USD": 3456.72,
	"SOL-USD": 172.34,
	"XRP-USD": 0.62,
	"ADA-USD": 0.58,
}

var companyNames = map[string]string{
	"AAPL":    "Apple Inc.",
	"GOOGL":   "Alphabet Inc.",
	"MSFT":    "Microsoft Corp.",
	"AMZN":    "Amazon.com Inc.",
	"TSLA":    "Tesla Inc.",
	"META":    "Meta Platforms",
	"NVDA":    "NVIDIA Corp.",
	"BTC-USD": "Bitcoin",
	"ETH-USD": "Ethereum",
	"SOL-USD": "Solana",
	"XRP-USD": "Ripple",
	"ADA-USD": "Cardano",
}

// Generator produces synthetic quotes, history series, and model demo data.
// Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a time-seeded Generator.
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator creates a Generator with a fixed seed for
// deterministic tests.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
}

// BasePrice returns the anchor price for a symbol: the well-known table
// value when present, otherwise a deterministic per-symbol value in
// [100, 600) so repeated fallbacks for the same ticker agree.
func BasePrice(symbol string) float64 {
	if p, ok := basePrices[symbol]; ok {
		return p
	}
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 100 + float64(h.Sum32()%50000)/100.0
}

// Name returns the display name for a symbol, falling back to the symbol
// itself for unknown tickers.
func Name(symbol string) string {
	if n, ok := companyNames[symbol]; ok {
		return n
	}
	return symbol
}

func (g *Generator) float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// Quote synthesizes a demo quote for the symbol: price jittered around the
// anchor, change percent uniform in [-5, +5], IsDemo set.
func (g *Generator) Quote(symbol string) domain.Quote {
	base := BasePrice(symbol)
	price := base * (1 + (g.float64()-0.5)*0.04)
	return domain.Quote{
		Symbol:           symbol,
		Name:             Name(symbol),
		Price:            round2(price),
		ChangePercent:    round2((g.float64() - 0.5) * 10),
		Volume:           int64(g.float64() * 10_000_000),
		FiftyTwoWeekHigh: round2(base * 1.25),
		FiftyTwoWeekLow:  round2(base * 0.75),
		IsDemo:           true,
	}
}

// History synthesizes a bounded random walk for the symbol: one point per
// step with a slight upward drift, floored at half the running price,
// dates ascending and ending today, OHLC derived from the walk by fixed
// offsets. Length is the conventional point count for the period.
func (g *Generator) History(symbol string, period domain.Period) domain.HistorySeries {
	points := period.Points()
	price := BasePrice(symbol)
	end := g.now()

	series := make(domain.HistorySeries, 0, points)
	for i := points - 1; i >= 0; i-- {
		open := price
		change := (g.float64() - 0.48) * price * 0.02
		price = math.Max(price+change, price*0.5)

		series = append(series, domain.HistoryPoint{
			Date:   end.AddDate(0, 0, -i),
			Price:  round2(price),
			Open:   round2(open),
			High:   round2(price * 1.02),
			Low:    round2(price * 0.98),
			Volume: int64(g.float64() * 10_000_000),
		})
	}
	return series
}

// PredictionPoint pairs an actual price with the model's value for one day.
type PredictionPoint struct {
	Day       int     `json:"day"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// ModelStats summarizes a demo model run.
type ModelStats struct {
	Accuracy float64 `json:"accuracy"`
	RMSE     float64 `json:"rmse"`
	MAE      float64 `json:"mae"`
}

// Predictions synthesizes a paired actual/predicted walk of n days starting
// from base. The predicted path tracks the actual one with partial mean
// reversion plus noise, and the returned stats are computed from the
// realized tracking error.
func (g *Generator) Predictions(base float64, n int) ([]PredictionPoint, ModelStats) {
	actual, predicted := base, base
	points := make([]PredictionPoint, 0, n)

	var sumSq, sumAbs float64
	for i := 0; i < n; i++ {
		actualChange := (g.float64() - 0.48) * actual * 0.015
		actual = math.Max(actual+actualChange, actual*0.8)

		predictedChange := (actual-predicted)*0.3 + (g.float64()-0.5)*predicted*0.01
		predicted = math.Max(predicted+predictedChange, predicted*0.8)

		diff := actual - predicted
		sumSq += diff * diff
		sumAbs += math.Abs(diff)

		points = append(points, PredictionPoint{Day: i + 1, Actual: round2(actual), Predicted: round2(predicted)})
	}

	stats := ModelStats{}
	if n > 0 && base > 0 {
		stats.RMSE = round2(math.Sqrt(sumSq / float64(n)))
		stats.MAE = round2(sumAbs / float64(n))
		stats.Accuracy = round2(math.Max(0, 100*(1-stats.MAE/base)))
	}
	return points, stats
}

// MAPoint is one row of the analysis view: price plus 50- and 200-day
// simple moving averages.
type MAPoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
	MA50  float64   `json:"ma50"`
	MA200 float64   `json:"ma200"`
}

// MovingAverages synthesizes a price walk of the requested day count with
// MA50/MA200 columns. A 200-point warm-up precedes the emitted window so
// the long average is defined from the first row.
func (g *Generator) MovingAverages(base float64, days int) []MAPoint {
	const warmup = 200
	price := base
	prices := make([]float64, 0, days+warmup)
	for i := 0; i < days+warmup; i++ {
		change := (g.float64() - 0.48) * price * 0.02
		price = math.Max(price+change, price*0.5)
		prices = append(prices, price)
	}

	end := g.now()
	out := make([]MAPoint, 0, days)
	for i := warmup; i < len(prices); i++ {
		out = append(out, MAPoint{
			Date:  end.AddDate(0, 0, i-len(prices)+1),
			Price: round2(prices[i]),
			MA50:  round2(mean(prices[i-50 : i])),
			MA200: round2(mean(prices[i-200 : i])),
		})
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
