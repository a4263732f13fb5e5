package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"stocklens/internal/domain"
	"stocklens/internal/util"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public chart API.
// No credentials are needed, but Yahoo rejects requests without a browser
// User-Agent and throttles hard, so calls go through a rate limiter.
type YahooFetcher struct {
	baseURL string
	client  *http.Client
	limiter *util.RateLimiter
}

var _ Fetcher = (*YahooFetcher)(nil)

// NewYahooFetcher creates a fetcher against the given base URL (empty
// selects the public endpoint) limited to ratePerMin calls per minute.
func NewYahooFetcher(baseURL string, ratePerMin int) *YahooFetcher {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: util.NewRateLimiter(ratePerMin),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the subset of the chart API response we consume.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
				RegularMarketVol   int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

var periodRanges = map[domain.Period]string{
	domain.Period1D:  "1d",
	domain.Period5D:  "5d",
	domain.Period1Mo: "1mo",
	domain.Period3Mo: "3mo",
	domain.Period1Y:  "1y",
	domain.Period5Y:  "5y",
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, rng string) (*yahooChart, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.baseURL, url.PathEscape(symbol), rng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}
	return &chart, nil
}

// Quote builds a Quote from the chart metadata of a 1-day request.
func (f *YahooFetcher) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	chart, err := f.fetchChart(ctx, symbol, "1d")
	if err != nil {
		return domain.Quote{}, err
	}

	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return domain.Quote{}, fmt.Errorf("yahoo: no market price for %s", symbol)
	}

	name := meta.LongName
	if name == "" {
		name = symbol
	}
	q := domain.Quote{
		Symbol:           symbol,
		Name:             name,
		Price:            meta.RegularMarketPrice,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
		Volume:           meta.RegularMarketVol,
	}
	if meta.ChartPreviousClose > 0 {
		q.ChangePercent = (meta.RegularMarketPrice - meta.ChartPreviousClose) / meta.ChartPreviousClose * 100
	}
	return q, nil
}

// History fetches daily bars for the period, skipping null bars (holidays)
// and trimming to the period's conventional point count.
func (f *YahooFetcher) History(ctx context.Context, symbol string, period domain.Period) (domain.HistorySeries, error) {
	rng, ok := periodRanges[period]
	if !ok {
		return nil, fmt.Errorf("yahoo: unsupported period %q", period)
	}

	chart, err := f.fetchChart(ctx, symbol, rng)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: empty series for %s", symbol)
	}

	quote := result.Indicators.Quote[0]
	// The chart API can return ragged arrays; bars past the shortest
	// OHLC array are treated like null bars, not trusted.
	n := len(result.Timestamp)
	for _, arr := range [][]any{quote.Close, quote.Open, quote.High, quote.Low} {
		if len(arr) < n {
			n = len(arr)
		}
	}
	series := make(domain.HistorySeries, 0, n)
	for i := 0; i < n; i++ {
		ts := result.Timestamp[i]
		o, h, l, c := toFloat(quote.Open[i]), toFloat(quote.High[i]), toFloat(quote.Low[i]), toFloat(quote.Close[i])
		if c == 0 {
			continue // null bar
		}
		var vol int64
		if i < len(quote.Volume) {
			vol = int64(toFloat(quote.Volume[i]))
		}
		series = append(series, domain.HistoryPoint{
			Date:   time.Unix(ts, 0).UTC(),
			Price:  c,
			Open:   o,
			High:   h,
			Low:    l,
			Volume: vol,
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("yahoo: only null bars for %s", symbol)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	if n := period.Points(); len(series) > n {
		series = series[len(series)-n:]
	}
	return series, nil
}
