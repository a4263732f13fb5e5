package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stocklens/internal/domain"
	"stocklens/internal/util"
)

// AlpacaFetcher implements Fetcher using the Alpaca market-data API.
// Quotes come from the snapshot endpoint (latest trade plus daily and
// previous-daily bars); history comes from daily bars.
type AlpacaFetcher struct {
	client  *marketdata.Client
	limiter *util.RateLimiter
	now     func() time.Time
}

var _ Fetcher = (*AlpacaFetcher)(nil)

// NewAlpacaFetcher creates a fetcher with the given credentials. An empty
// dataURL selects the production data endpoint.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL string, ratePerMin int) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaFetcher{
		client:  marketdata.NewClient(opts),
		limiter: util.NewRateLimiter(ratePerMin),
		now:     time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) Quote(ctx context.Context, symbol string) (domain.Quote, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return domain.Quote{}, err
	}

	snap, err := f.client.GetSnapshot(symbol, marketdata.GetSnapshotRequest{})
	if err != nil {
		return domain.Quote{}, fmt.Errorf("alpaca snapshot %s: %w", symbol, err)
	}
	if snap == nil || snap.LatestTrade == nil || snap.LatestTrade.Price <= 0 {
		return domain.Quote{}, fmt.Errorf("alpaca: no trade data for %s", symbol)
	}

	q := domain.Quote{
		Symbol: symbol,
		Name:   symbol, // Alpaca's data API carries no company names
		Price:  snap.LatestTrade.Price,
	}
	if snap.DailyBar != nil {
		q.Volume = int64(snap.DailyBar.Volume)
	}
	if snap.PrevDailyBar != nil && snap.PrevDailyBar.Close > 0 {
		q.ChangePercent = (q.Price - snap.PrevDailyBar.Close) / snap.PrevDailyBar.Close * 100
	}
	return q, nil
}

func (f *AlpacaFetcher) History(ctx context.Context, symbol string, period domain.Period) (domain.HistorySeries, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	end := f.now()
	start := end.AddDate(0, 0, -calendarSpanDays(period))
	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("alpaca: no bars for %s", symbol)
	}

	series := make(domain.HistorySeries, 0, len(bars))
	for _, b := range bars {
		series = append(series, domain.HistoryPoint{
			Date:   b.Timestamp,
			Price:  b.Close,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Volume: int64(b.Volume),
		})
	}
	if n := period.Points(); len(series) > n {
		series = series[len(series)-n:]
	}
	return series, nil
}

// calendarSpanDays converts a period to a calendar-day lookback wide enough
// to cover its trading-day point count.
func calendarSpanDays(period domain.Period) int {
	switch period {
	case domain.Period1D:
		return 5 // cover weekends and holidays
	case domain.Period5D:
		return 10
	case domain.Period1Mo:
		return 45
	case domain.Period3Mo:
		return 135
	case domain.Period1Y:
		return 380
	case domain.Period5Y:
		return 1900
	default:
		return 45
	}
}
