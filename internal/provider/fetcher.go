// Package provider implements the upstream market-data sources the server
// fetches from: Yahoo Finance's public chart API and the Alpaca
// market-data API, behind one Fetcher interface. All fetchers return
// errors freely; the absorb-and-fallback policy lives above this layer.
package provider

import (
	"context"

	"stocklens/internal/domain"
)

// Fetcher pulls live market data for a symbol from one upstream source.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) (domain.Quote, error)
	History(ctx context.Context, symbol string, period domain.Period) (domain.HistorySeries, error)
	Name() string
}

// MockFetcher is a canned-data Fetcher for tests and offline development.
type MockFetcher struct {
	Quotes    map[string]domain.Quote
	Histories map[string]domain.HistorySeries
	Err       error
	Calls     int
}

var _ Fetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return domain.Quote{}, m.Err
	}
	return m.Quotes[symbol], nil
}

func (m *MockFetcher) History(_ context.Context, symbol string, _ domain.Period) (domain.HistorySeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Histories[symbol], nil
}
