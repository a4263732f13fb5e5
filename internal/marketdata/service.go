// Package marketdata wraps the StockLens API client with the dashboard's
// absorb-and-fallback policy: every call returns displayable data, and no
// failure escapes to the caller. Real outages are observable only through
// the IsDemo flag and the availability monitor.
package marketdata

import (
	"context"
	"log/slog"

	"stocklens/internal/domain"
	"stocklens/internal/synth"
)

// API is the slice of the backend client this service consumes.
type API interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetHistory(ctx context.Context, symbol string, period domain.Period) (domain.HistorySeries, error)
}

// Service fetches quotes and history, degrading to synthetic data on any
// failure. IsDemo is set here and nowhere else.
type Service struct {
	client API
	synth  *synth.Generator
	log    *slog.Logger
}

// NewService creates a Service around the given API client.
func NewService(client API, gen *synth.Generator, log *slog.Logger) *Service {
	return &Service{client: client, synth: gen, log: log.With("component", "marketdata")}
}

// Quote returns the live quote for symbol, or a synthetic one with
// IsDemo=true when the backend fails. It never returns an error.
func (s *Service) Quote(ctx context.Context, symbol string) domain.Quote {
	quote, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		s.log.Warn("quote fetch failed, serving demo data", "symbol", symbol, "error", err)
		return s.synth.Quote(symbol)
	}
	quote.IsDemo = false
	return *quote
}

// History returns the live series for (symbol, period), or a synthetic
// random walk of the conventional length when the backend fails. It never
// returns an error.
func (s *Service) History(ctx context.Context, symbol string, period domain.Period) domain.HistorySeries {
	series, err := s.client.GetHistory(ctx, symbol, period)
	if err != nil {
		s.log.Warn("history fetch failed, serving demo data",
			"symbol", symbol, "period", period, "error", err)
		return s.synth.History(symbol, period)
	}
	return series
}
