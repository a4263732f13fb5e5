package provider

import (
	"context"

	"stocklens/internal/domain"
	"stocklens/internal/synth"
)

// SynthFetcher serves generated data as if it were an upstream provider.
// It backs the "mock" provider setting for offline development; unlike the
// client-side fallback path, data served this way is not flagged as demo.
type SynthFetcher struct {
	gen *synth.Generator
}

var _ Fetcher = (*SynthFetcher)(nil)

func NewSynthFetcher() *SynthFetcher {
	return &SynthFetcher{gen: synth.NewGenerator()}
}

func (f *SynthFetcher) Name() string { return "mock" }

func (f *SynthFetcher) Quote(_ context.Context, symbol string) (domain.Quote, error) {
	q := f.gen.Quote(symbol)
	q.IsDemo = false
	return q, nil
}

func (f *SynthFetcher) History(_ context.Context, symbol string, period domain.Period) (domain.HistorySeries, error) {
	return f.gen.History(symbol, period), nil
}
