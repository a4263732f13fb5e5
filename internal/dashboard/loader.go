package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"stocklens/internal/domain"
)

// Fetcher supplies displayable data for a (symbol, period) key. It never
// fails; internal/marketdata.Service is the production implementation.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) domain.Quote
	History(ctx context.Context, symbol string, period domain.Period) domain.HistorySeries
}

// PageState is one page's view of the world: the selected key, the latest
// committed data, and whether a cycle is in flight. Values are copies;
// readers never share slices with the loader.
type PageState struct {
	Symbol     string
	Period     domain.Period
	Quote      domain.Quote
	Series     domain.HistorySeries
	Loading    bool
	Generation uint64
}

// Loader runs fetch-or-generate cycles keyed on (symbol, period) and
// guarantees that only the newest cycle's result is ever committed. Each
// Load bumps a generation counter; a completing cycle compares its
// generation against the latest under the lock and discards itself
// silently when superseded. Cycles run on their own goroutines; all shared
// state lives behind one mutex with the Loader as single writer.
type Loader struct {
	fetch Fetcher
	log   *slog.Logger

	mu       sync.Mutex
	state    PageState
	gen      uint64
	inflight bool
	onUpdate func(PageState)
}

// NewLoader creates a Loader with no selected symbol. Nothing is fetched
// until the first Load.
func NewLoader(fetch Fetcher, log *slog.Logger) *Loader {
	return &Loader{
		fetch: fetch,
		log:   log.With("component", "loader"),
		state: PageState{Period: domain.Period1Mo},
	}
}

// OnUpdate registers a callback invoked (outside the lock) after every
// state transition: loading start and commit. The TUI forwards these into
// its message loop.
func (l *Loader) OnUpdate(fn func(PageState)) {
	l.mu.Lock()
	l.onUpdate = fn
	l.mu.Unlock()
}

// Snapshot returns a copy of the current page state.
func (l *Loader) Snapshot() PageState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// snapshotLocked must be called with l.mu held.
func (l *Loader) snapshotLocked() PageState {
	s := l.state
	s.Series = append(domain.HistorySeries(nil), l.state.Series...)
	return s
}

// Load selects a new (symbol, period) key and starts a fetch cycle for it.
// Blank or whitespace symbols are a no-op: no state change, no fetch.
// Returns whether a cycle was started.
func (l *Loader) Load(ctx context.Context, symbol string, period domain.Period) bool {
	sym := domain.NormalizeSymbol(symbol)
	if sym == "" {
		return false
	}
	if period == "" {
		period = domain.Period1Mo
	}

	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.state.Symbol = sym
	l.state.Period = period
	l.state.Loading = true
	l.inflight = true
	update := l.snapshotLocked()
	fn := l.onUpdate
	l.mu.Unlock()

	notify(fn, update)
	go l.run(ctx, gen, sym, period)
	return true
}

// Refresh re-runs the current key. Concurrent refresh requests (manual
// button and the auto-refresh timer) collapse to a single in-flight cycle.
// Returns whether a cycle was started.
func (l *Loader) Refresh(ctx context.Context) bool {
	l.mu.Lock()
	if l.inflight || l.state.Symbol == "" {
		l.mu.Unlock()
		return false
	}
	l.gen++
	gen := l.gen
	sym, period := l.state.Symbol, l.state.Period
	l.state.Loading = true
	l.inflight = true
	update := l.snapshotLocked()
	fn := l.onUpdate
	l.mu.Unlock()

	notify(fn, update)
	go l.run(ctx, gen, sym, period)
	return true
}

func (l *Loader) run(ctx context.Context, gen uint64, symbol string, period domain.Period) {
	quote := l.fetch.Quote(ctx, symbol)
	series := l.fetch.History(ctx, symbol, period)
	l.commit(gen, quote, series)
}

// commit installs a cycle's result unless a newer Load has superseded it.
func (l *Loader) commit(gen uint64, quote domain.Quote, series domain.HistorySeries) {
	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.log.Debug("discarding stale response", "generation", gen, "symbol", quote.Symbol)
		return
	}
	l.state.Quote = quote
	l.state.Series = series
	l.state.Loading = false
	l.state.Generation = gen
	l.inflight = false
	update := l.snapshotLocked()
	fn := l.onUpdate
	l.mu.Unlock()

	notify(fn, update)
}

func notify(fn func(PageState), s PageState) {
	if fn != nil {
		fn(s)
	}
}
