package dashboard

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"stocklens/internal/domain"
)

// fakeFetcher returns canned data and can hold a symbol's fetch open until
// its gate is released, which lets tests interleave responses on purpose.
type fakeFetcher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{gates: make(map[string]chan struct{})}
}

func (f *fakeFetcher) gateSymbol(symbol string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := make(chan struct{})
	f.gates[symbol] = g
	return g
}

func (f *fakeFetcher) Quote(_ context.Context, symbol string) domain.Quote {
	return domain.Quote{Symbol: symbol, Name: symbol, Price: 100}
}

func (f *fakeFetcher) History(_ context.Context, symbol string, _ domain.Period) domain.HistorySeries {
	f.mu.Lock()
	g := f.gates[symbol]
	f.mu.Unlock()
	if g != nil {
		<-g
	}
	return domain.HistorySeries{{Date: time.Now(), Price: 100, Open: 99, High: 101, Low: 98}}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitFor drains updates until pred matches or the deadline passes.
func waitFor(t *testing.T, updates <-chan PageState, pred func(PageState) bool) PageState {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-updates:
			if pred(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for loader update")
		}
	}
}

func newTestLoader(f Fetcher) (*Loader, chan PageState) {
	l := NewLoader(f, discard())
	updates := make(chan PageState, 32)
	l.OnUpdate(func(s PageState) { updates <- s })
	return l, updates
}

func TestLoadCommits(t *testing.T) {
	l, updates := newTestLoader(newFakeFetcher())

	if !l.Load(context.Background(), "aapl", domain.Period1Mo) {
		t.Fatal("Load returned false")
	}

	s := waitFor(t, updates, func(s PageState) bool { return !s.Loading })
	if s.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL (case-normalized)", s.Symbol)
	}
	if s.Quote.Symbol != "AAPL" || len(s.Series) == 0 {
		t.Errorf("committed state incomplete: %+v", s)
	}
}

func TestStaleResponseSuppressed(t *testing.T) {
	f := newFakeFetcher()
	gate := f.gateSymbol("AAPL")
	l, updates := newTestLoader(f)
	ctx := context.Background()

	// AAPL hangs on its gate; TSLA supersedes it and completes.
	l.Load(ctx, "AAPL", domain.Period1Mo)
	l.Load(ctx, "TSLA", domain.Period1Mo)
	waitFor(t, updates, func(s PageState) bool { return !s.Loading && s.Symbol == "TSLA" })

	// Now let the stale AAPL response arrive.
	close(gate)
	time.Sleep(100 * time.Millisecond)

	s := l.Snapshot()
	if s.Symbol != "TSLA" || s.Quote.Symbol != "TSLA" {
		t.Errorf("stale AAPL response overwrote newer state: %+v", s)
	}
	if s.Loading {
		t.Error("state stuck loading after stale discard")
	}

	// No late update may announce AAPL data.
	for {
		select {
		case u := <-updates:
			if u.Quote.Symbol == "AAPL" {
				t.Error("observer saw a stale AAPL commit")
			}
		default:
			return
		}
	}
}

func TestRefreshSingleFlight(t *testing.T) {
	f := newFakeFetcher()
	gate := f.gateSymbol("MSFT")
	l, updates := newTestLoader(f)
	ctx := context.Background()

	l.Load(ctx, "MSFT", domain.Period1Mo)
	if l.Refresh(ctx) {
		t.Error("Refresh during an in-flight cycle must be deduplicated")
	}

	close(gate)
	waitFor(t, updates, func(s PageState) bool { return !s.Loading })

	if !l.Refresh(ctx) {
		t.Error("Refresh after commit should start a cycle")
	}
	waitFor(t, updates, func(s PageState) bool { return !s.Loading })
}

func TestRefreshWithoutSymbolIsNoop(t *testing.T) {
	l, _ := newTestLoader(newFakeFetcher())
	if l.Refresh(context.Background()) {
		t.Error("Refresh with no selected symbol should be a no-op")
	}
}

func TestEmptySearchIsNoop(t *testing.T) {
	f := newFakeFetcher()
	l, updates := newTestLoader(f)
	ctx := context.Background()

	l.Load(ctx, "NVDA", domain.Period1Mo)
	committed := waitFor(t, updates, func(s PageState) bool { return !s.Loading })

	for _, input := range []string{"", "   ", "\t"} {
		if l.Load(ctx, input, domain.Period1D) {
			t.Errorf("Load(%q) should be a no-op", input)
		}
	}

	s := l.Snapshot()
	if s.Symbol != committed.Symbol || s.Period != committed.Period || s.Generation != committed.Generation {
		t.Errorf("blank search changed state: %+v vs %+v", s, committed)
	}
}

func TestPeriodChangeTriggersNewCycle(t *testing.T) {
	l, updates := newTestLoader(newFakeFetcher())
	ctx := context.Background()

	l.Load(ctx, "AAPL", domain.Period1Mo)
	first := waitFor(t, updates, func(s PageState) bool { return !s.Loading })

	l.Load(ctx, "AAPL", domain.Period1Y)
	second := waitFor(t, updates, func(s PageState) bool { return !s.Loading && s.Period == domain.Period1Y })

	if second.Generation <= first.Generation {
		t.Errorf("generation did not advance: %d -> %d", first.Generation, second.Generation)
	}
}
