// Package health tracks backend availability for the Live/Demo labelling
// in the UI. Each subsystem owns its own Monitor instance: the market-data
// views and the chat assistant probe independently and their flags are not
// synchronized.
package health

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Prober is the probe the monitor runs, typically (*stocklens.Client).Health.
type Prober interface {
	Health(ctx context.Context) (bool, error)
}

// Monitor holds the latest availability reading. Single writer (whoever
// calls Check), many readers. A stale reading is acceptable until the next
// explicit Check; there is no background polling.
type Monitor struct {
	prober    Prober
	available atomic.Bool
	log       *slog.Logger
}

// NewMonitor creates a Monitor in the unavailable state.
func NewMonitor(prober Prober, log *slog.Logger) *Monitor {
	return &Monitor{prober: prober, log: log.With("component", "health")}
}

// Check runs one bounded probe, stores the result, and returns it. Any
// error counts as unavailable; the result is never cached across calls, so
// two consecutive probes of a dead endpoint both report false.
func (m *Monitor) Check(ctx context.Context) bool {
	ok, err := m.prober.Health(ctx)
	if err != nil {
		m.log.Debug("health probe failed", "error", err)
		ok = false
	}
	m.available.Store(ok)
	return ok
}

// Available returns the last stored reading.
func (m *Monitor) Available() bool {
	return m.available.Load()
}

// MarkUnavailable force-clears the flag. The chat flow uses this when an
// /ask call fails after a previously healthy probe.
func (m *Monitor) MarkUnavailable() {
	m.available.Store(false)
}
