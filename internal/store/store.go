// Package store defines the persistence interfaces for user data
// (watchlist, portfolio, settings, alerts) and for cached market data, and
// their SQLite and Parquet implementations.
package store

import (
	"context"
	"time"

	"stocklens/internal/domain"
)

// WatchlistStore persists the user's watched symbols.
type WatchlistStore interface {
	// AddSymbol inserts a symbol; adding an existing symbol is a no-op.
	AddSymbol(ctx context.Context, symbol string) error

	// RemoveSymbol deletes a symbol; removing an absent symbol is a no-op.
	RemoveSymbol(ctx context.Context, symbol string) error

	// ListSymbols returns all watched symbols in insertion order.
	ListSymbols(ctx context.Context) ([]string, error)
}

// PortfolioStore persists portfolio holdings.
type PortfolioStore interface {
	// UpsertHolding inserts or replaces the holding for its symbol.
	UpsertHolding(ctx context.Context, h domain.Holding) error

	// DeleteHolding removes the holding for a symbol.
	DeleteHolding(ctx context.Context, symbol string) error

	// ListHoldings returns all holdings ordered by symbol.
	ListHoldings(ctx context.Context) ([]domain.Holding, error)
}

// SettingsStore persists app settings as JSON blobs under fixed keys,
// overwritten wholesale on each change.
type SettingsStore interface {
	// GetSetting returns the raw JSON stored under key, or nil if absent.
	GetSetting(ctx context.Context, key string) ([]byte, error)

	// PutSetting overwrites the JSON stored under key.
	PutSetting(ctx context.Context, key string, value []byte) error
}

// AlertStore persists price alerts.
type AlertStore interface {
	// SaveAlert inserts a new alert and fills in its ID.
	SaveAlert(ctx context.Context, a *domain.Alert) error

	// DeleteAlert removes an alert by ID.
	DeleteAlert(ctx context.Context, id int64) error

	// ListAlerts returns all alerts ordered by ID.
	ListAlerts(ctx context.Context) ([]domain.Alert, error)

	// MarkTriggered flags an alert as having fired.
	MarkTriggered(ctx context.Context, id int64) error
}

// HistoryCache persists fetched history series so restarts and repeated
// period switches don't refetch from the upstream provider.
type HistoryCache interface {
	// WriteSeries stores a series for (symbol, period), replacing any
	// previous one.
	WriteSeries(ctx context.Context, symbol string, period domain.Period, series domain.HistorySeries) error

	// ReadSeries returns the cached series for (symbol, period) if it is
	// younger than maxAge. A cache miss returns (nil, nil).
	ReadSeries(ctx context.Context, symbol string, period domain.Period, maxAge time.Duration) (domain.HistorySeries, error)
}

// SnapshotWriter records end-of-day quote snapshots for the watchlist.
type SnapshotWriter interface {
	// WriteSnapshot appends the day's quotes to the snapshot file for date.
	WriteSnapshot(ctx context.Context, date time.Time, quotes []domain.Quote) error
}
