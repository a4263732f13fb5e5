package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"stocklens/internal/domain"
	"stocklens/internal/provider"
	"stocklens/internal/store"
	"stocklens/internal/util"
)

// SnapshotJob records end-of-day quotes for every watchlist symbol on a
// cron schedule and evaluates price alerts against the fetched quotes.
// Snapshots make day-over-day portfolio comparisons possible after
// restarts; live serving never depends on them.
type SnapshotJob struct {
	fetcher   provider.Fetcher
	watchlist store.WatchlistStore
	writer    store.SnapshotWriter
	alerts    store.AlertStore
	cron      *cron.Cron
	log       *slog.Logger
}

// NewSnapshotJob creates the job; Start schedules it.
func NewSnapshotJob(fetcher provider.Fetcher, watchlist store.WatchlistStore, writer store.SnapshotWriter, alerts store.AlertStore, log *slog.Logger) *SnapshotJob {
	return &SnapshotJob{
		fetcher:   fetcher,
		watchlist: watchlist,
		writer:    writer,
		alerts:    alerts,
		cron:      cron.New(),
		log:       log.With("component", "snapshot"),
	}
}

// Start schedules the job with the given cron spec (e.g. "5 16 * * 1-5"
// for 4:05 PM on weekdays) and starts the cron runner.
func (j *SnapshotJob) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		j.Run(ctx)
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("snapshot job scheduled", "spec", spec)
	return nil
}

// Stop halts the cron runner, waiting for a running job to finish.
func (j *SnapshotJob) Stop() {
	<-j.cron.Stop().Done()
}

// Run takes one snapshot immediately. Per-symbol fetch failures are logged
// and skipped; the snapshot records whatever succeeded.
func (j *SnapshotJob) Run(ctx context.Context) {
	symbols, err := j.watchlist.ListSymbols(ctx)
	if err != nil {
		j.log.Error("listing watchlist for snapshot", "error", err)
		return
	}
	if len(symbols) == 0 {
		return
	}

	quotes := make([]domain.Quote, 0, len(symbols))
	for _, sym := range symbols {
		var q domain.Quote
		err := util.Retry(ctx, 3, time.Second, func() error {
			var ferr error
			q, ferr = j.fetcher.Quote(ctx, sym)
			return ferr
		})
		if err != nil {
			j.log.Warn("snapshot fetch failed", "symbol", sym, "error", err)
			continue
		}
		q.Symbol = sym
		quotes = append(quotes, q)
	}
	if len(quotes) == 0 {
		return
	}

	j.checkAlerts(ctx, quotes)

	if err := j.writer.WriteSnapshot(ctx, time.Now(), quotes); err != nil {
		j.log.Error("writing snapshot", "error", err)
		return
	}
	j.log.Info("snapshot written", "symbols", len(quotes))
}

// checkAlerts marks pending alerts whose condition holds at the fetched
// price. Already-triggered alerts stay triggered until the user deletes
// them, so each alert fires at most once.
func (j *SnapshotJob) checkAlerts(ctx context.Context, quotes []domain.Quote) {
	alerts, err := j.alerts.ListAlerts(ctx)
	if err != nil {
		j.log.Error("listing alerts", "error", err)
		return
	}
	if len(alerts) == 0 {
		return
	}

	prices := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		prices[q.Symbol] = q.Price
	}

	for _, a := range alerts {
		price, ok := prices[a.Symbol]
		if !ok || a.Triggered || !a.ShouldFire(price) {
			continue
		}
		if err := j.alerts.MarkTriggered(ctx, a.ID); err != nil {
			j.log.Error("marking alert triggered", "id", a.ID, "error", err)
			continue
		}
		j.log.Info("alert triggered",
			"symbol", a.Symbol, "condition", a.Condition, "threshold", a.Threshold, "price", price)
	}
}
