// stocklens-server is the StockLens backend: quotes and history from the
// configured upstream provider, the chat assistant proxy, and persistence
// for watchlist, portfolio, alerts, and settings.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stocklens/internal/config"
	"stocklens/internal/httpapi"
	"stocklens/internal/provider"
	"stocklens/internal/store"
	"stocklens/internal/util"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := "config/stocklens.yaml"
	if p := os.Getenv("STOCKLENS_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		log.Fatalf("configuring provider: %v", err)
	}
	logger.Info("upstream provider configured", "provider", fetcher.Name())

	users, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer users.Close()

	parquet := store.NewParquetStore(cfg.Storage.DataDir)
	quotes := provider.NewQuoteCache(time.Duration(cfg.Upstream.QuoteCacheSecs) * time.Second)
	assistant := httpapi.NewAssistant(cfg.Assistant.APIURL, cfg.Assistant.APIKey, cfg.Assistant.Model, logger)

	srv := httpapi.NewServer(
		fetcher,
		quotes,
		parquet,
		time.Duration(cfg.Storage.HistoryTTLMins)*time.Minute,
		users,
		assistant,
		logger,
	)

	if cfg.Snapshot.Cron != "" {
		job := httpapi.NewSnapshotJob(fetcher, users, parquet, users, logger)
		if err := job.Start(cfg.Snapshot.Cron); err != nil {
			log.Fatalf("scheduling snapshot job: %v", err)
		}
		defer job.Stop()
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("stocklens server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func buildFetcher(cfg *config.Config) (provider.Fetcher, error) {
	switch cfg.Upstream.Provider {
	case "yahoo", "":
		return provider.NewYahooFetcher(cfg.Upstream.YahooBaseURL, cfg.Upstream.RateLimitPerMin), nil
	case "alpaca":
		if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
			return nil, fmt.Errorf("alpaca provider requires api_key and api_secret")
		}
		return provider.NewAlpacaFetcher(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Upstream.RateLimitPerMin), nil
	case "mock":
		return provider.NewSynthFetcher(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Upstream.Provider)
	}
}
