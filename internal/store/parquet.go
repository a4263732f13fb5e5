package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"stocklens/internal/domain"
)

// Compile-time interface checks.
var _ HistoryCache = (*ParquetStore)(nil)
var _ SnapshotWriter = (*ParquetStore)(nil)

// ParquetStore caches history series and daily quote snapshots as Parquet
// files on disk. Layout:
//
//	<DataDir>/history/<SYMBOL>/<period>.parquet
//	<DataDir>/snapshots/<YYYY-MM-DD>.parquet
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at dataDir.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// historyRecord is the on-disk schema for one history bar.
type historyRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Price     float64 `parquet:"price"`
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Volume    int64   `parquet:"volume"`
}

// snapshotRecord is the on-disk schema for one end-of-day quote.
type snapshotRecord struct {
	Symbol        string  `parquet:"symbol"`
	Name          string  `parquet:"name"`
	Price         float64 `parquet:"price"`
	ChangePercent float64 `parquet:"change_percent"`
	Volume        int64   `parquet:"volume"`
	Timestamp     int64   `parquet:"timestamp,timestamp(millisecond)"`
}

// WriteSeries replaces the cached series for (symbol, period).
func (s *ParquetStore) WriteSeries(_ context.Context, symbol string, period domain.Period, series domain.HistorySeries) error {
	if len(series) == 0 {
		return nil
	}
	sym := domain.NormalizeSymbol(symbol)
	records := make([]historyRecord, 0, len(series))
	for _, p := range series {
		records = append(records, historyRecord{
			Symbol:    sym,
			Timestamp: p.Date.UnixMilli(),
			Price:     p.Price,
			Open:      p.Open,
			High:      p.High,
			Low:       p.Low,
			Volume:    p.Volume,
		})
	}
	return writeParquetFile(s.historyPath(sym, period), records)
}

// ReadSeries returns the cached series if its file is younger than maxAge;
// a missing or expired file is a plain miss, not an error.
func (s *ParquetStore) ReadSeries(_ context.Context, symbol string, period domain.Period, maxAge time.Duration) (domain.HistorySeries, error) {
	path := s.historyPath(domain.NormalizeSymbol(symbol), period)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if maxAge > 0 && time.Since(info.ModTime()) > maxAge {
		return nil, nil
	}

	records, err := readParquetFile[historyRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading history cache %s: %w", path, err)
	}

	series := make(domain.HistorySeries, 0, len(records))
	for _, r := range records {
		series = append(series, domain.HistoryPoint{
			Date:   time.UnixMilli(r.Timestamp).UTC(),
			Price:  r.Price,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Volume: r.Volume,
		})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series, nil
}

// WriteSnapshot merges the day's quotes into that date's snapshot file,
// deduplicating by symbol so re-runs within a day overwrite cleanly.
func (s *ParquetStore) WriteSnapshot(_ context.Context, date time.Time, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	path := s.snapshotPath(date)

	existing, _ := readParquetFile[snapshotRecord](path)
	seen := make(map[string]snapshotRecord, len(existing)+len(quotes))
	for _, r := range existing {
		seen[r.Symbol] = r
	}
	now := time.Now().UnixMilli()
	for _, q := range quotes {
		seen[q.Symbol] = snapshotRecord{
			Symbol:        q.Symbol,
			Name:          q.Name,
			Price:         q.Price,
			ChangePercent: q.ChangePercent,
			Volume:        q.Volume,
			Timestamp:     now,
		}
	}

	merged := make([]snapshotRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Symbol < merged[j].Symbol })
	return writeParquetFile(path, merged)
}

// ReadSnapshot returns the quotes recorded for a date, or nil when absent.
func (s *ParquetStore) ReadSnapshot(_ context.Context, date time.Time) ([]domain.Quote, error) {
	path := s.snapshotPath(date)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	records, err := readParquetFile[snapshotRecord](path)
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(records))
	for _, r := range records {
		quotes = append(quotes, domain.Quote{
			Symbol:        r.Symbol,
			Name:          r.Name,
			Price:         r.Price,
			ChangePercent: r.ChangePercent,
			Volume:        r.Volume,
		})
	}
	return quotes, nil
}

func (s *ParquetStore) historyPath(symbol string, period domain.Period) string {
	return filepath.Join(s.DataDir, "history", strings.ToUpper(symbol), string(period)+".parquet")
}

func (s *ParquetStore) snapshotPath(date time.Time) string {
	return filepath.Join(s.DataDir, "snapshots", date.Format("2006-01-02")+".parquet")
}

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	return parquet.ReadFile[T](path)
}
