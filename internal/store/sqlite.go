package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"stocklens/internal/domain"
)

// Compile-time interface checks.
var _ WatchlistStore = (*SQLiteStore)(nil)
var _ PortfolioStore = (*SQLiteStore)(nil)
var _ SettingsStore = (*SQLiteStore)(nil)
var _ AlertStore = (*SQLiteStore)(nil)

// SQLiteStore implements the user-data stores on a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs
// migrations. WAL mode keeps reads open while the server writes.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS watchlist (
			symbol   TEXT PRIMARY KEY,
			added_at INTEGER NOT NULL DEFAULT (unixepoch())
		)`,

		`CREATE TABLE IF NOT EXISTS holdings (
			symbol      TEXT PRIMARY KEY,
			shares      REAL NOT NULL,
			avg_price   REAL NOT NULL,
			asset_class TEXT NOT NULL DEFAULT '',
			sector      TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT NOT NULL,
			condition TEXT NOT NULL,
			threshold REAL NOT NULL,
			triggered INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_symbol ON alerts(symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// WatchlistStore
// ---------------------------------------------------------------------------

func (s *SQLiteStore) AddSymbol(ctx context.Context, symbol string) error {
	sym := domain.NormalizeSymbol(symbol)
	if sym == "" {
		return fmt.Errorf("watchlist: empty symbol")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist (symbol) VALUES (?)`, sym)
	return err
}

func (s *SQLiteStore) RemoveSymbol(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE symbol = ?`, domain.NormalizeSymbol(symbol))
	return err
}

func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol FROM watchlist ORDER BY added_at, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

// ---------------------------------------------------------------------------
// PortfolioStore
// ---------------------------------------------------------------------------

func (s *SQLiteStore) UpsertHolding(ctx context.Context, h domain.Holding) error {
	sym := domain.NormalizeSymbol(h.Symbol)
	if sym == "" {
		return fmt.Errorf("holding: empty symbol")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO holdings (symbol, shares, avg_price, asset_class, sector) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET
		   shares = excluded.shares, avg_price = excluded.avg_price,
		   asset_class = excluded.asset_class, sector = excluded.sector`,
		sym, h.Shares, h.AvgPrice, h.AssetClass, h.Sector)
	return err
}

func (s *SQLiteStore) DeleteHolding(ctx context.Context, symbol string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM holdings WHERE symbol = ?`, domain.NormalizeSymbol(symbol))
	return err
}

func (s *SQLiteStore) ListHoldings(ctx context.Context) ([]domain.Holding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, shares, avg_price, asset_class, sector FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []domain.Holding
	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.Symbol, &h.Shares, &h.AvgPrice, &h.AssetClass, &h.Sector); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// ---------------------------------------------------------------------------
// SettingsStore
// ---------------------------------------------------------------------------

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLiteStore) PutSetting(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("settings: empty key")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(value))
	return err
}

// ---------------------------------------------------------------------------
// AlertStore
// ---------------------------------------------------------------------------

func (s *SQLiteStore) SaveAlert(ctx context.Context, a *domain.Alert) error {
	if err := a.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (symbol, condition, threshold, triggered) VALUES (?, ?, ?, ?)`,
		domain.NormalizeSymbol(a.Symbol), string(a.Condition), a.Threshold, a.Triggered)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *SQLiteStore) DeleteAlert(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, condition, threshold, triggered FROM alerts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var cond string
		if err := rows.Scan(&a.ID, &a.Symbol, &cond, &a.Threshold, &a.Triggered); err != nil {
			return nil, err
		}
		a.Condition = domain.AlertCondition(cond)
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) MarkTriggered(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET triggered = 1 WHERE id = ?`, id)
	return err
}
