// Package storage is the local cache between sessions: the last fetched
// catalog document with its revision token, the persisted plan, and settings.
// The catalog of record stays in the remote repository; this cache only makes
// the CLI usable without refetching on every invocation.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoCatalog means nothing has been fetched into the cache yet.
var ErrNoCatalog = errors.New("storage: no cached catalog, run a refresh first")

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS catalog_cache (
  id         INTEGER PRIMARY KEY CHECK (id = 1),
  body       BLOB NOT NULL,
  sha        TEXT NOT NULL,
  fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS plan_items (
  title    TEXT PRIMARY KEY,
  position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_plan_position ON plan_items(position);
CREATE TABLE IF NOT EXISTS settings (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// CachedCatalog is the last fetched document plus its revision token.
type CachedCatalog struct {
	Body      []byte
	SHA       string
	FetchedAt time.Time
}

// SaveCatalog replaces the cached document and token.
func (d *DB) SaveCatalog(ctx context.Context, body []byte, sha string) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO catalog_cache(id, body, sha, fetched_at) VALUES(1, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET body = excluded.body, sha = excluded.sha, fetched_at = CURRENT_TIMESTAMP`,
		body, sha)
	return err
}

// Catalog returns the cached document, or ErrNoCatalog.
func (d *DB) Catalog(ctx context.Context) (*CachedCatalog, error) {
	var c CachedCatalog
	err := d.sql.QueryRowContext(ctx,
		"SELECT body, sha, fetched_at FROM catalog_cache WHERE id = 1").
		Scan(&c.Body, &c.SHA, &c.FetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCatalog
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// PlanTitles returns the persisted selection in insertion order.
func (d *DB) PlanTitles(ctx context.Context) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT title FROM plan_items ORDER BY position ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// AddPlanTitle appends a title to the plan; already-present titles keep their
// position.
func (d *DB) AddPlanTitle(ctx context.Context, title string) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT OR IGNORE INTO plan_items(title, position)
VALUES(?, (SELECT COALESCE(MAX(position), 0) + 1 FROM plan_items))`, title)
	return err
}

func (d *DB) RemovePlanTitle(ctx context.Context, title string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM plan_items WHERE title = ?", title)
	return err
}

func (d *DB) ClearPlan(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM plan_items")
	return err
}

// SetPlanTitles rewrites the whole plan in the given order. Used after a
// reconciliation pass drops titles that no longer resolve.
func (d *DB) SetPlanTitles(ctx context.Context, titles []string) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM plan_items"); err != nil {
		return err
	}
	for i, t := range titles {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO plan_items(title, position) VALUES(?, ?)", t, i+1); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const capacityKey = "capacity_gb"

// CapacityGB returns the configured drive capacity, or fallback when unset.
func (d *DB) CapacityGB(ctx context.Context, fallback float64) (float64, error) {
	var value string
	err := d.sql.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", capacityKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	gb, err := strconv.ParseFloat(value, 64)
	if err != nil || gb <= 0 {
		return fallback, nil
	}
	return gb, nil
}

func (d *DB) SetCapacityGB(ctx context.Context, gb float64) error {
	_, err := d.sql.ExecContext(ctx, `
INSERT INTO settings(key, value) VALUES(?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		capacityKey, strconv.FormatFloat(gb, 'f', -1, 64))
	return err
}
