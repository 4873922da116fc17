package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"webpanel/internal/panel"
)

type migration struct {
	version int
	up      string
}

var migrations = []migration{
	{
		version: 1,
		up: `
CREATE TABLE IF NOT EXISTS instances (
	id TEXT PRIMARY KEY,
	last_url TEXT NOT NULL DEFAULT '',
	title_override TEXT NOT NULL DEFAULT '',
	mode TEXT NOT NULL DEFAULT '',
	want_dock_on_create INTEGER NOT NULL DEFAULT -1 CHECK(want_dock_on_create IN (-1, 0, 1)),
	last_dock_idx INTEGER NOT NULL DEFAULT 0,
	last_dock_float INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL
);
`,
	},
}

// SQLite stores instances in one table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func applyMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations(version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.up); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, applied_at) VALUES (?, datetime('now'))`, m.version); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAll replaces the stored set with items.
func (s *SQLite) SaveAll(ctx context.Context, items []panel.Persisted) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM instances`); err != nil {
		return fmt.Errorf("clear instances: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, p := range items {
		e := fromPanel(p)
		_, err := tx.ExecContext(ctx, `
INSERT INTO instances(id, last_url, title_override, mode, want_dock_on_create, last_dock_idx, last_dock_float, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	last_url=excluded.last_url,
	title_override=excluded.title_override,
	mode=excluded.mode,
	want_dock_on_create=excluded.want_dock_on_create,
	last_dock_idx=excluded.last_dock_idx,
	last_dock_float=excluded.last_dock_float,
	updated_at=excluded.updated_at
`, e.ID, e.LastURL, e.TitleOverride, e.Mode, e.WantDockOnCreate, e.LastDockIdx, boolToInt(e.LastDockFloat), now)
		if err != nil {
			return fmt.Errorf("upsert instance %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLite) LoadAll(ctx context.Context) ([]panel.Persisted, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, last_url, title_override, mode, want_dock_on_create, last_dock_idx, last_dock_float
FROM instances ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()
	var out []panel.Persisted
	for rows.Next() {
		var e entry
		var float int
		if err := rows.Scan(&e.ID, &e.LastURL, &e.TitleOverride, &e.Mode, &e.WantDockOnCreate, &e.LastDockIdx, &float); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		e.LastDockFloat = float != 0
		out = append(out, e.toPanel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
