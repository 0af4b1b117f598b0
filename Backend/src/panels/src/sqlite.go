package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS purchases(
  id             INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id     TEXT    NOT NULL,
  panel          TEXT    NOT NULL,
  restaurant     TEXT    NOT NULL DEFAULT '',
  payment_method TEXT    NOT NULL DEFAULT '',
  units          INTEGER NOT NULL,
  subtotal       INTEGER NOT NULL,
  discount_pct   INTEGER NOT NULL DEFAULT 0,
  discount       INTEGER NOT NULL DEFAULT 0,
  total          INTEGER NOT NULL,
  success        INTEGER NOT NULL,
  error_category TEXT    NOT NULL DEFAULT '',
  items          TEXT    NOT NULL DEFAULT '',
  created_unix   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_purchases_created ON purchases(created_unix);

CREATE TABLE IF NOT EXISTS invoices(
  id             INTEGER PRIMARY KEY AUTOINCREMENT,
  target_id      INTEGER NOT NULL,
  target_name    TEXT    NOT NULL,
  amount         INTEGER NOT NULL,
  payment_method TEXT    NOT NULL,
  items          TEXT    NOT NULL DEFAULT '',
  success        INTEGER NOT NULL,
  created_unix   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invoices_created ON invoices(created_unix);
`

func openSQLite(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	// busy timeout + WAL so the exporter can read while panels write
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, journalSchema)
	return err
}
