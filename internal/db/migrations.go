package db

import (
	"context"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// migrations[i] upgrades a database from version i to i+1. Version 0 is the
// swaps, day_data and fetch_runs layout that createSchema builds.
var migrations = []string{
	// 0 -> 1: top pools by liquidity
	`CREATE TABLE IF NOT EXISTS pools (
		id TEXT PRIMARY KEY,
		rank INTEGER NOT NULL,
		token0 TEXT NOT NULL DEFAULT '',
		token1 TEXT NOT NULL DEFAULT '',
		liquidity TEXT NOT NULL DEFAULT '0',
		volume_usd TEXT NOT NULL DEFAULT '0',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_pools_rank ON pools(rank)`,
}

// SchemaVersion returns the version recorded in the database file.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

// migrate applies every pending migration in one transaction.
func (db *DB) migrate() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for v := current; v < schemaVersion; v++ {
		if _, err := tx.ExecContext(ctx, migrations[v]); err != nil {
			return fmt.Errorf("migration %d -> %d: %w", v, v+1, err)
		}
	}
	// PRAGMA does not accept bound parameters
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return tx.Commit()
}
