package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

// UpsertSwaps stores swaps keyed by id and returns how many were new.
// Swaps already stored are left untouched since the subgraph never
// rewrites a swap.
func (db *DB) UpsertSwaps(swaps []models.SwapRecord) (int, error) {
	query := `
		INSERT INTO swaps (id, amount_usd, timestamp, token0, token1)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`

	inserted := 0
	for start := 0; start < len(swaps); start += maxBatchSize {
		end := min(start+maxBatchSize, len(swaps))
		n, err := db.insertSwapBatch(query, swaps[start:end])
		if err != nil {
			return inserted, err
		}
		inserted += n
	}

	return inserted, nil
}

func (db *DB) insertSwapBatch(query string, batch []models.SwapRecord) (int, error) {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin swap batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare swap insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for i := range batch {
		s := &batch[i]
		result, err := stmt.ExecContext(ctx, s.ID, s.AmountUSD, s.Timestamp, s.Token0, s.Token1)
		if err != nil {
			return 0, fmt.Errorf("failed to insert swap %s: %w", s.ID, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit swap batch: %w", err)
	}
	return inserted, nil
}

// GetSwapsSince returns stored swaps at or after since, oldest first. A zero
// since returns everything.
func (db *DB) GetSwapsSince(since time.Time) ([]models.SwapRecord, error) {
	query := `
		SELECT id, amount_usd, timestamp, token0, token1
		FROM swaps
		WHERE timestamp >= ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := db.QueryContext(context.Background(), query, unixOrMin(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query swaps: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	return scanSwaps(rows)
}

func scanSwaps(rows *sql.Rows) ([]models.SwapRecord, error) {
	var swaps []models.SwapRecord
	for rows.Next() {
		var s models.SwapRecord
		if err := rows.Scan(&s.ID, &s.AmountUSD, &s.Timestamp, &s.Token0, &s.Token1); err != nil {
			return nil, fmt.Errorf("failed to scan swap: %w", err)
		}
		swaps = append(swaps, s)
	}
	return swaps, rows.Err()
}

// CountSwaps returns the number of stored swaps.
func (db *DB) CountSwaps() (int, error) {
	var n int
	if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM swaps").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count swaps: %w", err)
	}
	return n, nil
}

// PruneSwapsBefore deletes swaps older than cutoff.
func (db *DB) PruneSwapsBefore(cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(), "DELETE FROM swaps WHERE timestamp < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune swaps: %w", err)
	}
	return result.RowsAffected()
}

// InsertFetchRun logs a refresh attempt.
func (db *DB) InsertFetchRun(run *models.FetchRun) error {
	query := `
		INSERT INTO fetch_runs (timestamp, fetched, inserted, skipped, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	timestamp := run.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(sqliteTimeLayout),
		run.Fetched,
		run.Inserted,
		run.Skipped,
		run.DurationMs,
		nullString(run.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch run: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		run.ID = id
	}

	return nil
}

// GetRecentFetchRuns returns the most recent refresh attempts.
func (db *DB) GetRecentFetchRuns(limit int) ([]models.FetchRun, error) {
	query := `
		SELECT id, timestamp, fetched, inserted, skipped, duration_ms, error
		FROM fetch_runs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []models.FetchRun
	for rows.Next() {
		var run models.FetchRun
		var ts string
		var errStr sql.NullString

		if err := rows.Scan(&run.ID, &ts, &run.Fetched, &run.Inserted, &run.Skipped, &run.DurationMs, &errStr); err != nil {
			return nil, fmt.Errorf("failed to scan fetch run: %w", err)
		}
		if t, ok := parseTimeString(ts); ok {
			run.Timestamp = t
		}
		run.Error = errStr.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// PruneFetchRunsBefore deletes run log entries older than cutoff.
func (db *DB) PruneFetchRunsBefore(cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		"DELETE FROM fetch_runs WHERE timestamp < ?", cutoff.UTC().Format(sqliteTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetch runs: %w", err)
	}
	return result.RowsAffected()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ReplacePools stores the latest top pools list, dropping the previous one.
// Rank follows the slice order.
func (db *DB) ReplacePools(pools []models.Pool) error {
	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin pools update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pools"); err != nil {
		return fmt.Errorf("failed to clear pools: %w", err)
	}

	now := time.Now().UTC().Format(sqliteTimeLayout)
	for i, p := range pools {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pools (id, rank, token0, token1, liquidity, volume_usd, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, p.ID, i, p.Token0, p.Token1, p.Liquidity, p.VolumeUSD, now); err != nil {
			return fmt.Errorf("failed to insert pool %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pools: %w", err)
	}
	return nil
}

// GetPools returns the stored top pools in rank order.
func (db *DB) GetPools() ([]models.Pool, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT id, token0, token1, liquidity, volume_usd
		FROM pools
		ORDER BY rank ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var pools []models.Pool
	for rows.Next() {
		var p models.Pool
		if err := rows.Scan(&p.ID, &p.Token0, &p.Token1, &p.Liquidity, &p.VolumeUSD); err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}
