package db

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

// timeFormats covers the text this package writes and the RFC 3339 form
// the driver produces when it hands a DATETIME back as time.Time.
var timeFormats = []string{
	sqliteTimeLayout,
	time.RFC3339,
	time.RFC3339Nano,
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UpsertDayData stores protocol day summaries, replacing earlier readings of
// the same day. The current day keeps changing until it closes.
func (db *DB) UpsertDayData(days []models.DayData) error {
	query := `
		INSERT INTO day_data (date, tvl_usd, volume_usd, fees_usd, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			tvl_usd = excluded.tvl_usd,
			volume_usd = excluded.volume_usd,
			fees_usd = excluded.fees_usd,
			updated_at = excluded.updated_at
	`

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin day data upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(sqliteTimeLayout)
	for _, d := range days {
		if _, err := tx.ExecContext(ctx, query, d.Date.Unix(), d.TVLUSD, d.VolumeUSD, d.FeesUSD, now); err != nil {
			return fmt.Errorf("failed to upsert day data %s: %w", d.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit day data: %w", err)
	}
	return nil
}

// GetDayData returns stored day summaries at or after since, oldest first.
func (db *DB) GetDayData(since time.Time) ([]models.DayData, error) {
	query := `
		SELECT date, tvl_usd, volume_usd, fees_usd
		FROM day_data
		WHERE date >= ?
		ORDER BY date ASC
	`

	rows, err := db.QueryContext(context.Background(), query, unixOrMin(dayStart(since)))
	if err != nil {
		return nil, fmt.Errorf("failed to query day data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []models.DayData
	for rows.Next() {
		var d models.DayData
		var date int64
		if err := rows.Scan(&date, &d.TVLUSD, &d.VolumeUSD, &d.FeesUSD); err != nil {
			return nil, fmt.Errorf("failed to scan day data: %w", err)
		}
		d.Date = time.Unix(date, 0).UTC()
		days = append(days, d)
	}

	return days, rows.Err()
}

// GetHourlyActivity returns swap counts per UTC hour of day since the given
// time. Hours without swaps are included with a zero count.
func (db *DB) GetHourlyActivity(since time.Time) ([]models.HourlyActivity, error) {
	query := `
		SELECT
			CAST(strftime('%H', timestamp, 'unixepoch') AS INTEGER) as hour,
			COUNT(*) as swaps
		FROM swaps
		WHERE timestamp >= ?
		GROUP BY hour
		ORDER BY hour
	`

	rows, err := db.QueryContext(context.Background(), query, unixOrMin(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hours := make([]models.HourlyActivity, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	for rows.Next() {
		var hour, swaps int
		if err := rows.Scan(&hour, &swaps); err != nil {
			return nil, fmt.Errorf("failed to scan hourly activity: %w", err)
		}
		if hour >= 0 && hour < 24 {
			hours[hour].Swaps = swaps
		}
	}

	return hours, rows.Err()
}

// GetHistoryStats collects the stored history for a time range. Daily
// totals are summed in Go because SQLite would add the decimal text as
// floating point.
func (db *DB) GetHistoryStats(timeRange models.TimeRange) (*models.HistoryStats, error) {
	since := timeRange.Since(time.Now())

	stats := &models.HistoryStats{TimeRange: timeRange}

	swaps, err := db.GetSwapsSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get swaps: %w", err)
	}
	stats.SwapCount = len(swaps)

	daily, err := aggregator.DailyVolume(swaps, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily volume: %w", err)
	}
	stats.Daily = daily
	stats.TotalUSD = aggregator.Total(daily)

	if len(swaps) > 0 {
		// GetSwapsSince orders by timestamp
		stats.FirstSwap = swaps[0].Time()
		stats.LastSwap = swaps[len(swaps)-1].Time()
	}

	dayData, err := db.GetDayData(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get day data: %w", err)
	}
	stats.DayData = dayData

	hourly, err := db.GetHourlyActivity(since)
	if err != nil {
		return nil, fmt.Errorf("failed to get hourly activity: %w", err)
	}
	stats.Hourly = hourly

	return stats, nil
}

// dayStart truncates t to its UTC day. The zero time is returned unchanged.
func dayStart(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Unix(aggregator.IntervalStart(t.Unix(), aggregator.SecondsPerDay), 0).UTC()
}

// unixOrMin maps the zero time to the smallest timestamp so it matches
// every row.
func unixOrMin(t time.Time) int64 {
	if t.IsZero() {
		return math.MinInt64
	}
	return t.Unix()
}
