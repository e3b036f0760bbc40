package db

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-09-14 12:00:00", true},
		{"2024-09-14T12:00:00Z", true},
		{"2024-09-14T12:00:00.5+02:00", true},
		{"2024-09-14 12:00:00 +0000 UTC", false},
		{"yesterday", false},
	}
	for _, tt := range tests {
		if _, ok := parseTimeString(tt.input); ok != tt.ok {
			t.Errorf("parseTimeString(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
	}
}

func TestDayData_UpsertAndGet(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	day1 := time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	first := []models.DayData{
		{Date: day1, TVLUSD: decimal.RequireFromString("4000000000"), VolumeUSD: decimal.RequireFromString("1100000000.5"), FeesUSD: decimal.RequireFromString("800000")},
		{Date: day2, TVLUSD: decimal.RequireFromString("4100000000"), VolumeUSD: decimal.RequireFromString("500000000"), FeesUSD: decimal.RequireFromString("400000")},
	}
	if err := db.UpsertDayData(first); err != nil {
		t.Fatalf("UpsertDayData failed: %v", err)
	}

	// The open day is updated in place
	update := []models.DayData{
		{Date: day2, TVLUSD: decimal.RequireFromString("4200000000"), VolumeUSD: decimal.RequireFromString("900000000"), FeesUSD: decimal.RequireFromString("700000")},
	}
	if err := db.UpsertDayData(update); err != nil {
		t.Fatalf("UpsertDayData failed: %v", err)
	}

	days, err := db.GetDayData(time.Time{})
	if err != nil {
		t.Fatalf("GetDayData failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(days))
	}
	if !days[0].Date.Equal(day1) || days[0].VolumeUSD.String() != "1100000000.5" {
		t.Errorf("Unexpected first day: %+v", days[0])
	}
	if !days[1].VolumeUSD.Equal(decimal.NewFromInt(900000000)) {
		t.Errorf("Expected updated volume, got %s", days[1].VolumeUSD)
	}

	// A since in the middle of day2 still includes day2
	recent, err := db.GetDayData(day2.Add(15 * time.Hour))
	if err != nil {
		t.Fatalf("GetDayData failed: %v", err)
	}
	if len(recent) != 1 || !recent[0].Date.Equal(day2) {
		t.Errorf("Expected only day2, got %+v", recent)
	}
}

func TestGetHourlyActivity(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	base := time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC).Unix()
	if _, err := db.UpsertSwaps([]models.SwapRecord{
		swap("a", "1", base+3*3600),
		swap("b", "1", base+3*3600+59),
		swap("c", "1", base+23*3600),
	}); err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}

	hours, err := db.GetHourlyActivity(time.Time{})
	if err != nil {
		t.Fatalf("GetHourlyActivity failed: %v", err)
	}
	if len(hours) != 24 {
		t.Fatalf("Expected 24 hours, got %d", len(hours))
	}
	if hours[3].Swaps != 2 || hours[23].Swaps != 1 || hours[0].Swaps != 0 {
		t.Errorf("Unexpected hourly counts: %+v", hours)
	}
}

func TestGetHistoryStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now().UTC()
	if _, err := db.UpsertSwaps([]models.SwapRecord{
		swap("recent-1", "0.1", now.Add(-2*time.Hour).Unix()),
		swap("recent-2", "0.2", now.Add(-1*time.Hour).Unix()),
		swap("week-old", "100", now.Add(-5*24*time.Hour).Unix()),
		swap("ancient", "1000", now.Add(-90*24*time.Hour).Unix()),
	}); err != nil {
		t.Fatalf("UpsertSwaps failed: %v", err)
	}

	tests := []struct {
		timeRange models.TimeRange
		wantCount int
		wantTotal string
	}{
		{models.TimeRange24Hours, 2, "0.3"},
		{models.TimeRange7Days, 3, "100.3"},
		{models.TimeRange30Days, 3, "100.3"},
		{models.TimeRangeAllTime, 4, "1100.3"},
	}

	for _, tt := range tests {
		t.Run(tt.timeRange.String(), func(t *testing.T) {
			stats, err := db.GetHistoryStats(tt.timeRange)
			if err != nil {
				t.Fatalf("GetHistoryStats failed: %v", err)
			}
			if stats.SwapCount != tt.wantCount {
				t.Errorf("Expected %d swaps, got %d", tt.wantCount, stats.SwapCount)
			}
			if !stats.TotalUSD.Equal(decimal.RequireFromString(tt.wantTotal)) {
				t.Errorf("Expected total %s, got %s", tt.wantTotal, stats.TotalUSD)
			}
			if !stats.HasData() {
				t.Error("Expected HasData to be true")
			}
			if stats.FirstSwap.After(stats.LastSwap) {
				t.Errorf("FirstSwap %v after LastSwap %v", stats.FirstSwap, stats.LastSwap)
			}
			if len(stats.Hourly) != 24 {
				t.Errorf("Expected 24 hourly entries, got %d", len(stats.Hourly))
			}
		})
	}
}

func TestGetHistoryStats_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	stats, err := db.GetHistoryStats(models.TimeRange7Days)
	if err != nil {
		t.Fatalf("GetHistoryStats failed: %v", err)
	}
	if stats.HasData() {
		t.Error("Expected no data for empty DB")
	}
	if !stats.TotalUSD.IsZero() {
		t.Errorf("Expected zero total, got %s", stats.TotalUSD)
	}
}

func TestDayStart(t *testing.T) {
	in := time.Date(2024, 9, 14, 17, 30, 0, 0, time.UTC)
	if got := dayStart(in); !got.Equal(time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("dayStart() = %v", got)
	}
	if got := dayStart(time.Time{}); !got.IsZero() {
		t.Errorf("dayStart(zero) = %v", got)
	}
}
