package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all stored historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Since returns the earliest instant covered by the range relative to now.
// The zero time is returned for TimeRangeAllTime.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// HistoryStats contains the stored swap history for the selected range.
type HistoryStats struct {
	FirstSwap time.Time
	LastSwap  time.Time
	TotalUSD  decimal.Decimal
	Daily     []Bucket
	DayData   []DayData
	Hourly    []HourlyActivity
	SwapCount int
	TimeRange TimeRange
}

// HasData returns true if any swaps are stored for the range.
func (h *HistoryStats) HasData() bool {
	return h != nil && h.SwapCount > 0
}

// PeakDay returns the day with the highest volume.
func (h *HistoryStats) PeakDay() (Bucket, bool) {
	if h == nil || len(h.Daily) == 0 {
		return Bucket{}, false
	}
	peak := h.Daily[0]
	for _, b := range h.Daily[1:] {
		if b.TotalUSD.GreaterThan(peak.TotalUSD) {
			peak = b
		}
	}
	return peak, true
}

// TotalDays returns the number of calendar days with stored swaps.
func (h *HistoryStats) TotalDays() int {
	if h == nil {
		return 0
	}
	return len(h.Daily)
}

// HourlyActivity is the number of stored swaps that happened in an hour of
// the day (UTC).
type HourlyActivity struct {
	Hour  int
	Swaps int
}
