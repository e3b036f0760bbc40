package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "24 Hours"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"AllTime", TimeRangeAllTime, "All Time"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Days(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want int
	}{
		{"24Hours", TimeRange24Hours, 1},
		{"7Days", TimeRange7Days, 7},
		{"30Days", TimeRange30Days, 30},
		{"AllTime", TimeRangeAllTime, 0},
		{"Unknown", TimeRange(999), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Days(); got != tt.want {
				t.Errorf("TimeRange.Days() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Since(t *testing.T) {
	now := time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)

	if got := TimeRange24Hours.Since(now); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("Since(24h) = %v", got)
	}
	if got := TimeRange7Days.Since(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("Since(7d) = %v", got)
	}
	if got := TimeRangeAllTime.Since(now); !got.IsZero() {
		t.Errorf("Since(all) = %v, want zero time", got)
	}
}

func TestTimeRange_Next(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want TimeRange
	}{
		{"24Hours -> 7Days", TimeRange24Hours, TimeRange7Days},
		{"7Days -> 30Days", TimeRange7Days, TimeRange30Days},
		{"30Days -> AllTime", TimeRange30Days, TimeRangeAllTime},
		{"AllTime -> 24Hours", TimeRangeAllTime, TimeRange24Hours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Next(); got != tt.want {
				t.Errorf("TimeRange.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryStats_HasData(t *testing.T) {
	tests := []struct {
		name  string
		stats *HistoryStats
		want  bool
	}{
		{"Nil", nil, false},
		{"NoData", &HistoryStats{SwapCount: 0}, false},
		{"HasData", &HistoryStats{SwapCount: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.HasData(); got != tt.want {
				t.Errorf("HistoryStats.HasData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistoryStats_PeakDay(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 9, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		daily   []Bucket
		wantDay time.Time
		wantOK  bool
		wantUSD string
	}{
		{name: "Empty", daily: nil, wantOK: false},
		{
			name: "SinglePeak",
			daily: []Bucket{
				{IntervalStart: day(1), TotalUSD: decimal.RequireFromString("50.5")},
				{IntervalStart: day(2), TotalUSD: decimal.RequireFromString("20")},
			},
			wantDay: day(1), wantOK: true, wantUSD: "50.5",
		},
		{
			name: "TieKeepsFirst",
			daily: []Bucket{
				{IntervalStart: day(1), TotalUSD: decimal.RequireFromString("10")},
				{IntervalStart: day(2), TotalUSD: decimal.RequireFromString("100")},
				{IntervalStart: day(3), TotalUSD: decimal.RequireFromString("100")},
			},
			wantDay: day(2), wantOK: true, wantUSD: "100",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HistoryStats{Daily: tt.daily}
			got, ok := h.PeakDay()
			if ok != tt.wantOK {
				t.Fatalf("PeakDay() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.IntervalStart.Equal(tt.wantDay) {
				t.Errorf("PeakDay() day = %v, want %v", got.IntervalStart, tt.wantDay)
			}
			if got.TotalUSD.String() != tt.wantUSD {
				t.Errorf("PeakDay() usd = %v, want %v", got.TotalUSD, tt.wantUSD)
			}
		})
	}
}
