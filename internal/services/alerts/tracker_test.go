package alerts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

const bucket = int64(1800)

func swap(id string, ts int64, usd, t0, t1 string) models.SwapRecord {
	return models.SwapRecord{
		ID:        id,
		AmountUSD: decimal.RequireFromString(usd),
		Timestamp: ts,
		Token0:    t0,
		Token1:    t1,
	}
}

func TestTracker_FirstObservationIsBaseline(t *testing.T) {
	tr := NewTracker()
	rules := []models.AlertRule{rule("WETH/USDC", "100")}
	records := []models.SwapRecord{swap("a", 3600, "500", "WETH", "USDC")}

	if got := tr.Observe(rules, records, bucket, time.Unix(3700, 0)); len(got) != 0 {
		t.Errorf("first Observe() fired %d alerts, want 0", len(got))
	}
}

func TestTracker_UpwardCrossing(t *testing.T) {
	tr := NewTracker()
	rules := []models.AlertRule{rule("WETH/USDC", "100")}
	now := time.Unix(3700, 0)

	below := []models.SwapRecord{swap("a", 3600, "60", "WETH", "USDC")}
	above := append(below, swap("b", 3650, "40", "USDC", "WETH"))

	tr.Observe(rules, below, bucket, now)

	got := tr.Observe(rules, above, bucket, now)
	if len(got) != 1 {
		t.Fatalf("Observe() fired %d alerts, want 1", len(got))
	}
	if !got[0].VolumeUSD.Equal(decimal.NewFromInt(100)) {
		t.Errorf("alert volume = %s, want 100", got[0].VolumeUSD)
	}
	if !got[0].IntervalStart.Equal(time.Unix(3600, 0)) {
		t.Errorf("alert interval = %v", got[0].IntervalStart)
	}

	if again := tr.Observe(rules, above, bucket, now); len(again) != 0 {
		t.Errorf("staying above the threshold fired %d alerts, want 0", len(again))
	}
}

func TestTracker_NewIntervalResetsBaseline(t *testing.T) {
	tr := NewTracker()
	rules := []models.AlertRule{rule("*", "100")}

	records := []models.SwapRecord{
		swap("a", 0, "150", "WETH", "USDC"),
		swap("b", 1800, "150", "WBTC", "WETH"),
	}

	tr.Observe(rules, records, bucket, time.Unix(100, 0))

	got := tr.Observe(rules, records, bucket, time.Unix(1900, 0))
	if len(got) != 1 {
		t.Fatalf("Observe() in a new interval fired %d alerts, want 1", len(got))
	}
	if !got[0].IntervalStart.Equal(time.Unix(1800, 0)) {
		t.Errorf("alert interval = %v, want 1800", got[0].IntervalStart)
	}
}

func TestTracker_IgnoresOtherPairsAndIntervals(t *testing.T) {
	tr := NewTracker()
	rules := []models.AlertRule{rule("WETH/USDC", "100")}
	now := time.Unix(3700, 0)

	tr.Observe(rules, nil, bucket, now)

	records := []models.SwapRecord{
		swap("a", 3600, "500", "WBTC", "USDC"),
		swap("b", 1000, "500", "WETH", "USDC"),
	}
	if got := tr.Observe(rules, records, bucket, now); len(got) != 0 {
		t.Errorf("Observe() fired %d alerts for unrelated swaps", len(got))
	}
}

func TestTracker_RemovedRuleForgotten(t *testing.T) {
	tr := NewTracker()
	r := rule("*", "100")
	now := time.Unix(3700, 0)
	records := []models.SwapRecord{swap("a", 3600, "500", "WETH", "USDC")}

	tr.Observe([]models.AlertRule{r}, nil, bucket, now)
	tr.Observe(nil, nil, bucket, now)

	if got := tr.Observe([]models.AlertRule{r}, records, bucket, now); len(got) != 0 {
		t.Errorf("re-added rule should start from a fresh baseline, fired %d", len(got))
	}
}

func TestTracker_InvalidBucketSize(t *testing.T) {
	tr := NewTracker()
	if got := tr.Observe([]models.AlertRule{rule("*", "1")}, nil, 0, time.Now()); got != nil {
		t.Errorf("Observe() with zero bucket = %v, want nil", got)
	}
}

func TestAlertRule_Label(t *testing.T) {
	tests := []struct {
		name string
		rule models.AlertRule
		want string
	}{
		{"Named", models.AlertRule{Pair: "WETH/USDC", Name: "eth"}, "eth"},
		{"Pair", models.AlertRule{Pair: "WETH/USDC"}, "WETH/USDC"},
		{"AllPairs", models.AlertRule{Pair: models.AllPairs}, "All pairs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Label(); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}
