package alerts

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

type observation struct {
	interval time.Time
	volume   decimal.Decimal
}

// Tracker remembers the last observed bucket volume per rule and reports
// upward threshold crossings.
type Tracker struct {
	last map[string]observation
	mu   sync.Mutex
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{last: make(map[string]observation)}
}

// Observe evaluates every rule against the interval containing now. A rule
// fires when its volume moves from below the threshold to at or above it.
// The first observation of a rule only records a baseline. A baseline from an
// earlier interval counts as zero, so a fresh interval can fire again.
func (t *Tracker) Observe(rules []models.AlertRule, records []models.SwapRecord, bucketSize int64, now time.Time) []models.VolumeAlert {
	if bucketSize <= 0 {
		return nil
	}

	start := aggregator.IntervalStart(now.Unix(), bucketSize)
	interval := time.Unix(start, 0).UTC()
	window := &models.TimeWindow{Start: interval, End: interval.Add(time.Duration(bucketSize)*time.Second - time.Nanosecond)}
	cfg := models.AggregationConfig{Window: window, BucketSizeSeconds: bucketSize}

	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]struct{}, len(rules))
	var fired []models.VolumeAlert

	for _, rule := range rules {
		key := rule.Key()
		seen[key] = struct{}{}

		buckets, err := aggregator.PairVolumeSeries(records, rule.Pair, cfg)
		if err != nil {
			logger.Warn("Failed to evaluate alert rule", "pair", rule.Pair, "error", err)
			continue
		}
		volume := aggregator.Total(buckets)

		prev, ok := t.last[key]
		t.last[key] = observation{interval: interval, volume: volume}
		if !ok {
			continue
		}

		before := prev.volume
		if !prev.interval.Equal(interval) {
			before = decimal.Zero
		}

		if before.LessThan(rule.ThresholdUSD) && volume.GreaterThanOrEqual(rule.ThresholdUSD) {
			fired = append(fired, models.VolumeAlert{
				Rule:          rule,
				VolumeUSD:     volume,
				IntervalStart: interval,
			})
		}
	}

	for key := range t.last {
		if _, ok := seen[key]; !ok {
			delete(t.last, key)
		}
	}

	return fired
}
