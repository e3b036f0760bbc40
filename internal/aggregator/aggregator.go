// Package aggregator turns flat swap lists into chart-ready volume series.
//
// Every function in this package is pure: inputs are never mutated and no
// state survives between calls. Amounts are summed with decimal arithmetic so
// that many small swaps do not drift the way float accumulation does.
package aggregator

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

var (
	// ErrInvalidConfig is returned when the aggregation settings are unusable.
	ErrInvalidConfig = errors.New("invalid aggregation config")
	// ErrInvalidRecord marks a single swap that could not be parsed.
	ErrInvalidRecord = errors.New("invalid swap record")
)

// SecondsPerDay is the bucket size used for daily volume.
const SecondsPerDay int64 = 24 * 60 * 60

// ValidateConfig checks the bucket size and window bounds.
func ValidateConfig(cfg models.AggregationConfig) error {
	if cfg.BucketSizeSeconds <= 0 {
		return fmt.Errorf("%w: bucket size must be positive, got %d", ErrInvalidConfig, cfg.BucketSizeSeconds)
	}
	if cfg.Window != nil && cfg.Window.Start.After(cfg.Window.End) {
		return fmt.Errorf("%w: window start %s is after end %s", ErrInvalidConfig,
			cfg.Window.Start.Format(time.RFC3339), cfg.Window.End.Format(time.RFC3339))
	}
	return nil
}

// Aggregate groups records into fixed-size intervals and sums their USD
// amounts. The result is sorted by interval start and only contains
// intervals that received at least one record.
func Aggregate(records []models.SwapRecord, cfg models.AggregationConfig) ([]models.Bucket, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	type acc struct {
		total decimal.Decimal
		count int
	}
	groups := make(map[int64]*acc)

	for i := range records {
		rec := &records[i]
		if cfg.Window != nil && !cfg.Window.Contains(rec.Time()) {
			continue
		}

		start := IntervalStart(rec.Timestamp, cfg.BucketSizeSeconds)
		g, ok := groups[start]
		if !ok {
			g = &acc{total: decimal.Zero}
			groups[start] = g
		}
		g.total = g.total.Add(rec.AmountUSD)
		g.count++
	}

	starts := slices.Sorted(maps.Keys(groups))
	buckets := make([]models.Bucket, 0, len(starts))
	for _, start := range starts {
		g := groups[start]
		buckets = append(buckets, models.Bucket{
			IntervalStart: time.Unix(start, 0).UTC(),
			TotalUSD:      g.total,
			Count:         g.count,
		})
	}

	return buckets, nil
}

// AggregateRaw validates the config, parses raw records and aggregates the
// ones that parse. Unparseable records are skipped and counted instead of
// failing the whole call.
func AggregateRaw(raws []models.RawSwap, cfg models.AggregationConfig) (*models.AggregationResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	records, skipped := ParseSwaps(raws)

	buckets, err := Aggregate(records, cfg)
	if err != nil {
		return nil, err
	}

	return &models.AggregationResult{
		Buckets: buckets,
		Records: records,
		Skipped: skipped,
	}, nil
}

// IntervalStart floors ts to a multiple of size. Floor division keeps
// pre-epoch timestamps in the bucket that precedes them. A timestamp whose
// floor is not representable as an int64 is clamped to the lowest multiple
// that is.
func IntervalStart(ts, size int64) int64 {
	q := ts / size
	if ts%size != 0 && ts < 0 {
		if q <= math.MinInt64/size {
			return q * size
		}
		q--
	}
	return q * size
}

// Filter returns the records inside window. A nil window keeps everything.
func Filter(records []models.SwapRecord, window *models.TimeWindow) []models.SwapRecord {
	out := make([]models.SwapRecord, 0, len(records))
	for _, rec := range records {
		if window == nil || window.Contains(rec.Time()) {
			out = append(out, rec)
		}
	}
	return out
}

// Total sums the bucket totals.
func Total(buckets []models.Bucket) decimal.Decimal {
	total := decimal.Zero
	for _, b := range buckets {
		total = total.Add(b.TotalUSD)
	}
	return total
}

// DailyVolume aggregates records into UTC calendar days.
func DailyVolume(records []models.SwapRecord, window *models.TimeWindow) ([]models.Bucket, error) {
	return Aggregate(records, models.AggregationConfig{
		BucketSizeSeconds: SecondsPerDay,
		Window:            window,
	})
}

// Series converts buckets into chart points. Float conversion happens only
// here, at the rendering boundary.
func Series(buckets []models.Bucket) []models.Point {
	points := make([]models.Point, len(buckets))
	for i, b := range buckets {
		points[i] = models.Point{X: b.IntervalStart, Y: b.TotalUSD.InexactFloat64()}
	}
	return points
}

// Values returns only the y values of the bucket series.
func Values(buckets []models.Bucket) []float64 {
	values := make([]float64, len(buckets))
	for i, b := range buckets {
		values[i] = b.TotalUSD.InexactFloat64()
	}
	return values
}

// Dense fills the gaps of a sparse series with zero buckets between the
// first and last interval. Charts that assume evenly spaced samples use it.
func Dense(buckets []models.Bucket, size time.Duration) []models.Bucket {
	if len(buckets) < 2 || size <= 0 {
		return slices.Clone(buckets)
	}

	first := buckets[0].IntervalStart
	last := buckets[len(buckets)-1].IntervalStart
	n := int(last.Sub(first)/size) + 1

	out := make([]models.Bucket, 0, n)
	j := 0
	for t := first; !t.After(last); t = t.Add(size) {
		if j < len(buckets) && buckets[j].IntervalStart.Equal(t) {
			out = append(out, buckets[j])
			j++
			continue
		}
		out = append(out, models.Bucket{IntervalStart: t, TotalUSD: decimal.Zero})
	}
	return out
}
