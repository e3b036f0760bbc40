package aggregator

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

// VolumeByToken credits each swap's full amount to both of its tokens.
// Swaps without symbols are ignored. Results are sorted by volume
// descending, then symbol ascending.
func VolumeByToken(records []models.SwapRecord) []models.TokenVolume {
	index := make(map[string]int)
	var out []models.TokenVolume

	credit := func(symbol string, amount decimal.Decimal) {
		if symbol == "" {
			return
		}
		i, ok := index[symbol]
		if !ok {
			i = len(out)
			index[symbol] = i
			out = append(out, models.TokenVolume{Symbol: symbol, VolumeUSD: decimal.Zero})
		}
		out[i].VolumeUSD = out[i].VolumeUSD.Add(amount)
		out[i].Swaps++
	}

	for _, rec := range records {
		credit(rec.Token0, rec.AmountUSD)
		if rec.Token1 != rec.Token0 {
			credit(rec.Token1, rec.AmountUSD)
		}
	}

	slices.SortFunc(out, func(a, b models.TokenVolume) int {
		if c := b.VolumeUSD.Cmp(a.VolumeUSD); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return out
}

// TopPairs returns the n pairs with the highest volume. n <= 0 returns all.
func TopPairs(records []models.SwapRecord, n int) []models.PairVolume {
	index := make(map[string]int)
	var out []models.PairVolume

	for _, rec := range records {
		pair := rec.Pair()
		if pair == "" {
			continue
		}
		i, ok := index[pair]
		if !ok {
			i = len(out)
			index[pair] = i
			out = append(out, models.PairVolume{Pair: pair, VolumeUSD: decimal.Zero})
		}
		out[i].VolumeUSD = out[i].VolumeUSD.Add(rec.AmountUSD)
		out[i].Swaps++
	}

	slices.SortFunc(out, func(a, b models.PairVolume) int {
		if c := b.VolumeUSD.Cmp(a.VolumeUSD); c != 0 {
			return c
		}
		return cmp.Compare(a.Pair, b.Pair)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PairVolumeSeries aggregates only the swaps of a single pair. The pair is
// matched case-insensitively in either token order; "*" matches everything.
func PairVolumeSeries(records []models.SwapRecord, pair string, cfg models.AggregationConfig) ([]models.Bucket, error) {
	if pair == "" || pair == "*" {
		return Aggregate(records, cfg)
	}

	matched := make([]models.SwapRecord, 0, len(records))
	for _, rec := range records {
		if MatchPair(rec, pair) {
			matched = append(matched, rec)
		}
	}
	return Aggregate(matched, cfg)
}

// MatchPair reports whether rec trades the tokens named by a "A/B" label.
func MatchPair(rec models.SwapRecord, pair string) bool {
	a, b, ok := strings.Cut(pair, "/")
	if !ok {
		return false
	}
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return (strings.EqualFold(rec.Token0, a) && strings.EqualFold(rec.Token1, b)) ||
		(strings.EqualFold(rec.Token0, b) && strings.EqualFold(rec.Token1, a))
}

// Recent returns up to n swaps, newest first. Equal timestamps are ordered
// by id so the result does not depend on input order.
func Recent(records []models.SwapRecord, n int) []models.SwapRecord {
	if n <= 0 {
		return nil
	}

	out := slices.Clone(records)
	slices.SortFunc(out, func(a, b models.SwapRecord) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// ChunkVolume sums consecutive runs of chunk swaps in input order. The last
// chunk may be shorter.
func ChunkVolume(records []models.SwapRecord, chunk int) ([]decimal.Decimal, error) {
	if chunk <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, chunk)
	}

	out := make([]decimal.Decimal, 0, (len(records)+chunk-1)/chunk)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		sum := decimal.Zero
		for _, rec := range records[start:end] {
			sum = sum.Add(rec.AmountUSD)
		}
		out = append(out, sum)
	}
	return out, nil
}
