// Package models defines data structures and domain types.
package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Scalar holds a numeric subgraph value. The Graph encodes BigInt and
// BigDecimal as JSON strings, but plain numbers are accepted as well.
// Values that are neither are kept verbatim so validation can reject them.
type Scalar string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}

	*s = Scalar(data)
	return nil
}

// String returns the raw text of the scalar.
func (s Scalar) String() string {
	return string(s)
}

// TokenRef is the token sub-object of a subgraph swap.
type TokenRef struct {
	Symbol string `json:"symbol"`
}

// RawSwap is a swap exactly as the data source delivered it, before validation.
type RawSwap struct {
	Token0    *TokenRef `json:"token0,omitempty"`
	Token1    *TokenRef `json:"token1,omitempty"`
	ID        string    `json:"id"`
	AmountUSD Scalar    `json:"amountUSD"`
	Timestamp Scalar    `json:"timestamp"`
}

// Symbols returns the token pair labels, empty when the source omitted them.
func (r RawSwap) Symbols() (token0, token1 string) {
	if r.Token0 != nil {
		token0 = r.Token0.Symbol
	}
	if r.Token1 != nil {
		token1 = r.Token1.Symbol
	}
	return token0, token1
}

// SwapRecord is a validated swap. It is never mutated after parsing.
type SwapRecord struct {
	AmountUSD decimal.Decimal
	ID        string
	Token0    string
	Token1    string
	Timestamp int64 // unix seconds
}

// Time returns the swap timestamp as a UTC instant.
func (s SwapRecord) Time() time.Time {
	return time.Unix(s.Timestamp, 0).UTC()
}

// Pair returns the "TOKEN0/TOKEN1" label, or "" when symbols are unknown.
func (s SwapRecord) Pair() string {
	if s.Token0 == "" && s.Token1 == "" {
		return ""
	}
	return s.Token0 + "/" + s.Token1
}

// TimeWindow is an inclusive time range. Start must not be after End.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in [Start, End].
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// WindowEndingAt returns the window of length d that ends at end.
func WindowEndingAt(end time.Time, d time.Duration) *TimeWindow {
	return &TimeWindow{Start: end.Add(-d), End: end}
}

// AggregationConfig controls how swaps are grouped into buckets.
type AggregationConfig struct {
	Window            *TimeWindow // nil means unbounded
	BucketSizeSeconds int64
}

// Bucket is the USD total of all swaps whose timestamp falls in the interval
// starting at IntervalStart.
type Bucket struct {
	IntervalStart time.Time
	TotalUSD      decimal.Decimal
	Count         int
}

// AggregationResult is a bucket series plus the number of input records
// that were rejected during parsing. Records holds the ones that parsed, in
// input order, whether or not they fell inside the window.
type AggregationResult struct {
	Buckets []Bucket
	Records []SwapRecord
	Skipped int
}

// Point is a single chart sample.
type Point struct {
	X time.Time
	Y float64
}
