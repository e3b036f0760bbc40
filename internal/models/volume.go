package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenVolume is the USD volume attributed to a single token symbol.
type TokenVolume struct {
	VolumeUSD decimal.Decimal
	Symbol    string
	Swaps     int
}

// PairVolume is the USD volume of a token pair.
type PairVolume struct {
	VolumeUSD decimal.Decimal
	Pair      string
	Swaps     int
}

// DayData is the protocol-wide daily summary published by the subgraph.
type DayData struct {
	Date      time.Time
	TVLUSD    decimal.Decimal
	VolumeUSD decimal.Decimal
	FeesUSD   decimal.Decimal
}

// Pool is a liquidity pool as listed by the subgraph. Liquidity is the raw
// in-range liquidity, not a USD amount.
type Pool struct {
	Liquidity decimal.Decimal
	VolumeUSD decimal.Decimal
	ID        string
	Token0    string
	Token1    string
}

// Pair returns the "TOKEN0/TOKEN1" label of the pool.
func (p Pool) Pair() string {
	return p.Token0 + "/" + p.Token1
}

// SwapSnapshot is what the dashboard renders after a refresh.
type SwapSnapshot struct {
	FetchedAt   time.Time
	Window      TimeWindow
	Buckets     []Bucket
	Recent      []SwapRecord
	Tokens      []TokenVolume
	Pairs       []PairVolume
	Pools       []Pool
	Chunks      []decimal.Decimal // volume per ChunkSize consecutive swaps, oldest first
	TotalUSD    decimal.Decimal
	BucketSize  time.Duration
	SwapCount   int
	ChunkSize   int
	Skipped     int
	LatestBlock int64
}

// HasData reports whether the snapshot contains any bucketed volume.
func (s *SwapSnapshot) HasData() bool {
	return s != nil && len(s.Buckets) > 0
}

// LatestBucket returns the most recent bucket, if any.
func (s *SwapSnapshot) LatestBucket() (Bucket, bool) {
	if !s.HasData() {
		return Bucket{}, false
	}
	return s.Buckets[len(s.Buckets)-1], true
}
