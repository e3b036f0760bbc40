// Package swaps polls the subgraph, stores what it fetched and publishes
// aggregated snapshots.
package swaps

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

const (
	// TopPairsCount is how many pairs a snapshot keeps.
	TopPairsCount = 10
	// TopPoolsCount is how many pools by liquidity a snapshot lists.
	TopPoolsCount = 5
	// ChunkSize is the number of consecutive swaps summed per chunk.
	ChunkSize = 100
)

// Fetcher is the subset of the subgraph client the service needs.
type Fetcher interface {
	FetchSwaps(ctx context.Context, since time.Time, limit int) ([]models.RawSwap, error)
	FetchDayData(ctx context.Context, days int) ([]models.DayData, error)
	FetchLatestBlock(ctx context.Context) (int64, error)
	FetchTopPools(ctx context.Context, n int) ([]models.Pool, error)
}

// Store persists swaps between runs. The service works without one.
type Store interface {
	UpsertSwaps(swaps []models.SwapRecord) (int, error)
	UpsertDayData(days []models.DayData) error
	GetSwapsSince(since time.Time) ([]models.SwapRecord, error)
	InsertFetchRun(run *models.FetchRun) error
	PruneSwapsBefore(cutoff time.Time) (int64, error)
	PruneFetchRunsBefore(cutoff time.Time) (int64, error)
	ReplacePools(pools []models.Pool) error
	GetPools() ([]models.Pool, error)
	Vacuum() error
}

// EventType defines the type of swaps event.
type EventType int

const (
	// EventRefreshing indicates that a refresh started.
	EventRefreshing EventType = iota
	// EventSnapshotUpdated indicates that a new snapshot is available.
	EventSnapshotUpdated
	// EventError indicates that a refresh failed.
	EventError
)

// Event represents a swaps service event.
type Event struct {
	Error    error
	Snapshot *models.SwapSnapshot
	// Records are the stored swaps inside the snapshot window.
	Records []models.SwapRecord
	Type    EventType
}

// Config holds configuration for the swaps service.
type Config struct {
	PollInterval  time.Duration
	Window        time.Duration
	BucketSize    time.Duration
	RetryBackoff  time.Duration
	FetchLimit    int
	RecentCount   int
	RetentionDays int
	// VacuumAfter is how many pruned swaps accumulate before the store is
	// compacted.
	VacuumAfter int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:  60 * time.Second,
		Window:        24 * time.Hour,
		BucketSize:    30 * time.Minute,
		RetryBackoff:  500 * time.Millisecond,
		FetchLimit:    5000,
		RecentCount:   5,
		RetentionDays: 30,
		VacuumAfter:   10000,
	}
}

// Service fetches swaps on a timer and keeps the latest snapshot.
type Service struct {
	fetcher    Fetcher
	store      Store
	snapshot   *models.SwapSnapshot
	now        func() time.Time
	eventChan  chan Event
	stopChan   chan struct{}
	refreshSem chan struct{}
	config     Config
	pruned     int
	mu         sync.RWMutex
	startOnce  sync.Once
	closeOnce  sync.Once
}

// New creates a swaps service. Polling begins with Start.
func New(fetcher Fetcher, store Store, config Config) *Service {
	defaults := DefaultConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if config.BucketSize < time.Second {
		config.BucketSize = defaults.BucketSize
	}
	if config.FetchLimit <= 0 {
		config.FetchLimit = defaults.FetchLimit
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = defaults.RetryBackoff
	}
	if config.VacuumAfter <= 0 {
		config.VacuumAfter = defaults.VacuumAfter
	}

	return &Service{
		fetcher:    fetcher,
		store:      store,
		now:        time.Now,
		eventChan:  make(chan Event, 100),
		stopChan:   make(chan struct{}),
		refreshSem: make(chan struct{}, 1),
		config:     config,
	}
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// Start launches the polling goroutine. An initial refresh runs immediately.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		go s.poll()
	})
}

// GetSnapshot returns the latest snapshot, or nil before the first refresh.
func (s *Service) GetSnapshot() *models.SwapSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh fetches, stores and aggregates swaps for the configured window.
// Concurrent calls wait for each other.
func (s *Service) Refresh(ctx context.Context) (*models.SwapSnapshot, error) {
	select {
	case s.refreshSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.refreshSem }()

	s.sendEvent(Event{Type: EventRefreshing})

	started := s.now()
	window := models.WindowEndingAt(started, s.config.Window)
	cfg := models.AggregationConfig{
		Window:            window,
		BucketSizeSeconds: int64(s.config.BucketSize / time.Second),
	}
	run := &models.FetchRun{Timestamp: started}

	var (
		raws  []models.RawSwap
		days  []models.DayData
		pools []models.Pool
		block int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raws, err = s.fetchSwapsWithRetry(gctx, window.Start)
		return err
	})
	g.Go(func() error {
		var err error
		if days, err = s.fetcher.FetchDayData(gctx, s.config.RetentionDays); err != nil {
			logger.Warn("Failed to fetch day data", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if pools, err = s.fetcher.FetchTopPools(gctx, TopPoolsCount); err != nil {
			logger.Warn("Failed to fetch top pools", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if block, err = s.fetcher.FetchLatestBlock(gctx); err != nil {
			logger.Debug("Failed to fetch latest block", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, s.fail(run, started, err)
	}

	result, err := aggregator.AggregateRaw(raws, cfg)
	if err != nil {
		return nil, s.fail(run, started, err)
	}
	run.Fetched = len(raws)
	run.Skipped = result.Skipped
	if result.Skipped > 0 {
		logger.Warn("Skipped malformed swaps", "count", result.Skipped, "fetched", len(raws))
	}

	windowRecords := result.Records
	buckets := result.Buckets
	if s.store != nil {
		inserted, err := s.store.UpsertSwaps(result.Records)
		if err != nil {
			return nil, s.fail(run, started, fmt.Errorf("store swaps: %w", err))
		}
		run.Inserted = inserted

		if len(days) > 0 {
			if err := s.store.UpsertDayData(days); err != nil {
				logger.Warn("Failed to store day data", "error", err)
			}
		}
		pools = s.syncPools(pools)

		stored, err := s.store.GetSwapsSince(window.Start)
		if err != nil {
			return nil, s.fail(run, started, fmt.Errorf("load swaps: %w", err))
		}
		windowRecords = stored
		if buckets, err = aggregator.Aggregate(stored, cfg); err != nil {
			return nil, s.fail(run, started, err)
		}
	} else {
		run.Inserted = len(result.Records)
	}

	snapshot, err := newSnapshot(windowRecords, buckets, window, s.config.BucketSize, s.config.RecentCount)
	if err != nil {
		return nil, s.fail(run, started, err)
	}
	snapshot.FetchedAt = started
	snapshot.Skipped = result.Skipped
	snapshot.LatestBlock = block
	snapshot.Pools = pools

	run.DurationMs = s.now().Sub(started).Milliseconds()
	s.recordRun(run)
	s.prune(started, window.Start)

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	logger.Info("Swaps refreshed",
		"fetched", run.Fetched,
		"inserted", run.Inserted,
		"skipped", run.Skipped,
		"buckets", len(snapshot.Buckets),
		"duration_ms", run.DurationMs,
	)

	s.sendEvent(Event{Type: EventSnapshotUpdated, Snapshot: snapshot, Records: windowRecords})
	return snapshot, nil
}

// syncPools stores a fresh pools list, or falls back to the stored one when
// the fetch came back empty.
func (s *Service) syncPools(pools []models.Pool) []models.Pool {
	if len(pools) > 0 {
		if err := s.store.ReplacePools(pools); err != nil {
			logger.Warn("Failed to store top pools", "error", err)
		}
		return pools
	}

	stored, err := s.store.GetPools()
	if err != nil {
		logger.Warn("Failed to load stored pools", "error", err)
		return nil
	}
	return stored
}

// BuildSnapshot aggregates records into everything the dashboard shows.
func BuildSnapshot(records []models.SwapRecord, window *models.TimeWindow, bucketSize time.Duration, recent int) (*models.SwapSnapshot, error) {
	if window == nil {
		return nil, fmt.Errorf("%w: missing window", aggregator.ErrInvalidConfig)
	}

	buckets, err := aggregator.Aggregate(records, models.AggregationConfig{
		Window:            window,
		BucketSizeSeconds: int64(bucketSize / time.Second),
	})
	if err != nil {
		return nil, err
	}
	return newSnapshot(records, buckets, window, bucketSize, recent)
}

// newSnapshot derives the per-token, per-pair and chunk views from the
// records inside window. buckets must already cover the same window.
func newSnapshot(records []models.SwapRecord, buckets []models.Bucket, window *models.TimeWindow, bucketSize time.Duration, recent int) (*models.SwapSnapshot, error) {
	inWindow := aggregator.Filter(records, window)

	chronological := slices.Clone(inWindow)
	slices.SortFunc(chronological, func(a, b models.SwapRecord) int {
		if c := cmp.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	chunks, err := aggregator.ChunkVolume(chronological, ChunkSize)
	if err != nil {
		return nil, err
	}

	return &models.SwapSnapshot{
		Window:     *window,
		Buckets:    buckets,
		Recent:     aggregator.Recent(inWindow, recent),
		Tokens:     aggregator.VolumeByToken(inWindow),
		Pairs:      aggregator.TopPairs(inWindow, TopPairsCount),
		Chunks:     chunks,
		ChunkSize:  ChunkSize,
		TotalUSD:   aggregator.Total(buckets),
		BucketSize: bucketSize,
		SwapCount:  len(inWindow),
	}, nil
}

func (s *Service) fetchSwapsWithRetry(ctx context.Context, since time.Time) ([]models.RawSwap, error) {
	var (
		raws []models.RawSwap
		err  error
	)

	backoff := s.config.RetryBackoff
	for i := range 3 {
		raws, err = s.fetcher.FetchSwaps(ctx, since, s.config.FetchLimit)
		if err == nil || errors.Is(err, context.Canceled) {
			return raws, err
		}

		if i < 2 {
			logger.Debug("Retrying swap fetch", "attempt", i+1, "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, err
}

func (s *Service) fail(run *models.FetchRun, started time.Time, err error) error {
	run.Error = err.Error()
	run.DurationMs = s.now().Sub(started).Milliseconds()
	s.recordRun(run)

	logger.Error("Swap refresh failed", "error", err)
	s.sendEvent(Event{Type: EventError, Error: err})
	return err
}

func (s *Service) recordRun(run *models.FetchRun) {
	if s.store == nil {
		return
	}
	if err := s.store.InsertFetchRun(run); err != nil {
		logger.Warn("Failed to record fetch run", "error", err)
	}
}

// prune drops stored data older than the retention period, never cutting
// into the live window.
func (s *Service) prune(now, windowStart time.Time) {
	if s.store == nil || s.config.RetentionDays <= 0 {
		return
	}

	cutoff := now.AddDate(0, 0, -s.config.RetentionDays)
	if cutoff.After(windowStart) {
		cutoff = windowStart
	}

	if n, err := s.store.PruneSwapsBefore(cutoff); err != nil {
		logger.Warn("Failed to prune swaps", "error", err)
	} else if n > 0 {
		logger.Debug("Pruned swaps", "count", n)
		s.pruned += int(n)
	}
	if _, err := s.store.PruneFetchRunsBefore(cutoff); err != nil {
		logger.Warn("Failed to prune fetch runs", "error", err)
	}

	if s.pruned >= s.config.VacuumAfter {
		if err := s.store.Vacuum(); err != nil {
			logger.Warn("Failed to vacuum database", "error", err)
			return
		}
		logger.Debug("Vacuumed database", "pruned", s.pruned)
		s.pruned = 0
	}
}

func (s *Service) poll() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	if _, err := s.Refresh(ctx); err != nil {
		logger.Debug("Initial swap refresh failed", "error", err)
	}

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				logger.Debug("Swap refresh failed", "error", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent never blocks; when the buffer is full the oldest event is dropped.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops polling and cancels an in-flight refresh.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	return nil
}
