// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/config"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/db"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services/alerts"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services/swaps"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/subgraph"
)

type (
	// SnapshotUpdatedEvent is emitted after every successful refresh.
	SnapshotUpdatedEvent struct {
		Snapshot *models.SwapSnapshot
	}

	// RefreshingEvent is emitted when a refresh starts.
	RefreshingEvent struct{}

	// AlertTriggeredEvent is emitted when a volume rule crosses its threshold.
	AlertTriggeredEvent struct {
		Alert models.VolumeAlert
	}

	// RulesChangedEvent is emitted when the alert rules are (re)loaded.
	RulesChangedEvent struct {
		Rules []models.AlertRule
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}

	// StatsEvent summarizes the stored data.
	StatsEvent struct {
		LastRun     *models.FetchRun
		StoredSwaps int
		RuleCount   int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SnapshotUpdatedEvent) isServiceEvent() {}
func (RefreshingEvent) isServiceEvent()      {}
func (AlertTriggeredEvent) isServiceEvent()  {}
func (RulesChangedEvent) isServiceEvent()    {}
func (ErrorEvent) isServiceEvent()           {}
func (StatsEvent) isServiceEvent()           {}

// Notifier delivers a desktop notification.
type Notifier func(title, message string) error

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	alerts      *alerts.Service
	swaps       *swaps.Service
	tracker     *alerts.Tracker
	database    *db.DB
	notify      Notifier
	stopChan    chan struct{}
	subscribers []chan ServiceEvent
	cfg         config.Config
	mu          sync.RWMutex
	closeOnce   sync.Once
}

// NewManager wires the subgraph client, database, alerts and swaps services.
// Polling starts immediately.
func NewManager(cfg *config.Config) (*Manager, error) {
	m, err := newManager(cfg, desktopNotify)
	if err != nil {
		return nil, err
	}
	m.swaps.Start()
	return m, nil
}

func newManager(cfg *config.Config, notify Notifier) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	m := &Manager{
		tracker:  alerts.NewTracker(),
		notify:   notify,
		stopChan: make(chan struct{}),
		cfg:      *cfg,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.alerts, err = alerts.New(cfg.AlertsPath)
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize alerts: %w", err)
	}

	client := subgraph.NewClient(cfg.SubgraphURL, cfg.SubgraphAPIKey)

	swapsConfig := swaps.DefaultConfig()
	swapsConfig.PollInterval = cfg.RefreshInterval
	swapsConfig.Window = cfg.SwapWindow
	swapsConfig.BucketSize = cfg.BucketSize
	swapsConfig.FetchLimit = cfg.FetchLimit
	swapsConfig.RecentCount = cfg.RecentCount
	swapsConfig.RetentionDays = cfg.RetentionDays

	m.swaps = swaps.New(client, m.database, swapsConfig)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.swaps.Events():
			m.handleSwapsEvent(event)

		case event := <-m.alerts.Events():
			m.handleAlertsEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleSwapsEvent(event swaps.Event) {
	switch event.Type {
	case swaps.EventRefreshing:
		m.broadcast(RefreshingEvent{})

	case swaps.EventSnapshotUpdated:
		m.broadcast(SnapshotUpdatedEvent{Snapshot: event.Snapshot})

		if event.Snapshot != nil {
			if event.Snapshot.Skipped > 0 {
				m.broadcast(ErrorEvent{
					Service: "swaps",
					Error:   fmt.Errorf("skipped %d malformed swaps", event.Snapshot.Skipped),
				})
			}
			m.checkAlerts(event.Records, event.Snapshot.BucketSize, event.Snapshot.FetchedAt)
		}

	case swaps.EventError:
		m.broadcast(ErrorEvent{Service: "swaps", Error: event.Error})
	}
}

func (m *Manager) handleAlertsEvent(event alerts.Event) {
	switch event.Type {
	case alerts.EventRulesLoaded, alerts.EventRulesChanged:
		m.broadcast(RulesChangedEvent{Rules: m.alerts.GetRules()})

	case alerts.EventError:
		m.broadcast(ErrorEvent{Service: "alerts", Error: event.Error})
	}
}

// checkAlerts notifies about rules whose threshold was crossed upward in the
// current bucket.
func (m *Manager) checkAlerts(records []models.SwapRecord, bucketSize time.Duration, now time.Time) {
	rules := m.alerts.GetRules()
	if len(rules) == 0 {
		return
	}

	fired := m.tracker.Observe(rules, records, int64(bucketSize/time.Second), now)
	for _, alert := range fired {
		m.broadcast(AlertTriggeredEvent{Alert: alert})

		title := fmt.Sprintf("Volume alert: %s", alert.Rule.Label())
		body := fmt.Sprintf("$%s traded since %s (threshold $%s)",
			humanize.CommafWithDigits(alert.VolumeUSD.Round(2).InexactFloat64(), 2),
			alert.IntervalStart.Local().Format("15:04"),
			humanize.CommafWithDigits(alert.Rule.ThresholdUSD.Round(2).InexactFloat64(), 2),
		)
		if m.notify == nil {
			continue
		}
		if err := m.notify(title, body); err != nil {
			logger.Warn("Failed to send notification", "error", err)
		}
	}
}

// broadcast sends an event to all subscribers without blocking.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel. It yields
// nil once the channel is closed.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// GetSnapshot returns the latest snapshot, or nil before the first refresh.
func (m *Manager) GetSnapshot() *models.SwapSnapshot {
	return m.swaps.GetSnapshot()
}

// Refresh forces a refresh outside the polling schedule.
func (m *Manager) Refresh(ctx context.Context) (*models.SwapSnapshot, error) {
	return m.swaps.Refresh(ctx)
}

// GetHistory returns the stored swap history for a time range.
func (m *Manager) GetHistory(timeRange models.TimeRange) (*models.HistoryStats, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetHistoryStats(timeRange)
}

// GetRules returns the current alert rules.
func (m *Manager) GetRules() []models.AlertRule {
	return m.alerts.GetRules()
}

// AddRule persists a new alert rule. Subscribers see the change as a
// RulesChangedEvent.
func (m *Manager) AddRule(rule models.AlertRule) error {
	return m.alerts.AddRule(rule)
}

// DeleteRule removes the alert rule with the given key.
func (m *Manager) DeleteRule(key string) error {
	return m.alerts.DeleteRule(key)
}

// GetFetchRuns returns the most recent refresh attempts.
func (m *Manager) GetFetchRuns(limit int) ([]models.FetchRun, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.GetRecentFetchRuns(limit)
}

// GetStats returns a summary of the stored data.
func (m *Manager) GetStats() StatsEvent {
	stats := StatsEvent{RuleCount: len(m.alerts.GetRules())}

	if n, err := m.database.CountSwaps(); err == nil {
		stats.StoredSwaps = n
	}
	if runs, err := m.database.GetRecentFetchRuns(1); err == nil && len(runs) > 0 {
		stats.LastRun = &runs[0]
	}
	return stats
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() config.Config {
	return m.cfg
}

// AlertsPath returns the watched rules file.
func (m *Manager) AlertsPath() string {
	return m.alerts.Path()
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.swaps.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := m.alerts.Close(); err != nil {
			errs = append(errs, err)
		}
		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
