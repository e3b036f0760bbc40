// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Duration  time.Duration
	Type      NotificationType
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Swaps   bool
	History bool
	Stats   bool
}

// State is the shared application state read by every tab.
type State struct {
	LastUpdated time.Time
	Snapshot    *models.SwapSnapshot
	History     *models.HistoryStats
	Stats       *services.StatsEvent
	Rules       []models.AlertRule
	FetchRuns   []models.FetchRun
	Alerts      []models.VolumeAlert

	notifications []Notification
	Loading       LoadingState
	mu            sync.RWMutex
}

// NewState creates an empty state that is still in its initial load.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "swaps":
		s.Loading.Swaps = loading
	case "history":
		s.Loading.History = loading
	case "stats":
		s.Loading.Stats = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Swaps ||
		s.Loading.History ||
		s.Loading.Stats
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsRefreshing returns true while a swap refresh is in flight.
func (s *State) IsRefreshing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Swaps
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Swaps {
		resources = append(resources, "swaps")
	}
	if s.Loading.History {
		resources = append(resources, "history")
	}
	if s.Loading.Stats {
		resources = append(resources, "stats")
	}
	return resources
}

// SetSnapshot stores the latest snapshot and ends the initial load.
func (s *State) SetSnapshot(snapshot *models.SwapSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Snapshot = snapshot
	s.Loading.Initial = false
	s.Loading.Swaps = false
	s.LastUpdated = time.Now()
}

// GetSnapshot returns the latest snapshot, or nil before the first refresh.
func (s *State) GetSnapshot() *models.SwapSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Snapshot
}

// SetHistory stores the history for the selected range.
func (s *State) SetHistory(history *models.HistoryStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = history
	s.Loading.History = false
}

// GetHistory returns the last loaded history.
func (s *State) GetHistory() *models.HistoryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.History
}

// SetRules replaces the alert rules.
func (s *State) SetRules(rules []models.AlertRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rules = slices.Clone(rules)
}

// GetRules returns a copy of the alert rules.
func (s *State) GetRules() []models.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Rules)
}

// AddAlert records a triggered alert, newest first.
func (s *State) AddAlert(alert models.VolumeAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Alerts = append([]models.VolumeAlert{alert}, s.Alerts...)
	if len(s.Alerts) > maxNotifications {
		s.Alerts = s.Alerts[:maxNotifications]
	}
}

// GetAlerts returns the recently triggered alerts, newest first.
func (s *State) GetAlerts() []models.VolumeAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.Alerts)
}

// SetFetchRuns replaces the recent refresh attempts.
func (s *State) SetFetchRuns(runs []models.FetchRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FetchRuns = runs
}

// GetFetchRuns returns a copy of the recent refresh attempts.
func (s *State) GetFetchRuns() []models.FetchRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.FetchRuns)
}

// SetStats updates the statistics.
func (s *State) SetStats(stats services.StatsEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stats = &stats
	s.Loading.Stats = false
}

// GetStats returns the current statistics.
func (s *State) GetStats() *services.StatsEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification := Notification{
		ID:        uuid.NewString(),
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return notification.ID
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.ID == id
	})
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.IsExpired()
	})
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
