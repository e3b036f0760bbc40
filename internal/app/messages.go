package app

import (
	"time"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// SnapshotLoadedMsg carries the manager's current snapshot. Snapshot is nil
// until the first refresh completes.
type SnapshotLoadedMsg struct {
	Snapshot *models.SwapSnapshot
	Stats    services.StatsEvent
}

// RefreshResultMsg contains the result of a manual refresh.
type RefreshResultMsg struct {
	Error    error
	Snapshot *models.SwapSnapshot
}

// StatsLoadedMsg contains loaded statistics.
type StatsLoadedMsg struct {
	Stats services.StatsEvent
}

// RulesLoadedMsg contains the current alert rules.
type RulesLoadedMsg struct {
	Rules []models.AlertRule
}

// FetchRunsLoadedMsg contains the most recent refresh attempts.
type FetchRunsLoadedMsg struct {
	Error error
	Runs  []models.FetchRun
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "swaps", "stats", "runs"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Duration time.Duration
	Type     NotificationType
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Error error
	Text  string
}
