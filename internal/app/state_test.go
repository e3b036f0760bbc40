package app

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.GetSnapshot() != nil {
		t.Error("Snapshot should be nil")
	}
	if !s.Loading.Initial {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading("swaps", true)
	if !s.Loading.Swaps || !s.IsRefreshing() {
		t.Error("Swaps loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading("swaps", false)
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading("initial", false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	if resources := s.GetLoadingResources(); len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading("history", true)
	resources := s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != "history" {
		t.Errorf("GetLoadingResources should contain history, got %v", resources)
	}
}

func TestState_Snapshot(t *testing.T) {
	s := NewState()
	s.SetLoading("swaps", true)

	snap := &models.SwapSnapshot{SwapCount: 3, TotalUSD: decimal.NewFromInt(42)}
	s.SetSnapshot(snap)

	if s.GetSnapshot() != snap {
		t.Error("GetSnapshot should return the stored snapshot")
	}
	if s.IsInitialLoading() || s.IsRefreshing() {
		t.Error("SetSnapshot should end initial and swaps loading")
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}
	if s.TimeSinceUpdate() < 0 {
		t.Error("TimeSinceUpdate should not be negative")
	}
}

func TestState_History(t *testing.T) {
	s := NewState()
	s.SetLoading("history", true)

	h := &models.HistoryStats{SwapCount: 2, TimeRange: models.TimeRange7Days}
	s.SetHistory(h)

	if s.GetHistory() != h {
		t.Error("GetHistory should return the stored history")
	}
	if s.Loading.History {
		t.Error("history loading should be cleared")
	}
}

func TestState_RulesAreCopied(t *testing.T) {
	s := NewState()
	rules := []models.AlertRule{{Pair: "WETH/USDC", ThresholdUSD: decimal.NewFromInt(100)}}

	s.SetRules(rules)
	rules[0].Pair = "mutated"

	got := s.GetRules()
	if len(got) != 1 || got[0].Pair != "WETH/USDC" {
		t.Fatalf("GetRules = %+v", got)
	}

	got[0].Pair = "changed"
	if s.GetRules()[0].Pair != "WETH/USDC" {
		t.Error("GetRules should return a copy")
	}
}

func TestState_Alerts(t *testing.T) {
	s := NewState()

	for i := range 12 {
		s.AddAlert(models.VolumeAlert{VolumeUSD: decimal.NewFromInt(int64(i))})
	}

	alerts := s.GetAlerts()
	if len(alerts) != maxNotifications {
		t.Fatalf("GetAlerts len = %d, want %d", len(alerts), maxNotifications)
	}
	if !alerts[0].VolumeUSD.Equal(decimal.NewFromInt(11)) {
		t.Errorf("newest alert = %s, want 11", alerts[0].VolumeUSD)
	}
}

func TestState_FetchRuns(t *testing.T) {
	s := NewState()
	s.SetFetchRuns([]models.FetchRun{{ID: 1}, {ID: 2, Error: "boom"}})

	runs := s.GetFetchRuns()
	if len(runs) != 2 || !runs[1].Failed() {
		t.Errorf("GetFetchRuns = %+v", runs)
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}
	if other := s.AddNotification(NotificationInfo, "other", time.Minute); other == id {
		t.Error("notification IDs should be unique")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 2 {
		t.Fatalf("GetNotifications len = %d, want 2", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 1 {
		t.Error("Notification should be removed")
	}

	s.ClearAllNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("ClearAllNotifications should remove everything")
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState()
	for range 15 {
		s.AddNotification(NotificationInfo, "n", time.Minute)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("notifications = %d, want %d", got, maxNotifications)
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	s.notifications = append(s.notifications,
		Notification{
			ID:        "expired",
			CreatedAt: time.Now().Add(-2 * time.Minute),
			Duration:  time.Minute,
		},
		Notification{
			ID:        "active",
			CreatedAt: time.Now(),
			Duration:  time.Minute,
		},
	)

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatal("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestState_Stats(t *testing.T) {
	s := NewState()
	s.SetLoading("stats", true)
	s.SetStats(services.StatsEvent{StoredSwaps: 10, RuleCount: 2})

	got := s.GetStats()
	if got == nil {
		t.Fatal("GetStats returned nil")
	}
	if got.StoredSwaps != 10 || got.RuleCount != 2 {
		t.Errorf("Stats = %+v", got)
	}
	if s.Loading.Stats {
		t.Error("stats loading should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		want string
		t    NotificationType
	}{
		{"success", NotificationSuccess},
		{"error", NotificationError},
		{"warning", NotificationWarning},
		{"info", NotificationInfo},
		{"loading", NotificationLoading},
		{"unknown", NotificationType(999)},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
