package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/services"
)

func newReadyModel() *Model {
	model := NewModel(nil)
	model.ready = true
	model.width = 100
	model.height = 30
	return model
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// lastNotification runs cmd and applies the resulting AddNotificationMsg.
func lastNotification(t *testing.T, model *Model, cmd tea.Cmd) Notification {
	t.Helper()

	if cmd == nil {
		t.Fatal("expected a notification command")
	}
	msg, ok := cmd().(AddNotificationMsg)
	if !ok {
		t.Fatalf("command returned %T, want AddNotificationMsg", msg)
	}
	model.Update(msg)

	notifs := model.state.GetNotifications()
	if len(notifs) == 0 {
		t.Fatal("no notifications")
	}
	return notifs[len(notifs)-1]
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabDashboard {
		t.Error("Default tab should be Dashboard")
	}
	if len(model.tabs) != 4 {
		t.Errorf("Should have 4 tab placeholders, got %d", len(model.tabs))
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
	notifs := model.state.GetNotifications()
	if len(notifs) != 1 || notifs[0].ID != LoadingNotificationID {
		t.Errorf("Init should show a loading notification, got %+v", notifs)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)

	newModel, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	m, ok := newModel.(*Model)
	if !ok {
		t.Fatal("Update returned wrong model type")
	}
	if m.width != 100 || m.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", m.width, m.height)
	}
	if !m.IsReady() {
		t.Error("Model should be ready after WindowSizeMsg")
	}
}

func TestModel_TabSwitching(t *testing.T) {
	model := newReadyModel()

	model.Update(TabSwitchMsg{Tab: TabHistory})
	if model.GetActiveTab() != TabHistory {
		t.Errorf("ActiveTab = %v, want History", model.GetActiveTab())
	}

	tests := []struct {
		key  rune
		want TabID
	}{
		{'2', TabTokens},
		{'3', TabHistory},
		{'4', TabInfo},
		{'1', TabDashboard},
	}
	for _, tt := range tests {
		model.Update(runeKey(tt.key))
		if model.GetActiveTab() != tt.want {
			t.Errorf("key %q: ActiveTab = %v, want %v", tt.key, model.GetActiveTab(), tt.want)
		}
	}

	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.GetActiveTab() != TabInfo {
		t.Errorf("prev from Dashboard = %v, want Info", model.GetActiveTab())
	}
	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.GetActiveTab() != TabDashboard {
		t.Errorf("next from Info = %v, want Dashboard", model.GetActiveTab())
	}

	model.Update(TabSwitchMsg{Tab: TabID(42)})
	if model.GetActiveTab() != TabDashboard {
		t.Error("out of range tab should be ignored")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	if _, cmd := model.Update(TickMsg{Time: time.Now()}); cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	if view := model.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model = newReadyModel()
	view := model.View()
	for _, name := range []string{"Dashboard", "Tokens", "History", "Info"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should show %s tab", name)
		}
	}
	if !strings.Contains(view, "not available") {
		t.Error("View should show placeholder text")
	}
	if !strings.Contains(view, "waiting for data") {
		t.Error("View should show the waiting status before the first snapshot")
	}
}

func TestModel_Help(t *testing.T) {
	model := newReadyModel()

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("showHelp should be true")
	}
	if view := model.View(); !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}

	model.handleKeyMsg(runeKey('?'))
	if model.showHelp {
		t.Error("showHelp should be false after toggle")
	}

	model.showHelp = true
	model.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("Esc should close help")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil)

	model.Update(AddNotificationMsg{Message: "Test Note", Type: NotificationInfo})

	if notifs := model.state.GetNotifications(); len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}

	model.ready = true
	model.width = 80
	model.height = 24
	if view := model.View(); !strings.Contains(view, "Test Note") {
		t.Error("View should show notification")
	}

	id := model.state.GetNotifications()[0].ID
	model.Update(RemoveNotificationMsg{ID: id})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("RemoveNotificationMsg should remove the notification")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil)

	model.handleServiceEvent(services.StatsEvent{StoredSwaps: 5})
	if model.state.GetStats().StoredSwaps != 5 {
		t.Error("Stats should be updated")
	}

	model.handleServiceEvent(services.RefreshingEvent{})
	if !model.state.IsRefreshing() {
		t.Error("RefreshingEvent should mark swaps as loading")
	}

	snap := &models.SwapSnapshot{SwapCount: 7}
	model.handleServiceEvent(services.SnapshotUpdatedEvent{Snapshot: snap})
	if model.state.GetSnapshot() != snap {
		t.Error("SnapshotUpdatedEvent should store the snapshot")
	}
	if model.state.IsInitialLoading() || model.state.IsRefreshing() {
		t.Error("SnapshotUpdatedEvent should end loading")
	}

	rules := []models.AlertRule{{Pair: "WETH/USDC", ThresholdUSD: decimal.NewFromInt(10)}}
	model.handleServiceEvent(services.RulesChangedEvent{Rules: rules})
	if len(model.state.GetRules()) != 1 {
		t.Error("RulesChangedEvent should store the rules")
	}

	cmd := model.handleServiceEvent(services.ErrorEvent{Service: "swaps", Error: errors.New("boom")})
	if n := lastNotification(t, model, cmd); n.Type != NotificationError || !strings.Contains(n.Message, "boom") {
		t.Errorf("error notification = %+v", n)
	}
}

func TestModel_AlertTriggered(t *testing.T) {
	model := NewModel(nil)

	alert := models.VolumeAlert{
		IntervalStart: time.Unix(1800, 0),
		VolumeUSD:     decimal.RequireFromString("12500.5"),
		Rule:          models.AlertRule{Pair: "WETH/USDC", ThresholdUSD: decimal.NewFromInt(10000)},
	}

	cmd := model.handleServiceEvent(services.AlertTriggeredEvent{Alert: alert})
	n := lastNotification(t, model, cmd)
	if n.Type != NotificationWarning {
		t.Errorf("Type = %v, want warning", n.Type)
	}
	if !strings.Contains(n.Message, "WETH/USDC") || !strings.Contains(n.Message, "10,000") {
		t.Errorf("Message = %q", n.Message)
	}
	if len(model.state.GetAlerts()) != 1 {
		t.Error("alert should be recorded in state")
	}
}

func TestModel_ErrorEventEndsInitialLoad(t *testing.T) {
	model := NewModel(nil)
	model.Init()

	model.handleServiceEvent(services.ErrorEvent{Service: "swaps", Error: errors.New("down")})

	if model.state.IsInitialLoading() {
		t.Error("a failed first refresh should end the initial load")
	}
	for _, n := range model.state.GetNotifications() {
		if n.ID == LoadingNotificationID {
			t.Error("loading notification should be cleared")
		}
	}
}

func TestModel_Update_Messages(t *testing.T) {
	model := NewModel(nil)

	model.Update(StartLoadingMsg{Resource: "swaps"})
	if !model.state.Loading.Swaps {
		t.Error("Loading.Swaps should be true")
	}
	model.Update(StopLoadingMsg{Resource: "swaps"})
	if model.state.Loading.Swaps {
		t.Error("Loading.Swaps should be false")
	}

	model.Update(SnapshotLoadedMsg{Stats: services.StatsEvent{RuleCount: 1}})
	if !model.state.IsInitialLoading() {
		t.Error("a nil snapshot should keep the initial load")
	}
	if model.state.GetStats().RuleCount != 1 {
		t.Error("Stats should be updated")
	}

	model.Update(SnapshotLoadedMsg{Snapshot: &models.SwapSnapshot{}})
	if model.state.IsInitialLoading() {
		t.Error("Initial loading should be false")
	}

	model.Update(StatsLoadedMsg{Stats: services.StatsEvent{StoredSwaps: 2}})
	if model.state.GetStats().StoredSwaps != 2 {
		t.Error("Stats should be updated")
	}

	model.Update(RulesLoadedMsg{Rules: []models.AlertRule{{Pair: models.AllPairs}}})
	if len(model.state.GetRules()) != 1 {
		t.Error("Rules should be updated")
	}

	model.Update(FetchRunsLoadedMsg{Runs: []models.FetchRun{{ID: 1}}})
	model.Update(FetchRunsLoadedMsg{Error: errors.New("db closed")})
	if len(model.state.GetFetchRuns()) != 1 {
		t.Error("a failed load should keep the previous runs")
	}

	// services is nil, so refresh requests are no-ops
	model.Update(RefreshMsg{Resource: "all"})
	model.Update(RefreshMsg{Resource: "stats"})
	model.Update(ClearExpiredNotificationsMsg{})
	if cmd := model.handleKeyMsg(runeKey('r')); cmd != nil {
		t.Error("refresh without services should do nothing")
	}
}

func TestModel_RefreshResult(t *testing.T) {
	model := NewModel(nil)
	model.state.SetLoading("swaps", true)

	cmds := model.handleRefreshResult(RefreshResultMsg{Error: errors.New("timeout")})
	if n := lastNotification(t, model, cmds[0]); n.Type != NotificationError {
		t.Errorf("failed refresh notification = %+v", n)
	}
	if model.state.IsRefreshing() {
		t.Error("refresh result should clear swaps loading")
	}

	cmds = model.handleRefreshResult(RefreshResultMsg{Snapshot: &models.SwapSnapshot{SwapCount: 1234}})
	n := lastNotification(t, model, cmds[0])
	if n.Type != NotificationSuccess || !strings.Contains(n.Message, "1,234") {
		t.Errorf("success notification = %+v", n)
	}
}

func TestModel_Clipboard(t *testing.T) {
	model := NewModel(nil)

	_, cmd := model.Update(CopyToClipboardMsg{Text: "/tmp/alerts.json"})
	if cmd == nil {
		t.Error("CopyToClipboardMsg should return a command")
	}

	cmds := model.handleAppMsg(ClipboardResultMsg{Text: "x", Error: errors.New("no clipboard")})
	if n := lastNotification(t, model, cmds[0]); n.Type != NotificationError {
		t.Errorf("clipboard failure notification = %+v", n)
	}

	cmds = model.handleAppMsg(ClipboardResultMsg{Text: "/tmp/alerts.json"})
	if n := lastNotification(t, model, cmds[0]); !strings.Contains(n.Message, "/tmp/alerts.json") {
		t.Errorf("clipboard notification = %+v", n)
	}
}

func TestModel_StatusWhileRefreshing(t *testing.T) {
	model := newReadyModel()
	model.state.SetLoading("swaps", true)

	if view := model.View(); !strings.Contains(view, "refreshing") {
		t.Error("navbar should show the refreshing status")
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	if _, cmd := model.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	tests := []struct {
		want string
		id   TabID
	}{
		{"Dashboard", TabDashboard},
		{"Tokens", TabTokens},
		{"History", TabHistory},
		{"Info", TabInfo},
		{"Unknown", TabID(999)},
		{"Unknown", TabID(-1)},
	}
	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("TabID(%d).String() = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
}
