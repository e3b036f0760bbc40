// Package info provides the configuration, alert rules and fetch log tab.
package info

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/app"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/config"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
)

// RuleEditor persists alert rule changes.
type RuleEditor interface {
	AddRule(rule models.AlertRule) error
	DeleteRule(key string) error
}

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Copy   key.Binding
	Add    key.Binding
	Delete key.Binding
	Up     key.Binding
	Down   key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy alerts path"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "alert on top pair"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete rule"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "select rule"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "select rule"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	rules    RuleEditor
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	selected int
}

// New creates a new info model. A nil editor makes the rules list read-only.
func New(state *app.State, cfg *config.Config, rules RuleEditor) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		rules:    rules,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Copy):
		if m.config == nil || m.config.AlertsPath == "" {
			return m, nil
		}
		path := m.config.AlertsPath
		return m, func() tea.Msg {
			return app.CopyToClipboardMsg{Text: path}
		}
	case key.Matches(keyMsg, m.keys.Up):
		if n := len(m.state.GetRules()); n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Down):
		if n := len(m.state.GetRules()); n > 0 {
			m.selected = (m.selected + 1) % n
		}
		return m, nil
	case key.Matches(keyMsg, m.keys.Add):
		return m, m.addTopPairRule()
	case key.Matches(keyMsg, m.keys.Delete):
		return m, m.deleteSelectedRule()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(keyMsg)
	return m, cmd
}

// selectedRule returns the highlighted rule, clamping the cursor when the
// list shrank since the last keypress.
func (m *Model) selectedRule() (models.AlertRule, bool) {
	rules := m.state.GetRules()
	if len(rules) == 0 {
		m.selected = 0
		return models.AlertRule{}, false
	}
	m.selected = min(m.selected, len(rules)-1)
	return rules[m.selected], true
}

// topPairRule proposes an alert at twice the top pair's average volume per
// bucket.
func topPairRule(snap *models.SwapSnapshot) (models.AlertRule, bool) {
	if snap == nil || len(snap.Pairs) == 0 {
		return models.AlertRule{}, false
	}
	top := snap.Pairs[0]
	avg := top.VolumeUSD
	if n := len(snap.Buckets); n > 0 {
		avg = avg.Div(decimal.NewFromInt(int64(n)))
	}
	threshold := avg.Mul(decimal.NewFromInt(2)).Ceil()
	if !threshold.IsPositive() {
		return models.AlertRule{}, false
	}
	return models.AlertRule{
		Name:         top.Pair + " 2x avg",
		Pair:         top.Pair,
		ThresholdUSD: threshold,
	}, true
}

func (m *Model) addTopPairRule() tea.Cmd {
	if m.rules == nil {
		return nil
	}
	rule, ok := topPairRule(m.state.GetSnapshot())
	if !ok {
		return notify("No pair volume to base a rule on", app.NotificationWarning)
	}
	editor := m.rules
	return func() tea.Msg {
		if err := editor.AddRule(rule); err != nil {
			return app.AddNotificationMsg{Message: err.Error(), Type: app.NotificationError, Duration: 5 * time.Second}
		}
		return app.AddNotificationMsg{Message: fmt.Sprintf("Added rule %q", rule.Label()), Type: app.NotificationSuccess, Duration: 3 * time.Second}
	}
}

func (m *Model) deleteSelectedRule() tea.Cmd {
	if m.rules == nil {
		return nil
	}
	rule, ok := m.selectedRule()
	if !ok {
		return nil
	}
	editor := m.rules
	return func() tea.Msg {
		if err := editor.DeleteRule(rule.Key()); err != nil {
			return app.AddNotificationMsg{Message: err.Error(), Type: app.NotificationError, Duration: 5 * time.Second}
		}
		return app.AddNotificationMsg{Message: fmt.Sprintf("Deleted rule %q", rule.Label()), Type: app.NotificationSuccess, Duration: 3 * time.Second}
	}
}

func notify(message string, typ app.NotificationType) tea.Cmd {
	return func() tea.Msg {
		return app.AddNotificationMsg{Message: message, Type: typ, Duration: 3 * time.Second}
	}
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Copy,
		m.keys.Add,
		m.keys.Delete,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Copy, m.keys.Add, m.keys.Delete},
		{m.keys.Up, m.keys.Down},
	}
}
