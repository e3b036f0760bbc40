// Package tokens provides the per-token and per-pair volume breakdown tab.
package tokens

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/app"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/components"
)

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Copy key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous token"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next token"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy symbol"),
		),
	}
}

// Model is the tokens tab.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	shareBar components.ShareBar
	width    int
	height   int
	selected int
}

// New creates the tokens tab.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		shareBar: components.NewShareBar(),
	}
}

// Init implements app.Tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements app.Tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		m.clampSelection()
		return m, nil
	}

	tokens := m.tokens()
	switch {
	case key.Matches(keyMsg, m.keys.Down):
		if len(tokens) > 0 {
			m.selected = (m.selected + 1) % len(tokens)
		}
	case key.Matches(keyMsg, m.keys.Up):
		if len(tokens) > 0 {
			m.selected = (m.selected - 1 + len(tokens)) % len(tokens)
		}
	case key.Matches(keyMsg, m.keys.Copy):
		if m.selected < len(tokens) {
			symbol := tokens[m.selected].Symbol
			return m, func() tea.Msg { return app.CopyToClipboardMsg{Text: symbol} }
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) tokens() []models.TokenVolume {
	if snap := m.state.GetSnapshot(); snap != nil {
		return snap.Tokens
	}
	return nil
}

// clampSelection keeps the cursor inside the token list after a refresh
// shrinks it.
func (m *Model) clampSelection() {
	if n := len(m.tokens()); m.selected >= n {
		m.selected = max(n-1, 0)
	}
}

// SetSize implements app.Tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp implements app.Tab.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Copy}
}

// FullHelp implements app.Tab.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.keys.Up, m.keys.Down}, {m.keys.Copy}}
}
