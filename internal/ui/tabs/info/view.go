package info

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderRulesCard(),
		m.renderFetchRunsCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, alert rules and fetch log")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// redact hides the API key wherever it is embedded in the subgraph URL.
func redact(url, apiKey string) string {
	if apiKey == "" {
		return url
	}
	return strings.ReplaceAll(url, apiKey, "****")
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config != nil {
		c := m.config
		rows = append(rows,
			m.renderConfigRow("Subgraph", redact(c.SubgraphURL, c.SubgraphAPIKey)),
			m.renderConfigRow("Network", c.SubgraphNetwork),
			m.renderConfigRow("Database", c.DatabasePath),
			m.renderConfigRow("Alerts File", c.AlertsPath),
			m.renderConfigRow("Log File", c.LogPath),
			m.renderConfigRow("Refresh", c.RefreshInterval.String()),
			m.renderConfigRow("Window", c.SwapWindow.String()),
			m.renderConfigRow("Bucket Size", c.BucketSize.String()),
			m.renderConfigRow("Fetch Limit", humanize.Comma(int64(c.FetchLimit))),
			m.renderConfigRow("Retention", fmt.Sprintf("%d days", c.RetentionDays)),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows = append(rows, "", styles.HelpStyle.Render("Press 'c' to copy the alerts file path"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(14).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderRulesCard() string {
	rules := m.state.GetRules()
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Alert Rules (%d)", len(rules))), ""}

	if len(rules) == 0 {
		rows = append(rows,
			styles.HelpStyle.Render("No alert rules configured"),
			styles.InfoTextStyle.Render("╰─▶ Add rules to the alerts file, it is reloaded on save"),
		)
	}

	selected := -1
	if m.rules != nil && len(rules) > 0 {
		selected = min(m.selected, len(rules)-1)
	}
	for i, r := range rules {
		pair := r.Pair
		if pair == models.AllPairs {
			pair = "all pairs"
		}
		marker := "  "
		if i == selected {
			marker = styles.FocusedStyle.Render("▶ ")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			marker,
			lipgloss.NewStyle().Width(18).Bold(true).Render(r.Label()),
			lipgloss.NewStyle().Width(16).Foreground(styles.TextSecondary).Render(pair),
			styles.WarningTextStyle.Render("≥ "+components.FormatUSD(r.ThresholdUSD)),
		))
	}

	if m.rules != nil {
		rows = append(rows, "", styles.HelpStyle.Render("Press 'a' to alert on the top pair, 'd' to delete the selected rule"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderFetchRunsCard() string {
	runs := m.state.GetFetchRuns()
	rows := []string{styles.CardTitleStyle.Render("Recent Fetches"), ""}

	if len(runs) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No fetches recorded yet"))
	}

	for _, r := range runs {
		status := styles.SuccessTextStyle.Render("●")
		detail := fmt.Sprintf("%s fetched, %s new, %s skipped",
			humanize.Comma(int64(r.Fetched)),
			humanize.Comma(int64(r.Inserted)),
			humanize.Comma(int64(r.Skipped)),
		)
		if r.Failed() {
			status = styles.ErrorTextStyle.Render("●")
			detail = styles.ErrorTextStyle.Render(r.Error)
		}

		rows = append(rows, fmt.Sprintf("%s %s %s %s",
			status,
			lipgloss.NewStyle().Width(16).Foreground(styles.TextSecondary).Render(humanize.Time(r.Timestamp)),
			lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Render((time.Duration(r.DurationMs)*time.Millisecond).String()),
			detail,
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{styles.CardTitleStyle.Render("About " + version.AppName), ""}

	rows = append(rows,
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
	)

	if stats := m.state.GetStats(); stats != nil {
		rows = append(rows, fmt.Sprintf("Stored swaps: %s",
			styles.InfoTextStyle.Render(humanize.Comma(int64(stats.StoredSwaps)))))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
