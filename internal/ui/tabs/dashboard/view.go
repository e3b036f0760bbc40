package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/styles"
)

const (
	indentSpace  = "  "
	recentRows   = 8
	shimmerLines = 3
)

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	snap := m.state.GetSnapshot()
	cardWidth := max(m.width-6, 40)

	sections := []string{m.renderTitle(snap)}

	if snap == nil {
		sections = append(sections, m.renderEmpty(cardWidth))
	} else {
		sections = append(sections,
			m.renderSummary(snap, cardWidth),
			m.renderVolumeChart(snap, cardWidth),
			m.renderTopPairs(snap, cardWidth),
			m.renderRecent(snap, cardWidth),
		)
	}

	if alerts := m.state.GetAlerts(); len(alerts) > 0 {
		sections = append(sections, m.renderAlerts(alerts, cardWidth))
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the spinner above shimmering placeholder bars.
func (m *Model) renderLoading() string {
	lines := []string{m.spinner.ViewWithLabel(), ""}
	barWidth := min(max(m.width-10, 30), 80)
	for i := range shimmerLines {
		lines = append(lines, components.SimpleShareBarLoading(barWidth, m.animationFrame+i*10))
	}
	return styles.CenterBoth(lipgloss.JoinVertical(lipgloss.Left, lines...), m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle(snap *models.SwapSnapshot) string {
	title := styles.TitleStyle.Render("Uniswap V3 Swap Volume")

	subtitle := "Waiting for the first fetch"
	if snap != nil {
		subtitle = fmt.Sprintf("%s → %s UTC · %s buckets",
			snap.Window.Start.UTC().Format("Jan 02 15:04"),
			snap.Window.End.UTC().Format("Jan 02 15:04"),
			formatBucketSize(snap.BucketSize),
		)
		if snap.LatestBlock > 0 {
			subtitle += " · block " + humanize.Comma(snap.LatestBlock)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderEmpty(cardWidth int) string {
	emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	rows := []string{
		cardHeader("◈", "Volume"),
		"",
		fmt.Sprintf("%s%s %s", indentSpace, emptyIcon, styles.HelpStyle.Render("No swaps fetched yet")),
		"",
		styles.InfoTextStyle.Render(indentSpace + "╰─▶ Press r to fetch now"),
	}
	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSummary(snap *models.SwapSnapshot, cardWidth int) string {
	contentWidth := cardWidth - 4

	stat := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.StatLabelStyle.Render(label),
			styles.StatValueStyle.Render(value),
		)
	}

	latest := "n/a"
	if b, ok := snap.LatestBucket(); ok {
		latest = components.FormatUSD(b.TotalUSD)
	}

	colWidth := max(contentWidth/3, 14)
	col := lipgloss.NewStyle().Width(colWidth)
	statsRow := lipgloss.JoinHorizontal(lipgloss.Top,
		col.Render(stat("Total volume", components.FormatUSD(snap.TotalUSD))),
		col.Render(stat("Swaps", components.FormatCount(snap.SwapCount))),
		col.Render(stat("Latest bucket", latest)),
	)

	rows := []string{cardHeader("◈", "Summary"), "", statsRow, ""}

	values := aggregator.Values(aggregator.Dense(snap.Buckets, snap.BucketSize))
	if len(values) > 0 {
		rows = append(rows, indentSpace+components.RenderColoredSparkline(values, contentWidth-4))
	}

	interval := components.NewIntervalBar(snap.BucketSize)
	rows = append(rows, interval.ViewWithLabel(time.Now(), indentSpace+"Current bucket", contentWidth))

	if snap.Skipped > 0 {
		rows = append(rows, "", styles.WarningTextStyle.Render(
			fmt.Sprintf("%s⚠ %s malformed swaps skipped", indentSpace, components.FormatCount(snap.Skipped)),
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderVolumeChart(snap *models.SwapSnapshot, cardWidth int) string {
	points := aggregator.Series(aggregator.Dense(snap.Buckets, snap.BucketSize))

	title := "Volume per bucket"
	var chart string
	switch m.mode {
	case chartBars:
		title += " (bars)"
		tail := points[max(0, len(points)-12):]
		labels := make([]string, len(tail))
		for i, p := range tail {
			labels[i] = p.X.UTC().Format("15:04")
		}
		chart = components.RenderBarChart(pointValues(tail), labels, cardWidth-6)
	case chartChunks:
		title = fmt.Sprintf("Volume per %d swaps", snap.ChunkSize)
		values := make([]float64, len(snap.Chunks))
		for i, c := range snap.Chunks {
			values[i] = c.InexactFloat64()
		}
		chart = components.RenderLineChart(values, cardWidth-16, 8,
			fmt.Sprintf("%d chunks, oldest first", len(values)))
	default:
		caption := "USD per " + formatBucketSize(snap.BucketSize)
		if len(points) > 0 {
			caption += fmt.Sprintf(" · %s → %s",
				points[0].X.UTC().Format("15:04"),
				points[len(points)-1].X.UTC().Format("15:04"))
		}
		chart = components.RenderLineChart(pointValues(points), cardWidth-16, 8, caption)
	}

	if chart == "" {
		chart = styles.HelpStyle.Render("No data available")
	}

	rows := []string{cardHeader("▤", title), "", chart}
	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func pointValues(points []models.Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Y
	}
	return values
}

func (m *Model) renderTopPairs(snap *models.SwapSnapshot, cardWidth int) string {
	rows := []string{cardHeader("◆", "Top pairs"), ""}

	pairs := snap.Pairs[:min(len(snap.Pairs), topPairCount)]
	if len(pairs) == 0 {
		rows = append(rows, indentSpace+styles.HelpStyle.Render("No pair data"))
	}

	for _, p := range pairs {
		target := components.SharePercent(p.VolumeUSD, snap.TotalUSD)
		bar := m.shareBar.View(m.displayPercent(p.Pair, target), p.Pair, cardWidth-22)
		value := styles.HelpStyle.Render(" " + components.FormatUSDCompact(p.VolumeUSD.InexactFloat64()))
		rows = append(rows, indentSpace+bar+value)
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderRecent(snap *models.SwapSnapshot, cardWidth int) string {
	rows := []string{cardHeader("↻", "Recent swaps"), ""}

	if len(snap.Recent) == 0 {
		rows = append(rows, indentSpace+styles.HelpStyle.Render("No swaps in window"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	const (
		timeCol   = 10
		pairCol   = 18
		amountCol = 16
	)
	idCol := max(cardWidth-timeCol-pairCol-amountCol-10, 8)

	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
		indentSpace,
		styles.TableHeaderStyle.Width(timeCol).Render("Time"),
		styles.TableHeaderStyle.Width(pairCol).Render("Pair"),
		styles.TableHeaderStyle.Width(amountCol).Align(lipgloss.Right).Render("Amount"),
		styles.TableHeaderStyle.Width(idCol).Render("  Swap"),
	))

	for _, s := range snap.Recent[:min(len(snap.Recent), recentRows)] {
		pair := s.Pair()
		if pair == "" {
			pair = "?"
		}
		rows = append(rows, indentSpace+lipgloss.JoinHorizontal(lipgloss.Left,
			styles.TableCellStyle.Width(timeCol).Render(s.Time().Format("15:04:05")),
			styles.TableCellStyle.Width(pairCol).Render(clip(pair, pairCol-1)),
			styles.TableCellStyle.Width(amountCol).Align(lipgloss.Right).Render(components.FormatUSD(s.AmountUSD)),
			styles.HelpStyle.Width(idCol).Render("  "+clip(s.ID, idCol-2)),
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAlerts(alerts []models.VolumeAlert, cardWidth int) string {
	rows := []string{
		fmt.Sprintf("%s %s",
			styles.WarningTextStyle.Render("▲"),
			styles.CardTitleStyle.Render("Triggered alerts"),
		),
		"",
	}

	for _, a := range alerts {
		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			indentSpace,
			styles.HelpStyle.Render(a.IntervalStart.UTC().Format("Jan 02 15:04")),
			styles.WarningTextStyle.Render(a.Rule.Label()),
			fmt.Sprintf("%s ≥ %s", components.FormatUSD(a.VolumeUSD), components.FormatUSD(a.Rule.ThresholdUSD)),
		))
	}

	return styles.AlertCardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func cardHeader(icon, title string) string {
	iconStr := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	return fmt.Sprintf("%s %s", iconStr, styles.CardTitleStyle.Render(title))
}

func formatBucketSize(d time.Duration) string {
	switch {
	case d <= 0:
		return "?"
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d%time.Minute == 0:
		return fmt.Sprintf("%dm", d/time.Minute)
	default:
		return d.String()
	}
}

func clip(s string, n int) string {
	if n < 2 || len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
