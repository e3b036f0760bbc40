package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/styles"
)

const (
	day           = 24 * time.Hour
	averageWindow = 7
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// View renders the history tab.
func (m *Model) View() string {
	if m.loading {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.historyData.HasData() {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderVolumeChart(),
		m.renderComparison(),
	}
	if len(m.historyData.DayData) > 0 {
		sections = append(sections, m.renderProtocolCard())
	}
	sections = append(sections,
		m.renderHourlyHeatmap(),
		m.renderWeeklyPattern(),
	)

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Center, styles.TitleStyle.Render("History"), "  ", m.renderRange()),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("No swaps stored for %s.", strings.ToLower(m.timeRange.String()))),
		styles.HelpStyle.Render("Data will appear as refreshes store swaps."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderRange() string {
	return lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary).
		Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
}

func (m *Model) renderHeader() string {
	h := m.historyData
	header := lipgloss.JoinHorizontal(lipgloss.Center, styles.TitleStyle.Render("History"), "  ", m.renderRange())

	dataRange := fmt.Sprintf("Data: %s → %s (%d days) · %s swaps · %s",
		h.FirstSwap.Format("Jan 2, 2006"),
		h.LastSwap.Format("Jan 2, 2006"),
		h.TotalDays(),
		components.FormatCount(h.SwapCount),
		components.FormatUSD(h.TotalUSD),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, styles.HelpStyle.Render(dataRange), "")
}

// dailyValues returns one value per calendar day between the first and
// last stored day, zero for days without swaps.
func (m *Model) dailyValues() []float64 {
	return aggregator.Values(aggregator.Dense(m.historyData.Daily, day))
}

func cardTitle(icon, title string) string {
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render(icon)
	return fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(title))
}

func indent(block string) []string {
	lines := make([]string, 0, strings.Count(block, "\n")+1)
	for line := range strings.SplitSeq(block, "\n") {
		lines = append(lines, "  "+line)
	}
	return lines
}

func (m *Model) renderVolumeChart() string {
	cardWidth := max(m.width-6, 40)
	rows := []string{cardTitle("▤", "Daily Volume"), ""}

	daily := m.dailyValues()
	chartWidth := max(cardWidth-16, 30)
	chart := components.RenderDualLineChart(daily, components.MovingAverage(daily, averageWindow), chartWidth, 8,
		fmt.Sprintf("Last %d days - volume vs %d-day average", len(daily), averageWindow))
	rows = append(rows, indent(chart)...)

	rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
		{Label: "Volume", Color: styles.VolumeColor},
		{Label: fmt.Sprintf("%d-day average", averageWindow), Color: styles.Secondary},
	}), "")

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderComparison highlights the peak day and how the latest day compares
// with the range's daily average.
func (m *Model) renderComparison() string {
	cardWidth := max(m.width-6, 40)
	rows := []string{cardTitle("◆", "Highlights"), ""}

	h := m.historyData
	bold := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary)

	if peak, ok := h.PeakDay(); ok {
		rows = append(rows, fmt.Sprintf("  Peak day:   %s  %s",
			bold.Render(peak.IntervalStart.Format("Mon Jan 2")),
			components.FormatUSD(peak.TotalUSD),
		))
	}

	daily := m.dailyValues()
	if len(daily) > 0 {
		sum := 0.0
		for _, v := range daily {
			sum += v
		}
		avg := sum / float64(len(daily))
		latest := daily[len(daily)-1]
		change := components.PercentChange(latest, avg)

		rows = append(rows,
			fmt.Sprintf("  Daily avg:  %s", components.FormatUSDFloat(avg)),
			fmt.Sprintf("  Latest day: %s  %s",
				components.FormatUSDFloat(latest),
				styles.GetChangeStyle(change).Render(components.FormatChange(change)+" vs avg"),
			),
		)
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderProtocolCard shows the protocol-wide day data published by the
// subgraph alongside the locally aggregated volume.
func (m *Model) renderProtocolCard() string {
	cardWidth := max(m.width-6, 40)
	rows := []string{cardTitle("◈", "Protocol"), ""}

	days := m.historyData.DayData
	tvl := make([]float64, len(days))
	fees := make([]float64, len(days))
	for i, d := range days {
		tvl[i] = d.TVLUSD.InexactFloat64()
		fees[i] = d.FeesUSD.InexactFloat64()
	}

	latest := days[len(days)-1]
	sparkWidth := max(cardWidth-40, 10)
	tvlStyle := lipgloss.NewStyle().Foreground(styles.TVLColor)
	feesStyle := lipgloss.NewStyle().Foreground(styles.FeesColor)

	rows = append(rows,
		fmt.Sprintf("  %-6s %12s  %s", "TVL",
			components.FormatUSDCompact(tvl[len(tvl)-1]),
			tvlStyle.Render(components.RenderSparkline(tvl, sparkWidth))),
		fmt.Sprintf("  %-6s %12s  %s", "Fees",
			components.FormatUSDCompact(fees[len(fees)-1]),
			feesStyle.Render(components.RenderSparkline(fees, sparkWidth))),
		fmt.Sprintf("  %-6s %12s", "Volume", components.FormatUSDCompact(latest.VolumeUSD.InexactFloat64())),
		styles.HelpStyle.Render("  as of "+latest.Date.UTC().Format("Jan 2, 2006")),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderHourlyHeatmap() string {
	cardWidth := max(m.width-6, 40)
	rows := []string{cardTitle("◷", "Hourly Activity (UTC)"), ""}

	hourly := make([]float64, 24)
	peakHour, peakSwaps := 0, -1
	for _, h := range m.historyData.Hourly {
		if h.Hour < 0 || h.Hour >= 24 {
			continue
		}
		hourly[h.Hour] = float64(h.Swaps)
		if h.Swaps > peakSwaps {
			peakHour, peakSwaps = h.Hour, h.Swaps
		}
	}

	rows = append(rows, "  "+components.RenderHourlyHeatmap(hourly))
	if peakSwaps > 0 {
		rows = append(rows, fmt.Sprintf("  Busiest: %s (%s swaps)",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
				Render(fmt.Sprintf("%02d:00-%02d:00", peakHour, (peakHour+1)%24)),
			components.FormatCount(peakSwaps),
		))
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// weekdayAverages returns the mean daily volume per weekday, Sunday first.
func weekdayAverages(daily []models.Bucket) []float64 {
	sums := make([]float64, 7)
	counts := make([]int, 7)
	for _, b := range daily {
		wd := b.IntervalStart.UTC().Weekday()
		sums[wd] += b.TotalUSD.InexactFloat64()
		counts[wd]++
	}
	for i := range sums {
		if counts[i] > 0 {
			sums[i] /= float64(counts[i])
		}
	}
	return sums
}

func (m *Model) renderWeeklyPattern() string {
	cardWidth := max(m.width-6, 40)
	rows := []string{cardTitle("▦", "Weekly Pattern"), ""}

	averages := weekdayAverages(m.historyData.Daily)
	rows = append(rows, "  "+components.RenderWeeklyPattern(averages, weekdayNames), "")
	rows = append(rows, indent(components.RenderBarChart(averages, weekdayNames, max(cardWidth-12, 30)))...)
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
