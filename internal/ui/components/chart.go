// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/styles"
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.DeepPink),
	)
}

// RenderDualLineChart plots two series sharing one y axis. The shorter
// series is padded with zeros.
func RenderDualLineChart(primary, secondary []float64, width, height int, caption string) string {
	if len(primary) == 0 && len(secondary) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	n := max(len(primary), len(secondary))
	a := make([]float64, n)
	b := make([]float64, n)
	copy(a, primary)
	copy(b, secondary)

	return asciigraph.PlotMany([][]float64{a, b},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.DeepPink,
			asciigraph.SlateBlue,
		),
	)
}

// MovingAverage returns the trailing mean over window samples. The first
// samples average over what is available.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 {
		return slices.Clone(values)
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// RenderBarChart creates a horizontal bar chart of USD values.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := slices.Max(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-12, 10) // label and value

	barStyle := lipgloss.NewStyle().Foreground(styles.VolumeColor)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)

		lines = append(lines, fmt.Sprintf("%*s │%s %s",
			maxLabelLen, label,
			barStyle.Render(strings.Repeat("█", barLen)),
			FormatUSDCompact(v),
		))
	}

	return strings.Join(lines, "\n")
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderHourlyHeatmap creates a 24-hour activity heatmap.
func RenderHourlyHeatmap(patterns []float64) string {
	if len(patterns) != 24 {
		padded := make([]float64, 24)
		copy(padded, patterns)
		patterns = padded
	}

	maxVal := slices.Max(patterns)
	if maxVal <= 0 {
		maxVal = 1
	}

	var result strings.Builder
	result.WriteString("00 ")

	for i, v := range patterns {
		intensity := int((v / maxVal) * float64(len(HeatmapBlocks)-1))
		intensity = min(max(intensity, 0), len(HeatmapBlocks)-1)

		var color lipgloss.Color
		switch intensity {
		case 0:
			color = styles.Subtle
		case 1:
			color = styles.Secondary
		case 2:
			color = styles.TVLColor
		default:
			color = styles.VolumeColor
		}

		result.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(HeatmapBlocks[intensity])))

		// gap at noon
		if i == 11 {
			result.WriteString(" ")
		}
	}

	result.WriteString(" 23")
	return result.String()
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func sparkIndex(v, maxVal float64) int {
	idx := int((v / maxVal) * float64(len(sparkChars)-1))
	return min(max(idx, 0), len(sparkChars)-1)
}

// RenderWeeklyPattern renders one spark character per weekday.
func RenderWeeklyPattern(patterns []float64, dayNames []string) string {
	if len(patterns) != 7 {
		padded := make([]float64, 7)
		copy(padded, patterns)
		patterns = padded
	}
	if len(dayNames) != 7 {
		dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	}

	maxVal := slices.Max(patterns)
	if maxVal <= 0 {
		maxVal = 1
	}

	parts := make([]string, 0, 7)
	for i, v := range patterns {
		parts = append(parts, fmt.Sprintf("%s %c", dayNames[i], sparkChars[sparkIndex(v, maxVal)]))
	}

	return strings.Join(parts, " ")
}

// sample picks at most width values, evenly spread over values.
func sample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	step := float64(len(values)) / float64(width)
	out := make([]float64, 0, width)
	for i := range width {
		out = append(out, values[int(float64(i)*step)])
	}
	return out
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := slices.Max(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	var result strings.Builder
	for _, v := range sample(values, width) {
		result.WriteRune(sparkChars[sparkIndex(v, maxVal)])
	}
	return result.String()
}

// RenderColoredSparkline creates a sparkline whose color follows intensity.
func RenderColoredSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := slices.Max(values)
	if maxVal <= 0 {
		maxVal = 1
	}

	var result strings.Builder
	for _, v := range sample(values, width) {
		style := styles.GetShareStyle(v / maxVal * 100)
		result.WriteString(style.Render(string(sparkChars[sparkIndex(v, maxVal)])))
	}
	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
