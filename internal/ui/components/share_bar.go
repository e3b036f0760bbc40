package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/logger"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/styles"
)

const (
	shareFrom    = "#7D56F4"
	shareTo      = "#FF007A"
	intervalFrom = "#FFD93D"
	intervalTo   = "#FF007A"
)

// ShareBar renders a token or pair's share of total volume.
type ShareBar struct {
	progress progress.Model
}

// NewShareBar creates a share bar with the default gradient.
func NewShareBar() ShareBar {
	return NewShareBarWithWidth(30)
}

// NewShareBarWithWidth creates a share bar with a specific width.
func NewShareBarWithWidth(width int) ShareBar {
	p := progress.New(
		progress.WithScaledGradient(shareFrom, shareTo),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return ShareBar{progress: p}
}

// SetWidth sets the progress bar width.
func (s *ShareBar) SetWidth(width int) {
	s.progress.Width = width
}

// View renders label, bar and percentage on one line.
func (s ShareBar) View(percent float64, label string, width int) string {
	s.progress.Width = max(width-30, 10) // label and percentage

	bar := s.progress.ViewAs(percent / 100)

	percentStr := styles.GetShareStyle(percent).
		Width(7).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	labelStr := styles.ProgressLabelStyle.Width(15).Render(truncate(label, 14))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewCompact renders the bar and percentage without a label.
func (s ShareBar) ViewCompact(percent float64, width int) string {
	s.progress.Width = max(width-8, 5)

	bar := s.progress.ViewAs(percent / 100)
	percentStr := styles.GetShareStyle(percent).Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// IntervalBar shows how far the current aggregation interval has progressed.
type IntervalBar struct {
	Size time.Duration
}

// NewIntervalBar creates an interval bar for buckets of the given size.
func NewIntervalBar(size time.Duration) IntervalBar {
	return IntervalBar{Size: size}
}

// Progress returns the elapsed fraction of the interval containing now and
// the time left until the next one starts.
func (b IntervalBar) Progress(now time.Time) (fraction float64, remaining time.Duration) {
	if b.Size <= 0 {
		return 0, 0
	}
	elapsed := time.Duration(now.UnixNano() % int64(b.Size))
	if elapsed < 0 {
		elapsed += b.Size
	}
	return float64(elapsed) / float64(b.Size), b.Size - elapsed
}

// ViewWithLabel renders the bar followed by the time left in the interval.
func (b IntervalBar) ViewWithLabel(now time.Time, label string, width int) string {
	fraction, remaining := b.Progress(now)

	const remainingWidth = 10
	barWidth := max(width-lipgloss.Width(label)-remainingWidth-5, 10)

	remainingStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(remainingWidth).
		Align(lipgloss.Right).
		Render(formatRemaining(remaining) + " left")

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderIntervalBarChars(fraction, barWidth), remainingStr)
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%ds", int(d.Seconds()))
}

// RenderIntervalBarChars renders the bar characters for a 0..1 fraction.
func RenderIntervalBarChars(fraction float64, width int) string {
	return renderGradient(int(float64(width)*fraction), width, intervalFrom, intervalTo)
}

// RenderGradientBar renders a 0..100 percentage as gradient bar characters.
func RenderGradientBar(percent float64, width int) string {
	return renderGradient(int(float64(width)*percent/100), width, shareFrom, shareTo)
}

func renderGradient(filled, width int, from, to string) string {
	if width < 1 {
		return ""
	}
	filled = min(max(filled, 0), width)

	empty := lipgloss.NewStyle().Foreground(styles.Subtle)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(interpolateColor(from, to, t)))
			b.WriteString(style.Render("█"))
		} else {
			b.WriteString(empty.Render("░"))
		}
	}
	return b.String()
}

// SimpleShareBar renders a label, gradient bar and percentage.
func SimpleShareBar(percent float64, label string, width int) string {
	const percentWidth = 7
	barWidth := max(width-lipgloss.Width(label)-1-percentWidth-4, 5)

	labelStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Render(label)

	percentStr := styles.GetShareStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(percent, barWidth), percentStr)
}

// SimpleShareBarLoading renders a shimmering placeholder bar. frame advances
// the shimmer.
func SimpleShareBarLoading(width int, frame int) string {
	const (
		indentWidth  = 4
		spinnerWidth = 6
		cycle        = 120
	)

	barWidth := max(width-indentWidth-spinnerWidth-4, 10)

	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	near := lipgloss.NewStyle().Foreground(styles.Primary)
	mid := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	far := lipgloss.NewStyle().Foreground(styles.BgLight)

	var bar strings.Builder
	for i := range barWidth {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		switch {
		case dist < 3:
			bar.WriteString(near.Render("▓"))
		case dist < 5:
			bar.WriteString(mid.Render("▒"))
		default:
			bar.WriteString(far.Render("░"))
		}
	}

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := lipgloss.NewStyle().
		Width(spinnerWidth).
		Align(lipgloss.Right).
		Foreground(styles.Primary).
		Render(dots[(frame/2)%len(dots)])

	return lipgloss.JoinHorizontal(lipgloss.Left, strings.Repeat(" ", indentWidth), bar.String(), " ", dot)
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n || n < 2 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
