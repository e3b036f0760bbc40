package tokens

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/models"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/uniswap-dashboard-tui/internal/ui/styles"
)

const (
	symbolCol = 12
	volumeCol = 16
	swapsCol  = 9
	pairRows  = 10
	poolCol   = 18
	liqCol    = 14
)

// View renders the tokens tab.
func (m *Model) View() string {
	snap := m.state.GetSnapshot()
	cardWidth := max(m.width-6, 50)

	sections := []string{m.renderTitle(snap)}
	if snap == nil {
		sections = append(sections, styles.CardStyle.Width(cardWidth).Render(
			styles.HelpStyle.Render("No swaps fetched yet"),
		))
	} else {
		sections = append(sections,
			m.renderTokenTable(snap, cardWidth),
			m.renderPairChart(snap, cardWidth),
			m.renderPools(snap, cardWidth),
		)
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle(snap *models.SwapSnapshot) string {
	title := styles.TitleStyle.Render("Tokens")
	subtitle := "Volume by token symbol"
	if snap != nil {
		subtitle = fmt.Sprintf("%s tokens across %s pairs",
			components.FormatCount(len(snap.Tokens)),
			components.FormatCount(len(snap.Pairs)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

// renderTokenTable lists every token with its volume and share. A swap
// counts towards both of its tokens, so shares are relative to the largest
// token rather than summing to 100%.
func (m *Model) renderTokenTable(snap *models.SwapSnapshot, cardWidth int) string {
	rows := []string{styles.CardTitleStyle.Render("Volume by token"), ""}

	if len(snap.Tokens) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No token data"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	shareWidth := max(cardWidth-symbolCol-volumeCol-swapsCol-8, 16)
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
		styles.TableHeaderStyle.Width(symbolCol).Render("Token"),
		styles.TableHeaderStyle.Width(volumeCol).Align(lipgloss.Right).Render("Volume"),
		styles.TableHeaderStyle.Width(swapsCol).Align(lipgloss.Right).Render("Swaps"),
		styles.TableHeaderStyle.Width(shareWidth).Render("  Share of top"),
	))

	top := snap.Tokens[0].VolumeUSD
	for i, tv := range snap.Tokens {
		cell := styles.TableCellStyle
		if i == m.selected {
			cell = styles.TableSelectedStyle.Padding(0, 1)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			cell.Width(symbolCol).Render(tv.Symbol),
			cell.Width(volumeCol).Align(lipgloss.Right).Render(components.FormatUSD(tv.VolumeUSD)),
			cell.Width(swapsCol).Align(lipgloss.Right).Render(components.FormatCount(tv.Swaps)),
			"  ",
			m.shareBar.ViewCompact(components.SharePercent(tv.VolumeUSD, top), shareWidth),
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderPairChart(snap *models.SwapSnapshot, cardWidth int) string {
	pairs := snap.Pairs[:min(len(snap.Pairs), pairRows)]

	values := make([]float64, len(pairs))
	labels := make([]string, len(pairs))
	for i, p := range pairs {
		values[i] = p.VolumeUSD.InexactFloat64()
		labels[i] = p.Pair
	}

	chart := components.RenderBarChart(values, labels, cardWidth-4)
	if chart == "" {
		chart = styles.HelpStyle.Render("No pair data")
	}

	rows := []string{styles.CardTitleStyle.Render("Top pairs"), "", chart}
	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderPools lists the deepest pools. Liquidity is the pool's raw L value,
// not a USD amount.
func (m *Model) renderPools(snap *models.SwapSnapshot, cardWidth int) string {
	rows := []string{styles.CardTitleStyle.Render("Top Pools by Liquidity"), ""}

	if len(snap.Pools) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No pool data"))
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
		styles.TableHeaderStyle.Width(poolCol).Render("Pool"),
		styles.TableHeaderStyle.Width(liqCol).Align(lipgloss.Right).Render("Liquidity"),
		styles.TableHeaderStyle.Width(volumeCol).Align(lipgloss.Right).Render("Volume"),
	))
	for _, p := range snap.Pools {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Left,
			styles.TableCellStyle.Width(poolCol).Render(p.Pair()),
			styles.TableCellStyle.Width(liqCol).Align(lipgloss.Right).Render(
				humanize.SIWithDigits(p.Liquidity.InexactFloat64(), 2, ""),
			),
			styles.TableCellStyle.Width(volumeCol).Align(lipgloss.Right).Render(
				components.FormatUSDCompact(p.VolumeUSD.InexactFloat64()),
			),
		))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
