package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Styles.
var (
	symbolStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	priceStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	gainStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bandAvgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	bandLowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")) // amber
	detailsStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
	cardLowBorder      = lipgloss.Color("136")
	cardSelectedBorder = lipgloss.Color("75") // bright blue

	badgeBase = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// badgeStyle maps a badge class to its colours.
func badgeStyle(class string) lipgloss.Style {
	switch class {
	case "low":
		return badgeBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	case "critical-dip":
		return badgeBase.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160"))
	case "high":
		return badgeBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	case "normal":
		return badgeBase.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240"))
	default:
		return badgeBase.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	}
}

// ChangeStyle returns the colour of a change class.
func ChangeStyle(c ChangeClass) lipgloss.Style {
	if c == ClassUp {
		return gainStyle
	}
	return lossStyle
}

// CardLayout fixes the outer size of every card on a board so that the grid
// can be addressed by screen coordinates.
type CardLayout struct {
	Width       int  // outer width including border
	ChartHeight int  // lines reserved for a sparkline
	Chart       bool // layout reserves a chart instead of a band
}

// BandLines is the number of lines of a reference band panel.
const BandLines = 2

// InnerWidth is the usable text width inside border and padding.
func (l CardLayout) InnerWidth() int { return l.Width - 4 }

// ContentLines is the number of text lines inside a card.
func (l CardLayout) ContentLines() int {
	deco := BandLines
	if l.Chart {
		deco = l.ChartHeight
	}
	return 3 + deco + 1 // header, name, price; decoration; details
}

// Height is the outer card height including border.
func (l CardLayout) Height() int { return l.ContentLines() + 2 }

// RenderCard draws one card.
func RenderCard(c Card, l CardLayout, selected bool) string {
	w := l.InnerWidth()
	clip := lipgloss.NewStyle().MaxWidth(w)

	badge := badgeStyle(c.BadgeClass).Render(c.Status)
	sym := symbolStyle.Render(c.Symbol)
	gap := w - lipgloss.Width(sym) - lipgloss.Width(badge)
	if gap < 1 {
		gap = 1
	}
	lines := []string{
		clip.Render(sym + strings.Repeat(" ", gap) + badge),
		clip.Render(nameStyle.Render(c.Name)),
		clip.Render(priceStyle.Render(c.Price) + "  " + ChangeStyle(c.ChangeClass).Render(c.Change)),
	}

	var deco []string
	if l.Chart {
		deco = chartLines(c, l)
	} else {
		deco = bandLines(c, w)
	}
	for _, line := range deco {
		lines = append(lines, clip.Render(line))
	}

	details := strings.Join(strings.Fields(c.Details), " ")
	lines = append(lines, clip.Render(detailsStyle.Render(details)))

	style := cardStyle.Width(l.Width - 2).Height(l.ContentLines())
	switch {
	case selected:
		style = style.BorderForeground(cardSelectedBorder)
	case c.IsLow:
		style = style.BorderForeground(cardLowBorder)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func bandLines(c Card, w int) []string {
	if c.Band == nil {
		return make([]string, BandLines)
	}
	row := func(label, value string, st lipgloss.Style) string {
		gap := w - len(label) - lipgloss.Width(value)
		if gap < 1 {
			gap = 1
		}
		return dimStyle.Render(label) + strings.Repeat(" ", gap) + st.Render(value)
	}
	return []string{
		row("250D Avg", c.Band.Avg, bandAvgStyle),
		row("250D Low", c.Band.Low, bandLowStyle),
	}
}

func chartLines(c Card, l CardLayout) []string {
	out := make([]string, l.ChartHeight)
	if len(out) == 0 {
		return out
	}
	switch c.ChartState {
	case ChartPending:
		out[l.ChartHeight/2] = dimStyle.Render("loading…")
	case ChartDrawn:
		for i, line := range strings.Split(c.Chart, "\n") {
			if i >= len(out) {
				break
			}
			out[i] = line
		}
	}
	return out
}

// Grid addresses cards laid out left to right, top to bottom.
type Grid struct {
	Layout CardLayout
	Width  int // available screen width
}

// Columns is the number of cards per row (at least one).
func (g Grid) Columns() int {
	if g.Layout.Width <= 0 {
		return 1
	}
	n := g.Width / g.Layout.Width
	if n < 1 {
		return 1
	}
	return n
}

// IndexAt returns the card index under content coordinates (x, y), or -1.
func (g Grid) IndexAt(x, y, n int) int {
	if x < 0 || y < 0 {
		return -1
	}
	col := x / g.Layout.Width
	if col >= g.Columns() {
		return -1
	}
	i := (y/g.Layout.Height())*g.Columns() + col
	if i >= n {
		return -1
	}
	return i
}

// RowTop returns the first content line of the row holding card i.
func (g Grid) RowTop(i int) int {
	return (i / g.Columns()) * g.Layout.Height()
}

// RenderGrid draws cards in rows. selected is the highlighted symbol, or "".
func RenderGrid(cards []Card, g Grid, selected string) string {
	if len(cards) == 0 {
		return dimStyle.Render("  (no quotes)")
	}
	cols := g.Columns()
	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := start + cols
		if end > len(cards) {
			end = len(cards)
		}
		row := make([]string, 0, end-start)
		for _, c := range cards[start:end] {
			row = append(row, RenderCard(c, g.Layout, c.Symbol == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// StatusLine is the header text: counters, countdown and last check time.
// remaining < 0 hides the countdown.
func StatusLine(s Summary, remaining int, updatedAt, now time.Time) string {
	parts := []string{
		fmt.Sprintf("Stocks: %s", FormatInt(s.Total)),
		fmt.Sprintf("Low: %s", FormatInt(s.LowCount)),
	}
	if remaining >= 0 {
		parts = append(parts, fmt.Sprintf("next refresh %ds", remaining))
	}
	if updatedAt.IsZero() {
		parts = append(parts, "Last check: never")
	} else {
		parts = append(parts, fmt.Sprintf("Last check: %s (%s)",
			updatedAt.Format("15:04:05"), humanize.RelTime(updatedAt, now, "ago", "from now")))
	}
	return strings.Join(parts, "    ")
}
