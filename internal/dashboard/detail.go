package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"stockboard/pkg/stockboard"
)

var (
	detailTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	detailLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	detailValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	detailBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238")).
				Padding(0, 1)
)

// DetailRow is one label/value line of the detail view.
type DetailRow struct {
	Label string
	Value string
}

// DetailRows lists the extended fields of d in display order. Absent values
// show as an em dash.
func DetailRows(currency string, d *stockboard.QuoteDetail) []DetailRow {
	volume := "—"
	if d.Volume != nil {
		volume = humanize.Comma(*d.Volume)
	}
	marketCap := "—"
	if d.MarketCap.Valid {
		marketCap = currency + FormatCompact(d.MarketCap.Decimal.InexactFloat64())
	}
	pe := "—"
	if d.PERatio.Valid {
		pe = d.PERatio.Decimal.StringFixed(2)
	}
	return []DetailRow{
		{"Open", FormatOptional(currency, d.OpenPrice)},
		{"Day range", rangeText(currency, d.DayLow, d.DayHigh)},
		{"52W range", rangeText(currency, d.FiftyTwoWeekLow, d.FiftyTwoWeekHigh)},
		{"7D avg", FormatOptional(currency, d.SevenDayAvg)},
		{"7D range", rangeText(currency, d.SevenDayMin, d.SevenDayMax)},
		{"250D low", FormatOptional(currency, d.TwoFiftyDayLow)},
		{"Volume", volume},
		{"Market cap", marketCap},
		{"P/E", pe},
	}
}

func rangeText(currency string, lo, hi decimal.NullDecimal) string {
	if !lo.Valid && !hi.Valid {
		return "—"
	}
	return FormatOptional(currency, lo) + " – " + FormatOptional(currency, hi)
}

// RenderDetail draws the detail view of one symbol. chart may be empty.
func RenderDetail(currency string, d *stockboard.QuoteDetail, chart string, width int) string {
	var b strings.Builder

	changeClass := ClassDown
	if IsUp(d.Change) {
		changeClass = ClassUp
	}
	title := detailTitleStyle.Render(fmt.Sprintf("%s  %s", d.Symbol, d.Name))
	b.WriteString(title + "  " + badgeStyle(BadgeClass(d.Status)).Render(d.Status))
	b.WriteString("\n\n")
	b.WriteString(priceStyle.Render(FormatMoney(currency, d.Price)))
	b.WriteString("  ")
	b.WriteString(ChangeStyle(changeClass).Render(FormatChange(d.Change)))
	b.WriteString("\n\n")

	var rows []string
	for _, r := range DetailRows(currency, d) {
		rows = append(rows, detailLabelStyle.Render(r.Label)+detailValueStyle.Render(r.Value))
	}
	stats := detailBoxStyle.Render(strings.Join(rows, "\n"))
	if chart != "" {
		stats = lipgloss.JoinVertical(lipgloss.Left, stats, detailBoxStyle.Render(chart))
	}
	b.WriteString(stats)
	b.WriteString("\n\n")

	if d.Details != "" {
		b.WriteString(lipgloss.NewStyle().Width(width - 2).Render(detailsStyle.Render(d.Details)))
		b.WriteString("\n")
	}
	if d.Timestamp != "" {
		b.WriteString(dimStyle.Render("as of " + d.Timestamp))
		b.WriteString("\n")
	}
	return b.String()
}
