// Package dashboard turns quote lists into the card board shown by the
// stockboard terminal clients: derived display values, decoration
// strategies, the symbol→card map, and the lipgloss views.
package dashboard

import (
	"net/url"

	"stockboard/pkg/stockboard"
)

// ChangeClass is the styling class of a card's change figure.
type ChangeClass string

const (
	ClassUp   ChangeClass = "up"
	ClassDown ChangeClass = "down"
)

// ChartState tracks a card's sparkline slot.
type ChartState int

const (
	ChartNone    ChartState = iota // decoration has no chart
	ChartPending                   // history requested, nothing drawn yet
	ChartDrawn
	ChartEmpty // history came back empty; nothing is drawn
)

// Band is the 250-day reference panel of a band-decorated card.
type Band struct {
	Avg string
	Low string
}

// Card is the display model of one quote.
type Card struct {
	Symbol      string
	Name        string
	Status      string
	BadgeClass  string
	Price       string
	Change      string
	ChangeClass ChangeClass
	Details     string
	IsLow       bool
	Href        string // detail view link keyed by symbol

	Band       *Band
	ChartState ChartState
	Chart      string
	ChartUp    bool
}

// NewCard derives the display values of q. Decoration is applied by the board.
func NewCard(currency string, q stockboard.Quote) Card {
	class := ClassDown
	if IsUp(q.Change) {
		class = ClassUp
	}
	return Card{
		Symbol:      q.Symbol,
		Name:        q.Name,
		Status:      q.Status,
		BadgeClass:  BadgeClass(q.Status),
		Price:       FormatMoney(currency, q.Price),
		Change:      FormatChange(q.Change),
		ChangeClass: class,
		Details:     q.Details,
		IsLow:       q.IsLow,
		Href:        DetailHref(q.Symbol),
	}
}

// DetailHref is the navigation target of a card: the detail view with the
// symbol passed as a query parameter.
func DetailHref(symbol string) string {
	return "details.html?symbol=" + url.QueryEscape(symbol)
}

// DetailSymbol resolves a navigation target built by DetailHref back to its
// symbol.
func DetailSymbol(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Path != "details.html" {
		return "", false
	}
	sym := u.Query().Get("symbol")
	return sym, sym != ""
}

// Summary holds the board counters.
type Summary struct {
	Total    int
	LowCount int
}

// Summarize counts quotes and the ones flagged low.
func Summarize(quotes []stockboard.Quote) Summary {
	s := Summary{Total: len(quotes)}
	for i := range quotes {
		if quotes[i].IsLow {
			s.LowCount++
		}
	}
	return s
}
