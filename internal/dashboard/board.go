package dashboard

import (
	"errors"
	"time"

	"stockboard/pkg/stockboard"
)

var (
	// ErrStaleGeneration is returned for a chart result whose render pass
	// has been superseded.
	ErrStaleGeneration = errors.New("dashboard: stale render generation")
	// ErrUnknownSymbol is returned for a chart result whose card no longer
	// exists on the board.
	ErrUnknownSymbol = errors.New("dashboard: no card for symbol")
)

// RefreshButton is the manual refresh control.
type RefreshButton struct {
	Busy bool
}

// Label is the text shown on the button.
func (b RefreshButton) Label() string {
	if b.Busy {
		return "Refreshing…"
	}
	return "⟳ Refresh"
}

// Board owns the rendered card list. It is driven from a single goroutine
// (the UI loop) and is not safe for concurrent use.
type Board struct {
	currency   string
	decoration Decoration

	cards      []Card
	index      map[string]int // symbol → card handle
	summary    Summary
	generation uint64
	button     RefreshButton
	updatedAt  time.Time
}

// NewBoard creates an empty board.
func NewBoard(currency string, d Decoration) *Board {
	return &Board{
		currency:   currency,
		decoration: d,
		index:      make(map[string]int),
	}
}

// Render replaces the whole board with quotes and returns the new render
// generation. Steps run in order: clear, count, build cards in input order,
// record navigation targets, restore the refresh button.
func (b *Board) Render(quotes []stockboard.Quote, now time.Time) uint64 {
	b.generation++
	b.cards = make([]Card, 0, len(quotes))
	b.index = make(map[string]int, len(quotes))

	b.summary = Summarize(quotes)

	for _, q := range quotes {
		c := NewCard(b.currency, q)
		b.decoration.Decorate(q, &c)
		b.index[q.Symbol] = len(b.cards)
		b.cards = append(b.cards, c)
	}

	b.button.Busy = false
	b.updatedAt = now
	return b.generation
}

// SetDecoration switches the card layout. Existing cards keep their old
// layout until the next Render.
func (b *Board) SetDecoration(d Decoration) { b.decoration = d }

// Decoration returns the active layout strategy.
func (b *Board) Decoration() Decoration { return b.decoration }

// Cards returns the cards in render order.
func (b *Board) Cards() []Card { return b.cards }

// Card looks up a card by symbol.
func (b *Board) Card(symbol string) (Card, bool) {
	i, ok := b.index[symbol]
	if !ok {
		return Card{}, false
	}
	return b.cards[i], true
}

// PendingCharts lists the symbols whose sparkline has not been resolved in
// the current generation.
func (b *Board) PendingCharts() []string {
	var out []string
	for _, c := range b.cards {
		if c.ChartState == ChartPending {
			out = append(out, c.Symbol)
		}
	}
	return out
}

// ApplyChart stores a rendered sparkline for symbol if generation is still
// current and the card exists.
func (b *Board) ApplyChart(symbol string, generation uint64, view string, up bool) error {
	i, err := b.slot(symbol, generation)
	if err != nil {
		return err
	}
	b.cards[i].Chart = view
	b.cards[i].ChartUp = up
	b.cards[i].ChartState = ChartDrawn
	return nil
}

// SkipChart records that symbol's history was empty: no chart and no
// placeholder are shown.
func (b *Board) SkipChart(symbol string, generation uint64) error {
	i, err := b.slot(symbol, generation)
	if err != nil {
		return err
	}
	b.cards[i].Chart = ""
	b.cards[i].ChartState = ChartEmpty
	return nil
}

func (b *Board) slot(symbol string, generation uint64) (int, error) {
	if generation != b.generation {
		return 0, ErrStaleGeneration
	}
	i, ok := b.index[symbol]
	if !ok {
		return 0, ErrUnknownSymbol
	}
	return i, nil
}

// Summary returns the total and low counters of the last render.
func (b *Board) Summary() Summary { return b.summary }

// Generation returns the current render generation; 0 before the first render.
func (b *Board) Generation() uint64 { return b.generation }

// UpdatedAt is the time of the last successful render.
func (b *Board) UpdatedAt() time.Time { return b.updatedAt }

// Button returns the refresh button state.
func (b *Board) Button() RefreshButton { return b.button }

// BeginRefresh disables the button and shows the busy label. It returns
// false if a refresh is already in progress.
func (b *Board) BeginRefresh() bool {
	if b.button.Busy {
		return false
	}
	b.button.Busy = true
	return true
}

// EndRefresh restores the idle button without touching the cards.
func (b *Board) EndRefresh() { b.button.Busy = false }
