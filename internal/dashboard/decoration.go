package dashboard

import (
	"fmt"

	"stockboard/pkg/stockboard"
)

// Decoration fills the variant-specific part of a card. Cards are built by a
// single pipeline; only the decoration differs between the reference-band
// and sparkline layouts.
type Decoration interface {
	Name() string
	Decorate(q stockboard.Quote, c *Card)
	// WantsChart reports whether cards need a sparkline fetched after render.
	WantsChart() bool
}

// BandDecoration shows the 250-day average and low beside the price.
type BandDecoration struct {
	Currency string
}

func (BandDecoration) Name() string     { return "band" }
func (BandDecoration) WantsChart() bool { return false }

// Decorate sets the reference band. Missing values are zero and render as 0.00.
func (d BandDecoration) Decorate(q stockboard.Quote, c *Card) {
	c.Band = &Band{
		Avg: FormatMoney(d.Currency, q.TwoFiftyDayAvg),
		Low: FormatMoney(d.Currency, q.TwoFiftyDayLow),
	}
	c.ChartState = ChartNone
}

// ChartDecoration reserves a sparkline slot on every card.
type ChartDecoration struct{}

func (ChartDecoration) Name() string     { return "sparkline" }
func (ChartDecoration) WantsChart() bool { return true }

func (ChartDecoration) Decorate(_ stockboard.Quote, c *Card) {
	c.Band = nil
	c.ChartState = ChartPending
}

// DecorationByName resolves a configured decoration name.
func DecorationByName(name, currency string) (Decoration, error) {
	switch name {
	case "band":
		return BandDecoration{Currency: currency}, nil
	case "sparkline":
		return ChartDecoration{}, nil
	default:
		return nil, fmt.Errorf("unknown decoration %q", name)
	}
}
