package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"stockboard/pkg/stockboard"
)

func TestRenderCardFixedHeight(t *testing.T) {
	layouts := []CardLayout{
		{Width: 34, ChartHeight: 4, Chart: true},
		{Width: 34},
	}
	c := NewCard("₹", quote("RELIANCE.NS", "2950", "0.4", false))
	c.Details = strings.Repeat("very long details text ", 10)
	c.Band = &Band{Avg: "₹1.00", Low: "₹0.50"}
	c.ChartState = ChartPending

	for _, l := range layouts {
		view := RenderCard(c, l, false)
		if h := lipgloss.Height(view); h != l.Height() {
			t.Errorf("layout %+v: height = %d, want %d", l, h, l.Height())
		}
		if w := lipgloss.Width(view); w != l.Width {
			t.Errorf("layout %+v: width = %d, want %d", l, w, l.Width)
		}
	}
}

func TestRenderCardEmptyChartHasNoPlaceholder(t *testing.T) {
	c := NewCard("₹", quote("TCS", "1", "0", false))
	c.ChartState = ChartEmpty
	view := RenderCard(c, CardLayout{Width: 34, ChartHeight: 3, Chart: true}, false)
	if strings.Contains(view, "loading") {
		t.Errorf("empty chart still shows a placeholder:\n%s", view)
	}
}

func TestGridIndexAt(t *testing.T) {
	g := Grid{Layout: CardLayout{Width: 30, ChartHeight: 4, Chart: true}, Width: 95}
	if g.Columns() != 3 {
		t.Fatalf("Columns = %d, want 3", g.Columns())
	}
	h := g.Layout.Height()

	tests := []struct {
		x, y, n int
		want    int
	}{
		{0, 0, 5, 0},
		{31, 1, 5, 1},
		{65, h - 1, 5, 2},
		{5, h, 5, 3},
		{40, h + 2, 5, 4},
		{70, h + 2, 5, -1}, // past the last card
		{92, 0, 5, -1},     // right margin beyond 3 columns
	}
	for _, tt := range tests {
		if got := g.IndexAt(tt.x, tt.y, tt.n); got != tt.want {
			t.Errorf("IndexAt(%d,%d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
	if got := g.RowTop(4); got != h {
		t.Errorf("RowTop(4) = %d, want %d", got, h)
	}
}

func TestRenderGridEmpty(t *testing.T) {
	out := RenderGrid(nil, Grid{Layout: CardLayout{Width: 30}, Width: 80}, "")
	if !strings.Contains(out, "no quotes") {
		t.Errorf("RenderGrid(nil) = %q", out)
	}
}

func TestStatusLine(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 30, 0, time.UTC)
	line := StatusLine(Summary{Total: 11, LowCount: 3}, 42, now.Add(-30*time.Second), now)
	for _, want := range []string{"Stocks: 11", "Low: 3", "next refresh 42s", "Last check: 10:00:00", "30 seconds ago"} {
		if !strings.Contains(line, want) {
			t.Errorf("StatusLine missing %q: %q", want, line)
		}
	}
	if line := StatusLine(Summary{}, -1, time.Time{}, now); strings.Contains(line, "next refresh") || !strings.Contains(line, "never") {
		t.Errorf("StatusLine without countdown = %q", line)
	}
}

func TestDetailRows(t *testing.T) {
	vol := int64(1234567)
	d := &stockboard.QuoteDetail{
		Symbol:    "TCS",
		Volume:    &vol,
		MarketCap: decimal.NewNullDecimal(decimal.RequireFromString("12650000000000")),
		DayLow:    decimal.NewNullDecimal(decimal.RequireFromString("3480")),
		DayHigh:   decimal.NewNullDecimal(decimal.RequireFromString("3525.1")),
	}
	rows := DetailRows("₹", d)
	got := make(map[string]string, len(rows))
	for _, r := range rows {
		got[r.Label] = r.Value
	}
	want := map[string]string{
		"Volume":     "1,234,567",
		"Market cap": "₹12.65T",
		"Day range":  "₹3480.00 – ₹3525.10",
		"52W range":  "—",
		"P/E":        "—",
		"Open":       "—",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	view := RenderDetail("₹", d, "", 80)
	if !strings.Contains(view, "TCS") || !strings.Contains(view, "1,234,567") {
		t.Errorf("RenderDetail output missing fields:\n%s", view)
	}
}
