package dashboard

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockboard/pkg/stockboard"
)

func quote(symbol string, price, change string, isLow bool) stockboard.Quote {
	return stockboard.Quote{
		Symbol: symbol,
		Name:   symbol + " Ltd",
		Price:  decimal.RequireFromString(price),
		Change: decimal.RequireFromString(change),
		Status: "Normal",
		IsLow:  isLow,
	}
}

func TestRenderExampleCard(t *testing.T) {
	b := NewBoard("₹", BandDecoration{Currency: "₹"})
	q := stockboard.Quote{
		Symbol:         "TCS",
		Name:           "Tata Consultancy Services",
		Price:          decimal.RequireFromString("3500.5"),
		Change:         decimal.RequireFromString("-1.25"),
		Status:         "Low",
		IsLow:          true,
		TwoFiftyDayLow: decimal.RequireFromString("3100"),
		Details:        "Below 20-day MA (3550.00)",
	}
	b.Render([]stockboard.Quote{q}, time.Now())

	if s := b.Summary(); s.Total != 1 || s.LowCount != 1 {
		t.Errorf("Summary = %+v, want total=1 low=1", s)
	}
	c, ok := b.Card("TCS")
	if !ok {
		t.Fatal("card TCS not found")
	}
	if c.Price != "₹3500.50" {
		t.Errorf("Price = %q, want %q", c.Price, "₹3500.50")
	}
	if c.Change != "-1.25%" || c.ChangeClass != ClassDown {
		t.Errorf("Change = %q/%s, want -1.25%%/down", c.Change, c.ChangeClass)
	}
	if c.Status != "Low" || c.BadgeClass != "low" {
		t.Errorf("badge = %q/%q, want Low/low", c.Status, c.BadgeClass)
	}
	if c.Band == nil || c.Band.Low != "₹3100.00" || c.Band.Avg != "₹0.00" {
		t.Errorf("Band = %+v, want low ₹3100.00 avg ₹0.00", c.Band)
	}
	if c.Href != "details.html?symbol=TCS" {
		t.Errorf("Href = %q", c.Href)
	}

	view := RenderCard(c, CardLayout{Width: 40}, false)
	for _, want := range []string{"TCS", "₹3500.50", "-1.25%", "Low", "250D Low", "₹3100.00", "Below 20-day MA"} {
		if !strings.Contains(view, want) {
			t.Errorf("card view missing %q:\n%s", want, view)
		}
	}
}

func TestRenderCountersProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := NewBoard("₹", ChartDecoration{})

	for round := 0; round < 50; round++ {
		n := rng.Intn(20)
		quotes := make([]stockboard.Quote, n)
		wantLow := 0
		for i := range quotes {
			low := rng.Intn(3) == 0
			if low {
				wantLow++
			}
			quotes[i] = quote(fmt.Sprintf("S%d", i), "10", "0", low)
		}
		b.Render(quotes, time.Now())
		if s := b.Summary(); s.Total != n || s.LowCount != wantLow {
			t.Fatalf("round %d: Summary = %+v, want total=%d low=%d", round, s, n, wantLow)
		}
		if len(b.Cards()) != n {
			t.Fatalf("round %d: %d cards, want %d", round, len(b.Cards()), n)
		}
	}
}

func TestRenderChangeClassProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := NewBoard("$", ChartDecoration{})
	for i := 0; i < 200; i++ {
		ch := decimal.NewFromFloat(rng.Float64()*20 - 10).Round(2)
		if i == 0 {
			ch = decimal.Zero
		}
		b.Render([]stockboard.Quote{{Symbol: "X", Change: ch}}, time.Now())
		c := b.Cards()[0]
		up := ch.GreaterThanOrEqual(decimal.Zero)
		if strings.HasPrefix(c.Change, "+") != up {
			t.Errorf("change %s rendered %q: leading + should be %v", ch, c.Change, up)
		}
		if (c.ChangeClass == ClassUp) != up {
			t.Errorf("change %s class %s, want up=%v", ch, c.ChangeClass, up)
		}
	}
}

func TestRenderPreservesOrderAndReplaces(t *testing.T) {
	b := NewBoard("₹", ChartDecoration{})
	gen1 := b.Render([]stockboard.Quote{quote("B", "1", "1", false), quote("A", "2", "1", false)}, time.Now())
	gen2 := b.Render([]stockboard.Quote{quote("C", "3", "1", false)}, time.Now())

	if gen2 != gen1+1 {
		t.Errorf("generation = %d, want %d", gen2, gen1+1)
	}
	if _, ok := b.Card("A"); ok {
		t.Error("card A survived a full replace")
	}
	cards := b.Cards()
	if len(cards) != 1 || cards[0].Symbol != "C" {
		t.Errorf("cards = %+v, want only C", cards)
	}

	b.Render([]stockboard.Quote{quote("B", "1", "1", false), quote("A", "2", "1", false)}, time.Now())
	if got := b.Cards(); got[0].Symbol != "B" || got[1].Symbol != "A" {
		t.Errorf("order = %s,%s, want B,A", got[0].Symbol, got[1].Symbol)
	}
}

func TestApplyChartGenerations(t *testing.T) {
	b := NewBoard("₹", ChartDecoration{})
	old := b.Render([]stockboard.Quote{quote("TCS", "1", "0", false)}, time.Now())
	if got := b.PendingCharts(); len(got) != 1 || got[0] != "TCS" {
		t.Fatalf("PendingCharts = %v, want [TCS]", got)
	}

	cur := b.Render([]stockboard.Quote{quote("TCS", "1", "0", false), quote("INFY", "1", "0", false)}, time.Now())

	if err := b.ApplyChart("TCS", old, "stale", true); !errors.Is(err, ErrStaleGeneration) {
		t.Errorf("ApplyChart(old gen) = %v, want ErrStaleGeneration", err)
	}
	if c, _ := b.Card("TCS"); c.ChartState != ChartPending || c.Chart != "" {
		t.Errorf("stale result leaked into card: %+v", c)
	}
	if err := b.ApplyChart("WIPRO", cur, "x", true); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("ApplyChart(unknown) = %v, want ErrUnknownSymbol", err)
	}
	if err := b.ApplyChart("TCS", cur, "line", false); err != nil {
		t.Fatalf("ApplyChart: %v", err)
	}
	if err := b.SkipChart("INFY", cur); err != nil {
		t.Fatalf("SkipChart: %v", err)
	}

	tcs, _ := b.Card("TCS")
	if tcs.ChartState != ChartDrawn || tcs.Chart != "line" || tcs.ChartUp {
		t.Errorf("TCS card = %+v", tcs)
	}
	infy, _ := b.Card("INFY")
	if infy.ChartState != ChartEmpty || infy.Chart != "" {
		t.Errorf("INFY card = %+v", infy)
	}
	if got := b.PendingCharts(); len(got) != 0 {
		t.Errorf("PendingCharts = %v, want none", got)
	}
}

func TestRefreshButton(t *testing.T) {
	b := NewBoard("₹", BandDecoration{})
	if b.Button().Busy || b.Button().Label() != "⟳ Refresh" {
		t.Errorf("initial button = %+v %q", b.Button(), b.Button().Label())
	}
	if !b.BeginRefresh() {
		t.Fatal("BeginRefresh on idle button returned false")
	}
	if b.BeginRefresh() {
		t.Error("BeginRefresh on busy button returned true")
	}
	if b.Button().Label() != "Refreshing…" {
		t.Errorf("busy label = %q", b.Button().Label())
	}

	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	b.Render(nil, now)
	if b.Button().Busy {
		t.Error("Render did not restore the button")
	}
	if !b.UpdatedAt().Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", b.UpdatedAt(), now)
	}
}

func TestDecorationByName(t *testing.T) {
	d, err := DecorationByName("band", "₹")
	if err != nil || d.WantsChart() {
		t.Errorf("band: %v %v", d, err)
	}
	d, err = DecorationByName("sparkline", "₹")
	if err != nil || !d.WantsChart() {
		t.Errorf("sparkline: %v %v", d, err)
	}
	if _, err := DecorationByName("pie", "₹"); err == nil {
		t.Error("expected error for unknown decoration")
	}
}

func TestDetailSymbol(t *testing.T) {
	for _, sym := range []string{"TCS", "^NSEI", "M&M.NS"} {
		got, ok := DetailSymbol(DetailHref(sym))
		if !ok || got != sym {
			t.Errorf("DetailSymbol(DetailHref(%q)) = %q, %v", sym, got, ok)
		}
	}
	for _, href := range []string{"", "index.html?symbol=TCS", "details.html", "details.html?symbol="} {
		if got, ok := DetailSymbol(href); ok {
			t.Errorf("DetailSymbol(%q) = %q, want no target", href, got)
		}
	}
}
