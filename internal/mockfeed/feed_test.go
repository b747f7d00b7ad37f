package mockfeed

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testFeed() *Feed {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	return New(Options{
		Symbols: []Symbol{
			{Symbol: "TCS.NS", Name: "Tata Consultancy Services", Price: 3500},
			{Symbol: "INFY.NS", Name: "Infosys", Price: 1500},
			{Symbol: "TCS.NS", Name: "duplicate", Price: 1},
		},
		Seed: 7,
		Now:  func() time.Time { return now },
	})
}

func TestNewSeedsPrices(t *testing.T) {
	f := testFeed()
	if got := f.Symbols(); len(got) != 2 || got[0] != "TCS.NS" || got[1] != "INFY.NS" {
		t.Fatalf("Symbols = %v, want [TCS.NS INFY.NS]", got)
	}
	q, err := f.Quote("TCS.NS")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Price.StringFixed(2) != "3500.00" {
		t.Errorf("Price = %s, want 3500.00", q.Price)
	}
	if q.Name != "Tata Consultancy Services" {
		t.Errorf("Name = %q", q.Name)
	}
	if q.Timestamp != "2025-01-02T10:00:00" {
		t.Errorf("Timestamp = %q", q.Timestamp)
	}
}

func TestDeterministicSeed(t *testing.T) {
	a, b := testFeed(), testFeed()
	a.Refresh()
	b.Refresh()
	qa, qb := a.Quotes(), b.Quotes()
	for i := range qa {
		if !qa[i].Price.Equal(qb[i].Price) {
			t.Errorf("%s: %s != %s with the same seed", qa[i].Symbol, qa[i].Price, qb[i].Price)
		}
	}
}

func TestRefreshMovesPrices(t *testing.T) {
	f := testFeed()
	before := f.Quotes()
	f.Refresh()
	after := f.Quotes()
	for i := range before {
		if before[i].Price.Equal(after[i].Price) {
			t.Errorf("%s did not move", before[i].Symbol)
		}
		if !after[i].Price.IsPositive() {
			t.Errorf("%s price = %s", after[i].Symbol, after[i].Price)
		}
	}
}

func TestUnknownSymbol(t *testing.T) {
	f := testFeed()
	if _, err := f.Quote("NOPE"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Quote = %v, want ErrUnknownSymbol", err)
	}
	if _, err := f.Detail("NOPE"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Detail = %v, want ErrUnknownSymbol", err)
	}
	if _, err := f.History("NOPE", "5d", "60m"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("History = %v, want ErrUnknownSymbol", err)
	}
}

func TestHistoryWindow(t *testing.T) {
	f := testFeed()
	tests := []struct {
		period, interval string
		want             int
	}{
		{"5d", "60m", 35},
		{"5d", "1d", 5},
		{"1mo", "1d", 21},
		{"1d", "15m", 7},
		{"10y", "1d", 86}, // whole walk, sampled from the newest bar
	}
	for _, tt := range tests {
		h, err := f.History("TCS.NS", tt.period, tt.interval)
		if err != nil {
			t.Fatalf("History(%s, %s): %v", tt.period, tt.interval, err)
		}
		if len(h) != tt.want {
			t.Errorf("History(%s, %s) = %d points, want %d", tt.period, tt.interval, len(h), tt.want)
		}
	}

	h, _ := f.History("TCS.NS", "5d", "60m")
	q, _ := f.Quote("TCS.NS")
	if !h[len(h)-1].Close.Equal(q.Price) {
		t.Errorf("last close %s != price %s", h[len(h)-1].Close, q.Price)
	}
	if h[len(h)-1].Date != "2025-01-02 10:00" || h[0].Date >= h[len(h)-1].Date {
		t.Errorf("dates not ascending to now: first %s last %s", h[0].Date, h[len(h)-1].Date)
	}

	for _, bad := range [][2]string{{"5x", "60m"}, {"5d", "abc"}, {"0d", "1d"}, {"", "1d"}} {
		if _, err := f.History("TCS.NS", bad[0], bad[1]); !errors.Is(err, ErrBadWindow) {
			t.Errorf("History(%q, %q) = %v, want ErrBadWindow", bad[0], bad[1], err)
		}
	}
}

func TestDetailFields(t *testing.T) {
	f := testFeed()
	d, err := f.Detail("INFY.NS")
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	for name, v := range map[string]bool{
		"market_cap":    d.MarketCap.Valid,
		"open_price":    d.OpenPrice.Valid,
		"day_high":      d.DayHigh.Valid,
		"day_low":       d.DayLow.Valid,
		"52w_high":      d.FiftyTwoWeekHigh.Valid,
		"pe_ratio":      d.PERatio.Valid,
		"seven_day_min": d.SevenDayMin.Valid,
	} {
		if !v {
			t.Errorf("%s missing", name)
		}
	}
	if d.Volume == nil || *d.Volume <= 0 {
		t.Errorf("Volume = %v", d.Volume)
	}
	if d.DayLow.Decimal.GreaterThan(d.DayHigh.Decimal) {
		t.Errorf("day low %s > day high %s", d.DayLow.Decimal, d.DayHigh.Decimal)
	}
}

func TestAnalyzeStatuses(t *testing.T) {
	flat := func(n int, v float64) []float64 {
		s := make([]float64, n)
		for i := range s {
			s[i] = v
		}
		return s
	}

	// A long decline ending on its low is a critical dip.
	var falling []float64
	for i := 0; i < 40*barsPerDay; i++ {
		falling = append(falling, 200-float64(i)*0.5)
	}
	if a := analyze(falling); a.status != StatusCriticalDip || !a.isLow {
		t.Errorf("falling: status %s low %v", a.status, a.isLow)
	}

	// A steady rise ending at its high is high.
	var rising []float64
	for i := 0; i < 40*barsPerDay; i++ {
		rising = append(rising, 100+float64(i)*0.5)
	}
	a := analyze(rising)
	if a.status != StatusHigh || a.isLow {
		t.Errorf("rising: status %s low %v", a.status, a.isLow)
	}
	if a.details() != "Normal price action" {
		t.Errorf("rising details = %q", a.details())
	}

	// A dip that stays well above the long-run low is low, not critical.
	bars := append(flat(30*barsPerDay, 60), flat(20*barsPerDay, 100)...)
	bars = append(bars, flat(barsPerDay, 90)...)
	a = analyze(bars)
	if a.status != StatusLow || !a.isLow {
		t.Errorf("dip: status %s low %v", a.status, a.isLow)
	}
	if !strings.Contains(a.details(), "Below 20-day MA") {
		t.Errorf("dip details = %q", a.details())
	}
}

func TestNotifyMessage(t *testing.T) {
	f := testFeed()
	msg, err := f.NotifyMessage("TCS.NS", "http://localhost:8000/")
	if err != nil {
		t.Fatalf("NotifyMessage: %v", err)
	}
	for _, want := range []string{"Tata Consultancy Services", "<code>TCS.NS</code>", "₹3500.00", "http://localhost:8000/static/details.html?symbol=TCS.NS"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
	if _, err := f.NotifyMessage("NOPE", ""); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("NotifyMessage(unknown) = %v", err)
	}
}
