// Package mockfeed simulates the quote backend: every symbol follows a
// seeded random walk, and quotes, history windows and details are derived
// from the walk the same way the real backend derives them from market data.
package mockfeed

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"stockboard/pkg/stockboard"
)

// ErrUnknownSymbol is returned for symbols the feed does not track.
var ErrUnknownSymbol = errors.New("mockfeed: unknown symbol")

// ErrBadWindow is returned for unparseable history periods or intervals.
var ErrBadWindow = errors.New("mockfeed: bad history window")

const (
	// maxBars is the number of closes kept per symbol.
	maxBars = 600
	// barsPerDay approximates hourly bars in a trading session.
	barsPerDay = 7
	// tradingDaysPerYear is used for 250-day statistics and "1y" periods.
	tradingDaysPerYear = 250
)

// Symbol seeds one walk.
type Symbol struct {
	Symbol string
	Name   string
	Price  float64
}

// Options configures a Feed.
type Options struct {
	Symbols []Symbol
	Seed    int64
	Step    time.Duration    // wall-clock spacing of generated bars
	Now     func() time.Time // defaults to time.Now
	Loc     *time.Location   // timestamps are rendered naive in this zone
}

type walk struct {
	symbol  string
	name    string
	closes  []float64 // hourly closes, oldest first
	volume  int64
	shares  int64 // for market cap
	eps     float64
	dayOpen float64
}

// Feed is a thread-safe random-walk quote source.
type Feed struct {
	mu    sync.RWMutex
	rng   *rand.Rand
	order []string
	walks map[string]*walk
	last  time.Time

	step time.Duration
	now  func() time.Time
	loc  *time.Location
}

// New creates a Feed with a full history already generated for every symbol.
func New(opts Options) *Feed {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Step <= 0 {
		opts.Step = time.Hour
	}
	if opts.Loc == nil {
		opts.Loc = time.UTC
	}
	f := &Feed{
		rng:   rand.New(rand.NewSource(opts.Seed)),
		walks: make(map[string]*walk, len(opts.Symbols)),
		step:  opts.Step,
		now:   opts.Now,
		loc:   opts.Loc,
	}
	for _, s := range opts.Symbols {
		if _, dup := f.walks[s.Symbol]; dup || s.Symbol == "" {
			continue
		}
		f.order = append(f.order, s.Symbol)
		f.walks[s.Symbol] = f.seedWalk(s)
	}
	f.last = f.now()
	return f
}

// seedWalk generates maxBars closes backwards so the walk ends at s.Price.
func (f *Feed) seedWalk(s Symbol) *walk {
	price := s.Price
	if price <= 0 {
		price = 1 + f.rng.Float64()*99
	}
	closes := make([]float64, maxBars)
	closes[maxBars-1] = price
	for i := maxBars - 2; i >= 0; i-- {
		closes[i] = math.Max(0.01, closes[i+1]*(1+f.move()))
	}
	return &walk{
		symbol:  s.Symbol,
		name:    s.Name,
		closes:  closes,
		volume:  100_000 + f.rng.Int63n(9_900_000),
		shares:  100_000_000 + f.rng.Int63n(9_900_000_000),
		eps:     price / (10 + f.rng.Float64()*30),
		dayOpen: closes[maxBars-barsPerDay],
	}
}

// move returns a relative price move between 0.1% and 2%, either direction.
func (f *Feed) move() float64 {
	m := 0.001 + f.rng.Float64()*0.019
	if f.rng.Float64() < 0.5 {
		m = -m
	}
	return m
}

// Refresh advances every symbol by one bar.
func (f *Feed) Refresh() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sym := range f.order {
		w := f.walks[sym]
		last := w.closes[len(w.closes)-1]
		next := math.Max(0.01, last*(1+f.move()))
		w.closes = append(w.closes[1:], next)
		w.volume += f.rng.Int63n(250_000)
	}
	f.last = f.now()
}

// Symbols returns the tracked symbols in seed order.
func (f *Feed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Quotes returns a snapshot of every symbol in seed order.
func (f *Feed) Quotes() []stockboard.Quote {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]stockboard.Quote, 0, len(f.order))
	for _, sym := range f.order {
		out = append(out, f.quote(f.walks[sym]))
	}
	return out
}

// Quote returns one symbol's snapshot.
func (f *Feed) Quote(symbol string) (stockboard.Quote, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	w, ok := f.walks[symbol]
	if !ok {
		return stockboard.Quote{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return f.quote(w), nil
}

func (f *Feed) quote(w *walk) stockboard.Quote {
	a := analyze(w.closes)
	return stockboard.Quote{
		Symbol:         w.symbol,
		Name:           w.name,
		Price:          money(a.price),
		Change:         money(a.changePct),
		Status:         a.status,
		IsLow:          a.isLow,
		TwoFiftyDayAvg: money(a.avg250),
		TwoFiftyDayLow: money(a.low250),
		SevenDayAvg:    money(a.avg7),
		Details:        a.details(),
		Timestamp:      f.last.In(f.loc).Format("2006-01-02T15:04:05"),
	}
}

// Detail returns the extended snapshot of one symbol.
func (f *Feed) Detail(symbol string) (*stockboard.QuoteDetail, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	w, ok := f.walks[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	a := analyze(w.closes)
	q := f.quote(w)

	day := w.closes[len(w.closes)-barsPerDay:]
	year := tail(w.closes, tradingDaysPerYear*barsPerDay)
	vol := w.volume

	return &stockboard.QuoteDetail{
		Symbol:           q.Symbol,
		Name:             q.Name,
		Price:            q.Price,
		Change:           q.Change,
		Status:           q.Status,
		IsLow:            q.IsLow,
		Details:          q.Details,
		MarketCap:        nullMoney(a.price * float64(w.shares)),
		Volume:           &vol,
		OpenPrice:        nullMoney(w.dayOpen),
		DayHigh:          nullMoney(maxOf(day)),
		DayLow:           nullMoney(minOf(day)),
		FiftyTwoWeekHigh: nullMoney(maxOf(year)),
		FiftyTwoWeekLow:  nullMoney(minOf(year)),
		PERatio:          nullMoney(a.price / w.eps),
		SevenDayAvg:      nullMoney(a.avg7),
		SevenDayMin:      nullMoney(a.min7),
		SevenDayMax:      nullMoney(a.max7),
		TwoFiftyDayLow:   nullMoney(a.low250),
		Timestamp:        q.Timestamp,
	}, nil
}

// History returns the closes covering period at interval resolution, oldest
// first. Periods are "<n>d", "<n>mo", "<n>y" or "ytd"; intervals are "<n>m",
// "<n>h" or "1d".
func (f *Feed) History(symbol, period, interval string) ([]stockboard.HistoryPoint, error) {
	days, err := parsePeriod(period)
	if err != nil {
		return nil, err
	}
	stride, err := parseInterval(interval)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	w, ok := f.walks[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	window := tail(w.closes, days*barsPerDay)
	out := make([]stockboard.HistoryPoint, 0, len(window)/stride+1)
	// Sample from the newest bar backwards so the last point is current.
	for i := len(window) - 1; i >= 0; i -= stride {
		age := time.Duration(len(window)-1-i) * f.step
		out = append(out, stockboard.HistoryPoint{
			Date:  f.last.Add(-age).In(f.loc).Format("2006-01-02 15:04"),
			Close: money(window[i]),
		})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// NotifyMessage formats the manual status report for symbol.
func (f *Feed) NotifyMessage(symbol, baseURL string) (string, error) {
	q, err := f.Quote(symbol)
	if err != nil {
		return "", err
	}
	emoji := "\U0001F535"
	switch q.Status {
	case StatusNormal:
		emoji = "\U0001F7E2"
	case StatusLow:
		emoji = "\U0001F534"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Manual Status Report: %s</b>\n\n", emoji, q.Name)
	fmt.Fprintf(&b, "Symbol: <code>%s</code>\n", q.Symbol)
	fmt.Fprintf(&b, "Current Price: ₹%s\n", q.Price.StringFixed(2))
	sign := ""
	if !q.Change.IsNegative() {
		sign = "+"
	}
	fmt.Fprintf(&b, "Change: %s%s%%\n", sign, q.Change.StringFixed(2))
	fmt.Fprintf(&b, "Status: %s\n", q.Status)
	fmt.Fprintf(&b, "Note: %s\n\n", q.Details)
	fmt.Fprintf(&b, "<a href='%s/static/details.html?symbol=%s'>Open Dashboard</a>", strings.TrimSuffix(baseURL, "/"), q.Symbol)
	return b.String(), nil
}

func parsePeriod(p string) (int, error) {
	switch {
	case p == "ytd":
		return tradingDaysPerYear, nil
	case strings.HasSuffix(p, "mo"):
		n, err := strconv.Atoi(strings.TrimSuffix(p, "mo"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: period %q", ErrBadWindow, p)
		}
		return n * 21, nil
	case strings.HasSuffix(p, "d"):
		n, err := strconv.Atoi(strings.TrimSuffix(p, "d"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: period %q", ErrBadWindow, p)
		}
		return n, nil
	case strings.HasSuffix(p, "y"):
		n, err := strconv.Atoi(strings.TrimSuffix(p, "y"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: period %q", ErrBadWindow, p)
		}
		return n * tradingDaysPerYear, nil
	}
	return 0, fmt.Errorf("%w: period %q", ErrBadWindow, p)
}

// parseInterval returns how many hourly bars one interval spans. Intervals
// finer than an hour reuse the hourly bars.
func parseInterval(iv string) (int, error) {
	switch {
	case iv == "1d":
		return barsPerDay, nil
	case iv == "1wk":
		return 5 * barsPerDay, nil
	case strings.HasSuffix(iv, "m"):
		n, err := strconv.Atoi(strings.TrimSuffix(iv, "m"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: interval %q", ErrBadWindow, iv)
		}
		if n < 60 {
			return 1, nil
		}
		return n / 60, nil
	case strings.HasSuffix(iv, "h"):
		n, err := strconv.Atoi(strings.TrimSuffix(iv, "h"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: interval %q", ErrBadWindow, iv)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: interval %q", ErrBadWindow, iv)
}

func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func nullMoney(f float64) decimal.NullDecimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(money(f))
}

func tail(s []float64, n int) []float64 {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
