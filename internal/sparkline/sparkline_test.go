package sparkline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"stockboard/pkg/stockboard"
)

type fakeFetcher struct {
	history []stockboard.HistoryPoint
	err     error

	symbol, period, interval string
}

func (f *fakeFetcher) FetchHistory(_ context.Context, symbol, period, interval string) ([]stockboard.HistoryPoint, error) {
	f.symbol, f.period, f.interval = symbol, period, interval
	return f.history, f.err
}

type fakeRenderer struct {
	calls  int
	series []float64
	opts   ChartOptions
	err    error
}

func (r *fakeRenderer) Render(series []float64, opts ChartOptions) (string, error) {
	r.calls++
	r.series, r.opts = series, opts
	return "chart", r.err
}

func history(closes ...string) []stockboard.HistoryPoint {
	out := make([]stockboard.HistoryPoint, len(closes))
	for i, c := range closes {
		out[i] = stockboard.HistoryPoint{Date: "2025-01-02", Close: decimal.RequireFromString(c)}
	}
	return out
}

func TestTrending(t *testing.T) {
	tests := []struct {
		name   string
		closes []string
		want   bool
	}{
		{"rising", []string{"100", "105"}, true},
		{"falling", []string{"100", "95"}, false},
		{"flat", []string{"100", "90", "100"}, true},
		{"single", []string{"42"}, true},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Trending(history(tt.closes...)); got != tt.want {
				t.Errorf("Trending = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(history("100", "105"), 30, 4)
	want := ChartOptions{LineWidth: 1, Tension: 0.4, Color: ColorUp, Width: 30, Height: 4}
	if opts != want {
		t.Errorf("OptionsFor = %+v, want %+v", opts, want)
	}
	if got := OptionsFor(history("100", "95"), 30, 4).Color; got != ColorDown {
		t.Errorf("falling colour = %s, want red", got)
	}
}

func TestAdapterRender(t *testing.T) {
	f := &fakeFetcher{history: history("100", "95", "99")}
	r := &fakeRenderer{}
	a := NewAdapter(f, r, Config{})

	res, err := a.Render(context.Background(), "TCS")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if f.symbol != "TCS" || f.period != "5d" || f.interval != "60m" {
		t.Errorf("fetch args = %s %s %s, want TCS 5d 60m", f.symbol, f.period, f.interval)
	}
	if !res.Drawn || res.Up || res.View != "chart" || res.Symbol != "TCS" {
		t.Errorf("Result = %+v", res)
	}
	if len(r.series) != 3 || r.series[1] != 95 {
		t.Errorf("series = %v", r.series)
	}
	if r.opts.Width != 30 || r.opts.Height != 4 || r.opts.ShowAxes {
		t.Errorf("opts = %+v", r.opts)
	}
}

func TestAdapterEmptyHistory(t *testing.T) {
	r := &fakeRenderer{}
	a := NewAdapter(&fakeFetcher{}, r, Config{})

	res, err := a.Render(context.Background(), "INFY")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if res.Drawn || res.View != "" {
		t.Errorf("Result = %+v, want nothing drawn", res)
	}
	if r.calls != 0 {
		t.Errorf("renderer called %d times for an empty history", r.calls)
	}
}

func TestAdapterErrors(t *testing.T) {
	netErr := &stockboard.NetworkError{Op: "FetchHistory", StatusCode: 500}
	a := NewAdapter(&fakeFetcher{err: netErr}, &fakeRenderer{}, Config{})
	_, err := a.Render(context.Background(), "TCS")
	var ne *stockboard.NetworkError
	if !errors.As(err, &ne) {
		t.Errorf("fetch error = %v, want *NetworkError", err)
	}

	boom := errors.New("boom")
	a = NewAdapter(&fakeFetcher{history: history("1", "2")}, &fakeRenderer{err: boom}, Config{})
	if _, err := a.Render(context.Background(), "TCS"); !errors.Is(err, boom) {
		t.Errorf("render error = %v, want boom", err)
	}
}

func TestSmoothPassesThroughKnots(t *testing.T) {
	series := []float64{10, 12, 9, 15, 14}
	pts := Smooth(series, 0.4, 4)
	if len(pts) != (len(series)-1)*4+1 {
		t.Fatalf("len = %d, want %d", len(pts), (len(series)-1)*4+1)
	}
	for i, y := range series {
		p := pts[i*4]
		if p.X != float64(i) || math.Abs(p.Y-y) > 1e-9 {
			t.Errorf("knot %d = %+v, want (%d, %v)", i, p, i, y)
		}
	}
}

func TestSmoothWithoutTension(t *testing.T) {
	pts := Smooth([]float64{1, 2, 3}, 0, 4)
	if len(pts) != 3 || pts[2].Y != 3 {
		t.Errorf("Smooth(tension 0) = %+v", pts)
	}
}

func TestBrailleRendererSize(t *testing.T) {
	r := NewBrailleRenderer()
	for _, series := range [][]float64{
		{100, 101, 99, 103, 104, 102},
		{5, 5, 5},
		{7},
	} {
		out, err := r.Render(series, ChartOptions{Width: 20, Height: 3, Tension: 0.4, Color: ColorUp})
		if err != nil {
			t.Fatalf("Render(%v): %v", series, err)
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render(%v) drew nothing", series)
		}
		if h := lipgloss.Height(out); h != 3 {
			t.Errorf("Render(%v) height = %d, want 3", series, h)
		}
	}

	if _, err := r.Render(nil, ChartOptions{Width: 20, Height: 3}); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Render(nil) = %v, want ErrEmptySeries", err)
	}
}
