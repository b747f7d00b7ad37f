// Package sparkline fetches a short price history per symbol and draws it as
// a minimal line chart: no legend, tooltip, axes or point markers, coloured
// by whether the window trended up.
package sparkline

import (
	"context"
	"fmt"

	"stockboard/pkg/stockboard"
)

// HistoryFetcher is the part of the backend client the adapter needs.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol, period, interval string) ([]stockboard.HistoryPoint, error)
}

// Color names the two trend colours.
type Color string

const (
	ColorUp   Color = "green"
	ColorDown Color = "red"
)

// ChartOptions is the configuration handed to a Renderer.
type ChartOptions struct {
	ShowLegend  bool
	ShowTooltip bool
	ShowAxes    bool
	LineWidth   int
	Tension     float64 // 0 draws straight segments
	PointRadius int
	Color       Color
	Width       int
	Height      int
}

// Renderer draws a series with the given options.
type Renderer interface {
	Render(series []float64, opts ChartOptions) (string, error)
}

// Trending reports whether the last close is at or above the first close.
// An empty history is not trending.
func Trending(history []stockboard.HistoryPoint) bool {
	if len(history) == 0 {
		return false
	}
	return history[len(history)-1].Close.GreaterThanOrEqual(history[0].Close)
}

// OptionsFor returns the minimal sparkline configuration for history.
func OptionsFor(history []stockboard.HistoryPoint, width, height int) ChartOptions {
	color := ColorDown
	if Trending(history) {
		color = ColorUp
	}
	return ChartOptions{
		ShowLegend:  false,
		ShowTooltip: false,
		ShowAxes:    false,
		LineWidth:   1,
		Tension:     0.4,
		PointRadius: 0,
		Color:       color,
		Width:       width,
		Height:      height,
	}
}

// Config sets the history window and chart size.
type Config struct {
	Period   string
	Interval string
	Width    int
	Height   int
}

// Result is the outcome of one sparkline request.
type Result struct {
	Symbol string
	Drawn  bool // false when the history was empty
	Up     bool
	View   string
}

// Adapter couples a history source with a chart renderer.
type Adapter struct {
	fetcher  HistoryFetcher
	renderer Renderer
	cfg      Config
}

// NewAdapter creates an Adapter. Zero config fields fall back to a 5-day,
// 60-minute window and a 30x4 chart.
func NewAdapter(f HistoryFetcher, r Renderer, cfg Config) *Adapter {
	if cfg.Period == "" {
		cfg.Period = "5d"
	}
	if cfg.Interval == "" {
		cfg.Interval = "60m"
	}
	if cfg.Width <= 0 {
		cfg.Width = 30
	}
	if cfg.Height <= 0 {
		cfg.Height = 4
	}
	return &Adapter{fetcher: f, renderer: r, cfg: cfg}
}

// Config returns the effective configuration.
func (a *Adapter) Config() Config { return a.cfg }

// Render fetches symbol's history and draws it. An empty history yields a
// Result with Drawn=false and no error.
func (a *Adapter) Render(ctx context.Context, symbol string) (Result, error) {
	return a.RenderSize(ctx, symbol, a.cfg.Width, a.cfg.Height)
}

// RenderSize is Render with an explicit chart size, used by the detail view.
func (a *Adapter) RenderSize(ctx context.Context, symbol string, width, height int) (Result, error) {
	res := Result{Symbol: symbol}

	history, err := a.fetcher.FetchHistory(ctx, symbol, a.cfg.Period, a.cfg.Interval)
	if err != nil {
		return res, fmt.Errorf("fetching history for %s: %w", symbol, err)
	}
	if len(history) == 0 {
		return res, nil
	}

	opts := OptionsFor(history, width, height)
	view, err := a.renderer.Render(stockboard.Closes(history), opts)
	if err != nil {
		return res, fmt.Errorf("rendering sparkline for %s: %w", symbol, err)
	}
	res.Drawn = true
	res.Up = opts.Color == ColorUp
	res.View = view
	return res, nil
}
