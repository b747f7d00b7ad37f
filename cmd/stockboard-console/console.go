package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stockboard/internal/dashboard"
	"stockboard/internal/sparkline"
	"stockboard/pkg/stockboard"
)

type quoteSource interface {
	FetchQuotes(ctx context.Context) ([]stockboard.Quote, error)
}

type chartRenderer interface {
	Render(ctx context.Context, symbol string) (sparkline.Result, error)
}

// console prints the board to a plain writer after every refresh.
type console struct {
	mu        sync.Mutex
	board     *dashboard.Board
	quotes    quoteSource
	charts    chartRenderer
	limit     int
	layout    dashboard.CardLayout
	width     int
	out       io.Writer
	log       *slog.Logger
	now       func() time.Time
	clear     bool
	remaining int
}

// refresh fetches quotes, renders the board, draws sparklines concurrently
// and prints the result. A failed fetch leaves the previous board intact.
func (c *console) refresh(ctx context.Context) error {
	ctx = stockboard.WithRequestID(ctx, uuid.NewString())
	quotes, err := c.quotes.FetchQuotes(ctx)
	if err != nil {
		return fmt.Errorf("fetching quotes: %w", err)
	}

	c.mu.Lock()
	gen := c.board.Render(quotes, c.now())
	var pending []string
	if c.board.Decoration().WantsChart() {
		pending = c.board.PendingCharts()
	}
	c.mu.Unlock()

	c.drawCharts(ctx, gen, pending)
	c.print()
	return nil
}

func (c *console) drawCharts(ctx context.Context, gen uint64, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for _, sym := range symbols {
		g.Go(func() error {
			res, err := c.charts.Render(gctx, sym)

			c.mu.Lock()
			defer c.mu.Unlock()
			switch {
			case err != nil:
				c.log.Warn("sparkline failed", "symbol", sym, "error", err)
				err = c.board.SkipChart(sym, gen)
			case !res.Drawn:
				err = c.board.SkipChart(sym, gen)
			default:
				err = c.board.ApplyChart(sym, gen, res.View, res.Up)
			}
			if err != nil {
				c.log.Debug("sparkline dropped", "symbol", sym, "reason", err)
			}
			// Failures never cancel the other charts.
			return nil
		})
	}
	g.Wait()
	c.log.Debug("sparklines drawn", "count", len(symbols), "elapsed", time.Since(start))
}

func (c *console) setRemaining(n int) {
	c.mu.Lock()
	c.remaining = n
	c.mu.Unlock()
}

func (c *console) beginManual() {
	c.mu.Lock()
	c.board.BeginRefresh()
	c.mu.Unlock()
	c.print()
}

func (c *console) endManual() {
	c.mu.Lock()
	c.board.EndRefresh()
	c.mu.Unlock()
	c.print()
}

func (c *console) print() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.clear {
		fmt.Fprint(c.out, "\033[H\033[2J")
	}
	fmt.Fprintf(c.out, "Stock Dashboard  %s    [%s]\n",
		now.Format("2006-01-02 15:04:05"), c.board.Button().Label())
	fmt.Fprintln(c.out, dashboard.StatusLine(c.board.Summary(), c.remaining, c.board.UpdatedAt(), now))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, dashboard.RenderGrid(c.board.Cards(), dashboard.Grid{Layout: c.layout, Width: c.width}, ""))
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "type r + Enter to refresh, Ctrl+C to quit")
}
