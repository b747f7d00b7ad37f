package main

import (
	"context"
	"log/slog"
	"time"

	"stockboard/internal/mockfeed"
	"stockboard/internal/util"
)

// stepper advances the feed one bar per tick while the market is open.
type stepper struct {
	feed   *mockfeed.Feed
	cal    *util.TradingCalendar
	always bool
	log    *slog.Logger
	now    func() time.Time
}

// step advances the feed if trading is open and reports whether it did.
func (s *stepper) step() bool {
	if !s.always && !s.cal.IsMarketOpen(s.now()) {
		return false
	}
	s.feed.Refresh()
	return true
}

func (s *stepper) run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = 5 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	closed := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.step() {
				closed = false
				continue
			}
			if !closed {
				s.log.Info("market closed, prices frozen", "next_open", s.cal.NextOpen(s.now()))
				closed = true
			}
		}
	}
}
