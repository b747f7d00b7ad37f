// Package scheduler drives the dashboard's refresh cycle: a per-second
// countdown that fetches quotes when it reaches zero, and a manual refresh
// that asks the backend to recompute before fetching.
//
// While a manual refresh is in flight the countdown is paused; when the
// manual refresh finishes the countdown restarts from the full period.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Trigger identifies what started a refresh.
type Trigger int

const (
	TriggerStartup Trigger = iota
	TriggerTimer
	TriggerManual
)

func (t Trigger) String() string {
	switch t {
	case TriggerStartup:
		return "startup"
	case TriggerTimer:
		return "timer"
	case TriggerManual:
		return "manual"
	default:
		return fmt.Sprintf("Trigger(%d)", int(t))
	}
}

// ErrRunning is returned by Start on an already running scheduler.
var ErrRunning = errors.New("scheduler: already running")

// Countdown counts whole ticks down to a refresh. The tick that reaches zero
// fires once and rearms the counter at the full period.
type Countdown struct {
	period    int
	remaining int
}

// NewCountdown returns a countdown armed at period (minimum 1).
func NewCountdown(period int) *Countdown {
	if period < 1 {
		period = 1
	}
	return &Countdown{period: period, remaining: period}
}

// Tick advances one step and returns the value to display and whether the
// refresh should fire.
func (c *Countdown) Tick() (int, bool) {
	c.remaining--
	if c.remaining <= 0 {
		c.remaining = c.period
		return c.remaining, true
	}
	return c.remaining, false
}

// Reset rearms the counter at the full period.
func (c *Countdown) Reset() { c.remaining = c.period }

// Remaining is the number of ticks before the next refresh.
func (c *Countdown) Remaining() int { return c.remaining }

// Period is the full countdown length.
func (c *Countdown) Period() int { return c.period }

// Options configures a Scheduler.
type Options struct {
	Period     int           // countdown length in ticks
	TickEvery  time.Duration // tick interval, normally one second
	GraceDelay time.Duration // wait between a backend refresh and the fetch

	// Refresh fetches and renders quotes. Required.
	Refresh func(ctx context.Context) error
	// Trigger asks the backend to recompute. Required for Manual.
	Trigger func(ctx context.Context) error

	Logger *slog.Logger
}

// Scheduler runs the countdown loop and the manual refresh path.
type Scheduler struct {
	opts Options
	log  *slog.Logger

	mu        sync.Mutex
	countdown *Countdown
	busy      bool
	running   bool
	cancel    context.CancelFunc
	quit      chan struct{}

	onTick         func(remaining int)
	onRefresh      func(t Trigger, err error)
	onManualFailed func(err error)

	wg sync.WaitGroup
}

// New creates a stopped Scheduler.
func New(opts Options) *Scheduler {
	if opts.TickEvery <= 0 {
		opts.TickEvery = time.Second
	}
	if opts.GraceDelay < 0 {
		opts.GraceDelay = 0
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		opts:      opts,
		log:       log,
		countdown: NewCountdown(opts.Period),
		quit:      make(chan struct{}),
	}
}

// OnTick registers a callback invoked with the remaining count after every
// unpaused tick. Callbacks must be set before Start.
func (s *Scheduler) OnTick(fn func(remaining int)) { s.onTick = fn }

// OnRefresh registers a callback invoked after every refresh attempt.
func (s *Scheduler) OnRefresh(fn func(t Trigger, err error)) { s.onRefresh = fn }

// OnManualFailed registers a callback invoked when the backend trigger of a
// manual refresh fails. No fetch follows a failed trigger.
func (s *Scheduler) OnManualFailed(fn func(err error)) { s.onManualFailed = fn }

// Start performs the initial refresh and begins ticking. It returns at once;
// the loop ends when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.quit = make(chan struct{})
	s.mu.Unlock()

	s.log.Info("scheduler started", "period", s.countdown.Period(), "tick", s.opts.TickEvery)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.refresh(ctx, TriggerStartup)
	}()
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
	return nil
}

// Stop cancels the loop and any refresh in flight, and waits for them.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	close(s.quit)
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.TickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.busy {
				s.mu.Unlock()
				continue
			}
			remaining, fired := s.countdown.Tick()
			s.mu.Unlock()

			if s.onTick != nil {
				s.onTick(remaining)
			}
			if fired {
				s.wg.Add(1)
				go func() {
					defer s.wg.Done()
					s.refresh(ctx, TriggerTimer)
				}()
			}
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context, t Trigger) error {
	start := time.Now()
	err := s.opts.Refresh(ctx)
	if err != nil {
		s.log.Warn("refresh failed", "trigger", t, "error", err)
	} else {
		s.log.Debug("refresh done", "trigger", t, "elapsed", time.Since(start))
	}
	if s.onRefresh != nil {
		s.onRefresh(t, err)
	}
	return err
}

// Manual starts a manual refresh and reports whether it was accepted. A
// request made while another manual refresh is in flight, or while the
// scheduler is stopped, is ignored.
//
// The backend is asked to recompute first. If that fails the refresh ends
// with OnManualFailed and no fetch. Otherwise the scheduler waits the grace
// delay, fetches, and rearms the countdown.
func (s *Scheduler) Manual(ctx context.Context) bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.log.Debug("manual refresh ignored, scheduler stopped")
		return false
	}
	if s.busy {
		s.mu.Unlock()
		s.log.Debug("manual refresh ignored, already busy")
		return false
	}
	s.busy = true
	quit := s.quit
	// Added under mu so Stop cannot be waiting yet.
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.manual(ctx, quit)
	}()
	return true
}

func (s *Scheduler) manual(ctx context.Context, quit <-chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	s.log.Info("manual refresh requested")
	if err := s.trigger(ctx); err != nil {
		s.log.Error("backend refresh failed", "error", err)
		if s.onManualFailed != nil {
			s.onManualFailed(err)
		}
		return
	}

	if s.opts.GraceDelay > 0 {
		timer := time.NewTimer(s.opts.GraceDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			s.finishCancelled(ctx.Err())
			return
		case <-quit:
			s.finishCancelled(context.Canceled)
			return
		}
	}

	s.refresh(ctx, TriggerManual)

	s.mu.Lock()
	s.countdown.Reset()
	s.mu.Unlock()
	if s.onTick != nil {
		s.onTick(s.countdown.Period())
	}
}

func (s *Scheduler) trigger(ctx context.Context) error {
	if s.opts.Trigger == nil {
		return errors.New("scheduler: no backend trigger configured")
	}
	return s.opts.Trigger(ctx)
}

func (s *Scheduler) finishCancelled(err error) {
	if s.onManualFailed != nil {
		s.onManualFailed(err)
	}
}

// Remaining returns the current countdown value.
func (s *Scheduler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown.Remaining()
}

// Busy reports whether a manual refresh is in flight.
func (s *Scheduler) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}
