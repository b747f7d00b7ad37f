package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"stockboard/internal/config"
	"stockboard/internal/dashboard"
	"stockboard/internal/scheduler"
	"stockboard/internal/sparkline"
	"stockboard/internal/util"
	"stockboard/pkg/stockboard"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = util.DefaultLogPath("stockboard", time.Now())
	}
	logFile, err := util.OpenLogFile(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	util.SetDefault(logger)

	client := stockboard.NewClient(cfg.API.BaseURL,
		stockboard.WithTimeout(cfg.API.Timeout),
		stockboard.WithLogger(logger),
	)
	adapter := sparkline.NewAdapter(client, sparkline.NewBrailleRenderer(), sparkline.Config{
		Period:   cfg.Sparkline.Period,
		Interval: cfg.Sparkline.Interval,
		Width:    cfg.Sparkline.Width,
		Height:   cfg.Sparkline.Height,
	})
	deco, err := dashboard.DecorationByName(cfg.Display.Decoration, cfg.Display.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	board := dashboard.NewBoard(cfg.Display.Currency, deco)
	logger.Info("starting", "api", client.BaseURL(), "decoration", deco.Name(), "log", logPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		p   *tea.Program
		seq atomic.Uint64
	)
	sched := scheduler.New(scheduler.Options{
		Period:     cfg.Refresh.PeriodSeconds,
		TickEvery:  cfg.Refresh.TickEvery,
		GraceDelay: cfg.Refresh.GraceDelay,
		Refresh: func(ctx context.Context) error {
			n := seq.Add(1)
			ctx = stockboard.WithRequestID(ctx, uuid.NewString())
			quotes, err := client.FetchQuotes(ctx)
			p.Send(quotesLoadedMsg{seq: n, quotes: quotes, err: err})
			return err
		},
		Trigger: client.TriggerRefresh,
		Logger:  logger,
	})
	sched.OnTick(func(remaining int) { p.Send(countdownMsg{remaining: remaining}) })
	sched.OnRefresh(func(t scheduler.Trigger, err error) {
		if t == scheduler.TriggerManual {
			p.Send(manualDoneMsg{err: err})
		}
	})
	sched.OnManualFailed(func(err error) { p.Send(manualFailedMsg{err: err}) })

	p = tea.NewProgram(
		newModel(options{
			ctx:         ctx,
			board:       board,
			backend:     client,
			charts:      adapter,
			refresh:     sched,
			cal:         util.NSECalendar(),
			logger:      logger,
			currency:    cfg.Display.Currency,
			chartWidth:  adapter.Config().Width,
			chartHeight: adapter.Config().Height,
			concurrency: cfg.Sparkline.Concurrency,
			period:      cfg.Refresh.PeriodSeconds,
		}),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if err := sched.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "starting scheduler: %v\n", err)
		os.Exit(1)
	}

	_, runErr := p.Run()
	cancel()
	sched.Stop()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		os.Exit(1)
	}
}
