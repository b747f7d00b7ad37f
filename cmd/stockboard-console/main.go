package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stockboard/internal/config"
	"stockboard/internal/dashboard"
	"stockboard/internal/scheduler"
	"stockboard/internal/sparkline"
	"stockboard/internal/util"
	"stockboard/pkg/stockboard"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	width := flag.Int("width", 120, "output width in columns")
	noClear := flag.Bool("no-clear", false, "append output instead of clearing the screen")
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

	logOut := os.Stderr
	if cfg.Logging.File != "" {
		f, err := util.OpenLogFile(cfg.Logging.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logOut)
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
		logger.Error("resolving decoration", "error", err)
		os.Exit(1)
	}

	con := &console{
		board:  dashboard.NewBoard(cfg.Display.Currency, deco),
		quotes: client,
		charts: adapter,
		limit:  cfg.Sparkline.Concurrency,
		layout: dashboard.CardLayout{
			Width:       adapter.Config().Width + 4,
			ChartHeight: adapter.Config().Height,
			Chart:       deco.WantsChart(),
		},
		width:     *width,
		out:       os.Stdout,
		log:       logger,
		now:       time.Now,
		clear:     !*noClear,
		remaining: cfg.Refresh.PeriodSeconds,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(scheduler.Options{
		Period:     cfg.Refresh.PeriodSeconds,
		TickEvery:  cfg.Refresh.TickEvery,
		GraceDelay: cfg.Refresh.GraceDelay,
		Refresh:    con.refresh,
		Trigger:    client.TriggerRefresh,
		Logger:     logger,
	})
	sched.OnTick(con.setRemaining)
	sched.OnRefresh(func(t scheduler.Trigger, err error) {
		if t == scheduler.TriggerManual {
			con.endManual()
		}
	})
	sched.OnManualFailed(func(err error) { con.endManual() })

	logger.Info("starting", "api", client.BaseURL(), "decoration", deco.Name())
	if err := sched.Start(ctx); err != nil {
		logger.Error("starting scheduler", "error", err)
		os.Exit(1)
	}

	// Line-based manual refresh.
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			switch strings.ToLower(strings.TrimSpace(sc.Text())) {
			case "r":
				if sched.Manual(ctx) {
					con.beginManual()
				} else {
					logger.Info("refresh already in progress")
				}
			case "q":
				cancel()
				return
			}
		}
	}()

	<-ctx.Done()
	sched.Stop()
	fmt.Println("\nshutdown")
}
