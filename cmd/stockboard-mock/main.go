package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"stockboard/internal/config"
	"stockboard/internal/httpapi"
	"stockboard/internal/mockfeed"
	"stockboard/internal/util"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	alwaysOpen := flag.Bool("always-open", false, "advance prices outside market hours")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("loading .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Setup logging.
	var w io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		logFile, err := util.OpenLogFile(cfg.Logging.File)
		if err != nil {
			log.Fatalf("opening log file: %v", err)
		}
		defer logFile.Close()
		w = io.MultiWriter(os.Stdout, logFile)
	}
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format, w)
	util.SetDefault(logger)

	// Prices go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cal := util.NSECalendar()
	symbols := make([]mockfeed.Symbol, len(cfg.Mock.Symbols))
	for i, s := range cfg.Mock.Symbols {
		symbols[i] = mockfeed.Symbol{Symbol: s.Symbol, Name: s.Name, Price: s.Price}
	}
	feed := mockfeed.New(mockfeed.Options{
		Symbols: symbols,
		Seed:    cfg.Mock.Seed,
		Step:    cfg.Mock.Step,
		Loc:     cal.Location(),
	})

	var notifier httpapi.Notifier
	if token, chat := os.Getenv("TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_CHAT_ID"); token != "" && chat != "" {
		notifier = httpapi.TelegramNotifier{Token: token, ChatID: chat}
		logger.Info("telegram notifications enabled", "chat", chat)
	}

	addr := net.JoinHostPort(cfg.Mock.Host, strconv.Itoa(cfg.Mock.Port))
	publicURL := os.Getenv("DASHBOARD_URL")
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://%s", addr)
	}
	srv := httpapi.NewServer(feed, cal, notifier, publicURL, logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := &stepper{feed: feed, cal: cal, always: *alwaysOpen, log: logger, now: time.Now}
	go st.run(ctx, cfg.Mock.Step)

	go func() {
		logger.Info("mock backend listening", "addr", addr, "symbols", len(symbols))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down mock backend")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
