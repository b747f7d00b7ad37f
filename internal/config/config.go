package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the stockboard binaries.
type Config struct {
	API       API       `yaml:"api"`
	Refresh   Refresh   `yaml:"refresh"`
	Sparkline Sparkline `yaml:"sparkline"`
	Display   Display   `yaml:"display"`
	Logging   Logging   `yaml:"logging"`
	Mock      Mock      `yaml:"mock"`
}

// API points the dashboard at the quote backend.
type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Refresh controls the countdown and the manual refresh grace delay.
type Refresh struct {
	PeriodSeconds int           `yaml:"period_seconds"`
	TickEvery     time.Duration `yaml:"tick_every"`
	GraceDelay    time.Duration `yaml:"grace_delay"`
}

// Sparkline controls the per-card history chart.
type Sparkline struct {
	Period      string `yaml:"period"`
	Interval    string `yaml:"interval"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Concurrency int    `yaml:"concurrency"`
}

// Display selects the card decoration and currency prefix.
type Display struct {
	Currency   string `yaml:"currency"`
	Decoration string `yaml:"decoration"` // "band" or "sparkline"
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Mock configures the development backend.
type Mock struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Seed    int64         `yaml:"seed"`
	Symbols []MockSymbol  `yaml:"symbols"`
	Step    time.Duration `yaml:"step"`
}

// MockSymbol seeds one symbol of the mock feed.
type MockSymbol struct {
	Symbol string  `yaml:"symbol"`
	Name   string  `yaml:"name"`
	Price  float64 `yaml:"price"`
}

// Decoration names accepted by Display.Decoration.
const (
	DecorationBand      = "band"
	DecorationSparkline = "sparkline"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: API{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Refresh: Refresh{
			PeriodSeconds: 60,
			TickEvery:     time.Second,
			GraceDelay:    2 * time.Second,
		},
		Sparkline: Sparkline{
			Period:      "5d",
			Interval:    "60m",
			Width:       30,
			Height:      4,
			Concurrency: 4,
		},
		Display: Display{
			Currency:   "₹",
			Decoration: DecorationSparkline,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Mock: Mock{
			Host: "127.0.0.1",
			Port: 8000,
			Seed: 1,
			Step: 5 * time.Second,
			Symbols: []MockSymbol{
				{Symbol: "RELIANCE.NS", Name: "Reliance Industries", Price: 2950},
				{Symbol: "TCS.NS", Name: "Tata Consultancy Services", Price: 3500},
				{Symbol: "INFY.NS", Name: "Infosys", Price: 1500},
				{Symbol: "HDFCBANK.NS", Name: "HDFC Bank", Price: 1650},
				{Symbol: "ICICIBANK.NS", Name: "ICICI Bank", Price: 1250},
				{Symbol: "SBIN.NS", Name: "State Bank of India", Price: 820},
				{Symbol: "ITC.NS", Name: "ITC Ltd", Price: 430},
				{Symbol: "LT.NS", Name: "Larsen & Toubro", Price: 3600},
				{Symbol: "AXISBANK.NS", Name: "Axis Bank", Price: 1100},
				{Symbol: "WIPRO.NS", Name: "Wipro", Price: 480},
				{Symbol: "TATAGOLD.NS", Name: "Tata Gold ETF", Price: 9.5},
			},
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path on top of the
// defaults, and then applies environment variable overrides. An empty path
// skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Missing files are ignored and
// variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Validate rejects configurations the scheduler or renderer cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is required")
	}
	if c.Refresh.PeriodSeconds <= 0 {
		return fmt.Errorf("config: refresh.period_seconds must be positive, got %d", c.Refresh.PeriodSeconds)
	}
	if c.Refresh.TickEvery <= 0 {
		return fmt.Errorf("config: refresh.tick_every must be positive, got %s", c.Refresh.TickEvery)
	}
	if c.Refresh.GraceDelay < 0 {
		return fmt.Errorf("config: refresh.grace_delay must not be negative, got %s", c.Refresh.GraceDelay)
	}
	switch c.Display.Decoration {
	case DecorationBand, DecorationSparkline:
	default:
		return fmt.Errorf("config: unknown display.decoration %q", c.Display.Decoration)
	}
	if c.Sparkline.Width < 4 || c.Sparkline.Height < 1 {
		return fmt.Errorf("config: sparkline size %dx%d too small", c.Sparkline.Width, c.Sparkline.Height)
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("STOCKBOARD_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}

	if v := os.Getenv("STOCKBOARD_DECORATION"); v != "" {
		cfg.Display.Decoration = v
	}

	if v := os.Getenv("STOCKBOARD_CURRENCY"); v != "" {
		cfg.Display.Currency = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}

	if v := os.Getenv("MOCK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MOCK_PORT: %w", err)
		}
		cfg.Mock.Port = port
	}
	return nil
}
