package util

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info("dropped")
	logger.Warn("kept", "symbol", "TCS.NS")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "kept" || rec["symbol"] != "TCS.NS" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("bogus", "text", &buf).Info("hello", "n", 1)
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}
}

func TestDefaultLogPath(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	if got := DefaultLogPath("stockboard", now); !strings.HasSuffix(got, "stockboard-2025-01-02.log") {
		t.Errorf("DefaultLogPath = %q", got)
	}
}

func TestNSECalendar(t *testing.T) {
	cal := NSECalendar()
	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before open", time.Date(2025, 1, 6, 8, 59, 0, 0, ist), false},
		{"at open", time.Date(2025, 1, 6, 9, 0, 0, 0, ist), true},
		{"midday", time.Date(2025, 1, 6, 12, 0, 0, 0, ist), true},
		{"at close", time.Date(2025, 1, 6, 15, 30, 0, 0, ist), true},
		{"after close", time.Date(2025, 1, 6, 15, 31, 0, 0, ist), false},
		{"saturday", time.Date(2025, 1, 4, 12, 0, 0, 0, ist), false},
		{"utc input", time.Date(2025, 1, 6, 5, 0, 0, 0, time.UTC), true}, // 10:30 IST
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.IsMarketOpen(tt.at); got != tt.want {
				t.Errorf("IsMarketOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTradingCalendarNextOpen(t *testing.T) {
	cal := NSECalendar()
	ist := time.FixedZone("IST", 5*3600+1800)

	// Friday after close rolls to Monday 09:00.
	fri := time.Date(2025, 1, 3, 16, 0, 0, 0, ist)
	next := cal.NextOpen(fri).In(ist)
	if next.Weekday() != time.Monday || next.Hour() != 9 || next.Minute() != 0 {
		t.Errorf("NextOpen(%v) = %v, want Monday 09:00", fri, next)
	}

	close := cal.NextClose(time.Date(2025, 1, 6, 10, 0, 0, 0, ist)).In(ist)
	if close.Day() != 6 || close.Hour() != 15 || close.Minute() != 30 {
		t.Errorf("NextClose = %v, want same day 15:30", close)
	}
}

func TestNewTradingCalendarRejectsBadSession(t *testing.T) {
	if _, err := NewTradingCalendar("UTC", "16:00", "09:30", nil); err == nil {
		t.Error("expected error for close before open")
	}
	if _, err := NewTradingCalendar("UTC", "9am", "16:00", nil); err == nil {
		t.Error("expected error for malformed clock")
	}
}
