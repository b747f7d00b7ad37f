package util

import (
	"fmt"
	"time"
)

// TradingCalendar provides market-hours awareness for a single exchange
// with one continuous weekday session.
type TradingCalendar struct {
	loc   *time.Location
	open  time.Duration // offset from local midnight
	close time.Duration
}

// NewTradingCalendar creates a TradingCalendar for the session
// [open, close] ("HH:MM") in the named time zone. When the zone database
// is unavailable, fallback is used instead.
func NewTradingCalendar(tz, open, close string, fallback *time.Location) (*TradingCalendar, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		if fallback == nil {
			return nil, fmt.Errorf("loading timezone %s: %w", tz, err)
		}
		loc = fallback
	}
	o, err := parseClock(open)
	if err != nil {
		return nil, err
	}
	c, err := parseClock(close)
	if err != nil {
		return nil, err
	}
	if c <= o {
		return nil, fmt.Errorf("session close %s not after open %s", close, open)
	}
	return &TradingCalendar{loc: loc, open: o, close: c}, nil
}

// NSECalendar is the Indian equity session, 09:00-15:30 IST, Monday to Friday.
func NSECalendar() *TradingCalendar {
	cal, err := NewTradingCalendar("Asia/Kolkata", "09:00", "15:30", time.FixedZone("IST", 5*3600+1800))
	if err != nil {
		panic(err)
	}
	return cal
}

// IsMarketOpen returns whether the market is open at time t. Both session
// bounds are inclusive.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	local := t.In(tc.loc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	sinceMidnight := local.Sub(midnight(local))
	return sinceMidnight >= tc.open && sinceMidnight <= tc.close
}

// NextOpen returns the next market open time at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	local := t.In(tc.loc)
	for i := 0; i < 8; i++ {
		day := midnight(local.AddDate(0, 0, i))
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		open := day.Add(tc.open)
		if !open.Before(local) {
			return open
		}
	}
	return time.Time{}
}

// NextClose returns the next market close time at or after t.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	local := t.In(tc.loc)
	for i := 0; i < 8; i++ {
		day := midnight(local.AddDate(0, 0, i))
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		cl := day.Add(tc.close)
		if !cl.Before(local) {
			return cl
		}
	}
	return time.Time{}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parsing session time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Location is the exchange time zone.
func (tc *TradingCalendar) Location() *time.Location { return tc.loc }
