package mockfeed

import (
	"fmt"
	"math"
	"strings"
)

// Status values, as emitted by the quote backend.
const (
	StatusCriticalDip = "CRITICAL DIP"
	StatusLow         = "LOW"
	StatusHigh        = "HIGH"
	StatusNormal      = "NORMAL"
)

type analysis struct {
	price     float64
	changePct float64
	ma20      float64
	min30     float64
	max30     float64
	avg7      float64
	min7      float64
	max7      float64
	low250    float64
	avg250    float64
	isLow     bool
	status    string
	reasons   []string
}

func (a analysis) details() string {
	if len(a.reasons) == 0 {
		return "Normal price action"
	}
	return strings.Join(a.reasons, ", ")
}

// dailyCloses samples the session close out of hourly bars, oldest first.
func dailyCloses(bars []float64) []float64 {
	n := len(bars) / barsPerDay
	if n == 0 && len(bars) > 0 {
		return []float64{bars[len(bars)-1]}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = bars[len(bars)-1-i*barsPerDay]
	}
	return out
}

// analyze classifies the latest close against daily moving statistics.
//
// A price is low when it sits at or under the 20-day mean, in the bottom
// fifth of the 30-day range, or 15% or more under the 30-day high. Within 5%
// of the 250-day low it is a critical dip; otherwise a price within 2% of the
// 30-day high is high.
func analyze(bars []float64) analysis {
	daily := dailyCloses(bars)
	if len(daily) == 0 {
		return analysis{status: StatusNormal}
	}
	a := analysis{price: daily[len(daily)-1]}

	if len(daily) >= 2 {
		prev := daily[len(daily)-2]
		a.changePct = (a.price - prev) / prev * 100
	}
	a.ma20 = mean(tail(daily, 20))
	last30 := tail(daily, 30)
	a.min30, a.max30 = minOf(last30), maxOf(last30)
	last7 := tail(daily, 7)
	a.avg7, a.min7, a.max7 = mean(last7), minOf(last7), maxOf(last7)
	last250 := tail(daily, tradingDaysPerYear)
	a.low250, a.avg250 = minOf(last250), mean(last250)

	if a.price <= a.ma20 {
		a.reasons = append(a.reasons, fmt.Sprintf("Below 20-day MA (%.2f)", a.ma20))
		a.isLow = true
	}
	if a.price <= a.min30+(a.max30-a.min30)*0.20 {
		a.reasons = append(a.reasons, fmt.Sprintf("In bottom 20%% of 30-day range ( Low: %.2f )", a.min30))
		a.isLow = true
	}
	if drop := (a.max30 - a.price) / a.max30 * 100; drop >= 15 {
		a.reasons = append(a.reasons, fmt.Sprintf("Dropped %.1f%% from 30-day high (%.2f)", drop, a.max30))
		a.isLow = true
	}
	if a.price <= a.low250 {
		a.reasons = append(a.reasons, fmt.Sprintf("At/Below 250-day low (%.2f)", a.low250))
	}

	switch {
	case a.price <= a.low250*1.05:
		a.status = StatusCriticalDip
		a.isLow = true
	case a.isLow:
		a.status = StatusLow
	case a.price >= a.max30*0.98:
		a.status = StatusHigh
	default:
		a.status = StatusNormal
	}
	return a
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func minOf(s []float64) float64 {
	m := math.Inf(1)
	for _, v := range s {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(s []float64) float64 {
	m := math.Inf(-1)
	for _, v := range s {
		m = math.Max(m, v)
	}
	return m
}
