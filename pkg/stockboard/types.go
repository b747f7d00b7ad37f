package stockboard

import "github.com/shopspring/decimal"

// Quote is one symbol's current market snapshot as served by /api/stocks.
// Optional numeric fields decode to zero when absent or null.
type Quote struct {
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Change         decimal.Decimal `json:"change"` // percent, signed
	Status         string          `json:"status"`
	IsLow          bool            `json:"is_low"`
	TwoFiftyDayAvg decimal.Decimal `json:"two_fifty_day_avg"`
	TwoFiftyDayLow decimal.Decimal `json:"two_fifty_day_low"`
	SevenDayAvg    decimal.Decimal `json:"seven_day_avg"`
	Details        string          `json:"details"`
	Timestamp      string          `json:"timestamp,omitempty"` // naive ISO time from the backend
}

// HistoryPoint is one bar of a short price-history window. Only Close is
// consumed by the dashboard.
type HistoryPoint struct {
	Date  string          `json:"date,omitempty"`
	Close decimal.Decimal `json:"close"`
}

// QuoteDetail is the extended per-symbol payload of /api/stocks/{symbol}.
type QuoteDetail struct {
	Symbol  string          `json:"symbol"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Change  decimal.Decimal `json:"change"`
	Status  string          `json:"status"`
	IsLow   bool            `json:"is_low"`
	Details string          `json:"details"`

	MarketCap        decimal.NullDecimal `json:"market_cap"`
	Volume           *int64              `json:"volume"`
	OpenPrice        decimal.NullDecimal `json:"open_price"`
	DayHigh          decimal.NullDecimal `json:"day_high"`
	DayLow           decimal.NullDecimal `json:"day_low"`
	FiftyTwoWeekHigh decimal.NullDecimal `json:"fifty_two_week_high"`
	FiftyTwoWeekLow  decimal.NullDecimal `json:"fifty_two_week_low"`
	PERatio          decimal.NullDecimal `json:"pe_ratio"`
	SevenDayAvg      decimal.NullDecimal `json:"seven_day_avg"`
	SevenDayMin      decimal.NullDecimal `json:"seven_day_min"`
	SevenDayMax      decimal.NullDecimal `json:"seven_day_max"`
	TwoFiftyDayLow   decimal.NullDecimal `json:"two_fifty_day_low"`
	Timestamp        string              `json:"timestamp,omitempty"`
}

// Closes extracts the closing prices of a history window as float64, in order.
func Closes(history []HistoryPoint) []float64 {
	out := make([]float64, len(history))
	for i, p := range history {
		out[i] = p.Close.InexactFloat64()
	}
	return out
}
