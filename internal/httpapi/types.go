// Package httpapi serves the quote backend REST API (stocks, history,
// refresh and notify) on top of the mock feed.
package httpapi

import "time"

// MessageResponse acknowledges a POST.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MarketResponse reports the trading session state.
type MarketResponse struct {
	Open bool      `json:"open"`
	Next time.Time `json:"next"` // next close when open, else next open
}
