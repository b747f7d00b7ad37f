// Package stockboard is the Go SDK for the quote backend consumed by the
// dashboard: current quotes, short price histories, per-symbol details, and
// the backend-side refresh and notify triggers.
package stockboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the refresh-cycle ID on every request.
const RequestIDHeader = "X-Request-ID"

// Client provides a Go SDK for interacting with the quote backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request-level debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a new quote backend client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

type requestIDKey struct{}

// WithRequestID tags ctx so that every request made with it carries id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FetchQuotes retrieves the current quote list.
func (c *Client) FetchQuotes(ctx context.Context) ([]Quote, error) {
	var quotes []Quote
	if err := c.getJSON(ctx, "FetchQuotes", "/api/stocks", nil, &quotes); err != nil {
		return nil, err
	}
	if quotes == nil {
		quotes = []Quote{}
	}
	return quotes, nil
}

// FetchHistory retrieves a short price-history window for symbol.
func (c *Client) FetchHistory(ctx context.Context, symbol, period, interval string) ([]HistoryPoint, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if interval != "" {
		q.Set("interval", interval)
	}
	var points []HistoryPoint
	if err := c.getJSON(ctx, "FetchHistory", "/api/history/"+url.PathEscape(symbol), q, &points); err != nil {
		return nil, err
	}
	if points == nil {
		points = []HistoryPoint{}
	}
	return points, nil
}

// FetchDetail retrieves the extended detail record for symbol.
func (c *Client) FetchDetail(ctx context.Context, symbol string) (*QuoteDetail, error) {
	var d QuoteDetail
	if err := c.getJSON(ctx, "FetchDetail", "/api/stocks/"+url.PathEscape(symbol), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// TriggerRefresh asks the backend to refresh its own cached data. The
// response body is ignored.
func (c *Client) TriggerRefresh(ctx context.Context) error {
	return c.post(ctx, "TriggerRefresh", "/api/refresh")
}

// Notify asks the backend to push a status report for symbol.
func (c *Client) Notify(ctx context.Context, symbol string) error {
	return c.post(ctx, "Notify", "/api/notify/"+url.PathEscape(symbol))
}

func (c *Client) getJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	resp, err := c.do(ctx, op, http.MethodGet, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, URL: u, Err: fmt.Errorf("reading body: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) post(ctx context.Context, op, path string) error {
	u := c.baseURL + path
	resp, err := c.do(ctx, op, http.MethodPost, u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do issues the request and converts transport failures and non-2xx
// statuses into *NetworkError. The caller owns resp.Body on success.
func (c *Client) do(ctx context.Context, op, method, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, id)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: u, Err: err}
	}
	c.log.Debug("backend request", "op", op, "status", resp.StatusCode,
		"request_id", id, "elapsed", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &NetworkError{
			Op:         op,
			URL:        u,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return resp, nil
}
