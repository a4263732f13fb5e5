// Package stocklens provides a Go SDK for the StockLens backend API. It is
// the only layer that surfaces transport and payload errors; the
// absorb-and-fallback policy lives above it in internal/marketdata.
package stocklens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stocklens/internal/domain"
)

// Per-call timeouts. Health probes stay short so the availability badge
// updates quickly; ask allows for LLM latency.
const (
	HealthTimeout  = 2 * time.Second
	QuoteTimeout   = 6 * time.Second
	HistoryTimeout = 6 * time.Second
	AskTimeout     = 10 * time.Second
)

// Client talks to a StockLens backend at a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL. Per-call timeouts
// are applied via context, so the underlying http.Client carries none.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// HistoryPointJSON is the wire shape of one history bar: dates travel as
// plain "YYYY-MM-DD" strings.
type HistoryPointJSON struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
}

// HistoryResponse is the wire envelope of GET /stock/{symbol}/history.
type HistoryResponse struct {
	Symbol string             `json:"symbol"`
	Period string             `json:"period"`
	Data   []HistoryPointJSON `json:"data"`
}

// FromDomain converts a domain series to its wire shape.
func FromDomain(series domain.HistorySeries) []HistoryPointJSON {
	out := make([]HistoryPointJSON, len(series))
	for i, p := range series {
		out[i] = HistoryPointJSON{
			Date:   p.Date.Format("2006-01-02"),
			Price:  p.Price,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Volume: p.Volume,
		}
	}
	return out
}

// ToDomain converts wire bars back to a domain series, rejecting
// unparseable dates.
func ToDomain(points []HistoryPointJSON) (domain.HistorySeries, error) {
	series := make(domain.HistorySeries, len(points))
	for i, p := range points {
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			return nil, fmt.Errorf("history[%d]: bad date %q: %w", i, p.Date, err)
		}
		series[i] = domain.HistoryPoint{
			Date:   d,
			Price:  p.Price,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Volume: p.Volume,
		}
	}
	return series, nil
}

// GetQuote retrieves the current quote for a symbol. A schema-invalid
// payload is an error, same as any transport failure.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, QuoteTimeout)
	defer cancel()

	var quote domain.Quote
	u := fmt.Sprintf("%s/stock/%s", c.baseURL, url.PathEscape(symbol))
	if err := c.getJSON(ctx, u, &quote); err != nil {
		return nil, err
	}
	if err := quote.Validate(); err != nil {
		return nil, fmt.Errorf("invalid quote payload: %w", err)
	}
	return &quote, nil
}

// GetHistory retrieves the historical series for a symbol and period. An
// empty or out-of-order series is an error: consumers must be able to
// treat any successful return as chart-ready.
func (c *Client) GetHistory(ctx context.Context, symbol string, period domain.Period) (domain.HistorySeries, error) {
	ctx, cancel := context.WithTimeout(ctx, HistoryTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/stock/%s/history?period=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(string(period)))

	var resp HistoryResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	series, err := ToDomain(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid history payload: %w", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("history for %s: empty series", symbol)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("invalid history payload: %w", err)
	}
	return series, nil
}

// Health probes the backend liveness endpoint. It returns true only for a
// 2xx response whose status field is "healthy".
func (c *Client) Health(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/health", &resp); err != nil {
		return false, err
	}
	return resp.Status == "healthy", nil
}

// Ask sends a chat message to the backend assistant and returns its reply.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, AskTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Response string `json:"response"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", fmt.Errorf("ask: empty response")
	}
	return resp.Response, nil
}

// ClearConversation resets the backend's chat history.
func (c *Client) ClearConversation(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, AskTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/clear", nil)
	if err != nil {
		return err
	}
	var resp struct {
		Status string `json:"status"`
	}
	return c.doJSON(req, &resp)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncate(body, 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
