package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"VixWatch/internal/domain/models"
	drepo "VixWatch/internal/domain/repository"
	xhttp "VixWatch/pkg/http"
)

const defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// Yahoo blocks default Go user agents, so pose as a regular browser.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// UpstreamError is a non-2xx response from the quote endpoint.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("yahoo: upstream status %d: %s", e.Status, e.Body)
}

// ParseError is an empty or malformed chart envelope.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("yahoo: parse: %s", e.Detail)
}

// Client implements a QuoteFetcher backed by the Yahoo Finance chart API.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// New creates a new Yahoo quote client. One Fetch is one GET; retry policy
// lives in the cycle driver.
func New(baseURL string, timeout time.Duration) drepo.QuoteFetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type chartMeta struct {
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	ChartPreviousClose *float64 `json:"chartPreviousClose"`
}

type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Meta chartMeta `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Fetch retrieves the current price and prior close for a symbol and
// computes the percent change. A missing prior close defaults to the current
// price (zero change) rather than failing.
func (c *Client) Fetch(ctx context.Context, symbol string) (models.Quote, error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/%s", c.baseURL, symbol),
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		QueryParams: map[string][]string{
			"interval": {"1d"},
			"range":    {"1d"},
		},
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Quote{}, fmt.Errorf("fetch %s: read body: %w", symbol, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Quote{}, &UpstreamError{Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return parseQuote(body)
}

func parseQuote(body []byte) (models.Quote, error) {
	if len(body) == 0 {
		return models.Quote{}, &ParseError{Detail: "empty body"}
	}

	var env chartEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.Quote{}, &ParseError{Detail: err.Error()}
	}
	if len(env.Chart.Result) == 0 {
		return models.Quote{}, &ParseError{Detail: "chart.result is empty"}
	}

	meta := env.Chart.Result[0].Meta
	if meta.RegularMarketPrice == nil {
		return models.Quote{}, &ParseError{Detail: "regularMarketPrice missing"}
	}

	price := *meta.RegularMarketPrice
	priorClose := price
	if meta.ChartPreviousClose != nil {
		priorClose = *meta.ChartPreviousClose
	}

	return models.Quote{
		Price:         price,
		ChangePercent: models.ComputeChange(price, priorClose),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
