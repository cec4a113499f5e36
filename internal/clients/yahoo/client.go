// Package yahoo implements the historical price loader backed by the
// Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/findash/internal/domain"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client is a Yahoo Finance API client
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// NewClientWithBaseURL creates a client pointed at a custom endpoint.
// Used by tests to target a local fixture server.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// GetDailyPrices fetches daily OHLC bars for a ticker over a date range.
// Bars are returned ordered by date ascending with no duplicate dates.
// Returns domain.ErrDataUnavailable when the ticker is unknown or the
// range yields zero bars.
func (c *Client) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) ([]domain.PriceBar, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("period1", fmt.Sprintf("%d", start.Unix()))
	q.Set("period2", fmt.Sprintf("%d", end.Unix()))
	q.Set("interval", "1d")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("ticker %s: %w", ticker, domain.ErrDataUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart API returned status %d", resp.StatusCode)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if parsed.Chart.Error != nil {
		c.log.Warn().
			Str("ticker", ticker).
			Str("code", parsed.Chart.Error.Code).
			Msg("Chart API error")
		return nil, fmt.Errorf("ticker %s: %s: %w", ticker, parsed.Chart.Error.Code, domain.ErrDataUnavailable)
	}

	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("ticker %s: empty result: %w", ticker, domain.ErrDataUnavailable)
	}

	bars := buildBars(parsed.Chart.Result[0])
	if len(bars) == 0 {
		return nil, fmt.Errorf("ticker %s: no bars in range: %w", ticker, domain.ErrDataUnavailable)
	}

	c.log.Debug().
		Str("ticker", ticker).
		Int("bars", len(bars)).
		Msg("Fetched daily prices")

	return bars, nil
}

// buildBars converts the columnar chart payload into ordered price bars,
// skipping null entries and collapsing duplicate timestamps.
func buildBars(result chartResult) []domain.PriceBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	quote := result.Indicators.Quote[0]

	var bars []domain.PriceBar
	var lastDate time.Time

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		date := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if !lastDate.IsZero() && !date.After(lastDate) {
			continue
		}

		bar := domain.PriceBar{
			Date:  date,
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}

		bars = append(bars, bar)
		lastDate = date
	}

	return bars
}
