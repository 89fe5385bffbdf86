package coindesk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

var defaultAPIBase = "https://api.coindesk.com/v1/bpi"

// Client fetches Bitcoin spot prices for the bitcoin command
type Client struct {
	httpClient *http.Client
	apiBase    string
}

func NewClient(httpClient *http.Client) *Client {
	return &Client{
		httpClient: httpClient,
		apiBase:    defaultAPIBase,
	}
}

type currentPriceResponse struct {
	BPI map[string]struct {
		Code string `json:"code"`
		Rate string `json:"rate"`
	} `json:"bpi"`
}

// CurrentPriceUSD returns the current BTC price in USD
func (c *Client) CurrentPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+"/currentprice/USD.json", nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to execute price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, fmt.Errorf("price request failed with status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read price response: %w", err)
	}

	var parsed currentPriceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price response: %w", err)
	}

	usd, ok := parsed.BPI["USD"]
	if !ok {
		return decimal.Zero, fmt.Errorf("price response did not include USD")
	}

	// Rates come back formatted for display, e.g. "67,108.5583"
	price, err := decimal.NewFromString(strings.ReplaceAll(usd.Rate, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse USD rate %q: %w", usd.Rate, err)
	}

	return price, nil
}
