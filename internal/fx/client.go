package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RateClient looks up a multiplicative conversion rate for a currency pair.
type RateClient interface {
	Pair(ctx context.Context, base, target string) (float64, error)
}

// HTTPRateClient fetches rates from an exchange-rate REST API exposing
// GET {base}/pair/{BASE}/{TARGET}.
type HTTPRateClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRateClient creates a rate client for the given API base URL.
func NewHTTPRateClient(baseURL string) *HTTPRateClient {
	return &HTTPRateClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type pairResponse struct {
	Result         string  `json:"result"`
	ConversionRate float64 `json:"conversion_rate"`
}

// Pair implements the RateClient interface.
func (c *HTTPRateClient) Pair(ctx context.Context, base, target string) (float64, error) {
	url := fmt.Sprintf("%s/pair/%s/%s", c.baseURL, base, target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build rate request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch rate %s/%s: %w", base, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch rate %s/%s: unexpected status %d", base, target, resp.StatusCode)
	}

	var body pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode rate response: %w", err)
	}
	if body.Result != "success" || body.ConversionRate <= 0 {
		return 0, fmt.Errorf("rate lookup %s/%s returned result=%q rate=%v", base, target, body.Result, body.ConversionRate)
	}

	return body.ConversionRate, nil
}
