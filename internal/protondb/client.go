// Package protondb provides the ProtonDB summary client used to attach a
// Steam Deck / Linux compatibility tier to resolved games.
package protondb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public ProtonDB report endpoint.
const DefaultBaseURL = "https://www.protondb.com/api/v1"

// TierUnknown is reported when no summary exists for an app.
const TierUnknown = "unknown"

// Client provides access to ProtonDB report summaries.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a ProtonDB client.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type summaryResponse struct {
	Tier string `json:"tier"`
}

// Tier fetches the compatibility tier for an app. Apps without a report
// (404) yield TierUnknown, not an error.
func (c *Client) Tier(ctx context.Context, appID int64) (string, error) {
	if appID <= 0 {
		return TierUnknown, errors.New("app id must be positive")
	}
	endpoint := fmt.Sprintf("%s/reports/summaries/%d.json", c.baseURL, appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return TierUnknown, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TierUnknown, fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return TierUnknown, nil
	}
	if resp.StatusCode != http.StatusOK {
		return TierUnknown, fmt.Errorf("protondb summary returned %d", resp.StatusCode)
	}

	var payload summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return TierUnknown, fmt.Errorf("decode summary: %w", err)
	}
	if strings.TrimSpace(payload.Tier) == "" {
		return TierUnknown, nil
	}
	return payload.Tier, nil
}
