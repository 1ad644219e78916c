// Package steam provides the Steam Web and storefront API clients used for
// the reference catalog and per-game enrichment.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gruberb/game-compatibility-tracker/internal/catalog"
)

// DefaultAPIBaseURL is the Steam Web API endpoint serving the app list.
const DefaultAPIBaseURL = "https://api.steampowered.com"

// DefaultStoreBaseURL is the storefront endpoint serving app details and
// review summaries.
const DefaultStoreBaseURL = "https://store.steampowered.com"

// AppDetails carries the storefront metadata used for enrichment.
type AppDetails struct {
	Name        string
	Windows     bool
	MacOS       bool
	Linux       bool
	Price       string
	HeaderImage string
}

// ReviewSummary is the aggregate review data for one app.
type ReviewSummary struct {
	TotalReviews  int
	TotalPositive int
}

// Score returns the positive-review ratio, or nil when no reviews exist.
func (r ReviewSummary) Score() *float64 {
	if r.TotalReviews <= 0 {
		return nil
	}
	score := float64(r.TotalPositive) / float64(r.TotalReviews)
	return &score
}

// Client provides access to the Steam Web API and storefront.
type Client struct {
	apiBaseURL   string
	storeBaseURL string
	httpClient   *http.Client
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

// WithBaseURLs overrides the API and storefront base URLs, mainly for tests.
func WithBaseURLs(apiBaseURL, storeBaseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(apiBaseURL) != "" {
			c.apiBaseURL = strings.TrimRight(apiBaseURL, "/")
		}
		if strings.TrimSpace(storeBaseURL) != "" {
			c.storeBaseURL = strings.TrimRight(storeBaseURL, "/")
		}
	}
}

// New creates a Steam client.
func New(opts ...Option) *Client {
	client := &Client{
		apiBaseURL:   DefaultAPIBaseURL,
		storeBaseURL: DefaultStoreBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type appListResponse struct {
	AppList struct {
		Apps []struct {
			AppID int64  `json:"appid"`
			Name  string `json:"name"`
		} `json:"apps"`
	} `json:"applist"`
}

// AppList fetches the complete Steam app catalog. The response is large
// (six figures of entries); callers cache the derived index across runs.
func (c *Client) AppList(ctx context.Context) ([]catalog.Entry, error) {
	endpoint := c.apiBaseURL + "/ISteamApps/GetAppList/v2/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch app list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam app list returned %d", resp.StatusCode)
	}

	var payload appListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode app list: %w", err)
	}

	entries := make([]catalog.Entry, 0, len(payload.AppList.Apps))
	for _, app := range payload.AppList.Apps {
		entries = append(entries, catalog.Entry{Name: app.Name, ID: app.AppID})
	}
	return entries, nil
}

type appDetailsPayload struct {
	Success bool `json:"success"`
	Data    struct {
		Name      string `json:"name"`
		Platforms struct {
			Windows bool `json:"windows"`
			Mac     bool `json:"mac"`
			Linux   bool `json:"linux"`
		} `json:"platforms"`
		PriceOverview struct {
			FinalFormatted string `json:"final_formatted"`
		} `json:"price_overview"`
		HeaderImage string `json:"header_image"`
	} `json:"data"`
}

// ErrAppUnavailable signals that the storefront has no sellable entry for
// the app id (delisted, region locked, or not a game).
var ErrAppUnavailable = errors.New("steam app unavailable")

// AppDetails fetches storefront details for one app.
func (c *Client) AppDetails(ctx context.Context, appID int64) (*AppDetails, error) {
	if appID <= 0 {
		return nil, errors.New("app id must be positive")
	}
	endpoint, err := url.Parse(c.storeBaseURL + "/api/appdetails")
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	params := url.Values{}
	params.Set("appids", strconv.FormatInt(appID, 10))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch app details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam app details returned %d", resp.StatusCode)
	}

	// The storefront keys the payload by the requested app id.
	var payload map[string]appDetailsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode app details: %w", err)
	}

	entry, ok := payload[strconv.FormatInt(appID, 10)]
	if !ok || !entry.Success {
		return nil, fmt.Errorf("app %d: %w", appID, ErrAppUnavailable)
	}

	return &AppDetails{
		Name:        entry.Data.Name,
		Windows:     entry.Data.Platforms.Windows,
		MacOS:       entry.Data.Platforms.Mac,
		Linux:       entry.Data.Platforms.Linux,
		Price:       entry.Data.PriceOverview.FinalFormatted,
		HeaderImage: entry.Data.HeaderImage,
	}, nil
}

type reviewsResponse struct {
	QuerySummary struct {
		TotalReviews  int `json:"total_reviews"`
		TotalPositive int `json:"total_positive"`
	} `json:"query_summary"`
}

// Reviews fetches the review summary for one app.
func (c *Client) Reviews(ctx context.Context, appID int64) (*ReviewSummary, error) {
	if appID <= 0 {
		return nil, errors.New("app id must be positive")
	}
	endpoint := fmt.Sprintf("%s/appreviews/%d?json=1", c.storeBaseURL, appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("steam reviews returned %d", resp.StatusCode)
	}

	var payload reviewsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}

	return &ReviewSummary{
		TotalReviews:  payload.QuerySummary.TotalReviews,
		TotalPositive: payload.QuerySummary.TotalPositive,
	}, nil
}
