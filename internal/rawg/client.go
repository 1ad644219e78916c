// Package rawg provides the RAWG video game database client used as the
// secondary enrichment source (Switch availability, store list, Metacritic
// score, release date, artwork fallback).
package rawg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the public RAWG API endpoint.
const DefaultBaseURL = "https://api.rawg.io/api"

// Info is the subset of a RAWG game payload used for enrichment.
type Info struct {
	Name            string
	BackgroundImage string
	Platforms       []string
	Stores          []string
	Metacritic      *int
	Released        string
}

// HasPlatform reports whether the named platform appears in the payload.
func (i *Info) HasPlatform(name string) bool {
	for _, platform := range i.Platforms {
		if platform == name {
			return true
		}
	}
	return false
}

// Client provides access to the RAWG API.
type Client struct {
	apiKey     string
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

// New creates a RAWG client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("rawg api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResponse struct {
	Results []struct {
		Name            string `json:"name"`
		BackgroundImage string `json:"background_image"`
		Metacritic      *int   `json:"metacritic"`
		Released        string `json:"released"`
		Platforms       []struct {
			Platform struct {
				Name string `json:"name"`
			} `json:"platform"`
		} `json:"platforms"`
		Stores []struct {
			Store struct {
				Name string `json:"name"`
			} `json:"store"`
		} `json:"stores"`
	} `json:"results"`
}

// Search queries RAWG for a title and returns the top result, or nil when
// nothing matched.
func (c *Client) Search(ctx context.Context, query string) (*Info, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/games")
	if err != nil {
		return nil, fmt.Errorf("parse rawg url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("search", query)
	params.Set("page_size", "1")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rawg search returned %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rawg response: %w", err)
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}

	top := payload.Results[0]
	info := &Info{
		Name:            top.Name,
		BackgroundImage: top.BackgroundImage,
		Metacritic:      top.Metacritic,
		Released:        top.Released,
	}
	for _, p := range top.Platforms {
		info.Platforms = append(info.Platforms, p.Platform.Name)
	}
	for _, s := range top.Stores {
		info.Stores = append(info.Stores, s.Store.Name)
	}
	return info, nil
}
