// Package geocode implements the geocoder port against a Nominatim-compatible
// search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hiresight/resume-ingest/internal/domain"
)

// Client queries a Nominatim-compatible /search endpoint. Nominatim's usage
// policy requires an identifying User-Agent on every request.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// New creates a Client. baseURL points at the service root (the /search path
// is appended). An empty baseURL is allowed; callers should then skip
// geocoding entirely.
func New(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Coordinates resolves a location triple to a coordinate pair. A query with
// no results returns (nil, nil) so callers can fall through to a coarser
// query.
func (c *Client) Coordinates(ctx context.Context, city, state, country string) (*domain.Coordinates, error) {
	parts := make([]string, 0, 3)
	for _, p := range []string{city, state, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("q", strings.Join(parts, ", "))
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("op=geocode.Coordinates: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("op=geocode.Coordinates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("op=geocode.Coordinates: %w", domain.ErrUpstreamRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("op=geocode.Coordinates: unexpected status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("op=geocode.Coordinates: decode: %w", domain.ErrSchemaInvalid)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("op=geocode.Coordinates: lat %q: %w", results[0].Lat, domain.ErrSchemaInvalid)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("op=geocode.Coordinates: lon %q: %w", results[0].Lon, domain.ErrSchemaInvalid)
	}
	return &domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}
