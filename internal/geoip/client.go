// Package geoip acquires a coarse user position from an IP geolocation
// service. Fire-once and best-effort: a denial or failure means the map
// keeps its default center.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrDenied means the service answered but declined to locate the caller
// (private range, quota, opt-out). Non-fatal by contract.
var ErrDenied = errors.New("geolocation denied")

// Position is an acquired coordinate pair.
type Position struct {
	Lat float64
	Lng float64
}

// Client queries an ip-api.com style JSON endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a geolocation client with the given request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "http://ip-api.com/json/",
		logger:     logger,
	}
}

// Locate performs the one-shot position lookup.
func (c *Client) Locate(ctx context.Context) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Position{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Position{}, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Position{}, fmt.Errorf("geolocation API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Position{}, fmt.Errorf("decode response: %w", err)
	}

	if r.Status != "success" {
		return Position{}, fmt.Errorf("%w: %s", ErrDenied, r.Message)
	}
	return Position{Lat: r.Lat, Lng: r.Lon}, nil
}

// ip-api.com response shape.
type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
