// Package geocode resolves birthplace names to coordinates through an
// external geocoding service. Lookups go through a circuit breaker so a
// slow or failing service cannot stall statistics requests.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the circuit breaker is open and rejects
// requests to prevent cascading failures.
var ErrCircuitOpen = errors.New("geocode: circuit breaker is open")

// ErrNoResult is returned when the service has no match for the place name.
var ErrNoResult = errors.New("geocode: no result for place")

// Location is a resolved place.
type Location struct {
	Place     string  `json:"place"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Config holds client configuration.
type Config struct {
	// BaseURL is the root of a Nominatim-compatible service.
	BaseURL string

	// Timeout is the per-request timeout. Default: 5 seconds.
	Timeout time.Duration

	// MaxFailures is the number of consecutive failures required to trip
	// the circuit. Default: 3.
	MaxFailures uint32

	// CooldownPeriod is how long the circuit stays open before allowing
	// test requests. Default: 30 seconds.
	CooldownPeriod time.Duration
}

// Client looks up place coordinates with response caching.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.RWMutex
	cache map[string]Location
}

// NewClient creates a geocoding client for the given service base URL.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.CooldownPeriod == 0 {
		cfg.CooldownPeriod = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "GeocodeCircuitBreaker",
		MaxRequests: 1,
		Interval:    0, // Don't clear counts periodically
		Timeout:     cfg.CooldownPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
		cache:   make(map[string]Location),
	}
}

// nominatimResult is one entry of the service's search response.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Lookup resolves a place name to coordinates. Results are cached for the
// lifetime of the client; a cached hit never touches the breaker.
func (c *Client) Lookup(ctx context.Context, place string) (*Location, error) {
	if place == "" {
		return nil, ErrNoResult
	}

	c.mu.RLock()
	if loc, ok := c.cache[place]; ok {
		c.mu.RUnlock()
		return &loc, nil
	}
	c.mu.RUnlock()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, place)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	loc := result.(*Location)
	c.mu.Lock()
	c.cache[place] = *loc
	c.mu.Unlock()

	return loc, nil
}

// State returns the current breaker state: "closed", "open" or "half-open".
func (c *Client) State() string {
	switch c.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func (c *Client) fetch(ctx context.Context, place string) (*Location, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1",
		c.baseURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "kindred-geocoder")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode: service returned %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("geocode: failed to decode response: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode: bad longitude %q: %w", results[0].Lon, err)
	}

	return &Location{Place: place, Latitude: lat, Longitude: lon}, nil
}
