package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mapleime/doctor-portal/pkg/logging"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

const defaultTimeout = 10 * time.Second

// Location is a resolved map position for a patient address.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName"`
}

// Client resolves patient addresses through Nominatim. Results are scoped
// to Canada and the US, matching the patient base.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a geocoding client. Nominatim requires an identifying
// User-Agent; requests without one get rejected.
func NewClient(baseURL, userAgent string, logger *logging.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
		tracer:     otel.Tracer("mapleime.geo"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locate resolves an address to a map position, trying progressively
// looser queries: full address with postal code, address alone, postal
// code anchored to Canada, then the bare postal code. A nil result with a
// nil error means nothing matched; the map simply stays hidden.
func (c *Client) Locate(ctx context.Context, address, postalCode string) (*Location, error) {
	ctx, span := c.tracer.Start(ctx, "geo.locate")
	defer span.End()

	address = strings.TrimSpace(address)
	postalCode = strings.TrimSpace(postalCode)

	var queries []string
	if address != "" && postalCode != "" {
		queries = append(queries, address+", "+postalCode)
	}
	if address != "" {
		queries = append(queries, address)
	}
	if postalCode != "" {
		queries = append(queries, postalCode+", Canada", postalCode)
	}
	if len(queries) == 0 {
		return nil, nil
	}

	var lastErr error
	for _, q := range queries {
		loc, err := c.search(ctx, q)
		if err != nil {
			lastErr = err
			continue
		}
		if loc != nil {
			return loc, nil
		}
	}
	if lastErr != nil {
		span.RecordError(lastErr)
		return nil, lastErr
	}
	return nil, nil
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *Client) search(ctx context.Context, query string) (*Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "ca,us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geo: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geo: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("geo: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo: status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("geo: unmarshal response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geo: bad latitude %q", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geo: bad longitude %q", results[0].Lon)
	}
	return &Location{Latitude: lat, Longitude: lon, DisplayName: results[0].DisplayName}, nil
}
