package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lokal-bknd/internal/models"

	"go.uber.org/zap"
)

// Bounding box for the ingestion area (greater Pretoria): south, west, north, east.
const (
	bboxSouth = -25.85
	bboxWest  = 28.10
	bboxNorth = -25.62
	bboxEast  = 28.40
)

const (
	// clientTimeout is deliberately shorter than the server-side query
	// timeout embedded in the query body, so a stuck request fails fast on
	// our side.
	clientTimeout = 120 * time.Second
	queryTimeout  = 180 // seconds, [timeout:] directive in the query

	maxAttempts = 3

	// Two backoff tiers: rate limiting gets a longer wait than plain slowness.
	timeoutBackoffUnit   = 2 * time.Second
	rateLimitBackoffUnit = 5 * time.Second
)

// Client fetches tagged OSM elements from an Overpass API endpoint.
type Client struct {
	endpoint    string
	http        *http.Client
	logr        *zap.Logger
	maxAttempts int

	// backoff units, overridable in tests
	timeoutUnit   time.Duration
	rateLimitUnit time.Duration
}

func NewClient(endpoint string, logr *zap.Logger) *Client {
	return &Client{
		endpoint:      endpoint,
		http:          &http.Client{Timeout: clientTimeout},
		logr:          logr,
		maxAttempts:   maxAttempts,
		timeoutUnit:   timeoutBackoffUnit,
		rateLimitUnit: rateLimitBackoffUnit,
	}
}

// buildQuery assembles the Overpass QL union over the amenity, shop and
// tourism tag families, as both nodes and ways, with centroids for ways.
func buildQuery() string {
	bbox := fmt.Sprintf("%g,%g,%g,%g", bboxSouth, bboxWest, bboxNorth, bboxEast)

	var b strings.Builder
	fmt.Fprintf(&b, "[out:json][timeout:%d];\n(\n", queryTimeout)
	for _, family := range []string{"amenity", "shop", "tourism"} {
		fmt.Fprintf(&b, "  node[%q](%s);\n", family, bbox)
		fmt.Fprintf(&b, "  way[%q](%s);\n", family, bbox)
	}
	b.WriteString(");\nout center;")
	return b.String()
}

// FetchAreaBusinesses queries the Overpass API for named amenity/shop/tourism
// elements inside the configured bounding box. Unnamed elements are dropped
// and the result is truncated to limit after filtering; the upstream query
// itself is not limited, trading bandwidth for query simplicity. An optional
// category narrows the result to elements whose amenity/shop/tourism tag
// value equals it.
func (c *Client) FetchAreaBusinesses(ctx context.Context, limit int, category string) ([]models.OverpassElement, error) {
	query := buildQuery()

	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		elements, err := c.execute(ctx, query)
		if err == nil {
			return filterElements(elements, limit, category), nil
		}
		lastErr = err

		if attempt == c.maxAttempts-1 {
			break
		}

		wait := time.Duration(attempt+1) * c.timeoutUnit
		if isRateLimited(err) {
			wait = time.Duration(attempt+1) * c.rateLimitUnit
			c.logr.Warn("overpass rate limited, backing off",
				zap.Int("attempt", attempt+1), zap.Duration("wait", wait))
		} else {
			c.logr.Warn("overpass request failed, retrying",
				zap.Int("attempt", attempt+1), zap.Duration("wait", wait), zap.Error(err))
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("overpass fetch failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) execute(ctx context.Context, query string) ([]models.OverpassElement, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.http.Timeout)
	defer cancel()

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &rateLimitError{status: resp.StatusCode, body: string(body)}
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("overpass error %d: %s", resp.StatusCode, string(body))
	}

	var parsed models.OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("overpass decode: %w", err)
	}
	return parsed.Elements, nil
}

// filterElements drops unnamed elements, applies the optional raw-tag
// category filter, and truncates to limit.
func filterElements(elements []models.OverpassElement, limit int, category string) []models.OverpassElement {
	category = strings.ToLower(strings.TrimSpace(category))

	out := make([]models.OverpassElement, 0, len(elements))
	for _, el := range elements {
		if el.Name() == "" {
			continue
		}
		if category != "" && !matchesCategory(el, category) {
			continue
		}
		out = append(out, el)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func matchesCategory(el models.OverpassElement, category string) bool {
	for _, family := range []string{"amenity", "shop", "tourism"} {
		if strings.ToLower(el.Tags[family]) == category {
			return true
		}
	}
	return false
}

type rateLimitError struct {
	status int
	body   string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("overpass rate limit (%d): %s", e.status, e.body)
}

// isRateLimited detects throttling either by status or by the server
// mentioning a rate limit in the error body.
func isRateLimited(err error) bool {
	var rle *rateLimitError
	if errors.As(err, &rle) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}
