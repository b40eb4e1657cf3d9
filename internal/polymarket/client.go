// Package polymarket implements the market data provider on top of the
// Polymarket Gamma API: event lookup by slug, by id, and free-text search.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rewired-gh/polysteamroller/internal/logger"
	"github.com/rewired-gh/polysteamroller/internal/models"
)

const defaultUserAgent = "polysteamroller/1.0"

// Client provides access to the Gamma API.
type Client struct {
	gammaAPIURL    string
	httpClient     *http.Client
	maxAttempts    int
	retryDelayBase time.Duration
	searchLimit    int
	userAgent      string
}

// ClientConfig holds HTTP client tuning parameters.
type ClientConfig struct {
	MaxAttempts     int
	RetryDelayBase  time.Duration
	SearchLimit     int
	UserAgent       string
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

// NewClient creates a new Gamma client. Zero-valued config fields fall back to
// a single attempt, five search results per type, and stdlib transport defaults.
func NewClient(gammaAPIURL string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = 500 * time.Millisecond
	}
	if cfg.SearchLimit < 1 {
		cfg.SearchLimit = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.MaxIdleConns > 0 {
		transport.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.IdleConnTimeout > 0 {
		transport.IdleConnTimeout = cfg.IdleConnTimeout
	}

	return &Client{
		gammaAPIURL: gammaAPIURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		maxAttempts:    cfg.MaxAttempts,
		retryDelayBase: cfg.RetryDelayBase,
		searchLimit:    cfg.SearchLimit,
		userAgent:      cfg.UserAgent,
	}
}

// FetchBySlug retrieves an event via GET /events/slug/{slug}.
func (c *Client) FetchBySlug(ctx context.Context, slug string) (*models.MarketEvent, error) {
	ev, err := c.fetchEvent(ctx, "/events/slug/"+url.PathEscape(slug))
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: fetch event by slug %s: %w", slug, err)
	}
	return ev, nil
}

// FetchByID retrieves an event via GET /events/{id}.
func (c *Client) FetchByID(ctx context.Context, id string) (*models.MarketEvent, error) {
	ev, err := c.fetchEvent(ctx, "/events/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: fetch event %s: %w", id, err)
	}
	return ev, nil
}

// Search runs GET /public-search and returns events in the provider's relevance order.
func (c *Client) Search(ctx context.Context, query string) ([]models.MarketEvent, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit_per_type", strconv.Itoa(c.searchLimit))
	params.Set("search_profiles", "false")
	params.Set("search_tags", "false")

	body, err := c.doRequest(ctx, "/public-search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode search results: %w: %w", models.ErrMalformedResponse, err)
	}

	events := make([]models.MarketEvent, 0, len(resp.Events))
	var lastErr error
	for i, raw := range resp.Events {
		var ge GammaEvent
		if err := json.Unmarshal(raw, &ge); err != nil {
			logger.Debug("Skipping undecodable search result %d for %q: %v", i, query, err)
			lastErr = err
			continue
		}
		events = append(events, ge.ToModel())
	}
	if len(events) == 0 && lastErr != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode search results: %w: %w", models.ErrMalformedResponse, lastErr)
	}
	return events, nil
}

func (c *Client) fetchEvent(ctx context.Context, path string) (*models.MarketEvent, error) {
	body, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, err
	}

	var ge GammaEvent
	if err := json.Unmarshal(body, &ge); err != nil {
		return nil, fmt.Errorf("decode event: %w: %w", models.ErrMalformedResponse, err)
	}

	ev := ge.ToModel()
	return &ev, nil
}

// doRequest performs a GET and returns the body. Transport failures and 5xx
// responses are retried up to maxAttempts with linear backoff; 404 maps to
// models.ErrNotFound and other non-2xx statuses to models.ErrUpstreamUnavailable.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	var lastErr error

	for i := 0; i < c.maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelayBase * time.Duration(i)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gammaAPIURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: read response: %w", models.ErrUpstreamUnavailable, err)
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: status %d", models.ErrNotFound, resp.StatusCode)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: server error: %d", models.ErrUpstreamUnavailable, resp.StatusCode)
			continue
		default:
			return nil, fmt.Errorf("%w: unexpected status: %d", models.ErrUpstreamUnavailable, resp.StatusCode)
		}
	}

	if c.maxAttempts > 1 {
		return nil, fmt.Errorf("max attempts exceeded: %w", lastErr)
	}
	return nil, lastErr
}
