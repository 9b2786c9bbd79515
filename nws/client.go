// Package nws is a client for the National Weather Service API
// (https://www.weather.gov/documentation/services-web-api). It exposes the
// raw GeoJSON documents the service returns; the weather package turns those
// into typed values.
package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/wxfetch/go-nws/internal/observability"
)

// Defaults applied by NewClient when the corresponding option is not given.
const (
	DefaultBaseURL   = "https://api.weather.gov"
	DefaultUserAgent = "go-nws/1.0 (+https://github.com/wxfetch/go-nws)"
	DefaultCacheTTL  = 10 * time.Minute
	DefaultTimeout   = 10 * time.Second
)

// Transport retry policy, mirroring the service's guidance to back off on
// 429/5xx. Not configurable per call.
const (
	retryMax     = 3
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 8 * time.Second
)

// Client issues requests against the NWS API with cache-first resolution.
// Every successful response body is cached under its request signature for
// the configured TTL; failures are classified into *APIError and never cached.
//
// Concurrent callers racing on the same key before either response lands both
// hit the network; there is no single-flight collapsing, last writer wins.
type Client struct {
	baseURL   string
	userAgent string
	cacheTTL  time.Duration
	timeout   time.Duration

	http    *retryablehttp.Client
	cache   *Cache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the API origin, mainly for tests and proxies.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithUserAgent sets the User-Agent header. The NWS asks that it identify the
// application and ideally carry an operator contact.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCacheTTL sets the TTL applied to every cached response.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) { c.cacheTTL = ttl }
}

// WithTimeout sets the per-request timeout applied uniformly to every
// outbound call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCache replaces the response cache, e.g. with one built around a fake
// clock.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient builds a Client with the given options applied over the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		cacheTTL:  DefaultCacheTTL,
		timeout:   DefaultTimeout,
		cache:     NewCache(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = retryWaitMin
	rc.RetryWaitMax = retryWaitMax
	rc.HTTPClient.Timeout = c.timeout
	rc.Logger = nil
	// Keep the final response instead of swallowing it, so exhausted retries
	// on 429/5xx still classify by status code.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.http = rc

	return c
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() { c.cache.Clear() }

// CleanCache evicts expired cache entries.
func (c *Client) CleanCache() { c.cache.CleanExpired() }

// get runs the shared request path for one endpoint: cache lookup, HTTP GET,
// status classification, cache fill. op is the stable operation label used in
// logs and metrics.
func (c *Client) get(ctx context.Context, op, endpoint string, params url.Values) (json.RawMessage, error) {
	requestURL := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	key := cacheKey(requestURL, params)

	if body, ok := c.cache.Get(key); ok {
		c.countCacheLookup("hit")
		c.logger.Debug("cache hit", "url", requestURL)
		return body, nil
	}
	c.countCacheLookup("miss")

	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}
	c.logger.Debug("requesting", "url", requestURL)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &APIError{Kind: ErrorAPI, Message: fmt.Sprintf("create request for %s", requestURL), Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.observeDuration(op, time.Since(start))
	if err != nil {
		if isTimeout(err) {
			c.countRequest(op, "timeout")
			return nil, &APIError{
				Kind:    ErrorTimeout,
				Message: fmt.Sprintf("request to %s timed out after %s", requestURL, c.timeout),
				Cause:   err,
			}
		}
		c.countRequest(op, "error")
		return nil, &APIError{Kind: ErrorAPI, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countRequest(op, "error")
		return nil, &APIError{Kind: ErrorAPI, StatusCode: resp.StatusCode, Message: "read response body", Cause: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode check
	case resp.StatusCode == http.StatusNotFound:
		c.countRequest(op, "not_found")
		return nil, &APIError{Kind: ErrorNotFound, StatusCode: resp.StatusCode, Message: "resource not found: " + requestURL}
	case resp.StatusCode == http.StatusTooManyRequests:
		c.countRequest(op, "rate_limited")
		return nil, &APIError{Kind: ErrorRateLimited, StatusCode: resp.StatusCode, Message: "API rate limit exceeded"}
	default:
		c.countRequest(op, "error")
		return nil, &APIError{
			Kind:       ErrorAPI,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("API request failed with status %d: %s", resp.StatusCode, body),
		}
	}

	if !json.Valid(body) {
		c.countRequest(op, "error")
		return nil, &APIError{Kind: ErrorAPI, StatusCode: resp.StatusCode, Message: "invalid JSON response"}
	}

	c.cache.Set(key, body, c.cacheTTL)
	c.observeCacheSize()
	c.countRequest(op, "success")
	return body, nil
}

// cacheKey derives the cache key from the resolved URL and the encoded query
// parameters. url.Values.Encode sorts keys, so identical calls always produce
// identical keys.
func cacheKey(requestURL string, params url.Values) string {
	if len(params) == 0 {
		return requestURL
	}
	return requestURL + "?" + params.Encode()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) countRequest(op, outcome string) {
	if c.metrics != nil {
		c.metrics.APIRequests.WithLabelValues(op, outcome).Inc()
	}
}

func (c *Client) countCacheLookup(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (c *Client) observeDuration(op string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (c *Client) observeCacheSize() {
	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(c.cache.Len()))
	}
}
