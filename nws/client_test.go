package nws

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxfetch/go-nws/internal/observability"
)

const pointsBody = `{"properties":{"gridId":"LWX","gridX":96,"gridY":70}}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient builds a client against a stub server with retries disabled,
// so status-mapping tests see exactly one request per call.
func newTestClient(baseURL string, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(baseURL), WithLogger(discardLogger())}, opts...)
	c := NewClient(opts...)
	c.http.RetryMax = 0
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond
	return c
}

// countingServer serves a fixed handler and counts requests.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var count atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &count
}

func TestClient_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"404 is not found", http.StatusNotFound, func(t *testing.T, err error) {
			assert.True(t, IsNotFound(err))
		}},
		{"429 is rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			assert.True(t, IsRateLimited(err))
		}},
		{"500 is a generic API error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, ErrorAPI, apiErr.Kind)
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"detail":"problem"}`)
			})

			c := newTestClient(srv.URL)
			_, err := c.GetGlossary(context.Background())
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	c := newTestClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.GetGlossary(context.Background())

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestClient_InvalidJSONResponse(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})

	c := newTestClient(srv.URL)
	_, err := c.GetGlossary(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ErrorAPI, apiErr.Kind)
	assert.Contains(t, apiErr.Message, "invalid JSON")
	assert.Equal(t, 0, c.cache.Len(), "undecodable response must not be cached")
}

func TestClient_RequestHeaders(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent (ops@example.com)", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		fmt.Fprint(w, "{}")
	})

	c := newTestClient(srv.URL, WithUserAgent("test-agent (ops@example.com)"))
	_, err := c.GetGlossary(context.Background())
	require.NoError(t, err)
}

func TestClient_CacheHitSkipsNetwork(t *testing.T) {
	srv, count := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pointsBody)
	})

	c := newTestClient(srv.URL)

	first, err := c.GetPoints(context.Background(), 39.0, -77.0)
	require.NoError(t, err)
	second, err := c.GetPoints(context.Background(), 39.0, -77.0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), count.Load(), "second call should come from cache")

	_, err = c.GetPoints(context.Background(), 40.0, -77.0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Load(), "different coordinates are a different key")
}

func TestClient_CacheExpiryRefetches(t *testing.T) {
	srv, count := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pointsBody)
	})

	fake := clockwork.NewFakeClock()
	c := newTestClient(srv.URL,
		WithCache(NewCacheWithClock(fake)),
		WithCacheTTL(10*time.Minute),
	)

	_, err := c.GetPoints(context.Background(), 39.0, -77.0)
	require.NoError(t, err)

	fake.Advance(11 * time.Minute)

	_, err = c.GetPoints(context.Background(), 39.0, -77.0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Load())
}

func TestClient_FailureNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	srv, count := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "{}")
	})

	c := newTestClient(srv.URL)

	_, err := c.GetGlossary(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, c.cache.Len())

	fail.Store(false)
	_, err = c.GetGlossary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Load())
}

func TestClient_ValidationSkipsNetwork(t *testing.T) {
	srv, count := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "{}")
	})

	c := newTestClient(srv.URL)

	_, err := c.GetPoints(context.Background(), 91, 0)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = c.GetPoints(context.Background(), 0, 181)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = c.GetPoints(context.Background(), -90.5, 0)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	assert.Equal(t, int64(0), count.Load(), "validation failures must not reach the network")
}

func TestClient_TwoStepForecast(t *testing.T) {
	forecastBody := `{"properties":{"periods":[{"name":"Today"}]}}`

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/points/39.0000,-77.0000", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"properties":{"forecast":"%s/gridpoints/LWX/96,70/forecast","forecastHourly":"%s/gridpoints/LWX/96,70/forecast/hourly"}}`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/gridpoints/LWX/96,70/forecast", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, forecastBody)
	})
	mux.HandleFunc("/gridpoints/LWX/96,70/forecast/hourly", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"properties":{"periods":[]}}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(srv.URL)

	body, err := c.GetForecast(context.Background(), 39.0, -77.0)
	require.NoError(t, err)
	assert.JSONEq(t, forecastBody, string(body))

	_, err = c.GetHourlyForecast(context.Background(), 39.0, -77.0)
	require.NoError(t, err)
}

func TestClient_ForecastURLMissing(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"properties":{}}`)
	})

	c := newTestClient(srv.URL)
	_, err := c.GetForecast(context.Background(), 39.0, -77.0)

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "forecast URL not found")
}

func TestClient_RetriesTransientServerError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "{}")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithLogger(discardLogger()))
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond

	_, err := c.GetGlossary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
}

func TestClient_Metrics(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "{}")
	})

	m := observability.NewMetricsForTesting()
	c := newTestClient(srv.URL, WithMetrics(m))

	_, err := c.GetGlossary(context.Background())
	require.NoError(t, err)
	_, err = c.GetGlossary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.APIRequests.WithLabelValues("glossary", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEntries))
}

func TestClient_ClearAndCleanCache(t *testing.T) {
	srv, count := countingServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "{}")
	})

	c := newTestClient(srv.URL)

	_, err := c.GetGlossary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.cache.Len())

	c.CleanCache()
	assert.Equal(t, 1, c.cache.Len(), "live entries survive CleanCache")

	c.ClearCache()
	assert.Equal(t, 0, c.cache.Len())

	_, err = c.GetGlossary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Load())
}
