package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/exowars/exowars/internal/cache"
	"github.com/exowars/exowars/pkg/metrics"
)

const (
	defaultRequestTimeout = 15 * time.Second

	// catalogTTL matches the aggregate fusion cache window.
	catalogTTL = 30 * time.Minute
	imageTTL   = 24 * time.Hour
)

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}

// getJSON performs a GET request and decodes the JSON body into dest.
func getJSON(ctx context.Context, client *http.Client, source, url string, headers map[string]string, dest interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(source, "failure").Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues(source, "failure").Inc()
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: unexpected status %d", source, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		metrics.UpstreamRequests.WithLabelValues(source, "failure").Inc()
		return fmt.Errorf("%s: decode response: %w", source, err)
	}

	metrics.UpstreamRequests.WithLabelValues(source, "success").Inc()
	return nil
}

// readCached loads a JSON-encoded cache entry into dest, reporting whether it was present.
// Cache failures are treated as misses.
func readCached(ctx context.Context, store cache.Store, key string, dest interface{}) bool {
	if store == nil {
		return false
	}

	raw, found, err := store.Get(ctx, key)
	if err != nil || !found {
		metrics.CacheLookups.WithLabelValues(key, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheLookups.WithLabelValues(key, "miss").Inc()
		return false
	}

	metrics.CacheLookups.WithLabelValues(key, "hit").Inc()
	return true
}

// writeCached stores value as JSON under key. Best effort; failures are ignored.
func writeCached(ctx context.Context, store cache.Store, key string, value interface{}, ttl time.Duration) {
	if store == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = store.Set(ctx, key, raw, ttl)
}
