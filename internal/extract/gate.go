// Package extract implements the upstream side of the pipeline: the
// readiness gate that polls the job-listings API and the fetcher that pulls
// one batch of postings from it.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"jobwarehouse/etl-service/internal/etlerr"
)

const httpTimeout = 15 * time.Second

// SearchQuery carries the query parameters of one daily search.
type SearchQuery struct {
	Term       string // e.g. "data engineer"
	NumPages   int
	Country    string // e.g. "fr"
	DatePosted string // e.g. "today"
}

// Gate blocks until the upstream API is ready to serve the day's batch, or
// reports that it never became ready within its bound.
type Gate interface {
	// AwaitReady returns the endpoint URL to extract from once the API
	// answers 200 with a non-empty data array. A bound timeout yields an
	// UPSTREAM_UNAVAILABLE error.
	AwaitReady(ctx context.Context) (string, error)
}

// HTTPGate polls the search endpoint on a fixed interval up to a bounded
// timeout. Each probe is a full search request: readiness means the API both
// responds and has data for the query.
type HTTPGate struct {
	baseURL  string
	apiKey   string
	query    SearchQuery
	interval time.Duration
	timeout  time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPGate constructs a gate with a shared HTTP client.
func NewHTTPGate(baseURL, apiKey string, query SearchQuery, interval, timeout time.Duration, logger *zap.Logger) *HTTPGate {
	return &HTTPGate{
		baseURL:  baseURL,
		apiKey:   apiKey,
		query:    query,
		interval: interval,
		timeout:  timeout,
		client:   &http.Client{Timeout: httpTimeout},
		logger:   logger,
	}
}

// searchURL builds the full extraction URL for the configured query.
func (g *HTTPGate) searchURL() string {
	params := url.Values{}
	params.Set("query", g.query.Term)
	params.Set("num_pages", strconv.Itoa(g.query.NumPages))
	params.Set("country", g.query.Country)
	params.Set("date_posted", g.query.DatePosted)
	return g.baseURL + "?" + params.Encode()
}

func (g *HTTPGate) AwaitReady(ctx context.Context) (string, error) {
	endpoint := g.searchURL()
	deadline := time.Now().Add(g.timeout)

	for {
		ready, err := g.probe(ctx, endpoint)
		if err != nil {
			return "", err
		}
		if ready {
			return endpoint, nil
		}

		if time.Now().Add(g.interval).After(deadline) {
			return "", etlerr.UpstreamUnavailable(
				fmt.Sprintf("API not ready within %s", g.timeout), nil)
		}

		g.logger.Info("API not ready, waiting", zap.Duration("interval", g.interval))
		select {
		case <-ctx.Done():
			return "", etlerr.UpstreamUnavailable("readiness poll cancelled", ctx.Err())
		case <-time.After(g.interval):
		}
	}
}

// probe performs one readiness check. A non-200 response or an empty data
// array is a not-ready signal, not an error; only transport failures and
// context cancellation abort the poll.
func (g *HTTPGate) probe(ctx context.Context, endpoint string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, etlerr.UpstreamUnavailable("build probe request", err)
	}
	req.Header.Set("x-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, etlerr.UpstreamUnavailable("readiness poll cancelled", ctx.Err())
		}
		g.logger.Warn("probe failed, treating as not ready", zap.Error(err))
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Info("API returned non-200", zap.Int("status", resp.StatusCode))
		return false, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		g.logger.Warn("probe body read failed", zap.Error(err))
		return false, nil
	}

	var payload struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		g.logger.Warn("probe body not JSON", zap.Error(err))
		return false, nil
	}

	return len(payload.Data) > 0, nil
}
