package search

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"jobradar/internal/retry"
	"jobradar/internal/tracker"
)

const (
	defaultAPIURL = "https://www.googleapis.com/customsearch/v1"
	// resultsPerQuery is the backend maximum per request.
	resultsPerQuery = 10
)

// Result is one search hit handed to discovery.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client talks to the Custom Search JSON API. The backend is a required
// upstream dependency: exhausting its retry budget is stage-fatal for
// discovery, unlike per-item failures elsewhere in the pipeline.
type Client struct {
	HTTPClient *http.Client
	APIURL     string

	apiKey   string
	engineID string
	logger   *zap.Logger
	policy   retry.Policy
}

// New builds a search client.
func New(apiKey, engineID string, policy retry.Policy, logger *zap.Logger) *Client {
	return &Client{
		APIURL: defaultAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:   apiKey,
		engineID: engineID,
		logger:   logger,
		policy:   policy,
	}
}

type itemResponse struct {
	Items []map[string]any `json:"items"`
}

// Query runs one search query with bounded retries and returns its hits.
func (c *Client) Query(ctx context.Context, query string) ([]*Result, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.engineID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(resultsPerQuery))

	var items []map[string]any
	err := c.policy.Do(ctx, func() error {
		var err error
		items, err = c.getItems(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var results []*Result
	cfg := &mapstructure.DecoderConfig{
		Result:  &results,
		TagName: "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("%w: decoding search items for %q: %v", tracker.ErrMalformedResponse, query, err)
	}

	c.logger.Debug("search query done", zap.String("query", query), zap.Int("results", len(results)))

	return results, nil
}

func (c *Client) getItems(ctx context.Context, q url.Values) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.URL.RawQuery = q.Encode()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", tracker.ErrMalformedResponse, err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: search backend status %s", tracker.ErrNetworkUnavailable, resp.Status)
	default:
		// Client errors do not heal on retry.
		return nil, retry.Permanent(fmt.Errorf("search backend status %s", resp.Status))
	}

	var response itemResponse
	if err := json.NewDecoder(reader).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", tracker.ErrMalformedResponse, err)
	}

	return response.Items, nil
}
