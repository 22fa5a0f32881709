package fetch

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"jobradar/internal/tracker"
)

const (
	defaultUserAgent = "jobradar/1.0 (+job source monitor)"
	contentEncoding  = "gzip, deflate"

	// maxBodyBytes caps how much of a careers page is read. Pages past this
	// size are truncated, not failed: the posting lists we care about sit
	// near the top of the document.
	maxBodyBytes = 2 << 20
)

// Client fetches external pages. All requests carry the configured timeout
// and user agent; network failures map to tracker.ErrNetworkUnavailable.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	logger     *zap.Logger
}

// Page is a fetched document plus the probe signals the validator consumes.
type Page struct {
	Body         string
	StatusCode   int
	Latency      time.Duration
	LastModified time.Time
}

// New builds a fetch client with the given per-request timeout.
func New(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  defaultUserAgent,
		logger:     logger,
	}
}

// Get fetches url and returns the decoded body with timing signals.
func (c *Client) Get(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", tracker.ErrMalformedResponse, url, err)
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	c.logger.Debug("fetching page", zap.String("url", url))

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", tracker.ErrNetworkUnavailable, url, err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip body from %s: %v", tracker.ErrMalformedResponse, url, err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", tracker.ErrNetworkUnavailable, url, err)
	}

	page := &Page{
		Body:       string(body),
		StatusCode: resp.StatusCode,
		Latency:    latency,
	}
	if stamp := resp.Header.Get("Last-Modified"); stamp != "" {
		if parsed, err := http.ParseTime(stamp); err == nil {
			page.LastModified = parsed
		}
	}
	return page, nil
}

// Probe issues a HEAD request and reports whether the URL answers 200.
func (c *Client) Probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
