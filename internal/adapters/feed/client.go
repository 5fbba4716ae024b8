// Package feed retrieves the station metadata feed over HTTP or from disk.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/okian/stationlens/internal/domain/station"
	"github.com/okian/stationlens/pkg/metrics"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "stationlens/1.0"
	defaultMaxBodyBytes = 64 << 20
)

// Client fetches one feed document from a fixed source.
type Client struct {
	source       string
	httpClient   *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// NewClient creates a client for source, an http(s) URL, a file:// URL or a
// plain filesystem path.
func NewClient(source string, opts ...Option) *Client {
	c := &Client{
		source:       strings.TrimSpace(source),
		httpClient:   &http.Client{},
		timeout:      defaultTimeout,
		userAgent:    defaultUserAgent,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the configured feed location.
func (c *Client) Source() string {
	return c.source
}

// Fetch retrieves and decodes the feed.
func (c *Client) Fetch(ctx context.Context) (station.Feed, error) {
	start := time.Now()
	feed, err := c.fetch(ctx)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.RecordFeedFetch(outcome, float64(time.Since(start).Milliseconds()))
	return feed, err
}

func (c *Client) fetch(ctx context.Context) (station.Feed, error) {
	if c.source == "" {
		return station.Feed{}, fmt.Errorf("%w: no feed source configured", ErrFetch)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if path, ok := localPath(c.source); ok {
		return c.readFile(path)
	}
	return c.get(ctx)
}

func (c *Client) get(ctx context.Context) (station.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
	if err != nil {
		return station.Feed{}, fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return station.Feed{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return station.Feed{}, fmt.Errorf("%w: %d %s: %s",
			ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(snippet)))
	}

	return c.decode(resp.Body)
}

func (c *Client) readFile(path string) (station.Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return station.Feed{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer f.Close()
	return c.decode(f)
}

func (c *Client) decode(r io.Reader) (station.Feed, error) {
	feed, err := station.Decode(io.LimitReader(r, c.maxBodyBytes))
	if err != nil {
		return station.Feed{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return feed, nil
}

// localPath reports whether source points at the local filesystem.
func localPath(source string) (string, bool) {
	u, err := url.Parse(source)
	if err != nil {
		return source, true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return "", false
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return u.Host + u.Path, true
		}
		return u.Path, true
	case "":
		return source, true
	default:
		// Windows drive letters parse as a one-letter scheme.
		if len(u.Scheme) == 1 {
			return source, true
		}
		return "", false
	}
}
