package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/echowater/hydrodb/internal/config"
	"github.com/echowater/hydrodb/internal/logger"
)

// maxBodySize caps how much of a page is read.
const maxBodySize = 10 << 20

// Client fetches study site pages politely: one request per delay, with
// linear backoff between retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	maxRetries int
	delay      time.Duration
	log        *logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets the site root (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithDelay sets the minimum spacing between requests and the backoff unit.
// A zero delay disables rate limiting.
func WithDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.delay = d
	}
}

// WithMaxRetries sets the number of attempts made per URL.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithLogger sets the logger used for retry and failure messages.
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a scraper client with the default site settings.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: config.DefaultTimeoutSeconds * time.Second},
		baseURL:    config.DefaultBaseURL,
		userAgent:  config.DefaultUserAgent,
		maxRetries: config.DefaultMaxRetries,
		delay:      config.DefaultDelayMS * time.Millisecond,
		log:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = logger.Nop()
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}
	if c.delay > 0 {
		c.limiter = rate.NewLimiter(rate.Every(c.delay), 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	}

	return c
}

// NewClientFromConfig builds a client from scraper settings. Zero fields
// keep the client defaults.
func NewClientFromConfig(cfg config.ScraperConfig, log *logger.Logger) *Client {
	opts := []ClientOption{WithLogger(log)}
	if cfg.TimeoutSeconds > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.UserAgent))
	}
	if cfg.DelayMS > 0 {
		opts = append(opts, WithDelay(time.Duration(cfg.DelayMS)*time.Millisecond))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, WithMaxRetries(cfg.MaxRetries))
	}
	return NewClient(opts...)
}

// BaseURL returns the site root this client scrapes.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Fetch returns the body of url, retrying retryable failures.
// Attempt n waits delay*n before it starts.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.delay * time.Duration(attempt)
			c.log.Debug("retrying fetch", "url", url, "attempt", attempt+1, "wait", wait)
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.log.Warn("fetch attempt failed", "url", url, "attempt", attempt+1, "error", err)
		if !IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

// FetchDocument fetches url and parses it as HTML.
func (c *Client) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML from %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
