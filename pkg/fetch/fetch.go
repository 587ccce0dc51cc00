// Package fetch provides the single HTTP session shared by a scrape run.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/WessleyAI/lotscraper/pkg/fn"
)

// DefaultUserAgent is a desktop browser string; several dealer platforms
// serve an empty shell to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrStatus matches any *StatusError.
var ErrStatus = errors.New("unexpected http status")

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d from %s", e.Code, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Config configures the client.
type Config struct {
	UserAgent string
	// MaxBytes caps every response body. Default: 20MB.
	MaxBytes int64
	// Transport is wrapped with otelhttp. Default: http.DefaultTransport.
	Transport http.RoundTripper
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 20 * 1024 * 1024
	}
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
}

// Client performs GET requests with a fixed User-Agent and a cookie jar that
// lives for the whole run.
type Client struct {
	http *http.Client
	cfg  Config
}

// New creates a Client.
func New(cfg Config) *Client {
	cfg.defaults()
	jar, _ := cookiejar.New(nil) // only fails on a non-nil PublicSuffixList
	return &Client{
		http: &http.Client{
			Transport: otelhttp.NewTransport(cfg.Transport),
			Jar:       jar,
		},
		cfg: cfg,
	}
}

// Get fetches url and returns its body. Anything but 200 OK is an error.
// timeout bounds the whole request including the body read; 0 means no limit
// beyond ctx.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) fn.Result[[]byte] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fn.Err[[]byte](fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fn.Err[[]byte](err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fn.Err[[]byte](&StatusError{Code: resp.StatusCode, URL: url})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBytes))
	if err != nil {
		return fn.Err[[]byte](fmt.Errorf("read body: %w", err))
	}
	return fn.Ok(body)
}
