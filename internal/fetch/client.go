package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// DefaultMaxBodySize limits the response body size to read.
// 10MB is generous for JSON API responses while preventing memory
// exhaustion from an endpoint that streams unbounded output.
const DefaultMaxBodySize = 10 * 1024 * 1024

// maxRedirects bounds redirect chains when following is enabled.
const maxRedirects = 10

// ErrTooManyRedirects is returned when a redirect chain exceeds the limit.
var ErrTooManyRedirects = errors.New("stopped after too many redirects")

// Client issues GET requests on behalf of the traversal engine.
// It carries the default headers, timeout, and redirect policy configured
// for a crawl run, so the engine never touches net/http directly.
type Client struct {
	// httpClient is the underlying HTTP client.
	httpClient *http.Client

	// userAgent is sent with every request.
	userAgent string

	// headers are additional headers sent with every request.
	headers http.Header

	// maxBodySize limits how many body bytes are read per response.
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithFollowRedirects controls whether HTTP redirects are followed.
// When enabled, chains are limited to ten hops; when disabled, a redirect
// status is returned to the caller as-is.
func WithFollowRedirects(follow bool) Option {
	return func(c *Client) {
		if follow {
			c.httpClient.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}
				return nil
			}
		} else {
			c.httpClient.CheckRedirect = func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			}
		}
	}
}

// NewClient creates a Client with the given extra headers.
// Header names and values are validated up front; an invalid header is a
// configuration error and fails client construction.
func NewClient(headers map[string]string, opts ...Option) (*Client, error) {
	h := make(http.Header, len(headers))
	for name, value := range headers {
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, fmt.Errorf("invalid header name: %q", name)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("invalid header value for %q", name)
		}
		h.Set(name, value)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent:   "restmap/1.0",
		headers:     h,
		maxBodySize: DefaultMaxBodySize,
	}
	WithFollowRedirects(true)(c)

	for _, opt := range opts {
		opt(c)
	}

	if !httpguts.ValidHeaderFieldValue(c.userAgent) {
		return nil, fmt.Errorf("invalid user agent: %q", c.userAgent)
	}

	return c, nil
}

// Response is the result of a completed fetch.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the raw Content-Type header value.
	ContentType string

	// Header holds all response headers.
	Header http.Header

	// Body is the response body, truncated to the configured limit.
	Body []byte
}

// IsJSON reports whether the response content type allows JSON decoding.
// Only application/json and application/hal+json qualify; everything else
// contributes zero endpoints without being an error.
func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType, "application/json") ||
		strings.Contains(r.ContentType, "application/hal+json")
}

// DecodeJSON decodes the response body into a generic JSON value.
func (r *Response) DecodeJSON() (any, error) {
	var doc any
	if err := json.Unmarshal(r.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}
	return doc, nil
}

// Get fetches the given URL and returns the response.
// Transport failures, timeouts, and redirect-limit violations surface as
// errors; any completed response, including non-2xx, is returned to the
// caller to classify.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/hal+json, application/json;q=0.9, */*;q=0.1")
	for name, values := range c.headers {
		for _, v := range values {
			req.Header.Set(name, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        body,
	}, nil
}
