package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror typical REST API characteristics: responses are small and
// fast compared to full web pages, so the defaults lean toward breadth.
const (
	// DefaultMaxDepth bounds BFS depth. Ten levels is enough to exhaust the
	// link graph of most real APIs while preventing infinite descent into
	// pagination chains.
	DefaultMaxDepth = 10

	// DefaultMaxConcurrentRequests balances throughput with server load.
	// JSON endpoints are cheap to serve, so ten in flight is conservative.
	DefaultMaxConcurrentRequests = 10

	// DefaultTimeout is the per-request timeout. API endpoints that take
	// longer than 30 seconds to answer a GET are effectively down.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxURLs caps the total number of URLs fetched in one crawl.
	// This prevents runaway crawling on APIs that generate links endlessly.
	DefaultMaxURLs = 1000

	// DefaultUserAgent identifies restmap in HTTP requests. A descriptive
	// User-Agent lets API operators recognize crawler traffic in their logs.
	DefaultUserAgent = "restmap/1.0 (+https://github.com/restmap/restmap)"

	// DefaultDelay is the pause between request dispatches. 100ms keeps the
	// crawl polite without making large APIs take minutes to map.
	DefaultDelay = 100 * time.Millisecond

	// AppName is the application name used for XDG directory paths.
	AppName = "restmap"
)

// Config holds all options for one crawl run.
// It is populated from CLI flags and an optional config file, then treated
// as immutable once the engine starts.
//
// Design decision: We use a single flat struct constructed once rather than
// chained builder mutation. The option count is manageable, a struct literal
// with named fields documents itself, and immutability after construction
// removes a class of mid-crawl surprises.
type Config struct {
	// MaxDepth is the maximum BFS depth. 0 means unlimited.
	// A frontier item at depth >= MaxDepth is dropped without being fetched,
	// so endpoints discovered at the limit are recorded but never expanded.
	MaxDepth int

	// MaxConcurrentRequests is the admission-control ceiling: at most this
	// many fetches run at once.
	MaxConcurrentRequests int

	// Timeout is the per-request timeout. A timed-out fetch is a per-URL
	// failure, not a crawl abort.
	Timeout time.Duration

	// MaxURLs caps the number of URLs processed in one crawl. 0 means
	// unlimited, in which case termination relies on the visited set and a
	// finite link graph.
	MaxURLs int

	// UserAgent is sent with every request.
	UserAgent string

	// Headers are additional headers sent with every request, typically
	// authentication. Values may be sensitive and must not reach logs
	// unredacted.
	Headers map[string]string

	// Delay is the pause applied between request dispatches.
	Delay time.Duration

	// FollowRedirects controls whether HTTP redirects are followed.
	FollowRedirects bool

	// AllowedDomains restricts crawling to these hosts.
	// Empty means unrestricted.
	AllowedDomains []string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. This also documents what the defaults
// are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:              DefaultMaxDepth,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		Timeout:               DefaultTimeout,
		MaxURLs:               DefaultMaxURLs,
		UserAgent:             DefaultUserAgent,
		Headers:               make(map[string]string),
		Delay:                 DefaultDelay,
		FollowRedirects:       true,
	}
}

// Validate checks the configuration, returning the first problem found.
// It is called once after flag parsing, before any request is made.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxURLs < 0 {
		return ErrInvalidMaxURLs
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return ErrEmptyUserAgent
	}
	return nil
}

// Snapshot renders the configuration as a single human-readable line for
// embedding in crawl results. Header values are elided: they may carry
// credentials, and saved results outlive the run.
func (c *Config) Snapshot() string {
	headerNames := make([]string, 0, len(c.Headers))
	for name := range c.Headers {
		headerNames = append(headerNames, name)
	}
	sort.Strings(headerNames)

	return fmt.Sprintf(
		"max_depth=%d max_concurrent_requests=%d timeout=%s max_urls=%d user_agent=%q delay=%s follow_redirects=%t allowed_domains=%v headers=%v",
		c.MaxDepth, c.MaxConcurrentRequests, c.Timeout, c.MaxURLs,
		c.UserAgent, c.Delay, c.FollowRedirects, c.AllowedDomains, headerNames,
	)
}

// XDGDataDir returns the XDG data directory for restmap.
// On Linux: ~/.local/share/restmap
// On macOS: ~/Library/Application Support/restmap
// On Windows: %LOCALAPPDATA%\restmap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for restmap.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
