package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// CrawlStats holds counters describing a crawl run.
// Only the traversal engine mutates these; everything downstream reads them.
type CrawlStats struct {
	// URLsProcessed is the number of URLs fetched successfully.
	URLsProcessed int `json:"urls_processed,omitempty"`

	// SuccessfulRequests is the number of requests that completed without error.
	SuccessfulRequests int `json:"successful_requests,omitempty"`

	// FailedRequests is the number of requests that failed with a transport
	// or decode error. Each failure also appends to Errors.
	FailedRequests int `json:"failed_requests,omitempty"`

	// URLsSkipped counts frontier items dropped by policy: already visited,
	// over the depth limit, or outside the allowed domains.
	URLsSkipped int `json:"urls_skipped,omitempty"`

	// MaxDepthReached is the deepest frontier item actually fetched.
	MaxDepthReached int `json:"max_depth_reached,omitempty"`

	// TotalTimeMs is the wall-clock duration of the crawl in milliseconds.
	TotalTimeMs int64 `json:"total_time_ms,omitempty"`

	// Errors holds one formatted message per failed URL, in failure order.
	Errors []string `json:"errors,omitempty"`
}

// CrawlResult is the complete result of one crawl run.
// It is owned by a single crawl and must not be mutated after Complete.
type CrawlResult struct {
	// StartURL is the normalized seed URL the crawl began from.
	StartURL string `json:"start_url"`

	// Endpoints holds every extracted endpoint in discovery order.
	// Duplicates are intentional: overlapping extraction rules may emit the
	// same logical endpoint more than once, and resolution is deferred to
	// tree reconstruction where richer tie-breaking is available.
	Endpoints []*Endpoint `json:"endpoints"`

	// URLMappings indexes endpoints by the parent URL that produced them.
	// It is derived: for every endpoint with a parent, the endpoint also
	// appears in URLMappings[parent].
	URLMappings map[string][]*Endpoint `json:"url_mappings"`

	// Stats describes the crawl process.
	Stats CrawlStats `json:"stats"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when Complete was called. Equal to StartedAt until then.
	CompletedAt time.Time `json:"completed_at"`

	// ConfigSnapshot is a human-readable rendering of the configuration the
	// crawl ran with, for provenance in saved results.
	ConfigSnapshot string `json:"config_snapshot,omitempty"`
}

// NewCrawlResult creates an empty result for a crawl starting at startURL.
// configSnapshot may be empty when provenance is not wanted.
func NewCrawlResult(startURL, configSnapshot string) *CrawlResult {
	now := time.Now().UTC()
	return &CrawlResult{
		StartURL:       startURL,
		Endpoints:      make([]*Endpoint, 0),
		URLMappings:    make(map[string][]*Endpoint),
		StartedAt:      now,
		CompletedAt:    now,
		ConfigSnapshot: configSnapshot,
	}
}

// AddEndpoint appends an endpoint to the result and keeps the parent index
// consistent. No deduplication happens here; the same href may be recorded
// multiple times until reconstruction.
func (r *CrawlResult) AddEndpoint(e *Endpoint) {
	r.Endpoints = append(r.Endpoints, e)
	if e.ParentURL != "" {
		r.URLMappings[e.ParentURL] = append(r.URLMappings[e.ParentURL], e)
	}
}

// Complete stamps the completion time and derives the total duration.
// The result must not be mutated afterwards.
func (r *CrawlResult) Complete() {
	r.CompletedAt = time.Now().UTC()
	r.Stats.TotalTimeMs = r.CompletedAt.Sub(r.StartedAt).Milliseconds()
}

// EndpointsAtDepth returns the endpoints discovered at the given BFS level,
// in discovery order.
func (r *CrawlResult) EndpointsAtDepth(depth int) []*Endpoint {
	var out []*Endpoint
	for _, e := range r.Endpoints {
		if e.Depth == depth {
			out = append(out, e)
		}
	}
	return out
}

// DiscoveredDomains returns the set of distinct hosts among endpoint hrefs.
// Relative hrefs and unparsable URLs contribute nothing.
func (r *CrawlResult) DiscoveredDomains() map[string]struct{} {
	domains := make(map[string]struct{})
	for _, e := range r.Endpoints {
		u, err := url.Parse(e.Href)
		if err != nil || u.Hostname() == "" {
			continue
		}
		domains[strings.ToLower(u.Hostname())] = struct{}{}
	}
	return domains
}

// Summary returns a one-line human-readable description of the crawl.
func (r *CrawlResult) Summary() string {
	return fmt.Sprintf("crawled %d URLs, found %d endpoints across %d domains in %dms",
		r.Stats.URLsProcessed, len(r.Endpoints), len(r.DiscoveredDomains()), r.Stats.TotalTimeMs)
}
