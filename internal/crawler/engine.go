package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/restmap/restmap/internal/config"
	"github.com/restmap/restmap/internal/fetch"
	"github.com/restmap/restmap/internal/model"
)

// Fetcher is the external fetch capability consumed by the engine.
// *fetch.Client satisfies it; tests substitute their own.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// Engine discovers the reachable endpoint graph of a REST API by following
// hyperlinks embedded in JSON responses, starting from a seed URL.
//
// Concurrency model: a single owner goroutine exclusively holds the frontier,
// the visited set, and the result. Up to MaxConcurrentRequests fetch workers
// run at a time; each worker only fetches and extracts, then sends its
// completion back to the owner over a channel. Check-and-insert on the
// visited set and all result mutation therefore happen on one goroutine, so
// two workers can never fetch the same URL and the result needs no locking.
type Engine struct {
	// client performs the HTTP requests.
	client Fetcher

	// cfg is the immutable crawl configuration.
	cfg *config.Config

	// allowedDomains is the lowercased domain allow-list, nil when unrestricted.
	allowedDomains map[string]struct{}

	// limiter paces dispatches when a delay is configured.
	limiter *rate.Limiter

	// logger is used for structured crawl logging.
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine using the given fetch client and configuration.
func NewEngine(client Fetcher, cfg *config.Config, opts ...EngineOption) *Engine {
	e := &Engine{
		client: client,
		cfg:    cfg,
	}

	if len(cfg.AllowedDomains) > 0 {
		e.allowedDomains = make(map[string]struct{}, len(cfg.AllowedDomains))
		for _, d := range cfg.AllowedDomains {
			e.allowedDomains[strings.ToLower(d)] = struct{}{}
		}
	}

	if cfg.Delay > 0 {
		e.limiter = rate.NewLimiter(rate.Every(cfg.Delay), 1)
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// frontierItem is one not-yet-processed URL awaiting fetch.
// It is created when a discovered link passes the enqueue check and consumed
// exactly once when popped.
type frontierItem struct {
	url       string
	depth     int
	parentURL string
}

// completion is the message a fetch worker sends back to the owner loop.
type completion struct {
	item      frontierItem
	endpoints []*model.Endpoint
	err       error
}

// Crawl walks the API reachable from seedURL and returns the accumulated
// result. A malformed seed URL is a configuration error and fails before any
// request is made; every per-URL failure is absorbed into the result's stats
// and the crawl continues.
func (e *Engine) Crawl(ctx context.Context, seedURL string) (*model.CrawlResult, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if !seed.IsAbs() {
		return nil, fmt.Errorf("invalid start URL: %q is not absolute", seedURL)
	}
	start := seed.String()

	e.logger.Info("starting crawl", "url", start)

	result := model.NewCrawlResult(start, e.cfg.Snapshot())
	frontier := []frontierItem{{url: start, depth: 0}}
	visited := make(map[string]struct{})
	completions := make(chan completion)

	maxInFlight := e.cfg.MaxConcurrentRequests
	if maxInFlight < 1 {
		maxInFlight = 1
	}

	inFlight := 0
	stopped := false

	for {
		// Dispatch as many frontier items as admission control allows.
		// Fan-out is the point: we do not wait for one fetch to finish
		// before dequeuing the next.
		for !stopped && inFlight < maxInFlight && len(frontier) > 0 {
			// In-flight fetches count against the URL budget: every admitted
			// fetch will be processed, so admitting while only comparing the
			// processed count would overshoot the limit by up to maxInFlight-1.
			if e.cfg.MaxURLs > 0 && result.Stats.URLsProcessed+inFlight >= e.cfg.MaxURLs {
				if result.Stats.URLsProcessed >= e.cfg.MaxURLs {
					e.logger.Debug("reached max URL limit", "max_urls", e.cfg.MaxURLs)
					stopped = true
				}
				break
			}

			item := frontier[0]
			frontier = frontier[1:]

			if e.cfg.MaxDepth > 0 && item.depth >= e.cfg.MaxDepth {
				e.logger.Debug("skipping URL over depth limit", "url", item.url, "depth", item.depth)
				result.Stats.URLsSkipped++
				continue
			}

			if _, ok := visited[item.url]; ok {
				e.logger.Debug("skipping visited URL", "url", item.url)
				result.Stats.URLsSkipped++
				continue
			}

			if !e.isDomainAllowed(item.url) {
				e.logger.Debug("skipping URL outside allowed domains", "url", item.url)
				result.Stats.URLsSkipped++
				continue
			}

			// The visited insert happens only once the item is actually
			// dispatched; an item dropped by a cancelled limiter wait is
			// counted as skipped, not silently lost.
			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					result.Stats.URLsSkipped++
					stopped = true
					break
				}
			}

			visited[item.url] = struct{}{}
			inFlight++
			go e.fetchAndExtract(ctx, item, completions)
		}

		if inFlight == 0 {
			break
		}

		// Aggregate one completed fetch. Results from fetches that were
		// already in flight when a stop condition fired are still recorded.
		done := <-completions
		inFlight--

		if done.err != nil {
			e.logger.Warn("failed to process URL", "url", done.item.url, "error", done.err)
			result.Stats.FailedRequests++
			result.Stats.Errors = append(result.Stats.Errors,
				fmt.Sprintf("URL %s: %v", done.item.url, done.err))
			continue
		}

		result.Stats.SuccessfulRequests++
		result.Stats.URLsProcessed++
		if done.item.depth > result.Stats.MaxDepthReached {
			result.Stats.MaxDepthReached = done.item.depth
		}

		e.logger.Debug("processed URL",
			"url", done.item.url,
			"depth", done.item.depth,
			"endpoints", len(done.endpoints),
		)

		for _, endpoint := range done.endpoints {
			result.AddEndpoint(endpoint)

			if !endpoint.ShouldCrawl() {
				continue
			}
			if _, ok := visited[endpoint.Href]; ok {
				continue
			}
			frontier = append(frontier, frontierItem{
				url:       endpoint.Href,
				depth:     done.item.depth + 1,
				parentURL: done.item.url,
			})
		}
	}

	result.Complete()

	e.logger.Info("crawl completed",
		"urls_processed", result.Stats.URLsProcessed,
		"endpoints", len(result.Endpoints),
		"elapsed_ms", result.Stats.TotalTimeMs,
	)

	return result, nil
}

// fetchAndExtract runs on a worker goroutine. It fetches one URL, extracts
// endpoints when the response is JSON, and reports back to the owner loop.
func (e *Engine) fetchAndExtract(ctx context.Context, item frontierItem, completions chan<- completion) {
	resp, err := e.client.Get(ctx, item.url)
	if err != nil {
		completions <- completion{item: item, err: err}
		return
	}

	// Non-JSON responses are not errors; they just contribute nothing.
	if !resp.IsJSON() {
		completions <- completion{item: item}
		return
	}

	doc, err := resp.DecodeJSON()
	if err != nil {
		completions <- completion{item: item, err: err}
		return
	}

	completions <- completion{
		item:      item,
		endpoints: extractEndpoints(doc, item.url, item.depth),
	}
}

// isDomainAllowed checks the URL's host against the domain allow-list.
// An empty list allows everything; an unparsable or host-less URL is
// rejected when a list is configured.
func (e *Engine) isDomainAllowed(rawURL string) bool {
	if e.allowedDomains == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	_, ok := e.allowedDomains[strings.ToLower(u.Hostname())]
	return ok
}
