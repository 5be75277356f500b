package crawler

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/restmap/restmap/internal/model"
)

// BatchCrawler crawls multiple seed URLs concurrently.
// Each seed gets its own Engine so crawl state never leaks between runs.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled worker
// pool because it's simpler and errgroup handles the concurrency correctly.
// Each seed gets its own goroutine, but only 'concurrency' goroutines run
// simultaneously.
type BatchCrawler struct {
	// engineFactory creates a fresh engine for each seed URL.
	engineFactory func() *Engine

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchCrawler.
type BatchOption func(*BatchCrawler)

// WithBatchLogger sets a custom logger for batch crawling.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchCrawler) {
		b.logger = logger
	}
}

// WithBatchConcurrency sets the maximum number of concurrent crawls.
// Default is 1: one API at a time, each with its own internal fan-out.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *BatchCrawler) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchCrawler creates a BatchCrawler.
//
// The engineFactory function is called once per seed to create a fresh
// Engine instance, so per-seed frontier and visited state stay isolated.
func NewBatchCrawler(engineFactory func() *Engine, opts ...BatchOption) *BatchCrawler {
	b := &BatchCrawler{
		engineFactory: engineFactory,
		concurrency:   1,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// CrawlAll crawls every seed URL and returns one result per seed, in input
// order. A seed whose URL fails the configuration check yields a nil result
// and stops the batch; per-URL failures inside a crawl never do.
func (b *BatchCrawler) CrawlAll(ctx context.Context, seeds []string) ([]*model.CrawlResult, error) {
	b.logger.Info("starting batch crawl",
		"total_seeds", len(seeds),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()
	results := make([]*model.CrawlResult, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			engine := b.engineFactory()
			result, err := engine.Crawl(ctx, seed)
			if err != nil {
				b.logger.Error("crawl failed", "seed", seed, "error", err)
				return err
			}

			results[i] = result
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch crawl complete",
		"total_seeds", len(seeds),
		"elapsed", time.Since(startTime),
	)

	return results, err
}
