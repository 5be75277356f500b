// Package crawler discovers the endpoint graph of a REST API.
//
// # Architecture
//
// The package is designed around the Engine type, which drives a BFS over
// the hyperlinks embedded in JSON responses. A single owner goroutine holds
// the frontier, the visited set, and the accumulating result; fetch workers
// only fetch and extract, reporting back over a channel. This keeps the
// visited-set check-and-insert atomic without locks while still running up
// to MaxConcurrentRequests fetches in flight.
//
// # Components
//
//   - Engine: owns the frontier, policy checks, and stop conditions
//   - extractEndpoints: pure multi-convention scan of a JSON document
//     (HAL "_links", JSON:API "links", bare "href" members, URL-shaped keys)
//   - BatchCrawler: runs several seed URLs concurrently via errgroup
//
// # Policy
//
// The engine is bounded and polite:
//   - Depth and total-URL limits stop runaway crawls
//   - A domain allow-list confines traversal
//   - The visited set prevents loops on cyclic link graphs
//   - An optional inter-request delay paces dispatches
//
// Endpoints whose relation is "self" are recorded but never followed.
//
// # Usage
//
//	client, _ := fetch.NewClient(nil)
//	engine := crawler.NewEngine(client, config.NewConfig())
//	result, err := engine.Crawl(ctx, "https://api.example.com")
package crawler
