// Package model defines the core data structures used throughout restmap.
//
// This package contains the following main types:
//   - Endpoint: A single API endpoint discovered during crawling
//   - CrawlStats: Counters describing the crawl process
//   - CrawlResult: The complete result of one crawl run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, tree, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
