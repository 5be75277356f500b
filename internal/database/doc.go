// Package database provides SQLite-based storage for crawl history.
//
// Every completed crawl can be saved with its full result, letting users
// compare how an API's endpoint graph changes over time and re-render past
// results without re-crawling.
package database
