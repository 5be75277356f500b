// Package main provides the entry point for the restmap CLI.
//
// restmap discovers the endpoint structure of REST APIs by crawling
// hypermedia links (HAL, JSON:API, and plain href fields) in JSON responses.
//
// Usage:
//
//	restmap crawl <url>
//	restmap history [start-url]
//
// See --help for all available options.
package main

// main is the entry point for restmap.
func main() {
	Execute()
}
