// Package report renders crawl results for humans and tools.
//
// Three writers share the Writer interface: JSONWriter for machine
// consumption (flat, hierarchical, or nested tree views), TextWriter for
// terminal summaries, and MarkdownWriter for shareable documentation.
// MultiWriter fans one result out to several destinations, typically the
// terminal and a file.
package report
