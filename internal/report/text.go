package report

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/restmap/restmap/internal/model"
)

// TextWriter outputs human-readable crawl summaries.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// detailed enables the per-endpoint listing after the summary.
	detailed bool

	// maxEndpoints limits the per-endpoint listing when detailed is set.
	maxEndpoints int
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithDetailed enables the per-endpoint listing, limited to max entries.
// A max of 0 means no limit.
func WithDetailed(max int) TextWriterOption {
	return func(w *TextWriter) {
		w.detailed = true
		w.maxEndpoints = max
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl summary as plain text.
func (w *TextWriter) Write(result *model.CrawlResult) (int, error) {
	var b strings.Builder

	b.WriteString("API Crawl Summary\n")
	b.WriteString("=================\n")
	fmt.Fprintf(&b, "Start URL:    %s\n", result.StartURL)
	fmt.Fprintf(&b, "Started at:   %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Completed at: %s\n\n", result.CompletedAt.Format("2006-01-02 15:04:05 MST"))

	w.writeStats(&b, result)
	w.writeDepthBreakdown(&b, result)
	w.writeParents(&b, result)
	w.writeDomains(&b, result)
	w.writeErrors(&b, result)

	if w.detailed {
		w.writeEndpoints(&b, result)
	}

	return io.WriteString(w.output, b.String())
}

// writeStats renders the statistics section.
func (w *TextWriter) writeStats(b *strings.Builder, result *model.CrawlResult) {
	b.WriteString("Statistics:\n")
	fmt.Fprintf(b, "  URLs processed:      %d\n", result.Stats.URLsProcessed)
	fmt.Fprintf(b, "  Successful requests: %d\n", result.Stats.SuccessfulRequests)
	fmt.Fprintf(b, "  Failed requests:     %d\n", result.Stats.FailedRequests)
	fmt.Fprintf(b, "  URLs skipped:        %d\n", result.Stats.URLsSkipped)
	fmt.Fprintf(b, "  Max depth reached:   %d\n", result.Stats.MaxDepthReached)
	fmt.Fprintf(b, "  Total time:          %dms\n\n", result.Stats.TotalTimeMs)
}

// writeDepthBreakdown renders endpoint counts per BFS level.
func (w *TextWriter) writeDepthBreakdown(b *strings.Builder, result *model.CrawlResult) {
	fmt.Fprintf(b, "Endpoints: %d total\n", len(result.Endpoints))

	counts := make(map[int]int)
	for _, e := range result.Endpoints {
		counts[e.Depth]++
	}
	depths := make([]int, 0, len(counts))
	for d := range counts {
		depths = append(depths, d)
	}
	sort.Ints(depths)
	for _, d := range depths {
		fmt.Fprintf(b, "  depth %d: %d\n", d, counts[d])
	}
	b.WriteString("\n")
}

// maxListedParents bounds the per-parent breakdown so huge crawls stay
// readable in a terminal.
const maxListedParents = 5

// writeParents renders the per-parent breakdown for the first few parents.
func (w *TextWriter) writeParents(b *strings.Builder, result *model.CrawlResult) {
	if len(result.URLMappings) == 0 {
		return
	}

	b.WriteString("Structure:\n")
	parents := make([]string, 0, len(result.URLMappings))
	for p := range result.URLMappings {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	for i, parent := range parents {
		if i >= maxListedParents {
			fmt.Fprintf(b, "  ... and %d more parent URLs\n", len(parents)-maxListedParents)
			break
		}
		children := result.URLMappings[parent]
		fmt.Fprintf(b, "  %s -> %d endpoints\n", parent, len(children))
		for j, child := range children {
			if j >= 3 {
				fmt.Fprintf(b, "    ... and %d more\n", len(children)-3)
				break
			}
			fmt.Fprintf(b, "    %s\n", child.Href)
		}
	}
	b.WriteString("\n")
}

// writeDomains renders per-domain endpoint counts.
func (w *TextWriter) writeDomains(b *strings.Builder, result *model.CrawlResult) {
	domains := result.DiscoveredDomains()
	if len(domains) == 0 {
		return
	}

	counts := make(map[string]int, len(domains))
	for _, e := range result.Endpoints {
		u, err := url.Parse(e.Href)
		if err != nil || u.Hostname() == "" {
			continue
		}
		counts[strings.ToLower(u.Hostname())]++
	}

	names := make([]string, 0, len(counts))
	for d := range counts {
		names = append(names, d)
	}
	sort.Strings(names)

	b.WriteString("Domains:\n")
	for _, d := range names {
		fmt.Fprintf(b, "  %s: %d endpoints\n", d, counts[d])
	}
	b.WriteString("\n")
}

// writeErrors renders the first few recorded errors.
func (w *TextWriter) writeErrors(b *strings.Builder, result *model.CrawlResult) {
	if len(result.Stats.Errors) == 0 {
		return
	}

	fmt.Fprintf(b, "Errors (%d):\n", len(result.Stats.Errors))
	for i, msg := range result.Stats.Errors {
		if i >= maxListedParents {
			fmt.Fprintf(b, "  ... and %d more errors\n", len(result.Stats.Errors)-maxListedParents)
			break
		}
		fmt.Fprintf(b, "  %s\n", msg)
	}
	b.WriteString("\n")
}

// writeEndpoints renders the detailed per-endpoint listing.
func (w *TextWriter) writeEndpoints(b *strings.Builder, result *model.CrawlResult) {
	max := len(result.Endpoints)
	if w.maxEndpoints > 0 && w.maxEndpoints < max {
		max = w.maxEndpoints
	}

	b.WriteString("Endpoint Detail:\n")
	for i, e := range result.Endpoints[:max] {
		fmt.Fprintf(b, "%d. %s\n", i+1, e.Href)
		if e.Rel != "" {
			fmt.Fprintf(b, "   rel:    %s\n", e.Rel)
		}
		if e.Method != "" {
			fmt.Fprintf(b, "   method: %s\n", e.Method)
		}
		if e.ContentType != "" {
			fmt.Fprintf(b, "   type:   %s\n", e.ContentType)
		}
		if e.Title != "" {
			fmt.Fprintf(b, "   title:  %s\n", e.Title)
		}
		fmt.Fprintf(b, "   depth:  %d\n", e.Depth)
		if e.ParentURL != "" {
			fmt.Fprintf(b, "   parent: %s\n", e.ParentURL)
		}
	}
	if len(result.Endpoints) > max {
		fmt.Fprintf(b, "... and %d more endpoints\n", len(result.Endpoints)-max)
	}
}
