package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/restmap/restmap/internal/model"
)

// maxMarkdownEndpoints bounds the endpoint table so reports for very large
// APIs stay reviewable.
const maxMarkdownEndpoints = 100

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeStats(md, result)
	w.writeRelations(md, result)
	w.writeEndpoints(md, result)
	w.writeErrors(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("restmap Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + result.StartURL + "`"},
			{"Started", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Completed", result.CompletedAt.Format("2006-01-02 15:04:05 MST")},
			{"Endpoints", strconv.Itoa(len(result.Endpoints))},
			{"Domains", strconv.Itoa(len(result.DiscoveredDomains()))},
		},
	})
	md.PlainText("")
}

// writeStats writes the crawl statistics table.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"URLs processed", strconv.Itoa(result.Stats.URLsProcessed)},
			{"Successful requests", strconv.Itoa(result.Stats.SuccessfulRequests)},
			{"Failed requests", strconv.Itoa(result.Stats.FailedRequests)},
			{"URLs skipped", strconv.Itoa(result.Stats.URLsSkipped)},
			{"Max depth reached", strconv.Itoa(result.Stats.MaxDepthReached)},
			{"Total time (ms)", strconv.FormatInt(result.Stats.TotalTimeMs, 10)},
		},
	})
	md.PlainText("")
}

// writeRelations writes endpoint counts grouped by link relation.
func (w *MarkdownWriter) writeRelations(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Endpoints) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, e := range result.Endpoints {
		rel := e.Rel
		if rel == "" {
			rel = "(none)"
		}
		counts[rel]++
	}

	rels := make([]string, 0, len(counts))
	for rel := range counts {
		rels = append(rels, rel)
	}
	sort.Slice(rels, func(i, j int) bool {
		if counts[rels[i]] != counts[rels[j]] {
			return counts[rels[i]] > counts[rels[j]]
		}
		return rels[i] < rels[j]
	})

	rows := make([][]string, 0, len(rels))
	for _, rel := range rels {
		rows = append(rows, []string{rel, strconv.Itoa(counts[rel])})
	}

	md.H2("Endpoints by Relation")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Relation", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeEndpoints writes the endpoint table, truncated for very large crawls.
func (w *MarkdownWriter) writeEndpoints(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Endpoints) == 0 {
		return
	}

	max := len(result.Endpoints)
	if max > maxMarkdownEndpoints {
		max = maxMarkdownEndpoints
	}

	rows := make([][]string, 0, max)
	for _, e := range result.Endpoints[:max] {
		rel := e.Rel
		if rel == "" {
			rel = "-"
		}
		method := e.Method
		if method == "" {
			method = "-"
		}
		rows = append(rows, []string{
			"`" + e.Href + "`",
			rel,
			method,
			strconv.Itoa(e.Depth),
		})
	}

	md.H2("Discovered Endpoints")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Href", "Rel", "Method", "Depth"},
		Rows:   rows,
	})
	if len(result.Endpoints) > max {
		md.PlainTextf("... and %d more endpoints", len(result.Endpoints)-max)
	}
	md.PlainText("")
}

// writeErrors writes the error list when the crawl was partial.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, result *model.CrawlResult) {
	if len(result.Stats.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	md.BulletList(result.Stats.Errors...)
	md.PlainText("")
}
