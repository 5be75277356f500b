package report

import (
	"encoding/json"
	"io"

	"github.com/restmap/restmap/internal/model"
	"github.com/restmap/restmap/internal/tree"
)

// View selects which shape of the result a JSONWriter emits.
type View int

const (
	// ViewFlat emits the crawl result as-is: the raw endpoint sequence with
	// mappings and statistics.
	ViewFlat View = iota

	// ViewHierarchical emits endpoints grouped one level under their parent
	// URLs, with summary counts.
	ViewHierarchical

	// ViewTree emits the deduplicated, fully nested endpoint tree.
	ViewTree
)

// JSONWriter outputs crawl results in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// view selects the output shape.
	view View

	// indent enables pretty-printed JSON output.
	indent bool

	// includeStats controls whether crawl statistics appear in the output.
	includeStats bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithView selects the output shape. Default is ViewFlat.
func WithView(v View) JSONWriterOption {
	return func(w *JSONWriter) {
		w.view = v
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
	}
}

// WithoutStats omits crawl statistics from the output.
func WithoutStats() JSONWriterOption {
	return func(w *JSONWriter) {
		w.includeStats = false
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		view:         ViewFlat,
		includeStats: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// hierarchicalDocument is the envelope for the hierarchical view.
type hierarchicalDocument struct {
	*tree.Hierarchy
	Stats       *model.CrawlStats `json:"stats,omitempty"`
	StartedAt   string            `json:"started_at"`
	CompletedAt string            `json:"completed_at"`
}

// treeDocument is the envelope for the nested tree view.
type treeDocument struct {
	*tree.Tree
	Stats       *model.CrawlStats `json:"stats,omitempty"`
	StartedAt   string            `json:"started_at"`
	CompletedAt string            `json:"completed_at"`
}

// Write outputs the crawl result in the configured JSON view.
func (w *JSONWriter) Write(result *model.CrawlResult) (int, error) {
	var stats *model.CrawlStats
	if w.includeStats {
		stats = &result.Stats
	}

	switch w.view {
	case ViewHierarchical:
		return w.writeJSON(&hierarchicalDocument{
			Hierarchy:   tree.BuildHierarchy(result),
			Stats:       stats,
			StartedAt:   result.StartedAt.Format(timeLayout),
			CompletedAt: result.CompletedAt.Format(timeLayout),
		})
	case ViewTree:
		return w.writeJSON(&treeDocument{
			Tree:        tree.Build(result),
			Stats:       stats,
			StartedAt:   result.StartedAt.Format(timeLayout),
			CompletedAt: result.CompletedAt.Format(timeLayout),
		})
	default:
		if !w.includeStats {
			trimmed := *result
			trimmed.Stats = model.CrawlStats{}
			return w.writeJSON(&trimmed)
		}
		return w.writeJSON(result)
	}
}

// writeJSON marshals the given value and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// timeLayout is RFC 3339, the layout used for timestamps in JSON views.
const timeLayout = "2006-01-02T15:04:05Z07:00"
