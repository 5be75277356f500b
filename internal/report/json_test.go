package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/restmap/restmap/internal/model"
)

// sampleResult builds a small finished crawl for writer tests.
func sampleResult() *model.CrawlResult {
	const start = "https://api.example.com"

	r := model.NewCrawlResult(start, "max_depth=10")

	self := model.NewEndpoint(start, 1)
	self.Rel = model.RelSelf
	self.ParentURL = start
	r.AddEndpoint(self)

	users := model.NewEndpoint(start+"/users", 2)
	users.Rel = "users"
	users.Method = "GET"
	users.ParentURL = start
	r.AddEndpoint(users)

	detail := model.NewEndpoint(start+"/users/1", 3)
	detail.Rel = "detail"
	detail.ParentURL = start + "/users"
	r.AddEndpoint(detail)

	r.Stats.URLsProcessed = 3
	r.Stats.SuccessfulRequests = 3
	r.Stats.MaxDepthReached = 2
	r.Complete()

	return r
}

// TestJSONWriterFlat tests the default flat view.
func TestJSONWriterFlat(t *testing.T) {
	t.Parallel()

	t.Run("round-trips through the model", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		n, err := w.Write(sampleResult())
		if err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected reported byte count %d to match buffer %d", n, buf.Len())
		}

		var decoded model.CrawlResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.StartURL != "https://api.example.com" {
			t.Errorf("unexpected start URL %q", decoded.StartURL)
		}
		if len(decoded.Endpoints) != 3 {
			t.Errorf("expected 3 endpoints, got %d", len(decoded.Endpoints))
		}
		if decoded.Stats.URLsProcessed != 3 {
			t.Errorf("expected stats preserved, got %+v", decoded.Stats)
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(sampleResult()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("without stats omits counters", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithoutStats())

		if _, err := w.Write(sampleResult()); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if strings.Contains(buf.String(), "urls_processed") {
			t.Error("expected stats counters omitted")
		}
	})
}

// TestJSONWriterHierarchical tests the one-level grouped view.
func TestJSONWriterHierarchical(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithView(ViewHierarchical))

	if _, err := w.Write(sampleResult()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	hierarchy, ok := doc["endpoint_hierarchy"].(map[string]any)
	if !ok {
		t.Fatalf("expected an endpoint_hierarchy object, got %T", doc["endpoint_hierarchy"])
	}
	rootChildren, ok := hierarchy["https://api.example.com"].([]any)
	if !ok || len(rootChildren) != 2 {
		t.Errorf("expected 2 children under the start URL, got %v", hierarchy["https://api.example.com"])
	}
	if _, ok := doc["stats"]; !ok {
		t.Error("expected stats in the envelope")
	}
}

// TestJSONWriterTree tests the nested tree view.
func TestJSONWriterTree(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewJSONWriter(&buf, WithView(ViewTree))

	if _, err := w.Write(sampleResult()); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	root, ok := doc["api_tree"].(map[string]any)
	if !ok {
		t.Fatalf("expected an api_tree object, got %T", doc["api_tree"])
	}
	api, ok := root["api"].(map[string]any)
	if !ok || api["url"] != "https://api.example.com" {
		t.Errorf("expected the start URL at the root, got %v", root["api"])
	}
	children, ok := root["children"].([]any)
	if !ok || len(children) != 1 {
		t.Fatalf("expected one child under the root, got %v", root["children"])
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&a), NewTextWriter(&b))

	total, err := mw.Write(sampleResult())
	if err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if total != a.Len()+b.Len() {
		t.Errorf("expected total %d, got %d", a.Len()+b.Len(), total)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
