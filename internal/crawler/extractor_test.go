package crawler

import (
	"encoding/json"
	"testing"

	"github.com/restmap/restmap/internal/model"
)

// decodeJSON is a test helper that parses a JSON literal into a generic value.
func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return doc
}

// byHref indexes extracted endpoints for assertions that must not depend on
// map iteration order.
func byHref(endpoints []*model.Endpoint) map[string][]*model.Endpoint {
	out := make(map[string][]*model.Endpoint)
	for _, e := range endpoints {
		out[e.Href] = append(out[e.Href], e)
	}
	return out
}

// TestExtractEndpointsHAL tests extraction of HAL-style _links.
func TestExtractEndpointsHAL(t *testing.T) {
	t.Parallel()

	t.Run("extracts link objects, strings, and arrays", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"_links": {
				"self": {"href": "/a"},
				"next": {"href": "/b"},
				"items": [{"href": "/c"}, {"href": "/d"}]
			}
		}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		if len(endpoints) < 4 {
			t.Fatalf("expected at least 4 endpoints, got %d", len(endpoints))
		}

		selfCount := 0
		for _, e := range endpoints {
			if e.Depth != 1 {
				t.Errorf("expected every endpoint at depth 1, got %d for %s", e.Depth, e.Href)
			}
			if e.ParentURL != "https://api.example.com" {
				t.Errorf("expected parent URL on %s, got %q", e.Href, e.ParentURL)
			}
			if e.Rel == model.RelSelf {
				selfCount++
				if e.ShouldCrawl() {
					t.Error("expected the self link to fail ShouldCrawl")
				}
			}
		}
		if selfCount != 1 {
			t.Errorf("expected exactly one self relation, got %d", selfCount)
		}

		index := byHref(endpoints)
		for _, href := range []string{"/a", "/b", "/c", "/d"} {
			if len(index[href]) == 0 {
				t.Errorf("expected an endpoint for %s", href)
			}
		}
	})

	t.Run("string entries are hrefs", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{"_links": {"docs": "https://docs.example.com/api"}}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		if len(endpoints) != 1 {
			t.Fatalf("expected 1 endpoint, got %d", len(endpoints))
		}
		if endpoints[0].Href != "https://docs.example.com/api" {
			t.Errorf("unexpected href %q", endpoints[0].Href)
		}
		if endpoints[0].Rel != "docs" {
			t.Errorf("expected rel from relation key, got %q", endpoints[0].Rel)
		}
	})

	t.Run("promotes recognized members and keeps the rest as metadata", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"_links": {
				"create": {
					"href": "/users",
					"method": "POST",
					"type": "application/json",
					"title": "Create a user",
					"templated": false,
					"deprecation": "2027-01-01"
				}
			}
		}`)

		// Recursion also visits the link object, so pick the record the HAL
		// rule tagged with its relation.
		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		var e *model.Endpoint
		for _, candidate := range endpoints {
			if candidate.Rel == "create" {
				e = candidate
			}
		}
		if e == nil {
			t.Fatalf("expected a rel=create endpoint, got %v", endpoints)
		}

		if e.Method != "POST" {
			t.Errorf("expected method POST, got %q", e.Method)
		}
		if e.ContentType != "application/json" {
			t.Errorf("expected content type promoted, got %q", e.ContentType)
		}
		if e.Title != "Create a user" {
			t.Errorf("expected title promoted, got %q", e.Title)
		}
		if len(e.Metadata) != 2 {
			t.Fatalf("expected 2 metadata entries, got %v", e.Metadata)
		}
		for _, key := range []string{model.KeyHref, model.KeyRel, model.KeyMethod, model.KeyType, model.KeyTitle} {
			if _, ok := e.Metadata[key]; ok {
				t.Errorf("expected promoted key %q to stay out of metadata", key)
			}
		}
	})
}

// TestExtractEndpointsJSONAPI tests extraction of JSON:API-style links.
func TestExtractEndpointsJSONAPI(t *testing.T) {
	t.Parallel()

	t.Run("object form mirrors HAL", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"links": {
				"self": "/articles?page=2",
				"next": "/articles?page=3"
			}
		}`)

		endpoints := extractEndpoints(doc, "https://api.example.com/articles", 0)
		index := byHref(endpoints)
		if len(index["/articles?page=2"]) == 0 || len(index["/articles?page=3"]) == 0 {
			t.Fatalf("expected both pagination links, got %v", index)
		}
	})

	t.Run("array form uses each entry's rel", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"links": [
				{"href": "/orders", "rel": "orders"},
				{"href": "/invoices"}
			]
		}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		index := byHref(endpoints)

		found := false
		for _, e := range index["/orders"] {
			if e.Rel == "orders" {
				found = true
			}
		}
		if !found {
			t.Error("expected /orders tagged with its own rel")
		}

		found = false
		for _, e := range index["/invoices"] {
			if e.Rel == relUnknown {
				found = true
			}
		}
		if !found {
			t.Errorf("expected /invoices to default to rel %q", relUnknown)
		}
	})
}

// TestExtractEndpointsDirectHref tests the direct href rule outside link
// containers.
func TestExtractEndpointsDirectHref(t *testing.T) {
	t.Parallel()

	doc := decodeJSON(t, `{
		"name": "user-42",
		"href": "/users/42",
		"rel": "user",
		"method": "GET",
		"active": true
	}`)

	endpoints := extractEndpoints(doc, "https://api.example.com", 1)
	if len(endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(endpoints))
	}

	e := endpoints[0]
	if e.Href != "/users/42" || e.Rel != "user" || e.Method != "GET" {
		t.Errorf("unexpected endpoint %+v", e)
	}
	if e.Depth != 2 {
		t.Errorf("expected depth 2 from a depth-1 parent, got %d", e.Depth)
	}
	if e.Metadata["name"] != "user-42" || e.Metadata["active"] != true {
		t.Errorf("expected sibling keys in metadata, got %v", e.Metadata)
	}
}

// TestExtractEndpointsURLShapedKeys tests the heuristic key rule.
func TestExtractEndpointsURLShapedKeys(t *testing.T) {
	t.Parallel()

	t.Run("matches url, uri, and _link keys", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"avatar_url": "https://cdn.example.com/a.png",
			"details_uri": "/users/42/details",
			"profile_link": "/users/42/profile",
			"note": "not a link"
		}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		if len(endpoints) != 3 {
			t.Fatalf("expected 3 endpoints, got %d", len(endpoints))
		}

		index := byHref(endpoints)
		matched := index["https://cdn.example.com/a.png"]
		if len(matched) != 1 {
			t.Fatalf("expected avatar_url endpoint, got %v", index)
		}
		if matched[0].Metadata[metaSourceField] != "avatar_url" {
			t.Errorf("expected source_field metadata, got %v", matched[0].Metadata)
		}
		if matched[0].Rel != "" {
			t.Errorf("expected no relation on heuristic matches, got %q", matched[0].Rel)
		}
	})

	t.Run("ignores non-URL-shaped values", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"callback_url": "not-a-url",
			"retry_url": 42,
			"homepage_uri": "ftp://example.com/files"
		}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		if len(endpoints) != 0 {
			t.Errorf("expected no endpoints, got %d", len(endpoints))
		}
	})
}

// TestExtractEndpointsRecursion tests that nesting anywhere in the document
// is scanned, including inside arrays and already-matched containers.
func TestExtractEndpointsRecursion(t *testing.T) {
	t.Parallel()

	t.Run("walks nested objects and arrays", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `{
			"data": {
				"items": [
					{"attributes": {"href": "/deep/1"}},
					{"attributes": {"href": "/deep/2"}}
				]
			}
		}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		index := byHref(endpoints)
		if len(index["/deep/1"]) == 0 || len(index["/deep/2"]) == 0 {
			t.Fatalf("expected deeply nested hrefs, got %v", index)
		}
	})

	t.Run("top-level arrays are scanned", func(t *testing.T) {
		t.Parallel()

		doc := decodeJSON(t, `[{"href": "/first"}, {"href": "/second"}]`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		if len(endpoints) != 2 {
			t.Fatalf("expected 2 endpoints from a top-level array, got %d", len(endpoints))
		}
	})

	t.Run("overlapping rules produce duplicate records", func(t *testing.T) {
		t.Parallel()

		// The link object under _links also matches the direct-href rule when
		// its object is visited by recursion.
		doc := decodeJSON(t, `{"_links": {"next": {"href": "/page/2"}}}`)

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		index := byHref(endpoints)
		if len(index["/page/2"]) < 2 {
			t.Errorf("expected the same href from both rules, got %d records", len(index["/page/2"]))
		}
	})

	t.Run("survives deep nesting", func(t *testing.T) {
		t.Parallel()

		// Build a document nested far beyond any reasonable call stack depth.
		doc := map[string]any{"href": "/bottom"}
		for range 100000 {
			doc = map[string]any{"wrap": doc}
		}

		endpoints := extractEndpoints(doc, "https://api.example.com", 0)
		if len(endpoints) != 1 {
			t.Fatalf("expected the bottom href, got %d endpoints", len(endpoints))
		}
		if endpoints[0].Href != "/bottom" {
			t.Errorf("unexpected href %q", endpoints[0].Href)
		}
	})

	t.Run("non-object documents yield nothing", func(t *testing.T) {
		t.Parallel()

		for _, fixture := range []string{`"just a string"`, `42`, `null`, `[1, 2, 3]`} {
			doc := decodeJSON(t, fixture)
			if got := extractEndpoints(doc, "https://api.example.com", 0); len(got) != 0 {
				t.Errorf("expected no endpoints from %s, got %d", fixture, len(got))
			}
		}
	})
}
