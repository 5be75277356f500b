package model

import "testing"

// TestNewEndpoint tests endpoint construction.
func TestNewEndpoint(t *testing.T) {
	t.Parallel()

	e := NewEndpoint("https://api.example.com/users", 2)

	if e.Href != "https://api.example.com/users" {
		t.Errorf("expected href to be set, got %q", e.Href)
	}
	if e.Depth != 2 {
		t.Errorf("expected depth 2, got %d", e.Depth)
	}
	if e.Rel != "" || e.Method != "" || e.ContentType != "" || e.Title != "" {
		t.Error("expected optional fields to be empty")
	}
	if e.Metadata != nil {
		t.Error("expected no metadata map until first SetMetadata call")
	}
}

// TestEndpointSetMetadata tests that promoted link-object keys never land in
// the metadata map.
func TestEndpointSetMetadata(t *testing.T) {
	t.Parallel()

	t.Run("stores unknown keys", func(t *testing.T) {
		t.Parallel()

		e := NewEndpoint("/users", 1)
		e.SetMetadata("templated", true)
		e.SetMetadata("deprecation", "2027-01-01")

		if len(e.Metadata) != 2 {
			t.Fatalf("expected 2 metadata entries, got %d", len(e.Metadata))
		}
		if e.Metadata["templated"] != true {
			t.Errorf("expected templated=true, got %v", e.Metadata["templated"])
		}
	})

	t.Run("refuses promoted keys", func(t *testing.T) {
		t.Parallel()

		e := NewEndpoint("/users", 1)
		for _, key := range []string{KeyHref, KeyRel, KeyMethod, KeyType, KeyTitle} {
			e.SetMetadata(key, "value")
		}

		if len(e.Metadata) != 0 {
			t.Errorf("expected promoted keys to be refused, got %v", e.Metadata)
		}
	})
}

// TestEndpointShouldCrawl tests traversal eligibility.
func TestEndpointShouldCrawl(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rel  string
		want bool
	}{
		{name: "self link is never followed", rel: RelSelf, want: false},
		{name: "next link is followed", rel: "next", want: true},
		{name: "related link is followed", rel: "related", want: true},
		{name: "absent relation is followed", rel: "", want: true},
		{name: "unknown relation is followed", rel: "unknown", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEndpoint("/anything", 1)
			e.Rel = tt.rel
			if got := e.ShouldCrawl(); got != tt.want {
				t.Errorf("ShouldCrawl() with rel=%q = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}
