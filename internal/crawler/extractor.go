package crawler

import (
	"strings"

	"github.com/restmap/restmap/internal/model"
)

// relUnknown is the relation assigned to JSON:API link array entries that
// carry no "rel" member of their own.
const relUnknown = "unknown"

// metaSourceField is the metadata key recording which object member a
// URL-shaped heuristic match came from.
const metaSourceField = "source_field"

// extractEndpoints scans a decoded JSON document for candidate endpoints.
//
// All endpoints produced from one parent response share depth parentDepth+1
// and the parent's URL, no matter how deeply nested the originating field is.
// The scan rules are additive: the same field may be matched by more than one
// rule, intentionally producing duplicate records. Deduplication is deferred
// to enqueue time (visited set) and to tree reconstruction, where richer
// tie-breaking is available.
//
// The function never fails. Structurally unexpected shapes are skipped and
// simply produce fewer endpoints.
//
// Design decision: nesting is walked with an explicit worklist rather than
// call-stack recursion so that deeply nested or adversarial documents cannot
// exhaust the stack.
func extractEndpoints(doc any, parentURL string, parentDepth int) []*model.Endpoint {
	var endpoints []*model.Endpoint
	depth := parentDepth + 1

	work := make([]any, 0, 8)
	switch v := doc.(type) {
	case map[string]any:
		work = append(work, v)
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				work = append(work, obj)
			}
		}
	}

	for len(work) > 0 {
		obj, ok := work[len(work)-1].(map[string]any)
		work = work[:len(work)-1]
		if !ok {
			continue
		}

		// HAL-style links under "_links".
		if links, ok := obj["_links"].(map[string]any); ok {
			for rel, entry := range links {
				endpoints = appendLinkEntry(endpoints, rel, entry, parentURL, depth)
			}
		}

		// JSON:API-style links under "links". The object form mirrors HAL;
		// the array form tags each link object with its own "rel" member.
		switch links := obj["links"].(type) {
		case map[string]any:
			for rel, entry := range links {
				endpoints = appendLinkEntry(endpoints, rel, entry, parentURL, depth)
			}
		case []any:
			for _, item := range links {
				linkObj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				rel := relUnknown
				if s, ok := linkObj[model.KeyRel].(string); ok {
					rel = s
				}
				endpoints = appendLinkEntry(endpoints, rel, linkObj, parentURL, depth)
			}
		}

		// Direct href members anywhere in the document, link container or not.
		if href, ok := obj[model.KeyHref].(string); ok {
			e := model.NewEndpoint(href, depth)
			e.ParentURL = parentURL
			if rel, ok := obj[model.KeyRel].(string); ok {
				e.Rel = rel
			}
			setPromotedFields(e, obj)
			setMetadata(e, obj)
			endpoints = append(endpoints, e)
		}

		// URL-shaped heuristic fields: key names that suggest a link, with
		// string values that look like a URL.
		for key, value := range obj {
			if !looksLikeURLKey(key) {
				continue
			}
			s, ok := value.(string)
			if !ok || !looksLikeURL(s) {
				continue
			}
			e := model.NewEndpoint(s, depth)
			e.ParentURL = parentURL
			e.SetMetadata(metaSourceField, key)
			endpoints = append(endpoints, e)
		}

		// Every nested object and array is scanned by the same rule set,
		// regardless of whether it already matched a rule above.
		for _, value := range obj {
			switch v := value.(type) {
			case map[string]any:
				work = append(work, v)
			case []any:
				for _, item := range v {
					if nested, ok := item.(map[string]any); ok {
						work = append(work, nested)
					}
				}
			}
		}
	}

	return endpoints
}

// appendLinkEntry processes one link entry under a given relation.
// An entry may be a bare string href, a link object with at least "href",
// or an array of either; anything else is skipped.
func appendLinkEntry(endpoints []*model.Endpoint, rel string, entry any, parentURL string, depth int) []*model.Endpoint {
	switch v := entry.(type) {
	case string:
		e := model.NewEndpoint(v, depth)
		e.Rel = rel
		e.ParentURL = parentURL
		endpoints = append(endpoints, e)
	case map[string]any:
		href, ok := v[model.KeyHref].(string)
		if !ok {
			return endpoints
		}
		e := model.NewEndpoint(href, depth)
		e.Rel = rel
		e.ParentURL = parentURL
		setPromotedFields(e, v)
		setMetadata(e, v)
		endpoints = append(endpoints, e)
	case []any:
		for _, item := range v {
			endpoints = appendLinkEntry(endpoints, rel, item, parentURL, depth)
		}
	}
	return endpoints
}

// setPromotedFields copies the recognized link-object members onto the
// endpoint's dedicated fields.
func setPromotedFields(e *model.Endpoint, obj map[string]any) {
	if method, ok := obj[model.KeyMethod].(string); ok {
		e.Method = method
	}
	if contentType, ok := obj[model.KeyType].(string); ok {
		e.ContentType = contentType
	}
	if title, ok := obj[model.KeyTitle].(string); ok {
		e.Title = title
	}
}

// setMetadata records every non-promoted member of the link object.
func setMetadata(e *model.Endpoint, obj map[string]any) {
	for key, value := range obj {
		e.SetMetadata(key, value)
	}
}

// looksLikeURLKey reports whether an object member name suggests its value
// is a link: it contains "url" or "uri", or ends with "_link".
func looksLikeURLKey(key string) bool {
	return strings.Contains(key, "url") ||
		strings.Contains(key, "uri") ||
		strings.HasSuffix(key, "_link")
}

// looksLikeURL reports whether a string value is URL-shaped: an absolute
// http(s) URL or an absolute path.
func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "/")
}
