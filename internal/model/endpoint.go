package model

// Well-known link object member names. When any of these appear in a link
// object they are promoted to dedicated Endpoint fields and must never be
// duplicated into Metadata.
const (
	// KeyHref is the link target member.
	KeyHref = "href"

	// KeyRel is the link relation member.
	KeyRel = "rel"

	// KeyMethod is the HTTP method hint member.
	KeyMethod = "method"

	// KeyType is the content type hint member.
	KeyType = "type"

	// KeyTitle is the human-readable title member.
	KeyTitle = "title"
)

// RelSelf is the link relation that describes the resource it appears in.
// Self links are recorded but never followed, because fetching them would
// immediately re-visit the page that produced them.
const RelSelf = "self"

// Endpoint represents a single API endpoint discovered during crawling.
//
// Design decision: Rel, Method, ContentType, and Title are plain strings with
// "" meaning absent rather than pointers. The JSON encoding (omitempty) is
// identical, callers never need nil checks, and none of these fields has a
// meaningful empty-string value distinct from absence.
type Endpoint struct {
	// Href is the URL of the endpoint. Always present.
	Href string `json:"href"`

	// Rel is the link relation (e.g., "self", "next", "related").
	Rel string `json:"rel,omitempty"`

	// Method is the HTTP method hint, if the link object carried one.
	Method string `json:"method,omitempty"`

	// ContentType is the content type hint from the link object's "type" member.
	ContentType string `json:"type,omitempty"`

	// Title is a human-readable description, if available.
	Title string `json:"title,omitempty"`

	// Depth is the BFS level at which this endpoint was discovered.
	// Endpoints extracted from a response fetched at depth N have depth N+1.
	Depth int `json:"depth"`

	// ParentURL is the URL whose response produced this endpoint.
	ParentURL string `json:"parent_url,omitempty"`

	// Metadata holds every other member of the source link object.
	// It never contains the href/rel/method/type/title keys; those are
	// always promoted to the dedicated fields above.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewEndpoint creates an Endpoint with the required fields.
func NewEndpoint(href string, depth int) *Endpoint {
	return &Endpoint{
		Href:  href,
		Depth: depth,
	}
}

// SetMetadata records a metadata key, silently refusing the promoted
// link-object keys so the Metadata invariant holds no matter what the
// caller passes in.
func (e *Endpoint) SetMetadata(key string, value any) {
	switch key {
	case KeyHref, KeyRel, KeyMethod, KeyType, KeyTitle:
		return
	}
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
}

// ShouldCrawl reports whether the endpoint is eligible for traversal.
// Only "self" links are excluded: they describe the resource that produced
// them. Every other relation, including an absent one, is assumed navigable.
func (e *Endpoint) ShouldCrawl() bool {
	return e.Rel != RelSelf
}
