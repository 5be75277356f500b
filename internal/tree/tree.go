package tree

import (
	"sort"
	"strings"

	"github.com/restmap/restmap/internal/model"
)

// depthSlack is added to the deepest observed endpoint depth when bounding
// the tree walk. Two extra levels absorb off-by-one parent references
// without letting a malformed parent chain recurse forever.
const depthSlack = 2

// maxTreeDepth is the hard cap on tree nesting regardless of observed depth.
const maxTreeDepth = 64

// EndpointInfo is the per-node endpoint description in the nested tree.
type EndpointInfo struct {
	// Name is the last path segment of the URL.
	Name string `json:"name"`

	// URL is the endpoint href.
	URL string `json:"url"`

	// Rel is the link relation, "unknown" when absent.
	Rel string `json:"rel"`

	// Depth is the BFS level the endpoint was discovered at.
	Depth int `json:"depth"`

	// Method is the HTTP method hint, if any.
	Method string `json:"method,omitempty"`

	// ContentType is the content type hint, if any.
	ContentType string `json:"type,omitempty"`

	// Title is the human-readable title, if any.
	Title string `json:"title,omitempty"`
}

// Node is one node of the nested endpoint tree.
type Node struct {
	// API describes the endpoint at this node.
	API EndpointInfo `json:"api"`

	// Children are the endpoints discovered directly under this one.
	Children []*Node `json:"children,omitempty"`
}

// Tree is the fully nested view of a crawl result.
type Tree struct {
	// StartURL is the seed URL of the crawl.
	StartURL string `json:"start_url"`

	// Root is the chosen root node, nil when no endpoints survived
	// deduplication.
	Root *Node `json:"api_tree"`

	// Orphans are deduplicated endpoints whose claimed parent matches no
	// known href (or that the cycle guard refused to place). They are
	// emitted as additional top-level nodes rather than nested anywhere.
	Orphans []*Node `json:"orphans,omitempty"`

	// Summary holds aggregate counts for the tree.
	Summary Summary `json:"summary"`
}

// Summary holds aggregate counts for a reconstructed view.
type Summary struct {
	// TotalEndpoints is the number of endpoints in the view. For the nested
	// tree this counts deduplicated endpoints; for the hierarchy it counts
	// raw records.
	TotalEndpoints int `json:"total_endpoints"`

	// UniqueParents is the number of distinct parent keys (hierarchy only).
	UniqueParents int `json:"unique_parents,omitempty"`

	// MaxDepth is the deepest endpoint depth observed (tree only).
	MaxDepth int `json:"max_depth,omitempty"`

	// DiscoveredDomains is the number of distinct endpoint hosts.
	DiscoveredDomains int `json:"discovered_domains"`
}

// Hierarchy is the one-level parent → children view of a crawl result.
type Hierarchy struct {
	// StartURL is the seed URL of the crawl.
	StartURL string `json:"start_url"`

	// Parents maps each parent URL to its direct child endpoints in
	// discovery order. Endpoints without a parent are grouped under the
	// start URL.
	Parents map[string][]*model.Endpoint `json:"endpoint_hierarchy"`

	// Summary holds aggregate counts.
	Summary Summary `json:"summary"`
}

// Flatten returns the raw endpoint sequence in discovery order.
func Flatten(result *model.CrawlResult) []*model.Endpoint {
	return result.Endpoints
}

// BuildHierarchy groups endpoints one level deep under their parent URLs.
func BuildHierarchy(result *model.CrawlResult) *Hierarchy {
	parents := make(map[string][]*model.Endpoint)
	for _, e := range result.Endpoints {
		key := e.ParentURL
		if key == "" {
			key = result.StartURL
		}
		parents[key] = append(parents[key], e)
	}

	return &Hierarchy{
		StartURL: result.StartURL,
		Parents:  parents,
		Summary: Summary{
			TotalEndpoints:    len(result.Endpoints),
			UniqueParents:     len(parents),
			DiscoveredDomains: len(result.DiscoveredDomains()),
		},
	}
}

// Build reconstructs the nested endpoint tree from a finished crawl result.
//
// The flat record set may contain duplicates, cycles, and parent references
// to URLs that were never recorded. Reconstruction proceeds in phases:
// deduplicate by href, choose a root, expand children level by level with an
// exact-depth match as the cycle guard, and finally surface never-placed
// records as top-level orphans. Output is deterministic: children are
// ordered by depth, then by the last path segment of the href.
func Build(result *model.CrawlResult) *Tree {
	t := &Tree{StartURL: result.StartURL}

	unique, order := deduplicate(result.Endpoints)
	if len(order) == 0 {
		return t
	}

	maxDepth := 0
	for _, href := range order {
		if d := unique[href].Depth; d > maxDepth {
			maxDepth = d
		}
	}
	t.Summary = Summary{
		TotalEndpoints:    len(order),
		MaxDepth:          maxDepth,
		DiscoveredDomains: len(result.DiscoveredDomains()),
	}

	levelBound := maxDepth + depthSlack
	if levelBound > maxTreeDepth {
		levelBound = maxTreeDepth
	}

	root := chooseRoot(unique, order, result.StartURL)
	placed := map[string]struct{}{root.Href: {}}
	t.Root = buildNode(root, unique, order, placed, levelBound)

	// Anything the walk never reached becomes its own top-level node, with
	// its reachable descendants nested beneath it.
	for _, href := range order {
		if _, ok := placed[href]; ok {
			continue
		}
		placed[href] = struct{}{}
		t.Orphans = append(t.Orphans, buildNode(unique[href], unique, order, placed, levelBound))
	}

	return t
}

// deduplicate collapses records sharing an href. The survivor is the record
// with the larger metadata map; on a tie, a record whose relation is not
// "self" beats one whose relation is. Returned order preserves first
// appearance, which keeps root selection and orphan output deterministic.
func deduplicate(endpoints []*model.Endpoint) (map[string]*model.Endpoint, []string) {
	unique := make(map[string]*model.Endpoint, len(endpoints))
	order := make([]string, 0, len(endpoints))

	for _, e := range endpoints {
		existing, ok := unique[e.Href]
		if !ok {
			unique[e.Href] = e
			order = append(order, e.Href)
			continue
		}
		if len(e.Metadata) > len(existing.Metadata) ||
			(e.Rel != model.RelSelf && existing.Rel == model.RelSelf) {
			unique[e.Href] = e
		}
	}

	return unique, order
}

// chooseRoot picks the tree root from the deduplicated records:
// the start URL's own self link, else any record for the start URL, else the
// shallowest record, else the first in discovery order. The caller
// guarantees at least one record exists.
func chooseRoot(unique map[string]*model.Endpoint, order []string, startURL string) *model.Endpoint {
	for _, href := range order {
		e := unique[href]
		if e.Href == startURL && e.ParentURL == startURL && e.Rel == model.RelSelf {
			return e
		}
	}
	if e, ok := unique[startURL]; ok {
		return e
	}

	shallowest := unique[order[0]]
	for _, href := range order[1:] {
		if e := unique[href]; e.Depth < shallowest.Depth {
			shallowest = e
		}
	}
	return shallowest
}

// buildNode expands one endpoint into a tree node, attaching children whose
// parent is this endpoint's href at exactly the next depth level. The exact
// depth match is the cycle guard: a record can never become a descendant of
// itself through a malformed or cyclic parent chain, because each level of
// nesting must advance the recorded depth by one.
func buildNode(e *model.Endpoint, unique map[string]*model.Endpoint, order []string, placed map[string]struct{}, levels int) *Node {
	node := &Node{API: endpointInfo(e)}
	if levels <= 0 {
		return node
	}

	var children []*model.Endpoint
	for _, href := range order {
		child := unique[href]
		if child.ParentURL != e.Href || child.Href == e.Href {
			continue
		}
		if child.Depth != e.Depth+1 {
			continue
		}
		if _, ok := placed[child.Href]; ok {
			continue
		}
		children = append(children, child)
	}

	sort.SliceStable(children, func(i, j int) bool {
		if children[i].Depth != children[j].Depth {
			return children[i].Depth < children[j].Depth
		}
		return lastSegment(children[i].Href) < lastSegment(children[j].Href)
	})

	for _, child := range children {
		// A child may have been placed by an earlier sibling subtree.
		if _, ok := placed[child.Href]; ok {
			continue
		}
		placed[child.Href] = struct{}{}
		node.Children = append(node.Children, buildNode(child, unique, order, placed, levels-1))
	}

	return node
}

// endpointInfo projects an endpoint into its tree-node description.
func endpointInfo(e *model.Endpoint) EndpointInfo {
	rel := e.Rel
	if rel == "" {
		rel = "unknown"
	}
	return EndpointInfo{
		Name:        lastSegment(e.Href),
		URL:         e.Href,
		Rel:         rel,
		Depth:       e.Depth,
		Method:      e.Method,
		ContentType: e.ContentType,
		Title:       e.Title,
	}
}

// lastSegment returns the final path segment of an href, or the href itself
// when it has no slash.
func lastSegment(href string) string {
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}
