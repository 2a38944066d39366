package lineage

import (
	"slices"

	"github.com/flowlens/flowlens/pkg/flow"
)

// Graph holds forward and backward field adjacency built once from a link
// set, keyed by "nodeID|fieldAlias". It answers reachability queries for
// the interactive highlighter and its terminal counterpart.
//
// Graph is immutable after construction and safe for concurrent reads.
type Graph struct {
	fwd map[string][]string
	bwd map[string][]string
}

// NewGraph builds the adjacency indices from the link set.
func NewGraph(links []flow.Link) *Graph {
	g := &Graph{
		fwd: make(map[string][]string),
		bwd: make(map[string][]string),
	}
	for _, l := range links {
		s, t := l.Source.Key(), l.Target.Key()
		g.fwd[s] = append(g.fwd[s], t)
		g.bwd[t] = append(g.bwd[t], s)
	}
	return g
}

// Selection is the immutable result of selecting a single field: the
// selected key plus the full ancestor and descendant closures computed
// from the adjacency indices. A fresh Selection is computed on every
// selection event; there is no shared mutable highlight state.
type Selection struct {
	// Key is the selected field, in "nodeID|fieldAlias" form.
	Key string

	// Ancestors holds every field reachable by repeated backward
	// traversal from Key, sorted. Key itself is excluded.
	Ancestors []string

	// Descendants holds every field reachable by repeated forward
	// traversal from Key, sorted. Key itself is excluded.
	Descendants []string

	keys map[string]struct{} // ancestors ∪ descendants ∪ {Key}
}

// Select computes the selection result for key. Selecting a field with no
// inbound or outbound links yields empty closures - that is a valid
// selection, not an error - and an unknown key behaves the same way.
func (g *Graph) Select(key string) Selection {
	anc := walk(g.bwd, key)
	desc := walk(g.fwd, key)

	keys := make(map[string]struct{}, len(anc)+len(desc)+1)
	keys[key] = struct{}{}
	for _, k := range anc {
		keys[k] = struct{}{}
	}
	for _, k := range desc {
		keys[k] = struct{}{}
	}

	return Selection{
		Key:         key,
		Ancestors:   anc,
		Descendants: desc,
		keys:        keys,
	}
}

// Contains reports whether key is the selected field or part of either
// closure.
func (s Selection) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Highlights reports whether key should be rendered as highlighted: part
// of the combined closure but not the selected field itself, which gets
// the visually distinct selected treatment instead.
func (s Selection) Highlights(key string) bool {
	return key != s.Key && s.Contains(key)
}

// CoversLink reports whether both endpoints of l lie in the combined
// closure, i.e. whether the connector for l should be highlighted.
func (s Selection) CoversLink(l flow.Link) bool {
	return s.Contains(l.Source.Key()) && s.Contains(l.Target.Key())
}

// walk returns every key reachable from start through adj, excluding start
// itself even when a cycle leads back to it. The traversal is an explicit iterative
// depth-first walk with a visited set, so it terminates on cyclic link
// sets and cannot exhaust the stack on pathological inputs.
func walk(adj map[string][]string, start string) []string {
	visited := map[string]struct{}{start: {}}
	stack := slices.Clone(adj[start])

	var out []string
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		out = append(out, key)
		stack = append(stack, adj[key]...)
	}

	slices.Sort(out)
	return out
}
