package lineage

import (
	"testing"

	"github.com/flowlens/flowlens/pkg/flow"
)

// buildFlow constructs a catalog from (nodeID, fields) pairs and edges.
// Fields map alias to formula and are added in the order given.
func buildFlow(t *testing.T, nodes []testNode, edges []flow.Edge) *flow.Flow {
	t.Helper()
	f := flow.New()
	for _, tn := range nodes {
		n := flow.NewNode(tn.id, "Node "+tn.id, "transform")
		for _, tf := range tn.fields {
			if err := n.SetField(tf.alias, tf.formula); err != nil {
				t.Fatalf("SetField(%q): %v", tf.alias, err)
			}
		}
		if err := f.AddNode(n); err != nil {
			t.Fatalf("AddNode(%q): %v", tn.id, err)
		}
	}
	for _, e := range edges {
		if err := f.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s): %v", e.Source, e.Target, err)
		}
	}
	return f
}

type testNode struct {
	id     string
	fields []testField
}

type testField struct {
	alias   string
	formula string
}

func TestInferSingleLink(t *testing.T) {
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", "a + 1"}}},
		},
		[]flow.Edge{{Source: "1", Target: "2"}},
	)

	links := Infer(f)
	if len(links) != 1 {
		t.Fatalf("Infer() returned %d links, want 1", len(links))
	}
	want := flow.Link{
		Source: flow.FieldRef{NodeID: "1", FieldAlias: "a"},
		Target: flow.FieldRef{NodeID: "2", FieldAlias: "b"},
	}
	if links[0] != want {
		t.Errorf("Infer()[0] = %v, want %v", links[0], want)
	}

	n2, _ := f.Node("2")
	b, _ := n2.Field("b")
	if b.Source == nil || *b.Source != want.Source {
		t.Errorf("field b annotation = %v, want %v", b.Source, want.Source)
	}
}

func TestInferNoBoundaryMatch(t *testing.T) {
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", "amax"}}},
		},
		[]flow.Edge{{Source: "1", Target: "2"}},
	)

	if links := Infer(f); len(links) != 0 {
		t.Errorf("Infer() returned %d links for non-boundary match, want 0", len(links))
	}
}

func TestInferScopedByStructuralEdges(t *testing.T) {
	// Exact textual match but no declared edge between the nodes:
	// inference must not link them.
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", "a + 1"}}},
		},
		nil,
	)

	if links := Infer(f); len(links) != 0 {
		t.Errorf("Infer() returned %d links without a structural edge, want 0", len(links))
	}
}

func TestInferEdgeDirectionMatters(t *testing.T) {
	// The edge points 2->1, so node 1's formula is never scanned against
	// node 2's fields in that direction.
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", "b * 2"}}},
			{"2", []testField{{"b", ""}}},
		},
		[]flow.Edge{{Source: "1", Target: "2"}},
	)

	if links := Infer(f); len(links) != 0 {
		t.Errorf("Infer() returned %d links against edge direction, want 0", len(links))
	}
}

func TestInferEmptyFormulaNeverTargets(t *testing.T) {
	// "a" and "b" are legal source aliases but the empty-formula target
	// cannot match anything.
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}, {"b", ""}}},
			{"2", []testField{{"c", ""}}},
		},
		[]flow.Edge{{Source: "1", Target: "2"}},
	)

	if links := Infer(f); len(links) != 0 {
		t.Errorf("Infer() returned %d links for empty formulas, want 0", len(links))
	}
}

func TestInferMultiMatchKeepsAllLinksLastAnnotation(t *testing.T) {
	// Both source fields match the target formula. The link list records
	// both; the annotation keeps only the last one evaluated (source field
	// iteration order).
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}, {"b", ""}}},
			{"2", []testField{{"c", "a + b"}}},
		},
		[]flow.Edge{{Source: "1", Target: "2"}},
	)

	links := Infer(f)
	if len(links) != 2 {
		t.Fatalf("Infer() returned %d links, want 2", len(links))
	}
	if links[0].Source.FieldAlias != "a" || links[1].Source.FieldAlias != "b" {
		t.Errorf("link sources = %q, %q, want a, b (field insertion order)",
			links[0].Source.FieldAlias, links[1].Source.FieldAlias)
	}

	n2, _ := f.Node("2")
	c, _ := n2.Field("c")
	if c.Source == nil || c.Source.FieldAlias != "b" {
		t.Errorf("annotation = %v, want last match b", c.Source)
	}
}

func TestInferFanOut(t *testing.T) {
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", "a"}}},
			{"3", []testField{{"c", "a * 2"}}},
		},
		[]flow.Edge{
			{Source: "1", Target: "2"},
			{Source: "1", Target: "3"},
		},
	)

	links := Infer(f)
	if len(links) != 2 {
		t.Fatalf("Infer() returned %d links, want 2", len(links))
	}
	if links[0].Target.NodeID != "2" || links[1].Target.NodeID != "3" {
		t.Errorf("link targets = %s, %s, want nodes 2, 3 (edge declaration order)",
			links[0].Target.NodeID, links[1].Target.NodeID)
	}
}
