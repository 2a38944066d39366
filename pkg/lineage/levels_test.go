package lineage

import (
	"slices"
	"testing"

	"github.com/flowlens/flowlens/pkg/flow"
)

func link(srcNode, srcField, tgtNode, tgtField string) flow.Link {
	return flow.Link{
		Source: flow.FieldRef{NodeID: srcNode, FieldAlias: srcField},
		Target: flow.FieldRef{NodeID: tgtNode, FieldAlias: tgtField},
	}
}

func TestAssignLevelsLinearChain(t *testing.T) {
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", "a"}}},
			{"3", []testField{{"c", "b"}}},
		},
		[]flow.Edge{
			{Source: "1", Target: "2"},
			{Source: "2", Target: "3"},
		},
	)
	links := Infer(f)

	levels := AssignLevels(f, links)
	if levels.HasCycle() {
		t.Fatalf("unexpected cycle: %v", levels.Unresolved)
	}
	want := [][]string{{"1"}, {"2"}, {"3"}}
	if !slices.EqualFunc(levels.Groups, want, slices.Equal) {
		t.Errorf("Groups = %v, want %v", levels.Groups, want)
	}
}

func TestAssignLevelsRootsAtZero(t *testing.T) {
	// A node with no inbound links always lands at level 0, even with
	// outbound links, and an isolated node does too.
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", "a"}}},
			{"iso", []testField{{"z", ""}}},
		},
		[]flow.Edge{{Source: "1", Target: "2"}},
	)
	levels := AssignLevels(f, Infer(f))

	for _, id := range []string{"1", "iso"} {
		if lvl, ok := levels.ByNode[id]; !ok || lvl != 0 {
			t.Errorf("ByNode[%q] = %d, %v, want 0, true", id, lvl, ok)
		}
	}
}

func TestAssignLevelsLongestPath(t *testing.T) {
	// Diamond with a long arm: 1->2->3->4 and 1->4. Node 4 must sit at
	// level 3 (longest path), not level 1.
	links := []flow.Link{
		link("1", "a", "2", "b"),
		link("2", "b", "3", "c"),
		link("3", "c", "4", "d"),
		link("1", "a", "4", "d"),
	}
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", ""}}},
			{"3", []testField{{"c", ""}}},
			{"4", []testField{{"d", ""}}},
		},
		nil,
	)

	levels := AssignLevels(f, links)
	if got := levels.ByNode["4"]; got != 3 {
		t.Errorf("ByNode[4] = %d, want 3 (longest path)", got)
	}

	// Every link points strictly forward in level.
	for _, l := range links {
		src, tgt := levels.ByNode[l.Source.NodeID], levels.ByNode[l.Target.NodeID]
		if tgt <= src {
			t.Errorf("link %s->%s: level %d !> %d", l.Source.NodeID, l.Target.NodeID, tgt, src)
		}
	}
}

func TestAssignLevelsParallelLinksCountedPerLink(t *testing.T) {
	// Two field-level links between the same node pair contribute two
	// units of projected in-degree; propagation must still resolve.
	links := []flow.Link{
		link("1", "a", "2", "c"),
		link("1", "b", "2", "d"),
	}
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}, {"b", ""}}},
			{"2", []testField{{"c", ""}, {"d", ""}}},
		},
		nil,
	)

	levels := AssignLevels(f, links)
	if levels.HasCycle() {
		t.Fatalf("unexpected unresolved nodes: %v", levels.Unresolved)
	}
	if got := levels.ByNode["2"]; got != 1 {
		t.Errorf("ByNode[2] = %d, want 1", got)
	}
}

func TestAssignLevelsCycle(t *testing.T) {
	// A->B->C->A: all three are unresolved and land in a final
	// catch-all group instead of crashing or mis-sorting.
	links := []flow.Link{
		link("A", "a", "B", "b"),
		link("B", "b", "C", "c"),
		link("C", "c", "A", "a"),
	}
	f := buildFlow(t,
		[]testNode{
			{"A", []testField{{"a", ""}}},
			{"B", []testField{{"b", ""}}},
			{"C", []testField{{"c", ""}}},
		},
		nil,
	)

	levels := AssignLevels(f, links)
	if !levels.HasCycle() {
		t.Fatal("HasCycle() = false, want true")
	}
	want := []string{"A", "B", "C"}
	if !slices.Equal(levels.Unresolved, want) {
		t.Errorf("Unresolved = %v, want %v", levels.Unresolved, want)
	}
	last := levels.Groups[len(levels.Groups)-1]
	if !slices.Equal(last, want) {
		t.Errorf("final group = %v, want catch-all %v", last, want)
	}
	for _, id := range want {
		if _, ok := levels.ByNode[id]; ok {
			t.Errorf("ByNode contains unresolved node %q", id)
		}
	}
}

func TestAssignLevelsCycleWithResolvedRoot(t *testing.T) {
	// Root feeds a two-node cycle. The root resolves at level 0; the
	// cycle members stay unresolved and are bucketed after it.
	links := []flow.Link{
		link("R", "r", "A", "a"),
		link("A", "a", "B", "b"),
		link("B", "b", "A", "a"),
	}
	f := buildFlow(t,
		[]testNode{
			{"R", []testField{{"r", ""}}},
			{"A", []testField{{"a", ""}}},
			{"B", []testField{{"b", ""}}},
		},
		nil,
	)

	levels := AssignLevels(f, links)
	if got := levels.ByNode["R"]; got != 0 {
		t.Errorf("ByNode[R] = %d, want 0", got)
	}
	if !slices.Equal(levels.Unresolved, []string{"A", "B"}) {
		t.Errorf("Unresolved = %v, want [A B]", levels.Unresolved)
	}
	want := [][]string{{"R"}, {"A", "B"}}
	if !slices.EqualFunc(levels.Groups, want, slices.Equal) {
		t.Errorf("Groups = %v, want %v", levels.Groups, want)
	}
}

func TestAssignLevelsNoLinks(t *testing.T) {
	f := buildFlow(t,
		[]testNode{
			{"1", []testField{{"a", ""}}},
			{"2", []testField{{"b", ""}}},
		},
		nil,
	)

	levels := AssignLevels(f, nil)
	want := [][]string{{"1", "2"}}
	if !slices.EqualFunc(levels.Groups, want, slices.Equal) {
		t.Errorf("Groups = %v, want single level-0 group %v", levels.Groups, want)
	}
}
