package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/lineage"
)

func sampleFlow(t *testing.T) (*flow.Flow, []flow.Link, lineage.Levels) {
	t.Helper()
	f := flow.New()

	n1 := flow.NewNode("1", "Load", "source")
	for _, alias := range []string{"zebra", "apple", "mango"} {
		if err := n1.SetField(alias, ""); err != nil {
			t.Fatal(err)
		}
	}
	n2 := flow.NewNode("2", "Sum", "transform")
	if err := n2.SetField("total", "zebra + apple"); err != nil {
		t.Fatal(err)
	}
	for _, n := range []*flow.Node{n1, n2} {
		if err := f.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.AddEdge(flow.Edge{Source: "1", Target: "2"}); err != nil {
		t.Fatal(err)
	}

	links := lineage.Infer(f)
	levels := lineage.AssignLevels(f, links)
	return f, links, levels
}

func TestBuildPayload(t *testing.T) {
	f, links, levels := sampleFlow(t)
	p := BuildPayload(f, links, levels)

	if len(p.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(p.Nodes))
	}
	if len(p.Links) != 2 {
		t.Fatalf("len(Links) = %d, want 2", len(p.Links))
	}
	if len(p.Levels) != 2 {
		t.Fatalf("len(Levels) = %d, want 2", len(p.Levels))
	}

	n2 := p.Nodes["2"]
	if n2.Name != "Sum" || n2.Alias != "2" || n2.NodeType != "transform" {
		t.Errorf("node 2 view = %+v", n2)
	}
}

func TestBuildPayloadNilInputs(t *testing.T) {
	f := flow.New()
	p := BuildPayload(f, nil, lineage.Levels{})

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if strings.Contains(s, "null") {
		t.Errorf("payload JSON contains null: %s", s)
	}
}

func TestPayloadFieldOrderPreserved(t *testing.T) {
	f, links, levels := sampleFlow(t)
	data, err := json.Marshal(BuildPayload(f, links, levels))
	if err != nil {
		t.Fatal(err)
	}

	// Field keys must appear in catalog insertion order, not sorted:
	// row order in the document follows key order of the parsed object.
	s := string(data)
	zebra := strings.Index(s, `"zebra"`)
	apple := strings.Index(s, `"apple"`)
	mango := strings.Index(s, `"mango"`)
	if zebra < 0 || apple < 0 || mango < 0 {
		t.Fatalf("missing field keys in %s", s)
	}
	if !(zebra < apple && apple < mango) {
		t.Errorf("field keys out of insertion order: zebra@%d apple@%d mango@%d", zebra, apple, mango)
	}
}

func TestPayloadAnnotationAndLinksDiverge(t *testing.T) {
	f, links, levels := sampleFlow(t)
	p := BuildPayload(f, links, levels)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Nodes map[string]struct {
			Output map[string]struct {
				Formula string         `json:"formula"`
				Source  *flow.FieldRef `json:"source"`
			} `json:"output"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	// "total" matched both zebra and apple; annotation keeps the last
	// evaluated match while the link list keeps both.
	total := decoded.Nodes["2"].Output["total"]
	if total.Source == nil || total.Source.FieldAlias != "apple" {
		t.Errorf("annotation = %v, want last match apple", total.Source)
	}
	if len(p.Links) != 2 {
		t.Errorf("link list has %d entries, want both matches", len(p.Links))
	}
}

func TestRenderJSON(t *testing.T) {
	f, links, levels := sampleFlow(t)
	data, err := RenderJSON(BuildPayload(f, links, levels))
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatal("RenderJSON produced invalid JSON")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("RenderJSON output not indented")
	}
}
