package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/flowlens/flowlens/pkg/cache"
	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/render/document"
)

// writeFlow writes a flow definition to a temp file and returns its path.
func writeFlow(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const twoNodeDoc = `{
  "flow": [{
    "nodes": [
      {"alias": "1", "name": "Node1", "node_type__alias": "source",
       "data": {"output": [{"alias": "a", "formula": ""}]}},
      {"alias": "2", "name": "Node2", "node_type__alias": "transform",
       "data": {"output": [{"alias": "b", "formula": "a + 1"}]}}
    ],
    "edges": [{"source": "1", "target": "2"}]
  }]
}`

func TestExecuteTwoNodeLink(t *testing.T) {
	// Two nodes, one structural edge, one formula reference: exactly one
	// link and two single-node level groups.
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{
		Input:   writeFlow(t, twoNodeDoc),
		Formats: []string{FormatHTML, FormatJSON},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.LinkCount != 1 {
		t.Fatalf("LinkCount = %d, want 1", result.Stats.LinkCount)
	}
	want := flow.Link{
		Source: flow.FieldRef{NodeID: "1", FieldAlias: "a"},
		Target: flow.FieldRef{NodeID: "2", FieldAlias: "b"},
	}
	if result.Links[0] != want {
		t.Errorf("Links[0] = %v, want %v", result.Links[0], want)
	}

	wantGroups := [][]string{{"1"}, {"2"}}
	if !slices.EqualFunc(result.Levels.Groups, wantGroups, slices.Equal) {
		t.Errorf("Groups = %v, want %v", result.Levels.Groups, wantGroups)
	}

	if len(result.Artifacts[FormatHTML]) == 0 || len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("missing rendered artifacts")
	}
	if !strings.Contains(string(result.Artifacts[FormatHTML]), `id="flow-data"`) {
		t.Error("HTML artifact missing embedded payload")
	}
}

func TestExecuteNoBoundaryMatch(t *testing.T) {
	// Formula "amax" does not reference "a" at a word boundary: no links,
	// both nodes at level 0.
	doc := strings.Replace(twoNodeDoc, "a + 1", "amax", 1)
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{Input: writeFlow(t, doc)})
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.LinkCount != 0 {
		t.Fatalf("LinkCount = %d, want 0", result.Stats.LinkCount)
	}
	wantGroups := [][]string{{"1", "2"}}
	if !slices.EqualFunc(result.Levels.Groups, wantGroups, slices.Equal) {
		t.Errorf("Groups = %v, want %v", result.Levels.Groups, wantGroups)
	}
}

func TestExecuteCycleReported(t *testing.T) {
	// A->B->C->A at the node level: all three flagged unresolved, run
	// still succeeds with a catch-all final group.
	doc := `{
	  "flow": [{
	    "nodes": [
	      {"alias": "A", "name": "A", "node_type__alias": "transform",
	       "data": {"output": [{"alias": "a", "formula": "c"}]}},
	      {"alias": "B", "name": "B", "node_type__alias": "transform",
	       "data": {"output": [{"alias": "b", "formula": "a"}]}},
	      {"alias": "C", "name": "C", "node_type__alias": "transform",
	       "data": {"output": [{"alias": "c", "formula": "b"}]}}
	    ],
	    "edges": [
	      {"source": "A", "target": "B"},
	      {"source": "B", "target": "C"},
	      {"source": "C", "target": "A"}
	    ]
	  }]
	}`
	runner := NewRunner(nil, nil)
	result, err := runner.Execute(context.Background(), Options{Input: writeFlow(t, doc)})
	if err != nil {
		t.Fatal(err)
	}

	if !result.Levels.HasCycle() {
		t.Fatal("HasCycle() = false, want true")
	}
	if !slices.Equal(result.Levels.Unresolved, []string{"A", "B", "C"}) {
		t.Errorf("Unresolved = %v, want [A B C]", result.Levels.Unresolved)
	}
	last := result.Levels.Groups[len(result.Levels.Groups)-1]
	if !slices.Equal(last, []string{"A", "B", "C"}) {
		t.Errorf("final group = %v, want catch-all [A B C]", last)
	}
}

func TestExecuteHashesRenderedDocument(t *testing.T) {
	// The content hash and the decoded flow come from a single read of the
	// input, so the artifact cached under that hash is the one rendered
	// from those exact bytes.
	path := writeFlow(t, twoNodeDoc)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil)
	opts := Options{Input: path, Formats: []string{FormatHTML}}
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	if result.InputHash != cache.Hash(raw) {
		t.Errorf("InputHash = %s, want hash of the input bytes", result.InputHash)
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	key := cache.ArtifactKey(result.InputHash, opts.artifactKeyOpts(FormatHTML))
	cached, hit, err := c.Get(context.Background(), key)
	if err != nil || !hit {
		t.Fatalf("cache.Get = hit %v, err %v, want stored artifact", hit, err)
	}
	if !bytes.Equal(cached, result.Artifacts[FormatHTML]) {
		t.Error("cached artifact differs from rendered artifact")
	}
}

func TestExecuteMalformedInput(t *testing.T) {
	runner := NewRunner(nil, nil)
	_, err := runner.Execute(context.Background(), Options{Input: writeFlow(t, `{"flow": [`)})
	if err == nil {
		t.Fatal("Execute accepted malformed input")
	}
}

func TestExecuteMissingInput(t *testing.T) {
	runner := NewRunner(nil, nil)
	if _, err := runner.Execute(context.Background(), Options{Input: "no/such/file.json"}); err == nil {
		t.Fatal("Execute accepted missing input file")
	}
}

func TestExecuteArtifactCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil)
	defer runner.Close()

	input := writeFlow(t, twoNodeDoc)
	opts := Options{Input: input, Formats: []string{FormatHTML}}

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.Hits[FormatHTML] {
		t.Error("first run reported a cache hit")
	}

	second, err := runner.Execute(context.Background(), Options{Input: input, Formats: []string{FormatHTML}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.Hits[FormatHTML] {
		t.Error("second run missed the cache")
	}
	if string(first.Artifacts[FormatHTML]) != string(second.Artifacts[FormatHTML]) {
		t.Error("cached artifact differs from rendered artifact")
	}

	// Refresh bypasses the cache.
	third, err := runner.Execute(context.Background(), Options{
		Input: input, Formats: []string{FormatHTML}, Refresh: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.Hits[FormatHTML] {
		t.Error("refresh run reported a cache hit")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("empty options validated")
	}

	opts = Options{Input: "flow.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(opts.Formats, []string{FormatHTML}) {
		t.Errorf("default Formats = %v, want [html]", opts.Formats)
	}
	if opts.Title == "" || opts.CurveOffset == nil || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if *opts.CurveOffset != document.DefaultCurveOffset {
		t.Errorf("CurveOffset = %d, want %d", *opts.CurveOffset, document.DefaultCurveOffset)
	}

	opts = Options{Input: "flow.json", Formats: []string{"gif"}}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("invalid format validated")
	}
}

func TestValidateKeepsExplicitZeroCurveOffset(t *testing.T) {
	zero := 0
	opts := Options{Input: "flow.json", CurveOffset: &zero}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if *opts.CurveOffset != 0 {
		t.Errorf("CurveOffset = %d, explicit 0 must survive validation", *opts.CurveOffset)
	}
	if opts.artifactKeyOpts(FormatHTML).CurveOffset != 0 {
		t.Error("artifact key options dropped the explicit 0 offset")
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatHTML, FormatJSON, FormatDOT, FormatSVG, FormatPNG} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", f, err)
		}
	}
	if err := ValidateFormat("gif"); err == nil {
		t.Error("ValidateFormat accepted gif")
	}
}
