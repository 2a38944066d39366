package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/flowlens/flowlens/pkg/flow"
	"github.com/flowlens/flowlens/pkg/lineage"
)

// Payload is the data embedded in the rendered document: the field catalog
// keyed by node ID, the flattened link list, and the ordered level groups.
// The interactive script operates purely on this data; nothing else is
// fetched at interaction time.
type Payload struct {
	Nodes  map[string]NodeView `json:"nodes"`
	Links  []flow.Link         `json:"links"`
	Levels [][]string          `json:"levels"`
}

// NodeView is the serialized form of one catalog node.
type NodeView struct {
	Name     string        `json:"name"`
	Alias    string        `json:"alias"`
	NodeType string        `json:"nodeType"`
	Output   orderedFields `json:"output"`
}

// fieldView is the serialized form of one field: its raw formula and, when
// inference produced one, the last-matched inferred source.
type fieldView struct {
	Formula string         `json:"formula"`
	Source  *flow.FieldRef `json:"source,omitempty"`
}

// orderedFields marshals a field map as a JSON object whose keys appear in
// catalog insertion order. Row order in the document follows key order of
// the parsed object, so alphabetical re-sorting here would scramble the
// node cards.
type orderedFields struct {
	aliases []string
	fields  map[string]fieldView
}

func (o orderedFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, alias := range o.aliases {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(alias)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.fields[alias])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// BuildPayload assembles the embeddable payload from the catalog, the
// inferred link set, and the computed levels. A nil link slice is encoded
// as an empty list so the script never sees null.
func BuildPayload(f *flow.Flow, links []flow.Link, levels lineage.Levels) Payload {
	nodes := make(map[string]NodeView, f.NodeCount())
	for _, n := range f.Nodes() {
		view := NodeView{
			Name:     n.Name,
			Alias:    n.ID,
			NodeType: n.Type,
			Output: orderedFields{
				aliases: n.FieldAliases(),
				fields:  make(map[string]fieldView, n.FieldCount()),
			},
		}
		for _, fld := range n.Fields() {
			view.Output.fields[fld.Alias] = fieldView{
				Formula: fld.Formula,
				Source:  fld.Source,
			}
		}
		nodes[n.ID] = view
	}

	if links == nil {
		links = []flow.Link{}
	}
	groups := levels.Groups
	if groups == nil {
		groups = [][]string{}
	}

	return Payload{Nodes: nodes, Links: links, Levels: groups}
}

// RenderJSON serializes the payload as an indented standalone JSON
// artifact, for consumers that want the lineage data without the document.
func RenderJSON(p Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return buf.Bytes(), nil
}
