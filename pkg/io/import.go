package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/flowlens/flowlens/pkg/flow"
)

// ErrNoFlows is returned by [ReadJSON] when the document contains no flow
// definitions at all.
var ErrNoFlows = errors.New("document contains no flow definitions")

// ReadJSON decodes a flow definition document from r and builds the field
// catalog for its first flow.
//
// The input must be a JSON object with a "flow" array; each flow carries
// "nodes" and "edges" arrays:
//
//	{
//	  "flow": [{
//	    "nodes": [
//	      {"alias": 1, "name": "Load", "node_type__alias": "source",
//	       "data": {"output": [{"alias": "amount", "formula": ""}]}}
//	    ],
//	    "edges": [{"source": 1, "target": 2}]
//	  }]
//	}
//
// Node and edge aliases may be JSON strings or numbers; both are normalized
// to strings. Only the first flow in the collection is consumed.
//
// For each node that is not an exception node, fields are collected from
// three groups in precedence order, later groups overwriting the formula of
// earlier ones on alias collision:
//
//  1. output fields - formula text taken verbatim
//  2. inoutput (pass-through) fields - formula synthesized as the field's
//     own alias, making the field matchable as a carrier
//  3. fields marked "select" - formula likewise the field's own alias
//
// Exception nodes are excluded from the catalog entirely. An edge that
// references a missing or excluded node is an input-consistency error:
// ReadJSON fails rather than silently dropping the edge, since a dangling
// edge indicates a malformed flow.
//
// The returned catalog is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*flow.Flow, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(doc.Flow) == 0 {
		return nil, ErrNoFlows
	}
	return buildCatalog(doc.Flow[0])
}

// ImportJSON reads a flow definition file at path and returns the field
// catalog for its first flow.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. Errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*flow.Flow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func buildCatalog(raw rawFlow) (*flow.Flow, error) {
	f := flow.New()

	for _, rn := range raw.Nodes {
		if rn.NodeType == flow.NodeTypeException {
			continue
		}
		if rn.Alias == "" {
			return nil, fmt.Errorf("node %q: %w", rn.Name, flow.ErrInvalidNodeID)
		}
		if rn.Data == nil {
			return nil, fmt.Errorf("node %s: missing data section", rn.Alias)
		}

		n := flow.NewNode(string(rn.Alias), rn.Name, rn.NodeType)
		for _, rf := range rn.Data.Output {
			if err := n.SetField(rf.Alias, rf.Formula); err != nil {
				return nil, fmt.Errorf("node %s output field: %w", n.ID, err)
			}
		}
		for _, rf := range rn.Data.Inoutput {
			if err := n.SetField(rf.Alias, rf.Alias); err != nil {
				return nil, fmt.Errorf("node %s inoutput field: %w", n.ID, err)
			}
		}
		for _, rf := range rn.Data.Fields {
			if !bool(rf.Select) {
				continue
			}
			if err := n.SetField(rf.Alias, rf.Alias); err != nil {
				return nil, fmt.Errorf("node %s selected field: %w", n.ID, err)
			}
		}

		if err := f.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}

	for _, re := range raw.Edges {
		e := flow.Edge{Source: string(re.Source), Target: string(re.Target)}
		if err := f.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	return f, nil
}
