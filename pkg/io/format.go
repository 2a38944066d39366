package io

import (
	"encoding/json"
	"fmt"
)

// document is the top-level shape of a flow definition file. Only the first
// flow in the collection is consumed.
type document struct {
	Flow []rawFlow `json:"flow"`
}

type rawFlow struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

type rawNode struct {
	Alias    ident    `json:"alias"`
	Name     string   `json:"name"`
	NodeType string   `json:"node_type__alias"`
	Data     *rawData `json:"data"`
}

type rawData struct {
	Output   []rawField `json:"output"`
	Inoutput []rawField `json:"inoutput"`
	Fields   []rawField `json:"fields"`
}

type rawField struct {
	Alias   string `json:"alias"`
	Formula string `json:"formula"`
	Select  truthy `json:"select"`
}

type rawEdge struct {
	Source ident `json:"source"`
	Target ident `json:"target"`
}

// ident accepts a JSON string or number and normalizes it to its string
// form. Flow exports are inconsistent about alias types: node aliases are
// often numeric while edges reference them as strings, or vice versa.
type ident string

func (id *ident) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty identifier")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ident(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = ident(n.String())
	return nil
}

// truthy accepts a JSON bool, number, or string and reports whether the
// value is truthy. Select flags appear as true, 1, or "1" in the wild.
type truthy bool

func (t *truthy) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case bool:
		*t = truthy(val)
	case float64:
		*t = val != 0
	case string:
		*t = val != ""
	case nil:
		*t = false
	default:
		return fmt.Errorf("select flag must be a bool, number, or string")
	}
	return nil
}
