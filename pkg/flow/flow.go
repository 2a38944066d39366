package flow

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Flow.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Flow.AddNode] when a node with the
	// same ID already exists in the flow. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Flow.AddEdge] when the edge's
	// source references a node that is not in the catalog. This typically
	// means the input is malformed or the referenced node was filtered out
	// as an exception node.
	ErrUnknownSourceNode = errors.New("edge references unknown source node")

	// ErrUnknownTargetNode is returned by [Flow.AddEdge] when the edge's
	// target references a node that is not in the catalog.
	ErrUnknownTargetNode = errors.New("edge references unknown target node")

	// ErrInvalidFieldAlias is returned by [Node.SetField] when the field
	// alias is empty.
	ErrInvalidFieldAlias = errors.New("field alias must not be empty")
)

// NodeTypeException is the type tag of exception handler nodes. Nodes
// carrying this tag expose no data downstream and are excluded from the
// field catalog entirely.
const NodeTypeException = "exception"

// FieldRef identifies a single field by its owning node and field alias.
// It is the endpoint type for inferred links and the unit of selection in
// the interactive document.
type FieldRef struct {
	NodeID     string `json:"nodeId"`
	FieldAlias string `json:"fieldAlias"`
}

// Key returns the canonical "nodeID|fieldAlias" form used to key adjacency
// indices and to address field rows in the rendered document.
func (r FieldRef) Key() string { return r.NodeID + "|" + r.FieldAlias }

// ParseKey splits a "nodeID|fieldAlias" key back into a FieldRef.
// The second return value is false if the key does not contain a separator.
func ParseKey(key string) (FieldRef, bool) {
	i := strings.IndexByte(key, '|')
	if i < 0 {
		return FieldRef{}, false
	}
	return FieldRef{NodeID: key[:i], FieldAlias: key[i+1:]}, true
}

// Field is a named value slot owned by a node. Formula holds the raw
// expression text scanned during lineage inference; it is empty for fields
// declared without one. Source is the inferred-source annotation: the last
// upstream field whose alias matched this field's formula. It starts nil
// and is overwritten on every match, so when a formula matches several
// source fields only the most recent match is retained here while the full
// link list keeps every match. Callers that need ground truth must use the
// link list; callers that want the legacy single-source view use Source.
type Field struct {
	Alias   string    `json:"-"`
	Formula string    `json:"formula"`
	Source  *FieldRef `json:"source,omitempty"`
}

// Node is a processing unit in the flow. Fields are kept in insertion
// order, which the lineage inferrer relies on: output fields are scanned
// first, then pass-through fields, then selected fields, and the
// last-evaluated match wins the inferred-source annotation.
type Node struct {
	ID   string
	Name string
	Type string

	fields map[string]*Field
	order  []string
}

// NewNode creates a node with an empty field set.
func NewNode(id, name, typ string) *Node {
	return &Node{
		ID:     id,
		Name:   name,
		Type:   typ,
		fields: make(map[string]*Field),
	}
}

// SetField adds a field or, if the alias already exists, overwrites its
// formula in place. An overwritten field keeps its original position in the
// iteration order, matching the catalog precedence rule where later field
// groups replace the formula of earlier ones without reordering.
func (n *Node) SetField(alias, formula string) error {
	if alias == "" {
		return ErrInvalidFieldAlias
	}
	if f, ok := n.fields[alias]; ok {
		f.Formula = formula
		return nil
	}
	n.fields[alias] = &Field{Alias: alias, Formula: formula}
	n.order = append(n.order, alias)
	return nil
}

// Field returns the field with the given alias and true, or nil and false
// if the node has no such field.
func (n *Node) Field(alias string) (*Field, bool) {
	f, ok := n.fields[alias]
	return f, ok
}

// Fields returns the node's fields in insertion order. The returned slice
// holds pointers to the actual fields, so annotation updates are visible
// through it.
func (n *Node) Fields() []*Field {
	fields := make([]*Field, len(n.order))
	for i, alias := range n.order {
		fields[i] = n.fields[alias]
	}
	return fields
}

// FieldAliases returns the field aliases in insertion order.
func (n *Node) FieldAliases() []string {
	aliases := make([]string, len(n.order))
	copy(aliases, n.order)
	return aliases
}

// FieldCount returns the number of fields the node exposes.
func (n *Node) FieldCount() int { return len(n.fields) }

// Edge is a declared node-to-node structural connection. Structural edges
// define the search scope for lineage inference: no field-level link is
// ever inferred between two nodes that lack a structural edge, even on an
// exact textual match.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Link is an inferred field-to-field dependency. Links are derived data,
// never authored directly. Multiple links may share a target (fan-in) or a
// source (fan-out).
type Link struct {
	Source FieldRef `json:"source"`
	Target FieldRef `json:"target"`
}

// Flow is the field catalog for a single flow definition: the surviving
// nodes with their exposed fields, plus the declared structural edges.
//
// The zero value is not usable - use New. Flow is not safe for concurrent
// use without external synchronization.
type Flow struct {
	nodes map[string]*Node
	order []string
	edges []Edge
}

// New creates an empty flow catalog.
func New() *Flow {
	return &Flow{nodes: make(map[string]*Node)}
}

// AddNode adds a node to the catalog. Returns ErrInvalidNodeID for an
// empty ID or ErrDuplicateNodeID if the ID is already taken.
func (f *Flow) AddNode(n *Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := f.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.fields == nil {
		n.fields = make(map[string]*Field)
	}
	f.nodes[n.ID] = n
	f.order = append(f.order, n.ID)
	return nil
}

// AddEdge adds a structural edge between two catalogued nodes. Returns
// ErrUnknownSourceNode or ErrUnknownTargetNode if either endpoint is not in
// the catalog. An edge referencing a filtered exception node fails here:
// silently dropping such edges would hide malformed flows, so the catalog
// rejects them outright.
func (f *Flow) AddEdge(e Edge) error {
	if _, ok := f.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := f.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	f.edges = append(f.edges, e)
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (f *Flow) Node(id string) (*Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (f *Flow) Nodes() []*Node {
	nodes := make([]*Node, len(f.order))
	for i, id := range f.order {
		nodes[i] = f.nodes[id]
	}
	return nodes
}

// NodeIDs returns the node IDs in insertion order.
func (f *Flow) NodeIDs() []string {
	ids := make([]string, len(f.order))
	copy(ids, f.order)
	return ids
}

// Edges returns the structural edges in declaration order.
func (f *Flow) Edges() []Edge {
	edges := make([]Edge, len(f.edges))
	copy(edges, f.edges)
	return edges
}

// NodeCount returns the number of catalogued nodes.
func (f *Flow) NodeCount() int { return len(f.nodes) }

// EdgeCount returns the number of structural edges.
func (f *Flow) EdgeCount() int { return len(f.edges) }
