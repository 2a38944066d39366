// Package flow provides the field catalog for a flow definition: nodes,
// the fields they expose downstream, and the declared structural edges
// between nodes.
//
// # Overview
//
// Flowlens infers field-level data lineage from free-text formulas. The
// catalog is the substrate for that inference: each [Node] owns an ordered
// set of [Field] values, and each [Edge] declares a node-to-node adjacency
// that scopes where links may be inferred.
//
// # Field Ordering
//
// Field order is significant. The catalog builder inserts output fields
// first, then pass-through fields, then explicitly selected fields, and the
// lineage inferrer walks source fields in exactly that order. When a target
// formula matches several source fields, every match is recorded as a
// [Link], but the [Field.Source] annotation keeps only the last match
// evaluated. Both views are deliberately preserved; see the package
// documentation of [lineage] for the rationale.
//
// # Basic Usage
//
//	f := flow.New()
//	n := flow.NewNode("1", "Load customers", "source")
//	n.SetField("customer_id", "")
//	f.AddNode(n)
//
// Structural edges may only connect catalogued nodes; [Flow.AddEdge] fails
// fast on edges that reference missing or exception-filtered nodes rather
// than silently dropping them.
//
// [lineage]: github.com/flowlens/flowlens/pkg/lineage
package flow
