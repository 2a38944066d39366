// Package lineage derives field-level data lineage from a flow catalog and
// computes the layering and reachability views built on top of it.
//
// # Overview
//
// The package covers three stages that run as one sequential batch pass:
//
//   - [Infer] scans target formulas for whole-token occurrences of upstream
//     field aliases, scoped by the declared structural edges, and emits the
//     field-to-field link set.
//   - [AssignLevels] projects the links to node adjacency and computes a
//     longest-path layering for layout columns, reporting cycle members
//     explicitly instead of mis-sorting them.
//   - [Graph] and [Selection] answer interactive reachability queries: the
//     full ancestor and descendant closure of a selected field.
//
// # Inference Is Lexical
//
// Formulas are never parsed or executed. A match is a literal, word-boundary
// token occurrence and nothing more - no scoping, no semantics, no pattern
// syntax. See [ContainsToken].
//
// # Annotation vs. Link Set
//
// Each matched target field carries a single inferred-source annotation that
// is overwritten per match, while the link set records every match. The two
// views diverge whenever a formula references several same-scoped source
// fields. This package preserves both: the link set is ground truth for
// traversal and rendering, the annotation a one-source summary for callers
// that want it. Collapsing them would silently change observable behavior,
// so it is left to callers to pick a view.
package lineage
