package lineage

import "github.com/flowlens/flowlens/pkg/flow"

// Infer derives field-to-field links from the catalog's formulas.
//
// For every structural edge (source node, target node) and every pair of
// (target field, source field), Infer tests whether the source field's
// alias occurs in the target field's formula as a whole token (see
// [ContainsToken]). Each match emits a link; the link order follows edge
// declaration order, then target field order, then source field order.
//
// Structural edges are a hard scope: fields of two nodes without a declared
// edge never link, even on an exact textual match. This keeps inference at
// O(edges x fields^2) instead of comparing every node against every other.
//
// Infer also maintains the per-field inferred-source annotation: every
// match overwrites [flow.Field.Source] on the target field, so after
// inference the annotation holds the last match evaluated. When a formula
// matches more than one source field the annotation and the link list
// diverge by construction - the link list is the complete record, the
// annotation a single-source summary. Infer keeps both views rather than
// collapsing one into the other.
//
// A field with an empty formula never matches as a target but can still
// appear as the source of any number of links.
func Infer(f *flow.Flow) []flow.Link {
	var links []flow.Link

	for _, e := range f.Edges() {
		src, ok := f.Node(e.Source)
		if !ok {
			continue
		}
		tgt, ok := f.Node(e.Target)
		if !ok {
			continue
		}

		for _, tf := range tgt.Fields() {
			if tf.Formula == "" {
				continue
			}
			for _, sf := range src.Fields() {
				if !ContainsToken(tf.Formula, sf.Alias) {
					continue
				}
				ref := flow.FieldRef{NodeID: src.ID, FieldAlias: sf.Alias}
				tf.Source = &ref
				links = append(links, flow.Link{
					Source: ref,
					Target: flow.FieldRef{NodeID: tgt.ID, FieldAlias: tf.Alias},
				})
			}
		}
	}

	return links
}
