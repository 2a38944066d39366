// Package dot exports the node-level projection of the lineage graph as
// Graphviz DOT and renders it to SVG or PNG. It is the coarse companion to
// the interactive field-level document: one box per node, one edge per
// linked node pair.
package dot
