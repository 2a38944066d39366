// Package document renders the field catalog, link set, and level groups
// into a single self-contained interactive HTML artifact.
//
// The page skeleton is built with gomponents; the stylesheet, the
// interactive script, and the JSON payload are embedded inline, so the
// artifact renders and responds to clicks with no external resources.
// Clicking a field row highlights its full ancestor and descendant closure
// together with every connector whose endpoints both lie in it.
//
// [RenderJSON] emits the same payload as a standalone JSON artifact for
// consumers that only want the data.
package document
