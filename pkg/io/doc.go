// Package io imports flow definition documents and builds the field
// catalog they describe.
//
// The on-disk format is a JSON document with a top-level "flow" collection;
// only the first flow is consumed. See [ReadJSON] for the exact shape and
// the field collection rules. Malformed documents, missing required keys,
// and edges referencing unknown nodes are all fatal import errors - no
// partial catalog is ever returned.
package io
