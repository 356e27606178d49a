// Package reposition keeps annotations attached to the text they mark as
// the document is edited.
//
// After every edit the Pipeline compares the flattened text of the old and
// new document, moves each annotation's absolute start and end through the
// diff and rebuilds the range descriptors against the new blocks.
// Annotations whose text was deleted entirely are dropped. The result is
// committed quietly, so the repositioning never becomes an undo step of
// its own.
//
//	p := reposition.New(reposition.WithLogger(logger))
//	next := p.Reposition(before, after)
//
// Only content-changing edits are examined; selection moves, style
// changes, undo and redo pass through untouched.
package reposition
