// Package diff computes character-level differences between two texts.
//
// A diff is an ordered list of Op values, each an Equal, Insert or Delete
// run. Walking the list in order, the Equal and Delete runs concatenate
// to the old text and the Equal and Insert runs concatenate to the new
// text. Lengths are counted in characters (runes).
//
// Two engines are provided:
//
//   - DMP: diff-match-patch (github.com/sergi/go-diff) with the time budget
//     disabled, so the same inputs always produce the same ops.
//   - Myers: a plain Myers O(ND) diff over runes. Inputs whose trace would
//     exceed the configured memory budget are handed to DMP instead.
//
// Both engines coalesce adjacent runs of the same type and never emit
// empty runs.
//
//	eng, _ := diff.New(diff.AlgorithmDMP, diff.DefaultOptions())
//	ops := eng.Diff("hello world", "hello big world")
//	// [{equal "hello "} {insert "big "} {equal "world"}]
package diff
