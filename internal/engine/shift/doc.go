// Package shift moves absolute-offset spans through text edits.
//
// A Span is the transient flat view of an annotation: absolute start and
// end offsets into the flattened document plus the payload it carries.
// Shift applies one signed length change at an offset; Walk applies a
// whole diff, so later operations see the coordinates produced by earlier
// ones.
//
// The policy for a change of n characters at offset, applied per span in
// this order:
//
//  1. A deletion (n < 0) that fully covers the span drops it.
//  2. A start at or after offset moves to offset if it fell inside the
//     deleted run, otherwise it moves by n.
//  3. An end after offset follows the same rule.
//  4. Spans entirely before offset are untouched.
//
// Spans are never modified in place; every call returns a new slice.
package shift
