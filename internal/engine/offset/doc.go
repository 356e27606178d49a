// Package offset converts between block-relative positions and absolute
// character offsets in the flattened document text.
//
// The flattened text joins every block with a fixed two character
// separator ("\r\n"). Absolute offsets count the separators, so the first
// character of block i sits at
//
//	sum(len(block j) + SeparatorLen, j < i)
//
// The same separator must be used for every text that is compared or
// diffed, otherwise offsets drift by two per block boundary.
//
// Resolution never panics. A position that cannot be resolved is clamped
// to the nearest valid position and reported through a non-nil error
// (ErrBlockNotFound or ErrOffsetOutOfRange) so callers can log the
// diagnostic and keep going.
package offset
