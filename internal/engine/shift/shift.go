package shift

import (
	"github.com/dshills/marginalia/internal/engine/diff"
)

// Span is an absolute range [Start, End) with an attached value.
type Span[T any] struct {
	Start int
	End   int

	// Backward records the direction of the selection the span was
	// resolved from, so it can be rebuilt the same way.
	Backward bool

	Data T
}

// Len returns the number of characters covered by the span.
func (s Span[T]) Len() int {
	return s.End - s.Start
}

// Shift applies a change of n characters at offset to spans.
// A positive n is an insertion and a negative n a deletion of -n
// characters starting at offset. Dropped spans are omitted from the
// result.
func Shift[T any](spans []Span[T], n, offset int) []Span[T] {
	out := make([]Span[T], 0, len(spans))
	for _, s := range spans {
		if covered(s, n, offset) {
			continue
		}
		if s.Start >= offset {
			s.Start += delta(s.Start, n, offset)
		}
		if s.End > offset {
			s.End += delta(s.End, n, offset)
		}
		if s.Start > s.End {
			s.End = s.Start
		}
		out = append(out, s)
	}
	return out
}

// covered reports whether a deletion of -n characters at offset removes
// every character of s.
func covered[T any](s Span[T], n, offset int) bool {
	if n >= 0 {
		return false
	}
	end := offset - n
	return s.Start >= offset && s.Start <= end && s.End > offset && s.End <= end
}

// delta returns how far pos moves for a change of n at offset. A position
// inside a deleted run collapses to offset.
func delta(pos, n, offset int) int {
	if n < 0 && pos <= offset-n {
		return offset - pos
	}
	return n
}

// Walk moves spans through the edits described by ops.
//
// Equal runs advance the offset. Insert runs shift by their length and
// then advance. Delete runs shift by the negated length and leave the
// offset where it is, because the deleted text no longer exists.
func Walk[T any](spans []Span[T], ops []diff.Op) []Span[T] {
	out := append([]Span[T](nil), spans...)
	offset := 0
	for _, op := range ops {
		if len(out) == 0 {
			break
		}
		switch op.Type {
		case diff.Equal:
			offset += op.Len
		case diff.Insert:
			out = Shift(out, op.Len, offset)
			offset += op.Len
		case diff.Delete:
			out = Shift(out, -op.Len, offset)
		}
	}
	return out
}
