package offset

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/marginalia/internal/engine/document"
)

// Separator joins blocks in the flattened text.
const Separator = "\r\n"

// SeparatorLen is the number of characters each block boundary
// contributes to absolute offsets.
const SeparatorLen = 2

// Position is a block-relative position.
type Position struct {
	Key    string
	Offset int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("%s:%d", p.Key, p.Offset)
}

// Index is the flattened form of a document: its text plus the absolute
// start offset of every block. An Index is immutable.
type Index struct {
	text   string
	keys   []string
	starts []int
	lens   []int
	byKey  map[string]int
	total  int
}

// Flatten builds the index for c.
func Flatten(c document.Content) Index {
	n := c.BlockCount()
	ix := Index{
		keys:   make([]string, n),
		starts: make([]int, n),
		lens:   make([]int, n),
		byKey:  make(map[string]int, n),
	}

	var sb strings.Builder
	pos := 0
	for i := 0; i < n; i++ {
		b := c.BlockAt(i)
		if i > 0 {
			sb.WriteString(Separator)
			pos += SeparatorLen
		}
		sb.WriteString(b.Text)

		l := utf8.RuneCountInString(b.Text)
		ix.keys[i] = b.Key
		ix.starts[i] = pos
		ix.lens[i] = l
		ix.byKey[b.Key] = i
		pos += l
	}
	ix.text = sb.String()
	ix.total = pos
	return ix
}

// Text returns the flattened text.
func (ix Index) Text() string {
	return ix.text
}

// Len returns the length of the flattened text in characters.
func (ix Index) Len() int {
	return ix.total
}

// BlockCount returns the number of indexed blocks.
func (ix Index) BlockCount() int {
	return len(ix.keys)
}

// Start returns the absolute offset of the first character of block i.
func (ix Index) Start(i int) int {
	return ix.starts[i]
}

// BlockLen returns the length of block i.
func (ix Index) BlockLen(i int) int {
	return ix.lens[i]
}

// Key returns the key of block i.
func (ix Index) Key(i int) string {
	return ix.keys[i]
}

// Absolute returns the absolute offset of rel within the block key.
//
// If the key is unknown the result is 0 and the error wraps
// ErrBlockNotFound. A rel outside [0, block length] is clamped and the
// error wraps ErrOffsetOutOfRange.
func (ix Index) Absolute(key string, rel int) (int, error) {
	i, ok := ix.byKey[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrBlockNotFound, key)
	}

	var err error
	switch {
	case rel < 0:
		err = fmt.Errorf("%w: offset %d in block %q", ErrOffsetOutOfRange, rel, key)
		rel = 0
	case rel > ix.lens[i]:
		err = fmt.Errorf("%w: offset %d in block %q of length %d", ErrOffsetOutOfRange, rel, key, ix.lens[i])
		rel = ix.lens[i]
	}
	return ix.starts[i] + rel, err
}

// Locate resolves an absolute offset to a block-relative position.
//
// Blocks are walked accumulating length plus separator until the running
// sum exceeds abs. An offset exactly on a block boundary therefore lands
// on the next block at offset 0, except for the last block, which absorbs
// any overflow. An offset inside a separator clamps to the end of the
// preceding block.
//
// An abs outside [0, Len()] is clamped to the nearest valid position and
// the error wraps ErrOffsetOutOfRange.
func (ix Index) Locate(abs int) (Position, error) {
	if len(ix.keys) == 0 {
		return Position{}, fmt.Errorf("%w: empty document", ErrOffsetOutOfRange)
	}

	var err error
	if abs < 0 {
		err = fmt.Errorf("%w: %d", ErrOffsetOutOfRange, abs)
		abs = 0
	} else if abs > ix.total {
		err = fmt.Errorf("%w: %d beyond length %d", ErrOffsetOutOfRange, abs, ix.total)
		abs = ix.total
	}

	last := len(ix.keys) - 1
	for i := range ix.keys {
		end := ix.starts[i] + ix.lens[i]
		if i < last {
			end += SeparatorLen
		}
		if abs < end || i == last {
			rel := abs - ix.starts[i]
			if rel > ix.lens[i] {
				rel = ix.lens[i]
			}
			return Position{Key: ix.keys[i], Offset: rel}, err
		}
	}

	// Unreachable: the last block always matches.
	return Position{Key: ix.keys[last], Offset: ix.lens[last]}, err
}

// Span returns the absolute start and end offsets of sel.
// A malformed selection whose end precedes its start is reordered.
func (ix Index) Span(sel document.Selection) (start, end int, err error) {
	start, serr := ix.Absolute(sel.StartKey(), sel.StartOffset())
	end, eerr := ix.Absolute(sel.EndKey(), sel.EndOffset())
	if start > end {
		start, end = end, start
	}
	return start, end, errors.Join(serr, eerr)
}

// Selection builds a selection covering the absolute range [start, end).
// When backward is set, the anchor is placed at end and the focus at
// start.
func (ix Index) Selection(start, end int, backward bool) (document.Selection, error) {
	if start > end {
		start, end = end, start
	}
	s, serr := ix.Locate(start)
	e, eerr := ix.Locate(end)
	if backward {
		return document.Selection{
			AnchorKey:    e.Key,
			AnchorOffset: e.Offset,
			FocusKey:     s.Key,
			FocusOffset:  s.Offset,
			IsBackward:   true,
		}, errors.Join(serr, eerr)
	}
	return document.Range(s.Key, s.Offset, e.Key, e.Offset), errors.Join(serr, eerr)
}

// AbsoluteOffset returns the absolute offset of rel within the block key
// of c. See Index.Absolute.
func AbsoluteOffset(c document.Content, key string, rel int) (int, error) {
	return Flatten(c).Absolute(key, rel)
}

// BlockAndOffset resolves an absolute offset in c to a block-relative
// position. See Index.Locate.
func BlockAndOffset(c document.Content, abs int) (Position, error) {
	return Flatten(c).Locate(abs)
}
