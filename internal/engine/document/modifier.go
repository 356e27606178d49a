package document

import (
	"fmt"
	"slices"
)

// bounds is a selection resolved to block indexes and clamped offsets,
// always ordered start <= end.
type bounds struct {
	startBlock, startOffset int
	endBlock, endOffset     int
}

// resolve converts a selection into ordered block indexes and offsets.
func (c Content) resolve(sel Selection) (bounds, error) {
	si := c.IndexOf(sel.StartKey())
	if si < 0 {
		return bounds{}, fmt.Errorf("%w: %q", ErrBlockNotFound, sel.StartKey())
	}
	ei := c.IndexOf(sel.EndKey())
	if ei < 0 {
		return bounds{}, fmt.Errorf("%w: %q", ErrBlockNotFound, sel.EndKey())
	}
	so := clamp(sel.StartOffset(), 0, c.blocks[si].Len())
	eo := clamp(sel.EndOffset(), 0, c.blocks[ei].Len())
	if si > ei || (si == ei && so > eo) {
		si, so, ei, eo = ei, eo, si, so
	}
	return bounds{startBlock: si, startOffset: so, endBlock: ei, endOffset: eo}, nil
}

// mapChars rewrites the metadata of every character covered by sel.
// Blocks outside the selection are shared with the input.
func mapChars(c Content, sel Selection, fn func(CharMeta) CharMeta) Content {
	r, err := c.resolve(sel)
	if err != nil {
		return c
	}
	blocks := slices.Clone(c.blocks)
	for i := r.startBlock; i <= r.endBlock; i++ {
		b := blocks[i]
		start, end := 0, b.Len()
		if i == r.startBlock {
			start = r.startOffset
		}
		if i == r.endBlock {
			end = r.endOffset
		}
		if start >= end {
			continue
		}
		chars := b.chars()
		for j := start; j < end; j++ {
			chars[j] = fn(chars[j])
		}
		b.Chars = chars
		blocks[i] = b
	}
	return c.withBlocks(blocks)
}

// ApplyInlineStyle returns content with style added to every character
// covered by sel. Unknown block keys leave the content unchanged.
func ApplyInlineStyle(c Content, sel Selection, style string) Content {
	return mapChars(c, sel, func(m CharMeta) CharMeta {
		m.Style = m.Style.With(style)
		return m
	})
}

// ApplyEntity returns content with every character covered by sel linked
// to entity. An empty entity removes the link.
func ApplyEntity(c Content, sel Selection, entity string) Content {
	return mapChars(c, sel, func(m CharMeta) CharMeta {
		m.Entity = entity
		return m
	})
}

// RemoveStyles returns content with the given styles removed from every
// character of the document. Blocks that carry none of the styles are
// shared with the input.
func RemoveStyles(c Content, styles ...string) Content {
	var blocks []Block
	for i, b := range c.blocks {
		var chars []CharMeta
		for j, m := range b.Chars {
			next := m.Style
			for _, s := range styles {
				next = next.Without(s)
			}
			if len(next) == len(m.Style) {
				continue
			}
			if chars == nil {
				chars = b.chars()
			}
			chars[j].Style = next
		}
		if chars == nil {
			continue
		}
		if blocks == nil {
			blocks = slices.Clone(c.blocks)
		}
		b.Chars = chars
		blocks[i] = b
	}
	if blocks == nil {
		return c
	}
	return c.withBlocks(blocks)
}

// HasStyle returns true if any character of the document carries style.
func HasStyle(c Content, style string) bool {
	for _, b := range c.blocks {
		for _, m := range b.Chars {
			if m.Style.Has(style) {
				return true
			}
		}
	}
	return false
}

// ReplaceText replaces the text covered by sel with text. Every inserted
// character gets the given style and entity. A multi-block selection is
// merged into its start block. SelectionAfter is set to the end of the
// inserted text.
func ReplaceText(c Content, sel Selection, text string, style Style, entity string) (Content, error) {
	r, err := c.resolve(sel)
	if err != nil {
		return c, err
	}

	start := c.blocks[r.startBlock]
	end := c.blocks[r.endBlock]

	startRunes := []rune(start.Text)
	endRunes := []rune(end.Text)
	startChars := start.chars()
	endChars := end.chars()

	inserted := []rune(text)
	meta := make([]CharMeta, len(inserted))
	for i := range meta {
		meta[i] = CharMeta{Style: style, Entity: entity}
	}

	runes := make([]rune, 0, r.startOffset+len(inserted)+len(endRunes)-r.endOffset)
	runes = append(runes, startRunes[:r.startOffset]...)
	runes = append(runes, inserted...)
	runes = append(runes, endRunes[r.endOffset:]...)

	chars := make([]CharMeta, 0, len(runes))
	chars = append(chars, startChars[:r.startOffset]...)
	chars = append(chars, meta...)
	chars = append(chars, endChars[r.endOffset:]...)

	blocks := make([]Block, 0, len(c.blocks)-(r.endBlock-r.startBlock))
	blocks = append(blocks, c.blocks[:r.startBlock]...)
	blocks = append(blocks, start.with(runes, chars))
	blocks = append(blocks, c.blocks[r.endBlock+1:]...)

	out := c.withBlocks(blocks)
	out.selectionBefore = sel
	out.selectionAfter = Collapsed(start.Key, r.startOffset+len(inserted))
	return out, nil
}

// InsertText inserts text at the start of sel, replacing any selected
// text. The inserted characters inherit the style and entity of the
// character before the insertion point.
func InsertText(c Content, sel Selection, text string) (Content, error) {
	r, err := c.resolve(sel)
	if err != nil {
		return c, err
	}
	var meta CharMeta
	if r.startOffset > 0 {
		meta = c.blocks[r.startBlock].CharAt(r.startOffset - 1)
	}
	return ReplaceText(c, sel, text, meta.Style, meta.Entity)
}

// RemoveRange deletes the text covered by sel.
func RemoveRange(c Content, sel Selection) (Content, error) {
	return ReplaceText(c, sel, "", nil, "")
}

// SplitBlock splits the block at the start of sel into two blocks. Any
// selected text is removed first. The new block receives newKey, or a
// generated key when newKey is empty.
func SplitBlock(c Content, sel Selection, newKey string) (Content, error) {
	removed, err := RemoveRange(c, sel)
	if err != nil {
		return c, err
	}
	r, err := c.resolve(sel)
	if err != nil {
		return c, err
	}
	if newKey == "" || removed.IndexOf(newKey) >= 0 {
		newKey = NewBlockKey()
	}

	b := removed.blocks[r.startBlock]
	runes := []rune(b.Text)
	chars := b.chars()

	head := b.with(slices.Clone(runes[:r.startOffset]), slices.Clone(chars[:r.startOffset]))
	tail := Block{
		Key:   newKey,
		Type:  b.Type,
		Text:  string(runes[r.startOffset:]),
		Chars: slices.Clone(chars[r.startOffset:]),
	}

	blocks := make([]Block, 0, len(removed.blocks)+1)
	blocks = append(blocks, removed.blocks[:r.startBlock]...)
	blocks = append(blocks, head, tail)
	blocks = append(blocks, removed.blocks[r.startBlock+1:]...)

	out := removed.withBlocks(blocks)
	out.selectionBefore = sel
	out.selectionAfter = Collapsed(newKey, 0)
	return out, nil
}

// InsertFragment pastes a list of blocks at sel, replacing any selected
// text. A single-block fragment is inserted inline. For longer fragments
// the first fragment block is joined to the text before sel, the last one
// to the text after it, and the blocks in between are inserted whole.
// Fragment keys that already exist in the content are regenerated.
func InsertFragment(c Content, sel Selection, fragment []Block) (Content, error) {
	if len(fragment) == 0 {
		return c, nil
	}
	removed, err := RemoveRange(c, sel)
	if err != nil {
		return c, err
	}
	r, err := c.resolve(sel)
	if err != nil {
		return c, err
	}

	target := removed.blocks[r.startBlock]
	runes := []rune(target.Text)
	chars := target.chars()
	at := r.startOffset

	if len(fragment) == 1 {
		f := fragment[0]
		fr := []rune(f.Text)
		nr := make([]rune, 0, len(runes)+len(fr))
		nr = append(nr, runes[:at]...)
		nr = append(nr, fr...)
		nr = append(nr, runes[at:]...)
		nc := make([]CharMeta, 0, len(nr))
		nc = append(nc, chars[:at]...)
		nc = append(nc, f.chars()...)
		nc = append(nc, chars[at:]...)

		blocks := slices.Clone(removed.blocks)
		blocks[r.startBlock] = target.with(nr, nc)
		out := removed.withBlocks(blocks)
		out.selectionBefore = sel
		out.selectionAfter = Collapsed(target.Key, at+len(fr))
		return out, nil
	}

	used := make(map[string]bool, len(removed.blocks))
	for _, b := range removed.blocks {
		used[b.Key] = true
	}
	freshKey := func(key string) string {
		if key == "" || used[key] {
			key = NewBlockKey()
		}
		used[key] = true
		return key
	}

	first := fragment[0]
	last := fragment[len(fragment)-1]

	headRunes := append(slices.Clone(runes[:at]), []rune(first.Text)...)
	headChars := append(slices.Clone(chars[:at]), first.chars()...)
	head := target.with(headRunes, headChars)

	middle := make([]Block, 0, len(fragment)-2)
	for _, f := range fragment[1 : len(fragment)-1] {
		f.Key = freshKey(f.Key)
		f.Chars = f.chars()
		if f.Type == "" {
			f.Type = DefaultBlockType
		}
		middle = append(middle, f)
	}

	lastRunes := []rune(last.Text)
	tailKey := freshKey(last.Key)
	tail := Block{
		Key:   tailKey,
		Type:  last.Type,
		Text:  string(append(slices.Clone(lastRunes), runes[at:]...)),
		Chars: append(last.chars(), chars[at:]...),
	}
	if tail.Type == "" {
		tail.Type = DefaultBlockType
	}

	blocks := make([]Block, 0, len(removed.blocks)+len(fragment)-1)
	blocks = append(blocks, removed.blocks[:r.startBlock]...)
	blocks = append(blocks, head)
	blocks = append(blocks, middle...)
	blocks = append(blocks, tail)
	blocks = append(blocks, removed.blocks[r.startBlock+1:]...)

	out := removed.withBlocks(blocks)
	out.selectionBefore = sel
	out.selectionAfter = Collapsed(tailKey, len(lastRunes))
	return out, nil
}
