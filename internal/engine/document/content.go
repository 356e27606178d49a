package document

import (
	"maps"
	"slices"
	"strings"
)

// Content is an immutable document: an ordered sequence of blocks plus
// document-level metadata.
//
// Content always holds at least one block. SelectionBefore and
// SelectionAfter record the cursor before and after the edit that
// produced this content; undo uses them to restore the cursor.
type Content struct {
	blocks []Block
	meta   map[string]any

	selectionBefore Selection
	selectionAfter  Selection
}

// NewContent creates content from the given blocks.
// With no blocks, the content holds a single empty block.
func NewContent(blocks ...Block) Content {
	if len(blocks) == 0 {
		blocks = []Block{NewBlock("", "")}
	}
	c := Content{blocks: slices.Clone(blocks)}
	first := c.blocks[0].Key
	c.selectionBefore = Collapsed(first, 0)
	c.selectionAfter = Collapsed(first, 0)
	return c
}

// FromText creates content with one unstyled block per paragraph.
// Block keys are generated.
func FromText(paragraphs ...string) Content {
	blocks := make([]Block, len(paragraphs))
	for i, p := range paragraphs {
		blocks[i] = NewBlock("", p)
	}
	return NewContent(blocks...)
}

// Blocks returns a copy of the block list.
func (c Content) Blocks() []Block {
	return slices.Clone(c.blocks)
}

// BlockCount returns the number of blocks.
func (c Content) BlockCount() int {
	return len(c.blocks)
}

// BlockAt returns the block at index i.
func (c Content) BlockAt(i int) Block {
	return c.blocks[i]
}

// IndexOf returns the index of the block with the given key, or -1.
func (c Content) IndexOf(key string) int {
	for i := range c.blocks {
		if c.blocks[i].Key == key {
			return i
		}
	}
	return -1
}

// BlockForKey returns the block with the given key.
func (c Content) BlockForKey(key string) (Block, bool) {
	i := c.IndexOf(key)
	if i < 0 {
		return Block{}, false
	}
	return c.blocks[i], true
}

// FirstKey returns the key of the first block.
func (c Content) FirstKey() string {
	if len(c.blocks) == 0 {
		return ""
	}
	return c.blocks[0].Key
}

// LastKey returns the key of the last block.
func (c Content) LastKey() string {
	if len(c.blocks) == 0 {
		return ""
	}
	return c.blocks[len(c.blocks)-1].Key
}

// PlainText returns the text of all blocks joined by sep.
func (c Content) PlainText(sep string) string {
	parts := make([]string, len(c.blocks))
	for i, b := range c.blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, sep)
}

// Texts returns the text of each block in order.
func (c Content) Texts() []string {
	out := make([]string, len(c.blocks))
	for i, b := range c.blocks {
		out[i] = b.Text
	}
	return out
}

// SameText returns true if both contents have the same blocks with the
// same text, ignoring styles and metadata.
func (c Content) SameText(other Content) bool {
	if len(c.blocks) != len(other.blocks) {
		return false
	}
	for i := range c.blocks {
		if c.blocks[i].Key != other.blocks[i].Key || c.blocks[i].Text != other.blocks[i].Text {
			return false
		}
	}
	return true
}

// Meta returns the metadata value stored under key.
func (c Content) Meta(key string) (any, bool) {
	v, ok := c.meta[key]
	return v, ok
}

// MetaKeys returns the sorted metadata keys.
func (c Content) MetaKeys() []string {
	return slices.Sorted(maps.Keys(c.meta))
}

// WithMeta returns content with key set to value. Blocks are shared.
func (c Content) WithMeta(key string, value any) Content {
	meta := make(map[string]any, len(c.meta)+1)
	maps.Copy(meta, c.meta)
	meta[key] = value
	c.meta = meta
	return c
}

// WithoutMeta returns content without the given metadata key.
func (c Content) WithoutMeta(key string) Content {
	if _, ok := c.meta[key]; !ok {
		return c
	}
	meta := maps.Clone(c.meta)
	delete(meta, key)
	c.meta = meta
	return c
}

// SelectionBefore returns the selection before the edit that produced
// this content.
func (c Content) SelectionBefore() Selection {
	return c.selectionBefore
}

// SelectionAfter returns the selection after the edit that produced
// this content.
func (c Content) SelectionAfter() Selection {
	return c.selectionAfter
}

// WithSelectionBefore returns content with the before-selection replaced.
func (c Content) WithSelectionBefore(s Selection) Content {
	c.selectionBefore = s
	return c
}

// WithSelectionAfter returns content with the after-selection replaced.
func (c Content) WithSelectionAfter(s Selection) Content {
	c.selectionAfter = s
	return c
}

// WithBlocks returns content with the block list replaced.
// Metadata and selections are kept.
func (c Content) WithBlocks(blocks []Block) Content {
	if len(blocks) == 0 {
		blocks = []Block{NewBlock("", "")}
	}
	c.blocks = slices.Clone(blocks)
	return c
}

// withBlocks replaces the block list without copying it.
func (c Content) withBlocks(blocks []Block) Content {
	c.blocks = blocks
	return c
}
