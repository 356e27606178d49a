package document

import (
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultBlockType is the type given to plain paragraphs.
const DefaultBlockType = "unstyled"

// Block is an ordered, addressable unit of text.
// Chars holds one entry per character of Text.
type Block struct {
	Key   string
	Type  string
	Text  string
	Chars []CharMeta
}

// NewBlockKey returns a new globally unique block key.
func NewBlockKey() string {
	return uuid.NewString()
}

// NewBlock creates an unstyled block with the given key and text.
// An empty key is replaced by a generated one.
func NewBlock(key, text string) Block {
	if key == "" {
		key = NewBlockKey()
	}
	return Block{
		Key:   key,
		Type:  DefaultBlockType,
		Text:  text,
		Chars: make([]CharMeta, utf8.RuneCountInString(text)),
	}
}

// Len returns the length of the block in characters.
func (b Block) Len() int {
	return utf8.RuneCountInString(b.Text)
}

// CharAt returns the metadata of the character at offset i.
// Out of range offsets return the zero CharMeta.
func (b Block) CharAt(i int) CharMeta {
	if i < 0 || i >= len(b.Chars) {
		return CharMeta{}
	}
	return b.Chars[i]
}

// StyleAt returns the inline style of the character at offset i.
func (b Block) StyleAt(i int) Style {
	return b.CharAt(i).Style
}

// EntityAt returns the entity key of the character at offset i.
func (b Block) EntityAt(i int) string {
	return b.CharAt(i).Entity
}

// Slice returns the text between character offsets start and end.
// Offsets are clamped to the block.
func (b Block) Slice(start, end int) string {
	runes := []rune(b.Text)
	start = clamp(start, 0, len(runes))
	end = clamp(end, start, len(runes))
	return string(runes[start:end])
}

// chars returns a copy of the character metadata padded to the text length.
func (b Block) chars() []CharMeta {
	n := b.Len()
	out := make([]CharMeta, n)
	copy(out, b.Chars)
	return out
}

// with returns a copy of the block with new text and metadata.
func (b Block) with(text []rune, chars []CharMeta) Block {
	b.Text = string(text)
	b.Chars = chars
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
