// Package document provides the immutable rich-text document model used by
// the annotation engine.
//
// A Content value is an ordered list of blocks (paragraphs) plus
// document-level metadata. Every block has a stable key and carries one
// CharMeta per character holding the inline style set and entity key of
// that character. Lengths and offsets are measured in characters (runes).
//
// All values are immutable. Modifiers such as ApplyInlineStyle, ReplaceText
// or SplitBlock never change their input; they return a new Content that
// shares unchanged blocks with the old one:
//
//	c := document.NewContent(
//	    document.NewBlock("a", "hello world"),
//	    document.NewBlock("b", "hello there"),
//	)
//
//	sel := document.Range("a", 6, "a", 11)
//	styled := document.ApplyInlineStyle(c, sel, "HIGHLIGHT")
//
//	// c is unchanged, styled has "world" highlighted.
//
// Selection doubles as the range descriptor used to key annotations: it is
// a comparable value and serialises to a stable JSON string.
package document
