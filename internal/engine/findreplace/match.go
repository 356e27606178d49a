package findreplace

import (
	"regexp"
	"unicode/utf8"

	"github.com/dshills/marginalia/internal/engine/document"
)

// Match is a single occurrence of the search term.
type Match struct {
	// Index is the position of the match in document order.
	Index int

	// Selection covers the matched text.
	Selection document.Selection

	// Block is the block holding the match, as it was when scanned.
	Block document.Block

	// Start and End are the character offsets of the match in Block.
	Start int
	End   int

	// Text is the matched text.
	Text string
}

// MatchFunc is called for every match. It receives the content produced
// by the previous call and returns the content to pass on.
type MatchFunc func(m Match, c document.Content) document.Content

// ForEachMatch calls fn for every match of re in c, in document order.
// It returns the content produced by the last call and whether any match
// was found. Matches are located before fn runs, so their offsets refer to
// c. Empty matches are skipped.
func ForEachMatch(c document.Content, re *regexp.Regexp, fn MatchFunc) (document.Content, bool) {
	matches := Matches(c, re)
	out := c
	for _, m := range matches {
		out = fn(m, out)
	}
	return out, len(matches) > 0
}

// Matches returns every match of re in c, in document order.
func Matches(c document.Content, re *regexp.Regexp) []Match {
	if re == nil {
		return nil
	}
	var out []Match
	for i := 0; i < c.BlockCount(); i++ {
		b := c.BlockAt(i)
		for _, loc := range re.FindAllStringIndex(b.Text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			start := utf8.RuneCountInString(b.Text[:loc[0]])
			end := start + utf8.RuneCountInString(b.Text[loc[0]:loc[1]])
			out = append(out, Match{
				Index:     len(out),
				Selection: document.Range(b.Key, start, b.Key, end),
				Block:     b,
				Start:     start,
				End:       end,
				Text:      b.Text[loc[0]:loc[1]],
			})
		}
	}
	return out
}
