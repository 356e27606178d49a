package findreplace

import (
	"cmp"
	"maps"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// SearchTerm holds the find/replace criteria.
type SearchTerm struct {
	Pattern       string
	CaseSensitive bool

	// Index is the active match, or -1 when no match is active.
	Index int

	// Diff maps search text to replacement text. When it has a non-empty
	// key it takes precedence over Pattern.
	Diff map[string]string
}

// IsEmpty returns true if the term matches nothing.
func (t SearchTerm) IsEmpty() bool {
	return t.Pattern == "" && len(diffKeys(t.Diff)) == 0
}

// Regexp compiles the term. It returns nil for an empty term.
func (t SearchTerm) Regexp() (*regexp.Regexp, error) {
	if t.IsEmpty() {
		return nil, nil
	}
	expr := regexp.QuoteMeta(t.Pattern)
	if keys := diffKeys(t.Diff); len(keys) > 0 {
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = regexp.QuoteMeta(k)
		}
		expr = strings.Join(quoted, "|")
	}
	if !t.CaseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// diffKeys returns the non-empty keys of diff, longest first. Keys of
// equal length are ordered lexically.
func diffKeys(diff map[string]string) []string {
	keys := slices.DeleteFunc(slices.Collect(maps.Keys(diff)), func(k string) bool {
		return k == ""
	})
	slices.SortFunc(keys, func(a, b string) int {
		return cmp.Or(cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a)), cmp.Compare(a, b))
	})
	return keys
}
