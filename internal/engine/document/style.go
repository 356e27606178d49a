package document

import (
	"slices"
	"strings"
)

// Style is a set of inline style names (e.g. "BOLD", "HIGHLIGHT").
// Names are kept sorted and unique. A Style is treated as immutable:
// With and Without return new sets.
type Style []string

// NewStyle creates a style set from the given names.
func NewStyle(names ...string) Style {
	var s Style
	for _, name := range names {
		s = s.With(name)
	}
	return s
}

// Has returns true if the set contains name.
func (s Style) Has(name string) bool {
	_, found := slices.BinarySearch(s, name)
	return found
}

// With returns a set that also contains name.
func (s Style) With(name string) Style {
	if name == "" {
		return s
	}
	i, found := slices.BinarySearch(s, name)
	if found {
		return s
	}
	out := make(Style, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, name)
	out = append(out, s[i:]...)
	return out
}

// Without returns a set that does not contain name.
func (s Style) Without(name string) Style {
	i, found := slices.BinarySearch(s, name)
	if !found {
		return s
	}
	if len(s) == 1 {
		return nil
	}
	out := make(Style, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

// Equal returns true if both sets contain the same names.
func (s Style) Equal(other Style) bool {
	return slices.Equal(s, other)
}

// IsEmpty returns true if the set has no names.
func (s Style) IsEmpty() bool {
	return len(s) == 0
}

// String returns the names joined with "|".
func (s Style) String() string {
	return strings.Join(s, "|")
}

// CharMeta holds the per-character metadata of a block.
type CharMeta struct {
	Style  Style
	Entity string
}

// Equal returns true if both metadata values are identical.
func (m CharMeta) Equal(other CharMeta) bool {
	return m.Entity == other.Entity && m.Style.Equal(other.Style)
}
