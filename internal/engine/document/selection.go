package document

import (
	"encoding/json"
	"fmt"
)

// Selection identifies a span of text by its anchor and focus positions.
// Anchor is where the selection started; focus is where it ends.
// IsBackward is true when the focus precedes the anchor.
//
// Selection is a comparable value: two selections are equal iff all five
// fields match, which makes it usable as a map key for annotations.
type Selection struct {
	AnchorKey    string `json:"anchorKey" yaml:"anchorKey"`
	AnchorOffset int    `json:"anchorOffset" yaml:"anchorOffset"`
	FocusKey     string `json:"focusKey" yaml:"focusKey"`
	FocusOffset  int    `json:"focusOffset" yaml:"focusOffset"`
	IsBackward   bool   `json:"isBackward" yaml:"isBackward"`
}

// Collapsed creates a selection with no extent (a cursor) at key/offset.
func Collapsed(key string, offset int) Selection {
	return Selection{
		AnchorKey:    key,
		AnchorOffset: offset,
		FocusKey:     key,
		FocusOffset:  offset,
	}
}

// Range creates a forward selection from start to end.
func Range(startKey string, startOffset int, endKey string, endOffset int) Selection {
	return Selection{
		AnchorKey:    startKey,
		AnchorOffset: startOffset,
		FocusKey:     endKey,
		FocusOffset:  endOffset,
	}
}

// StartKey returns the key of the block where the selection starts.
func (s Selection) StartKey() string {
	if s.IsBackward {
		return s.FocusKey
	}
	return s.AnchorKey
}

// StartOffset returns the offset where the selection starts.
func (s Selection) StartOffset() int {
	if s.IsBackward {
		return s.FocusOffset
	}
	return s.AnchorOffset
}

// EndKey returns the key of the block where the selection ends.
func (s Selection) EndKey() string {
	if s.IsBackward {
		return s.AnchorKey
	}
	return s.FocusKey
}

// EndOffset returns the offset where the selection ends.
func (s Selection) EndOffset() int {
	if s.IsBackward {
		return s.AnchorOffset
	}
	return s.FocusOffset
}

// IsCollapsed returns true if the selection has no extent.
func (s Selection) IsCollapsed() bool {
	return s.AnchorKey == s.FocusKey && s.AnchorOffset == s.FocusOffset
}

// IsZero returns true for the zero selection.
func (s Selection) IsZero() bool {
	return s == Selection{}
}

// String returns the JSON form of the selection.
// The output is stable and is used as the serialised annotation key.
func (s Selection) String() string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%s:%d-%s:%d", s.AnchorKey, s.AnchorOffset, s.FocusKey, s.FocusOffset)
	}
	return string(data)
}

// ParseSelection parses the output of Selection.String.
func ParseSelection(raw string) (Selection, error) {
	var s Selection
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Selection{}, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	if s.AnchorKey == "" || s.FocusKey == "" {
		return Selection{}, fmt.Errorf("%w: missing block key", ErrInvalidSelection)
	}
	return s, nil
}
