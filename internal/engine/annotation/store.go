package annotation

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/dshills/marginalia/internal/engine/document"
)

// MetaKey is the content metadata key holding the annotation map.
const MetaKey = "annotations"

// Map associates range descriptors with payloads.
type Map map[document.Selection]Payload

// Entry is a single annotation.
type Entry struct {
	Selection document.Selection
	Payload   Payload
}

// Get returns the annotations of c. The result is a copy and may be
// modified freely. A content without annotations yields an empty map.
func Get(c document.Content) Map {
	v, ok := c.Meta(MetaKey)
	if !ok {
		return Map{}
	}
	m, ok := v.(Map)
	if !ok {
		return Map{}
	}
	return maps.Clone(m)
}

// Count returns the number of annotations on c.
func Count(c document.Content) int {
	v, ok := c.Meta(MetaKey)
	if !ok {
		return 0
	}
	m, _ := v.(Map)
	return len(m)
}

// Replace returns c with its annotations replaced by m.
// An empty map removes the metadata entry. Block text is never touched.
func Replace(c document.Content, m Map) document.Content {
	if len(m) == 0 {
		return c.WithoutMeta(MetaKey)
	}
	return c.WithMeta(MetaKey, maps.Clone(m))
}

// Merge returns c with p stored under sel, replacing any existing
// payload for the same descriptor. A nil payload removes the entry.
func Merge(c document.Content, sel document.Selection, p Payload) document.Content {
	if p == nil {
		return Remove(c, sel)
	}
	m := Get(c)
	m[sel] = p
	return Replace(c, m)
}

// Remove returns c without the annotation stored under sel.
func Remove(c document.Content, sel document.Selection) document.Content {
	m := Get(c)
	if _, ok := m[sel]; !ok {
		return c
	}
	delete(m, sel)
	return Replace(c, m)
}

// Entries returns the annotations of m in a stable order.
func Entries(m Map) []Entry {
	keys := slices.SortedFunc(maps.Keys(m), compareSelections)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Selection: k, Payload: m[k]}
	}
	return out
}

// FindComment returns the comment with the given ID.
func FindComment(m Map, id string) (document.Selection, Comment, bool) {
	for _, e := range Entries(m) {
		if c, ok := e.Payload.(Comment); ok && c.ID == id {
			return e.Selection, c, true
		}
	}
	return document.Selection{}, Comment{}, false
}

// Filter returns the entries of m whose payload has the given kind.
func Filter(m Map, kind Kind) []Entry {
	var out []Entry
	for _, e := range Entries(m) {
		if e.Payload.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

func compareSelections(a, b document.Selection) int {
	return cmp.Or(
		cmp.Compare(a.AnchorKey, b.AnchorKey),
		cmp.Compare(a.AnchorOffset, b.AnchorOffset),
		cmp.Compare(a.FocusKey, b.FocusKey),
		cmp.Compare(a.FocusOffset, b.FocusOffset),
		cmpBool(a.IsBackward, b.IsBackward),
	)
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// MarshalMap encodes m as a JSON object keyed by the serialised
// selection, each value a payload envelope.
func MarshalMap(m Map) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(m))
	for sel, p := range m {
		data, err := MarshalPayload(p)
		if err != nil {
			return nil, fmt.Errorf("annotation %s: %w", sel, err)
		}
		raw[sel.String()] = data
	}
	return json.Marshal(raw)
}

// UnmarshalMap decodes the output of MarshalMap.
func UnmarshalMap(data []byte) (Map, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	m := make(Map, len(raw))
	for k, v := range raw {
		sel, err := document.ParseSelection(k)
		if err != nil {
			return nil, err
		}
		p, err := UnmarshalPayload(v)
		if err != nil {
			return nil, fmt.Errorf("annotation %s: %w", k, err)
		}
		m[sel] = p
	}
	return m, nil
}
