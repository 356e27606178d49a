package history

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/dshills/marginalia/internal/engine/document"
)

// DefaultMaxEntries is the undo limit used when none is configured.
const DefaultMaxEntries = 1000

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is a single undo or redo step.
type Entry struct {
	// Content is the document to restore.
	Content document.Content

	// ChangeType is the change that led away from Content.
	ChangeType string

	// Timestamp is when the entry was recorded.
	Timestamp time.Time
}

// OperationInfo provides read-only info about an entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Change type
	Timestamp   time.Time // When the entry was recorded
	Chars       int       // Length of the stored document text
}

// History holds the undo and redo stacks.
// The zero value is an empty history with the default limit.
type History struct {
	undo []Entry
	redo []Entry

	maxEntries int
}

// New creates an empty history holding at most maxEntries undo entries.
func New(maxEntries int) History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return History{maxEntries: maxEntries}
}

// MaxEntries returns the maximum number of undo entries.
func (h History) MaxEntries() int {
	if h.maxEntries <= 0 {
		return DefaultMaxEntries
	}
	return h.maxEntries
}

// WithMaxEntries returns a history with a new undo limit.
// If the current stack is larger, oldest entries are removed.
func (h History) WithMaxEntries(max int) History {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	h.maxEntries = max
	h.undo = trim(h.undo, max)
	return h
}

// Push returns a history with e on top of the undo stack and an empty
// redo stack.
func (h History) Push(e Entry) History {
	h.undo = trim(appendEntry(h.undo, stamp(e)), h.MaxEntries())
	h.redo = nil
	return h
}

// Undo pops the top undo entry and records current on the redo stack.
// It returns the popped entry, whose content becomes the current one.
func (h History) Undo(current Entry) (History, Entry, error) {
	if len(h.undo) == 0 {
		return h, Entry{}, ErrNothingToUndo
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = appendEntry(h.redo, stamp(current))
	return h, top, nil
}

// Redo pops the top redo entry and records current on the undo stack.
func (h History) Redo(current Entry) (History, Entry, error) {
	if len(h.redo) == 0 {
		return h, Entry{}, ErrNothingToRedo
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = trim(appendEntry(h.undo, stamp(current)), h.MaxEntries())
	return h, top, nil
}

// Clear returns a history with both stacks empty.
func (h History) Clear() History {
	h.undo = nil
	h.redo = nil
	return h
}

// ClearRedo returns a history with an empty redo stack.
func (h History) ClearRedo() History {
	h.redo = nil
	return h
}

// CanUndo returns true if undo is available.
func (h History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo returns true if redo is available.
func (h History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoCount returns the number of undo entries available.
func (h History) UndoCount() int {
	return len(h.undo)
}

// RedoCount returns the number of redo entries available.
func (h History) RedoCount() int {
	return len(h.redo)
}

// PeekUndo returns the next undo entry without removing it.
func (h History) PeekUndo() (Entry, bool) {
	if len(h.undo) == 0 {
		return Entry{}, false
	}
	return h.undo[len(h.undo)-1], true
}

// PeekRedo returns the next redo entry without removing it.
func (h History) PeekRedo() (Entry, bool) {
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	return h.redo[len(h.redo)-1], true
}

// UndoInfo returns info about available undo entries, oldest first.
func (h History) UndoInfo() []OperationInfo {
	return info(h.undo)
}

// RedoInfo returns info about available redo entries, oldest first.
func (h History) RedoInfo() []OperationInfo {
	return info(h.redo)
}

func info(entries []Entry) []OperationInfo {
	result := make([]OperationInfo, len(entries))
	for i, e := range entries {
		chars := 0
		for _, text := range e.Content.Texts() {
			chars += utf8.RuneCountInString(text)
		}
		result[i] = OperationInfo{
			Description: e.ChangeType,
			Timestamp:   e.Timestamp,
			Chars:       chars,
		}
	}
	return result
}

func stamp(e Entry) Entry {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return e
}

// appendEntry appends without writing into storage shared with another
// History value.
func appendEntry(entries []Entry, e Entry) []Entry {
	out := make([]Entry, len(entries), len(entries)+1)
	copy(out, entries)
	return append(out, e)
}

// trim removes the oldest entries beyond max.
func trim(entries []Entry, max int) []Entry {
	if len(entries) > max {
		excess := len(entries) - max
		return entries[excess:]
	}
	return entries
}
