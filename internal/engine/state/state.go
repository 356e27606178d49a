package state

import (
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/history"
)

// EditorState is an immutable editor snapshot.
type EditorState struct {
	content        document.Content
	selection      document.Selection
	lastChangeType ChangeType
	allowUndo      bool
	history        history.History
}

// New creates a state for content with an empty history holding at most
// maxUndo entries. Zero selects the history default.
func New(content document.Content, maxUndo int) EditorState {
	return EditorState{
		content:   content,
		selection: content.SelectionAfter(),
		allowUndo: true,
		history:   history.New(maxUndo),
	}
}

// Content returns the current document.
func (s EditorState) Content() document.Content {
	return s.content
}

// Selection returns the current selection.
func (s EditorState) Selection() document.Selection {
	return s.selection
}

// LastChangeType returns the type of the change that produced s.
func (s EditorState) LastChangeType() ChangeType {
	return s.lastChangeType
}

// AllowUndo reports whether Push records undo entries.
func (s EditorState) AllowUndo() bool {
	return s.allowUndo
}

// History returns the undo/redo history.
func (s EditorState) History() history.History {
	return s.history
}

// CanUndo returns true if undo is available.
func (s EditorState) CanUndo() bool {
	return s.allowUndo && s.history.CanUndo()
}

// CanRedo returns true if redo is available.
func (s EditorState) CanRedo() bool {
	return s.allowUndo && s.history.CanRedo()
}

// SetAllowUndo returns a state with the AllowUndo flag set to allow.
func (s EditorState) SetAllowUndo(allow bool) EditorState {
	s.allowUndo = allow
	return s
}

// WithSelection returns a state with a new selection. The content and
// history are untouched.
func (s EditorState) WithSelection(sel document.Selection) EditorState {
	s.selection = sel
	return s
}

// Push returns a state whose content is c, produced by a change of type t.
//
// With AllowUndo set, the previous content is recorded for undo and the
// redo stack is cleared, except that consecutive typing or deleting
// changes share one entry. With AllowUndo cleared, the history is left as
// it is.
func (s EditorState) Push(c document.Content, t ChangeType) EditorState {
	if s.allowUndo {
		boundary := s.selection != s.content.SelectionAfter() ||
			t != s.lastChangeType || !coalesces(t)
		if boundary {
			s.history = s.history.Push(history.Entry{Content: s.content, ChangeType: string(t)})
		} else if s.history.CanRedo() {
			s.history = s.history.ClearRedo()
		}
	}
	s.content = c
	s.selection = c.SelectionAfter()
	s.lastChangeType = t
	return s
}

// PushQuiet pushes c without creating an undo entry and leaves AllowUndo
// set afterwards.
func (s EditorState) PushQuiet(c document.Content, t ChangeType) EditorState {
	return s.SetAllowUndo(false).Push(c, t).SetAllowUndo(true)
}

// Undo returns the state before the last undoable change.
// The cursor is restored to where it was before that change.
func (s EditorState) Undo() (EditorState, error) {
	if !s.allowUndo {
		return s, history.ErrNothingToUndo
	}
	h, prev, err := s.history.Undo(history.Entry{Content: s.content, ChangeType: string(s.lastChangeType)})
	if err != nil {
		return s, err
	}
	s.history = h
	s.selection = s.content.SelectionBefore()
	s.content = prev.Content
	s.lastChangeType = Undo
	return s, nil
}

// Redo reapplies the last undone change.
func (s EditorState) Redo() (EditorState, error) {
	if !s.allowUndo {
		return s, history.ErrNothingToRedo
	}
	h, next, err := s.history.Redo(history.Entry{Content: s.content, ChangeType: string(s.lastChangeType)})
	if err != nil {
		return s, err
	}
	s.history = h
	s.content = next.Content
	s.selection = next.Content.SelectionAfter()
	s.lastChangeType = Redo
	return s, nil
}
