// Package state provides EditorState, the immutable editor snapshot the
// annotation engine works on.
//
// An EditorState bundles the current document content, the selection, the
// type of the last change, the AllowUndo flag and the undo/redo history.
// Push records a new content; when AllowUndo is set the previous content
// goes onto the undo stack. Clearing AllowUndo for a single Push gives a
// quiet commit, a transition that updates data without becoming a separate
// undo step:
//
//	next := s.Push(edited, state.InsertCharacters)
//	next = next.PushQuiet(withAnnotations, state.InsertCharacters)
//	// one Undo returns to s.Content()
package state
