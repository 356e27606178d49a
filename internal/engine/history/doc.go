// Package history provides the undo and redo stacks of an editor state.
//
// History is an immutable value: Push, Undo and Redo return a new History
// and never modify the receiver, so an editor state that holds a History
// can be copied and kept around (for example as the "old" state handed to
// the repositioning pipeline) without aliasing.
//
// Each Entry records the document content as it was before an undoable
// change plus the change type that produced the following state:
//
//	h := history.New(1000)
//	h = h.Push(history.Entry{Content: before, ChangeType: "insert-characters"})
//
//	h, prev, err := h.Undo(history.Entry{Content: current})
//	if errors.Is(err, history.ErrNothingToUndo) {
//	    // nothing happened
//	}
//
// # Bounded Stacks
//
// The undo stack holds at most MaxEntries entries; pushing beyond that
// discards the oldest entry. Pushing clears the redo stack.
package history
