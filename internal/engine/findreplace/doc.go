// Package findreplace implements search highlighting and replacement over
// an editor state.
//
// A Store pairs an EditorState with the current SearchTerm. Actions are
// applied with Reduce, which returns a new Store:
//
//	s := findreplace.Store{Editor: ed}
//	s = findreplace.Reduce(s, findreplace.SetCriteria{Pattern: "hello"})
//	s = findreplace.Reduce(s, findreplace.FindNext{})
//	s = findreplace.Reduce(s, findreplace.Replace{Text: "hi"})
//
// Matches are highlighted with inline styles: the active match (the one at
// SearchTerm.Index) gets the active style and every other match the
// default one. Highlighting is committed quietly and never becomes an
// undo step. Replacements are regular undoable edits and run through the
// annotation repositioning pipeline.
//
// Patterns are literal text. A criteria diff (a map of search text to
// replacement text) searches for all of its keys at once, longest first.
package findreplace
