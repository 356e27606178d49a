// Package engine provides the annotation repositioning engine for
// marginalia.
//
// The engine package is the facade a host drives. It holds the single
// active editor state, repositions annotations after every text edit and
// applies find/replace actions, all behind a thread-safe API.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - document: immutable rich-text content (blocks, styles, selections)
//   - offset: block-relative to absolute offset mapping
//   - diff: character diff engines (diff-match-patch, Myers)
//   - shift: range shifting against diff runs
//   - annotation: annotation payloads and the per-document store
//   - history: snapshot undo/redo stacks
//   - state: editor state with quiet (undo-suppressed) commits
//   - reposition: the flatten, diff, shift, rematerialize pipeline
//   - findreplace: the find/replace reducer and highlighter
//
// # Thread Safety
//
// All Engine operations are thread-safe. The engine uses a read-write mutex
// to allow concurrent reads while serializing writes. The states it hands
// out are values and may be kept freely.
//
// # Basic Usage
//
//	e := engine.NewFromText([]string{"hello world", "hello there"})
//	defer e.Close()
//
//	first := e.Content().BlockAt(0).Key
//	c, _ := e.AddComment(document.Range(first, 6, first, 11), "ana", "which world?")
//
//	e.InsertText("X") // the comment now covers first:7-first:12
//
// # Find and Replace
//
//	e.Dispatch(findreplace.SetCriteria{Pattern: "hello"})
//	e.Dispatch(findreplace.FindNext{})
//	e.Dispatch(findreplace.Replace{Text: "hi"})
//
// Highlighting uses quiet commits and never appears in undo history. A
// replacement is a single undo step.
//
// # Hosts With Their Own Edit Loop
//
// A host that produces editor states itself passes each one to OnChange,
// which repositions annotations against the previous state:
//
//	next := e.State().Push(newContent, state.InsertCharacters)
//	next, err := e.OnChange(next)
package engine
