package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/findreplace"
	"github.com/dshills/marginalia/internal/engine/history"
	"github.com/dshills/marginalia/internal/engine/offset"
	"github.com/dshills/marginalia/internal/engine/reposition"
	"github.com/dshills/marginalia/internal/engine/state"
)

// Re-export commonly used types for convenience.
type (
	// Content is an immutable document snapshot.
	Content = document.Content

	// Selection is a block-relative range.
	Selection = document.Selection

	// EditorState is the current document plus undo history.
	EditorState = state.EditorState

	// ChangeType names the kind of edit that produced a state.
	ChangeType = state.ChangeType

	// Action is a find/replace request.
	Action = findreplace.Action

	// SearchTerm is the active search.
	SearchTerm = findreplace.SearchTerm

	// Payload is the data attached to an annotation.
	Payload = annotation.Payload

	// AnnotationEntry pairs a selection with its payload.
	AnnotationEntry = annotation.Entry

	// Report describes the last repositioning run.
	Report = reposition.Result

	// OperationInfo describes one undo or redo entry.
	OperationInfo = history.OperationInfo
)

// EditFunc computes new content from the current content and selection.
type EditFunc func(c Content, sel Selection) (Content, error)

// Engine is the handle through which a host drives annotation
// repositioning and find/replace.
//
// All operations are thread-safe and can be called from multiple goroutines.
// Every mutation is applied atomically to the single active EditorState.
type Engine struct {
	mu sync.RWMutex

	// Core components
	store    findreplace.Store
	pipeline *reposition.Pipeline
	reducer  *findreplace.Reducer
	logger   *slog.Logger

	// Configuration
	diffEngine           diff.Engine
	styles               findreplace.Styles
	maxUndoEntries       int
	maxReplaceIterations int
	readOnly             bool

	// deferred runs after construction, once the logger is final.
	deferred []func()

	lastReport Report
	closed     bool
}

// New creates an engine holding content.
func New(content Content, opts ...Option) *Engine {
	e := &Engine{
		logger:               slog.Default(),
		styles:               findreplace.DefaultStyles(),
		maxUndoEntries:       DefaultMaxUndoEntries,
		maxReplaceIterations: findreplace.DefaultMaxReplaceIterations,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.diffEngine == nil {
		e.diffEngine = diff.NewDMP()
	}
	e.pipeline = reposition.New(
		reposition.WithDiffEngine(e.diffEngine),
		reposition.WithLogger(e.logger),
	)
	e.reducer = findreplace.NewReducer(
		findreplace.WithPipeline(e.pipeline),
		findreplace.WithStyles(e.styles),
		findreplace.WithMaxReplaceIterations(e.maxReplaceIterations),
		findreplace.WithLogger(e.logger),
	)
	e.store = findreplace.Store{Editor: state.New(content, e.maxUndoEntries)}

	for _, fn := range e.deferred {
		fn()
	}
	e.deferred = nil

	return e
}

// NewFromText creates an engine with one block per paragraph.
func NewFromText(paragraphs []string, opts ...Option) *Engine {
	return New(document.FromText(paragraphs...), opts...)
}

// Close releases the engine. Every later mutation returns ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	e.closed = true
	return nil
}

// checkWritable returns an error if the engine cannot be mutated.
// Callers hold mu.
func (e *Engine) checkWritable(edit bool) error {
	if e.closed {
		return ErrClosed
	}
	if edit && e.readOnly {
		return ErrReadOnly
	}
	return nil
}

// ============================================================================
// Read Operations
// ============================================================================

// State returns the current editor state.
func (e *Engine) State() EditorState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor
}

// Content returns the current content.
func (e *Engine) Content() Content {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.Content()
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.Selection()
}

// Text returns the flattened document text, blocks joined by
// offset.Separator.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.Content().PlainText(offset.Separator)
}

// Texts returns the text of every block in order.
func (e *Engine) Texts() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.Content().Texts()
}

// DiffEngine returns the diff engine in use.
func (e *Engine) DiffEngine() diff.Engine {
	return e.diffEngine
}

// Styles returns the highlight styles in use.
func (e *Engine) Styles() findreplace.Styles {
	return e.reducer.Styles()
}

// LastReport returns the report of the most recent repositioning run.
func (e *Engine) LastReport() Report {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastReport
}

// ============================================================================
// Edit Operations
// ============================================================================

// OnChange accepts a new state produced by the host and repositions
// annotations against the current one. The repositioned state becomes
// current and is returned.
func (e *Engine) OnChange(next EditorState) (EditorState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(false); err != nil {
		return next, err
	}
	return e.applyLocked(next), nil
}

// applyLocked runs the pipeline from the current state to next.
func (e *Engine) applyLocked(next EditorState) EditorState {
	out, report := e.pipeline.RepositionWithReport(e.store.Editor, next)
	e.lastReport = report
	e.store.Editor = out
	return out
}

// Edit applies fn to the current content as an undoable change of type t
// and repositions annotations.
func (e *Engine) Edit(fn EditFunc, t ChangeType) error {
	if fn == nil {
		return ErrNilEdit
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(true); err != nil {
		return err
	}

	cur := e.store.Editor
	c, err := fn(cur.Content(), cur.Selection())
	if err != nil {
		return err
	}
	e.applyLocked(cur.Push(c, t))
	return nil
}

// Select moves the selection without changing content.
func (e *Engine) Select(sel Selection) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(false); err != nil {
		return err
	}
	e.store.Editor = e.store.Editor.WithSelection(sel)
	return nil
}

// InsertText replaces the current selection with text.
func (e *Engine) InsertText(text string) error {
	return e.Edit(func(c Content, sel Selection) (Content, error) {
		return document.InsertText(c, sel, text)
	}, state.InsertCharacters)
}

// DeleteSelection removes the text covered by the current selection.
func (e *Engine) DeleteSelection() error {
	return e.Edit(func(c Content, sel Selection) (Content, error) {
		return document.RemoveRange(c, sel)
	}, state.RemoveRange)
}

// SplitBlock splits the current block at the selection.
func (e *Engine) SplitBlock() error {
	return e.Edit(func(c Content, sel Selection) (Content, error) {
		return document.SplitBlock(c, sel, "")
	}, state.SplitBlock)
}

// ============================================================================
// Undo/Redo Operations
// ============================================================================

// Undo reverts the last undoable change.
func (e *Engine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(true); err != nil {
		return err
	}
	next, err := e.store.Editor.Undo()
	if err != nil {
		return err
	}
	e.store.Editor = next
	return nil
}

// Redo reapplies the last undone change.
func (e *Engine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(true); err != nil {
		return err
	}
	next, err := e.store.Editor.Redo()
	if err != nil {
		return err
	}
	e.store.Editor = next
	return nil
}

// CanUndo returns true if there are changes to undo.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.CanUndo()
}

// CanRedo returns true if there are changes to redo.
func (e *Engine) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.CanRedo()
}

// UndoCount returns the number of undo entries.
func (e *Engine) UndoCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.History().UndoCount()
}

// RedoCount returns the number of redo entries.
func (e *Engine) RedoCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.History().RedoCount()
}

// UndoInfo describes the available undo entries, oldest first.
func (e *Engine) UndoInfo() []OperationInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.History().UndoInfo()
}

// RedoInfo describes the available redo entries, oldest first.
func (e *Engine) RedoInfo() []OperationInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Editor.History().RedoInfo()
}

// ============================================================================
// Annotation Operations
// ============================================================================

// Annotations returns every annotation in document order.
func (e *Engine) Annotations() []AnnotationEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return annotation.Entries(annotation.Get(e.store.Editor.Content()))
}

// AnnotationCount returns the number of annotations.
func (e *Engine) AnnotationCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return annotation.Count(e.store.Editor.Content())
}

// Annotate attaches p to sel, replacing any payload already there.
func (e *Engine) Annotate(sel Selection, p Payload) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(false); err != nil {
		return err
	}
	e.commitAnnotationsLocked(annotation.Merge(e.store.Editor.Content(), sel, p))
	return nil
}

// AddComment attaches a new comment to sel and returns it.
func (e *Engine) AddComment(sel Selection, author, msg string) (annotation.Comment, error) {
	c := annotation.NewComment(author, msg, time.Now().UTC())
	if err := e.Annotate(sel, c); err != nil {
		return annotation.Comment{}, err
	}
	return c, nil
}

// ReplyToComment appends a reply to the comment with the given ID.
func (e *Engine) ReplyToComment(id, author, msg string) (annotation.Comment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(false); err != nil {
		return annotation.Comment{}, err
	}
	content := e.store.Editor.Content()
	sel, c, ok := annotation.FindComment(annotation.Get(content), id)
	if !ok {
		return annotation.Comment{}, ErrCommentNotFound
	}
	c = c.Reply(annotation.Message{Author: author, Date: time.Now().UTC(), Msg: msg})
	e.commitAnnotationsLocked(annotation.Merge(content, sel, c))
	return c, nil
}

// ResolveComment marks the comment with the given ID resolved.
func (e *Engine) ResolveComment(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(false); err != nil {
		return err
	}
	content := e.store.Editor.Content()
	sel, c, ok := annotation.FindComment(annotation.Get(content), id)
	if !ok {
		return ErrCommentNotFound
	}
	c.Resolved = true
	e.commitAnnotationsLocked(annotation.Merge(content, sel, c))
	return nil
}

// RemoveComment deletes the comment with the given ID.
func (e *Engine) RemoveComment(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkWritable(false); err != nil {
		return err
	}
	content := e.store.Editor.Content()
	sel, _, ok := annotation.FindComment(annotation.Get(content), id)
	if !ok {
		return ErrCommentNotFound
	}
	e.commitAnnotationsLocked(annotation.Remove(content, sel))
	return nil
}

// commitAnnotationsLocked stores annotation-only changes without an undo
// entry. Callers hold mu.
func (e *Engine) commitAnnotationsLocked(c Content) {
	cur := e.store.Editor
	e.store.Editor = cur.PushQuiet(c, state.ChangeBlockData).WithSelection(cur.Selection())
}

// ============================================================================
// Find/Replace Operations
// ============================================================================

// Dispatch applies a find/replace action.
func (e *Engine) Dispatch(a Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch a.(type) {
	case findreplace.Replace, findreplace.ReplaceAll, findreplace.ReplaceMultiple:
		if err := e.checkWritable(true); err != nil {
			return err
		}
	default:
		if err := e.checkWritable(false); err != nil {
			return err
		}
	}

	e.logger.Debug("dispatch", "action", findreplace.ActionName(a))
	e.store = e.reducer.Reduce(e.store, a)
	return nil
}

// SearchTerm returns the active search.
func (e *Engine) SearchTerm() SearchTerm {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Term
}

// CountOccurrences returns the number of matches of the active search.
func (e *Engine) CountOccurrences() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return findreplace.CountOccurrences(e.store)
}

// ActiveText returns the text of the active match, or the pattern when
// there is none.
func (e *Engine) ActiveText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return findreplace.ActiveText(e.store)
}

// Matches returns every match of the active search.
func (e *Engine) Matches() []findreplace.Match {
	e.mu.RLock()
	defer e.mu.RUnlock()

	re, err := e.store.Term.Regexp()
	if err != nil || re == nil {
		return nil
	}
	return findreplace.Matches(e.store.Editor.Content(), re)
}
