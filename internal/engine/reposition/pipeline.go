package reposition

import (
	"log/slog"

	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/offset"
	"github.com/dshills/marginalia/internal/engine/shift"
	"github.com/dshills/marginalia/internal/engine/state"
)

// Pipeline repositions annotations after edits.
// A Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	engine diff.Engine
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDiffEngine sets the diff engine. The default is diff-match-patch.
func WithDiffEngine(e diff.Engine) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		engine: diff.NewDMP(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reason explains why a pipeline run left the state untouched.
type Reason string

// Pass-through reasons.
const (
	ReasonNone          Reason = ""
	ReasonNoAnnotations Reason = "no-annotations"
	ReasonNotContent    Reason = "not-content-change"
	ReasonTextUnchanged Reason = "text-unchanged"
)

// Result reports the outcome of a pipeline run.
type Result struct {
	// Skipped is set when next was returned unchanged.
	Skipped bool
	Reason  Reason

	// Kept and Dropped count annotations after repositioning.
	Kept    int
	Dropped int

	// Ops is the number of diff runs walked.
	Ops int
}

// Reposition returns next with its annotations moved to match the edit
// from prev to next.
func (p *Pipeline) Reposition(prev, next state.EditorState) state.EditorState {
	out, _ := p.RepositionWithReport(prev, next)
	return out
}

// RepositionWithReport is Reposition plus a report of what happened.
func (p *Pipeline) RepositionWithReport(prev, next state.EditorState) (state.EditorState, Result) {
	oldContent := prev.Content()
	m := annotation.Get(oldContent)
	if len(m) == 0 {
		return next, Result{Skipped: true, Reason: ReasonNoAnnotations}
	}

	changeType := next.LastChangeType()
	if !state.IsContentChange(changeType) {
		return next, Result{Skipped: true, Reason: ReasonNotContent, Kept: len(m)}
	}

	newContent := next.Content()
	if oldContent.SameText(newContent) {
		return next, Result{Skipped: true, Reason: ReasonTextUnchanged, Kept: len(m)}
	}

	oldIx := offset.Flatten(oldContent)
	entries := annotation.Entries(m)
	spans := p.flatten(oldIx, entries)

	// Each span carries the index of its entry through the walk.
	tagged := make([]shift.Span[int], len(spans))
	for i, s := range spans {
		tagged[i] = shift.Span[int]{Start: s.Start, End: s.End, Backward: s.Backward, Data: i}
	}

	newIx := offset.Flatten(newContent)
	ops := p.engine.Diff(oldIx.Text(), newIx.Text())
	shifted := shift.Walk(tagged, ops)

	updated := p.materialize(newIx, entries, spans, shifted)
	res := Result{
		Kept:    len(updated),
		Dropped: len(spans) - len(updated),
		Ops:     len(ops),
	}

	content := annotation.Replace(newContent, updated).
		WithSelectionBefore(newContent.SelectionBefore()).
		WithSelectionAfter(newContent.SelectionAfter())

	out := next.PushQuiet(content, changeType).WithSelection(next.Selection())

	p.logger.Debug("annotations repositioned",
		"change", string(changeType),
		"kept", res.Kept,
		"dropped", res.Dropped,
		"ops", res.Ops,
		"engine", p.engine.Name(),
	)
	return out, res
}

// flatten resolves every annotation to absolute offsets in document
// order. Descriptors that do not resolve cleanly are clamped and logged.
func (p *Pipeline) flatten(ix offset.Index, entries []annotation.Entry) []shift.Span[annotation.Payload] {
	spans := make([]shift.Span[annotation.Payload], 0, len(entries))
	for _, e := range entries {
		start, end, err := ix.Span(e.Selection)
		if err != nil {
			p.logger.Warn("annotation range out of bounds",
				"selection", e.Selection.String(),
				"start", start,
				"end", end,
				"error", err,
			)
		}
		spans = append(spans, shift.Span[annotation.Payload]{
			Start:    start,
			End:      end,
			Backward: e.Selection.IsBackward,
			Data:     e.Payload,
		})
	}
	return spans
}

// materialize rebuilds range descriptors for the shifted spans.
//
// Two spans can land on the same descriptor, and the map keeps only one.
// A span whose descriptor is the one it had before the edit wins;
// otherwise the one that started first in the old text does.
func (p *Pipeline) materialize(ix offset.Index, entries []annotation.Entry, orig []shift.Span[annotation.Payload], spans []shift.Span[int]) annotation.Map {
	m := make(annotation.Map, len(spans))
	owner := make(map[document.Selection]int, len(spans))
	for _, s := range spans {
		sel, err := ix.Selection(s.Start, s.End, s.Backward)
		if err != nil {
			p.logger.Warn("repositioned annotation out of bounds",
				"start", s.Start,
				"end", s.End,
				"length", ix.Len(),
				"error", err,
			)
		}

		prev, dup := owner[sel]
		if !dup {
			owner[sel] = s.Data
			m[sel] = entries[s.Data].Payload
			continue
		}

		keep, lose := prev, s.Data
		prevSame := entries[prev].Selection == sel
		curSame := entries[s.Data].Selection == sel
		if (curSame && !prevSame) || (curSame == prevSame && earlier(orig[s.Data], orig[prev])) {
			keep, lose = s.Data, prev
		}
		p.logger.Warn("annotations collapsed onto the same range",
			"selection", sel.String(),
			"kept", string(entries[keep].Payload.Kind()),
			"dropped", string(entries[lose].Payload.Kind()),
			"droppedFrom", entries[lose].Selection.String(),
		)
		owner[sel] = keep
		m[sel] = entries[keep].Payload
	}
	return m
}

func earlier(a, b shift.Span[annotation.Payload]) bool {
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}

// Resolve returns the absolute span of every annotation of c.
// It is the read side of the pipeline, used for inspection and tests.
func Resolve(c document.Content) []shift.Span[annotation.Payload] {
	p := &Pipeline{logger: slog.New(slog.DiscardHandler)}
	return p.flatten(offset.Flatten(c), annotation.Entries(annotation.Get(c)))
}
