package engine

import (
	"log/slog"

	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/findreplace"
	"github.com/dshills/marginalia/internal/engine/history"
)

// DefaultMaxUndoEntries is the default undo stack depth.
const DefaultMaxUndoEntries = history.DefaultMaxEntries

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger used by the engine and its components.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDiffEngine sets the diff engine used to reposition annotations.
func WithDiffEngine(d diff.Engine) Option {
	return func(e *Engine) {
		if d != nil {
			e.diffEngine = d
		}
	}
}

// WithMaxUndoEntries sets the maximum number of undo history entries.
func WithMaxUndoEntries(max int) Option {
	return func(e *Engine) {
		if max > 0 {
			e.maxUndoEntries = max
		}
	}
}

// WithHighlightStyles sets the inline styles used for search matches.
func WithHighlightStyles(s findreplace.Styles) Option {
	return func(e *Engine) {
		if s.Default != "" {
			e.styles.Default = s.Default
		}
		if s.Active != "" {
			e.styles.Active = s.Active
		}
	}
}

// WithMaxReplaceIterations bounds a single replace-all.
func WithMaxReplaceIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxReplaceIterations = n
		}
	}
}

// WithReadOnly rejects edits and replacements. Search and highlighting
// still work.
func WithReadOnly(readOnly bool) Option {
	return func(e *Engine) {
		e.readOnly = readOnly
	}
}

// WithConfig applies the diff, highlight, findReplace and history sections
// of cfg. An unknown diff algorithm keeps the current engine and is logged
// once the engine is built.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg == nil {
			return
		}
		d := cfg.Diff()
		de, err := diff.New(d.Algorithm, diff.Options{MaxMemoryMB: d.MaxMemoryMB})
		if err != nil {
			e.deferred = append(e.deferred, func() {
				e.logger.Warn("ignoring diff algorithm from config", "algorithm", d.Algorithm, "error", err)
			})
		} else {
			e.diffEngine = de
		}

		h := cfg.Highlight()
		WithHighlightStyles(findreplace.Styles{Default: h.Style, Active: h.ActiveStyle})(e)
		WithMaxReplaceIterations(cfg.FindReplace().MaxReplaceIterations)(e)
		WithMaxUndoEntries(cfg.History().MaxUndoEntries)(e)
	}
}
