package findreplace

import (
	"log/slog"
	"regexp"
	"slices"
	"unicode/utf8"

	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/offset"
	"github.com/dshills/marginalia/internal/engine/reposition"
	"github.com/dshills/marginalia/internal/engine/state"
)

// Default highlight style names.
const (
	DefaultStyle       = "HIGHLIGHT"
	DefaultActiveStyle = "HIGHLIGHT_STRONG"
)

// DefaultMaxReplaceIterations bounds a single replace-all.
const DefaultMaxReplaceIterations = 10000

// Store is the find/replace state: the editor plus the search term.
type Store struct {
	Editor state.EditorState
	Term   SearchTerm
}

// Styles names the inline styles used for highlighting.
type Styles struct {
	Default string
	Active  string
}

// DefaultStyles returns the default highlight styles.
func DefaultStyles() Styles {
	return Styles{Default: DefaultStyle, Active: DefaultActiveStyle}
}

// Reducer applies actions to a Store.
type Reducer struct {
	pipeline      *reposition.Pipeline
	styles        Styles
	maxIterations int
	logger        *slog.Logger
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithPipeline sets the pipeline that repositions annotations after a
// replacement.
func WithPipeline(p *reposition.Pipeline) Option {
	return func(r *Reducer) {
		if p != nil {
			r.pipeline = p
		}
	}
}

// WithStyles sets the highlight style names. Empty names keep the
// defaults.
func WithStyles(s Styles) Option {
	return func(r *Reducer) {
		if s.Default != "" {
			r.styles.Default = s.Default
		}
		if s.Active != "" {
			r.styles.Active = s.Active
		}
	}
}

// WithMaxReplaceIterations bounds the number of replacements of a single
// replace-all.
func WithMaxReplaceIterations(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.maxIterations = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reducer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReducer creates a reducer.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		styles:        DefaultStyles(),
		maxIterations: DefaultMaxReplaceIterations,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pipeline == nil {
		r.pipeline = reposition.New(reposition.WithLogger(r.logger))
	}
	return r
}

// Styles returns the highlight styles of the reducer.
func (r *Reducer) Styles() Styles {
	return r.styles
}

// Reduce applies a with a default reducer.
func Reduce(s Store, a Action) Store {
	return NewReducer().Reduce(s, a)
}

// Reduce applies a to s and returns the new store. Unknown actions return
// s unchanged.
func (r *Reducer) Reduce(s Store, a Action) Store {
	switch a := a.(type) {
	case FindNext:
		return r.findNext(s)
	case FindPrev:
		return r.findPrev(s)
	case Replace:
		return r.replace(s, a.Text, false)
	case ReplaceAll:
		return r.replace(s, a.Text, true)
	case ReplaceMultiple:
		return r.replaceMultiple(s, a.Diff)
	case Render:
		return r.render(s)
	case SetCriteria:
		return r.setCriteria(s, SearchTerm{Pattern: a.Pattern, CaseSensitive: a.CaseSensitive})
	case SetCriteriaDiff:
		return r.setCriteria(s, SearchTerm{
			Pattern:       firstKey(a.Diff),
			CaseSensitive: a.CaseSensitive,
			Diff:          a.Diff,
		})
	default:
		return s
	}
}

func (r *Reducer) compile(t SearchTerm) *regexp.Regexp {
	re, err := t.Regexp()
	if err != nil {
		r.logger.Warn("invalid search term", "pattern", t.Pattern, "error", err)
		return nil
	}
	return re
}

// clear removes highlight styles from the editor content.
func (r *Reducer) clear(c document.Content) document.Content {
	return document.RemoveStyles(c, r.styles.Default, r.styles.Active)
}

func (r *Reducer) render(s Store) Store {
	content := s.Editor.Content()
	cleared := r.clear(content)

	next := cleared
	if re := r.compile(s.Term); re != nil {
		next, _ = ForEachMatch(cleared, re, func(m Match, c document.Content) document.Content {
			style := r.styles.Default
			if m.Index == s.Term.Index {
				style = r.styles.Active
			}
			return document.ApplyInlineStyle(c, m.Selection, style)
		})
	}

	if sameStyles(content, next) {
		return s
	}
	s.Editor = s.Editor.PushQuiet(next, state.ChangeInlineStyle)
	return s
}

func (r *Reducer) findNext(s Store) Store {
	count := CountOccurrences(s)
	s.Term.Index++
	if s.Term.Index >= count {
		s.Term.Index = 0
	}
	return r.render(s)
}

func (r *Reducer) findPrev(s Store) Store {
	count := CountOccurrences(s)
	s.Term.Index--
	if s.Term.Index < 0 {
		s.Term.Index = count - 1
	}
	return r.render(s)
}

func (r *Reducer) setCriteria(s Store, t SearchTerm) Store {
	// A new pattern waits for FindNext to land on the first match; a
	// sensitivity change keeps the first match active.
	if t.Pattern != s.Term.Pattern {
		t.Index = -1
	} else {
		t.Index = 0
	}
	s.Term = t
	return r.render(s)
}

func (r *Reducer) replace(s Store, text string, all bool) Store {
	re := r.compile(s.Term)
	if re == nil {
		return s
	}

	prev := s.Editor
	cleared := r.clear(prev.Content())
	if !sameStyles(prev.Content(), cleared) {
		prev = prev.PushQuiet(cleared, state.ChangeInlineStyle)
	}

	var (
		replaced document.Content
		changed  bool
	)
	if all {
		replaced, changed = r.replaceAll(cleared, re, text)
	} else {
		replaced, changed = replaceAt(cleared, re, s.Term.Index, text)
	}

	s.Editor = prev
	if !changed {
		return s
	}

	next := prev.Push(replaced, state.InsertCharacters)
	s.Editor = r.pipeline.Reposition(prev, next)
	if !all {
		s.Term.Index--
	}
	return s
}

// replaceAt replaces match index of re in c, keeping the style and entity
// of the first matched character.
func replaceAt(c document.Content, re *regexp.Regexp, index int, text string) (document.Content, bool) {
	for _, m := range Matches(c, re) {
		if m.Index != index {
			continue
		}
		return replaceMatch(c, m, text)
	}
	return c, false
}

func replaceMatch(c document.Content, m Match, text string) (document.Content, bool) {
	out, err := document.ReplaceText(c, m.Selection, text, m.Block.StyleAt(m.Start), m.Block.EntityAt(m.Start))
	if err != nil {
		return c, false
	}
	return out, true
}

// replaceAll replaces matches one at a time, re-scanning after each
// replacement. Only matches starting at or after the end of the previous
// replacement are taken, so a replacement that contains the pattern is
// never matched again.
func (r *Reducer) replaceAll(c document.Content, re *regexp.Regexp, text string) (document.Content, bool) {
	textLen := utf8.RuneCountInString(text)
	cursor := 0
	changed := false

	for i := 0; ; i++ {
		if i >= r.maxIterations {
			r.logger.Warn("replace-all stopped at iteration limit",
				"limit", r.maxIterations,
				"pattern", re.String(),
			)
			break
		}

		ix := offset.Flatten(c)
		var (
			next  Match
			start int
			found bool
		)
		for _, m := range Matches(c, re) {
			abs, err := ix.Absolute(m.Selection.AnchorKey, m.Start)
			if err != nil || abs < cursor {
				continue
			}
			next, start, found = m, abs, true
			break
		}
		if !found {
			break
		}

		out, ok := replaceMatch(c, next, text)
		if !ok {
			break
		}
		c = out
		changed = true
		cursor = start + textLen
	}
	return c, changed
}

func (r *Reducer) replaceMultiple(s Store, diff map[string]string) Store {
	for _, key := range diffKeys(diff) {
		s = r.setCriteria(s, SearchTerm{
			Pattern:       key,
			CaseSensitive: true,
			Diff:          map[string]string{key: diff[key]},
		})
		s = r.replace(s, diff[key], true)
	}
	return s
}

// CountOccurrences returns the number of matches of the store's term.
func CountOccurrences(s Store) int {
	re, err := s.Term.Regexp()
	if err != nil || re == nil {
		return 0
	}
	return len(Matches(s.Editor.Content(), re))
}

// ActiveText returns the text under the active match, or the pattern when
// no match is active.
func ActiveText(s Store) string {
	re, err := s.Term.Regexp()
	if err != nil || re == nil {
		return s.Term.Pattern
	}
	matches := Matches(s.Editor.Content(), re)
	if s.Term.Index < 0 || s.Term.Index >= len(matches) {
		return s.Term.Pattern
	}
	return matches[s.Term.Index].Text
}

func firstKey(diff map[string]string) string {
	keys := diffKeys(diff)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// sameStyles returns true if a and b have identical per-character
// metadata. Both must have the same blocks.
func sameStyles(a, b document.Content) bool {
	if a.BlockCount() != b.BlockCount() {
		return false
	}
	for i := 0; i < a.BlockCount(); i++ {
		ba, bb := a.BlockAt(i), b.BlockAt(i)
		if ba.Text != bb.Text || len(ba.Chars) != len(bb.Chars) {
			return false
		}
		if !slices.EqualFunc(ba.Chars, bb.Chars, document.CharMeta.Equal) {
			return false
		}
	}
	return true
}
