package findreplace

// Action is a find/replace request handled by Reduce.
type Action interface {
	actionName() string
}

// FindNext activates the next match, wrapping to the first.
type FindNext struct{}

// FindPrev activates the previous match, wrapping to the last.
type FindPrev struct{}

// Replace replaces the active match with Text.
type Replace struct {
	Text string
}

// ReplaceAll replaces every match with Text.
type ReplaceAll struct {
	Text string
}

// ReplaceMultiple replaces every occurrence of each key of Diff with its
// value. Keys are matched case-sensitively.
type ReplaceMultiple struct {
	Diff map[string]string
}

// Render re-applies highlight styles for the current term.
type Render struct{}

// SetCriteria sets a literal search pattern.
type SetCriteria struct {
	Pattern       string
	CaseSensitive bool
}

// SetCriteriaDiff sets a search diff: all keys are searched at once.
type SetCriteriaDiff struct {
	Diff          map[string]string
	CaseSensitive bool
}

func (FindNext) actionName() string        { return "find-next" }
func (FindPrev) actionName() string        { return "find-prev" }
func (Replace) actionName() string         { return "replace" }
func (ReplaceAll) actionName() string      { return "replace-all" }
func (ReplaceMultiple) actionName() string { return "replace-multiple" }
func (Render) actionName() string          { return "render" }
func (SetCriteria) actionName() string     { return "set-criteria" }
func (SetCriteriaDiff) actionName() string { return "set-criteria-diff" }

// ActionName returns the name of a for logging.
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}
