package runner

import (
	"context"
	"fmt"

	"github.com/dshills/marginalia/internal/docfile"
	"github.com/dshills/marginalia/internal/engine/state"
)

// Reposition moves the annotations of an old document version onto a new
// version of its text.
type Reposition struct {
	Base

	// OldPath holds the annotated document.
	OldPath string

	// NewPath holds the edited document. Its own annotations are ignored.
	NewPath string

	// Change is the change type reported for the edit. Non-content changes
	// leave annotations untouched.
	Change state.ChangeType

	// OutPath receives the repositioned document. When empty the result is
	// listed instead.
	OutPath string
}

// Do performs the repositioning.
func (r *Reposition) Do(ctx context.Context) error {
	if err := require("old document", r.OldPath); err != nil {
		return err
	}
	if err := require("new document", r.NewPath); err != nil {
		return err
	}
	change := r.Change
	if change == state.None {
		change = state.InsertFragment
	}

	old, err := docfile.Read(r.OldPath)
	if err != nil {
		return err
	}
	next, err := docfile.Read(r.NewPath)
	if err != nil {
		return err
	}

	eng := r.newEngine(old)
	defer eng.Close()

	if _, err := eng.OnChange(eng.State().Push(next, change)); err != nil {
		return err
	}
	result := eng.Content()

	w := r.out()
	printReport(w, eng.LastReport())
	if r.OutPath != "" {
		if err := docfile.Write(r.OutPath, result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "wrote %s\n", r.OutPath)
		return nil
	}
	printAnnotations(w, result)
	return nil
}
