package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/marginalia/internal/docfile"
	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/offset"
)

// List prints the annotations of a document.
type List struct {
	Base

	DocPath string

	// Kind restricts the listing to one annotation kind.
	Kind string
}

// Do lists the annotations.
func (l *List) Do(ctx context.Context) error {
	if err := require("document", l.DocPath); err != nil {
		return err
	}
	c, err := docfile.Read(l.DocPath)
	if err != nil {
		return err
	}
	if l.Kind != "" {
		keep := annotation.Map{}
		for _, e := range annotation.Filter(annotation.Get(c), annotation.Kind(l.Kind)) {
			keep[e.Selection] = e.Payload
		}
		c = annotation.Replace(c, keep)
	}
	printAnnotations(l.out(), c)
	return nil
}

// Comment adds, replies to, resolves or removes a comment and writes the
// document back.
type Comment struct {
	Base

	DocPath string

	// Start and End are absolute character offsets of a new comment in
	// the flattened document. Block boundaries count as two characters.
	Start, End int

	Author  string
	Message string

	// ID selects an existing comment. With Message set a reply is added;
	// otherwise Resolve or Remove applies.
	ID      string
	Resolve bool
	Remove  bool

	// OutPath receives the result. When empty DocPath is rewritten.
	OutPath string
}

// Do applies the comment change.
func (cm *Comment) Do(ctx context.Context) error {
	if err := require("document", cm.DocPath); err != nil {
		return err
	}
	c, err := docfile.Read(cm.DocPath)
	if err != nil {
		return err
	}
	eng := cm.newEngine(c)
	defer eng.Close()

	w := cm.out()
	switch {
	case cm.ID == "":
		if err := require("message", cm.Message); err != nil {
			return err
		}
		sel, err := selectionAt(eng.Content(), cm.Start, cm.End)
		if err != nil {
			return err
		}
		added, err := eng.AddComment(sel, cm.Author, cm.Message)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "added comment %s at %s\n", added.ID, FormatRange(sel))
	case cm.Remove:
		if err := eng.RemoveComment(cm.ID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "removed comment %s\n", cm.ID)
	case cm.Resolve:
		if err := eng.ResolveComment(cm.ID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "resolved comment %s\n", cm.ID)
	case cm.Message != "":
		if _, err := eng.ReplyToComment(cm.ID, cm.Author, cm.Message); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "replied to comment %s\n", cm.ID)
	default:
		return errors.New("comment: nothing to do")
	}

	out := cm.OutPath
	if out == "" {
		out = cm.DocPath
	}
	return docfile.Write(out, eng.Content())
}

// selectionAt converts absolute offsets to a selection, rejecting offsets
// outside the document.
func selectionAt(c document.Content, start, end int) (document.Selection, error) {
	ix := offset.Flatten(c)
	if start < 0 || end < start || end > ix.Len() {
		return document.Selection{}, fmt.Errorf("%w: range %d-%d outside 0-%d", offset.ErrOffsetOutOfRange, start, end, ix.Len())
	}
	return ix.Selection(start, end, false)
}
