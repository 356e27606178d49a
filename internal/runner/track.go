package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosuri/uitable"

	"github.com/dshills/marginalia/internal/docfile"
	"github.com/dshills/marginalia/internal/engine/state"
	"github.com/dshills/marginalia/internal/snapshot"
	"github.com/dshills/marginalia/internal/watcher"
)

// Track keeps the annotations of a document in step with edits made to
// it by other programs. The first run records a snapshot of the document;
// later runs diff the document against the snapshot, reposition the
// snapshot's annotations onto the new text and store the result.
type Track struct {
	Base

	DocPath string
	Store   *snapshot.Store

	// Watch keeps tracking after the first run until ctx is cancelled.
	Watch bool

	// Debounce is the quiet period before a change is processed.
	Debounce time.Duration
}

// Do tracks the document once, or continuously when Watch is set.
func (t *Track) Do(ctx context.Context) error {
	if err := require("document", t.DocPath); err != nil {
		return err
	}
	if t.Store == nil {
		return fmt.Errorf("%w: snapshot store", ErrMissingInput)
	}

	if err := t.step(); err != nil {
		return err
	}
	if !t.Watch {
		return nil
	}

	w, err := watcher.New(watcher.WithDebounceDelay(t.Debounce), watcher.WithLogger(t.logger()))
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(t.DocPath); err != nil {
		return err
	}

	t.logger().Info("watching document", "path", t.DocPath)
	err = w.Run(ctx, func(e watcher.Event) {
		if !e.Exists() {
			t.logger().Warn("document is gone, waiting for it to return", "path", e.Path, "op", e.Op.String())
			return
		}
		if err := t.step(); err != nil {
			t.logger().Error("track failed", "path", e.Path, "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// step runs one tracking pass.
func (t *Track) step() error {
	w := t.out()
	cur, err := docfile.Read(t.DocPath)
	if err != nil {
		return err
	}

	snap, err := t.Store.Load(t.DocPath)
	if errors.Is(err, snapshot.ErrNotFound) {
		saved, err := t.Store.Save(t.DocPath, cur)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "tracking %s (%d annotations)\n", saved.Path, saved.Annotations())
		return nil
	}
	if err != nil {
		return err
	}

	if snapshot.Fingerprint(cur) == snap.Fingerprint {
		_, _ = faint.Fprintf(w, "%s: text unchanged\n", snap.Path)
		return nil
	}

	eng := t.newEngine(snap.Content)
	defer eng.Close()
	if _, err := eng.OnChange(eng.State().Push(cur, state.InsertFragment)); err != nil {
		return err
	}

	saved, err := t.Store.Save(t.DocPath, eng.Content())
	if err != nil {
		return err
	}
	_, _ = bold.Fprintf(w, "%s: ", saved.Path)
	printReport(w, eng.LastReport())
	printAnnotations(w, saved.Content)
	return nil
}

// Snapshots lists the documents held in the snapshot store.
type Snapshots struct {
	Base

	Store *snapshot.Store
}

// Do lists the snapshots.
func (s *Snapshots) Do(ctx context.Context) error {
	if s.Store == nil {
		return fmt.Errorf("%w: snapshot store", ErrMissingInput)
	}
	w := s.out()
	list := s.Store.List(ctx)
	if len(list) == 0 {
		_, _ = faint.Fprintln(w, "no tracked documents")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("DOCUMENT"), bold.Sprint("BLOCKS"), bold.Sprint("ANNOTATIONS"), bold.Sprint("SAVED"), bold.Sprint("FINGERPRINT"))
	for _, snap := range list {
		tbl.AddRow(snap.Path, snap.Content.BlockCount(), snap.Annotations(),
			snap.Saved.Local().Format(time.DateTime), snap.Fingerprint[:min(12, len(snap.Fingerprint))])
	}
	_, _ = fmt.Fprintln(w, tbl)
	return nil
}

// Untrack forgets the snapshot of a document.
type Untrack struct {
	Base

	DocPath string
	Store   *snapshot.Store
}

// Do removes the snapshot.
func (u *Untrack) Do(ctx context.Context) error {
	if err := require("document", u.DocPath); err != nil {
		return err
	}
	if u.Store == nil {
		return fmt.Errorf("%w: snapshot store", ErrMissingInput)
	}
	if err := u.Store.Delete(u.DocPath); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(u.out(), "untracked %s\n", u.DocPath)
	return nil
}
