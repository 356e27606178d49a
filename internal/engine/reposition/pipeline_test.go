package reposition

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/offset"
	"github.com/dshills/marginalia/internal/engine/state"
)

var world = document.Range("a", 6, "a", 11)

func commented() state.EditorState {
	c := document.NewContent(
		document.NewBlock("a", "hello world"),
		document.NewBlock("b", "hello there"),
	)
	c = annotation.Merge(c, world, annotation.NewComment("ana", "which world?", time.Time{}))
	return state.New(c, 0)
}

func edit(t *testing.T, s state.EditorState, ct state.ChangeType, fn func(document.Content) (document.Content, error)) state.EditorState {
	t.Helper()
	c, err := fn(s.Content())
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	return s.Push(c, ct)
}

func onlySelection(t *testing.T, s state.EditorState) document.Selection {
	t.Helper()
	entries := annotation.Entries(annotation.Get(s.Content()))
	if len(entries) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(entries))
	}
	return entries[0].Selection
}

func pipelines() []*Pipeline {
	quiet := slog.New(slog.DiscardHandler)
	return []*Pipeline{
		New(WithLogger(quiet)),
		New(WithLogger(quiet), WithDiffEngine(diff.NewMyers(diff.DefaultOptions()))),
	}
}

func TestInsertionBeforeComment(t *testing.T) {
	for _, p := range pipelines() {
		t.Run(p.engine.Name(), func(t *testing.T) {
			prev := commented()
			next := edit(t, prev, state.InsertCharacters, func(c document.Content) (document.Content, error) {
				return document.InsertText(c, document.Collapsed("a", 0), "X")
			})

			out, res := p.RepositionWithReport(prev, next)
			if res.Skipped || res.Kept != 1 || res.Dropped != 0 {
				t.Errorf("unexpected result %+v", res)
			}
			if got := onlySelection(t, out); got != document.Range("a", 7, "a", 12) {
				t.Errorf("comment moved to %v, want a:7-a:12", got)
			}
			if out.Content().BlockAt(0).Text != "Xhello world" {
				t.Errorf("block text changed: %q", out.Content().BlockAt(0).Text)
			}
		})
	}
}

func TestDeletionOfCommentedText(t *testing.T) {
	for _, p := range pipelines() {
		t.Run(p.engine.Name(), func(t *testing.T) {
			prev := commented()
			next := edit(t, prev, state.RemoveRange, func(c document.Content) (document.Content, error) {
				return document.RemoveRange(c, world)
			})

			out, res := p.RepositionWithReport(prev, next)
			if res.Dropped != 1 || res.Kept != 0 {
				t.Errorf("unexpected result %+v", res)
			}
			if n := annotation.Count(out.Content()); n != 0 {
				t.Errorf("expected the comment to be dropped, %d left", n)
			}
		})
	}
}

func TestPartialDeletionClips(t *testing.T) {
	prev := commented()
	next := edit(t, prev, state.RemoveRange, func(c document.Content) (document.Content, error) {
		return document.RemoveRange(c, document.Range("a", 4, "a", 8))
	})

	out := New(WithLogger(slog.New(slog.DiscardHandler))).Reposition(prev, next)
	// "hellrld": the surviving "rld" is [4,7).
	if got := onlySelection(t, out); got != document.Range("a", 4, "a", 7) {
		t.Errorf("comment clipped to %v, want a:4-a:7", got)
	}
}

func TestEditInOtherBlock(t *testing.T) {
	prev := commented()
	next := edit(t, prev, state.InsertCharacters, func(c document.Content) (document.Content, error) {
		return document.InsertText(c, document.Collapsed("b", 0), "oh ")
	})

	out := New().Reposition(prev, next)
	if got := onlySelection(t, out); got != world {
		t.Errorf("comment moved to %v, want %v", got, world)
	}
}

func TestSplitBlockMovesComment(t *testing.T) {
	prev := commented()
	next := edit(t, prev, state.SplitBlock, func(c document.Content) (document.Content, error) {
		return document.SplitBlock(c, document.Collapsed("a", 6), "n")
	})

	out := New().Reposition(prev, next)
	if got := onlySelection(t, out); got != document.Range("n", 0, "n", 5) {
		t.Errorf("comment moved to %v, want n:0-n:5", got)
	}
}

func TestBackwardSelectionPreserved(t *testing.T) {
	back := document.Selection{AnchorKey: "a", AnchorOffset: 11, FocusKey: "a", FocusOffset: 6, IsBackward: true}
	c := document.NewContent(document.NewBlock("a", "hello world"))
	c = annotation.Merge(c, back, annotation.Highlight{Tag: "h"})
	prev := state.New(c, 0)
	next := edit(t, prev, state.InsertCharacters, func(c document.Content) (document.Content, error) {
		return document.InsertText(c, document.Collapsed("a", 0), ">>")
	})

	out := New().Reposition(prev, next)
	got := onlySelection(t, out)
	want := document.Selection{AnchorKey: "a", AnchorOffset: 13, FocusKey: "a", FocusOffset: 8, IsBackward: true}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFastPaths(t *testing.T) {
	plain := state.New(document.FromText("no comments here"), 0)
	typed := edit(t, plain, state.InsertCharacters, func(c document.Content) (document.Content, error) {
		return document.InsertText(c, document.Collapsed(c.FirstKey(), 0), "X")
	})

	prev := commented()
	styled := prev.Push(document.ApplyInlineStyle(prev.Content(), world, "BOLD"), state.ChangeInlineStyle)
	sameText := prev.Push(prev.Content().WithMeta("other", true), state.InsertCharacters)

	tests := []struct {
		name string
		prev state.EditorState
		next state.EditorState
		want Reason
	}{
		{"no annotations", plain, typed, ReasonNoAnnotations},
		{"style change", prev, styled, ReasonNotContent},
		{"text unchanged", prev, sameText, ReasonTextUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, res := New().RepositionWithReport(tt.prev, tt.next)
			if !res.Skipped || res.Reason != tt.want {
				t.Errorf("result = %+v, want skipped with %q", res, tt.want)
			}
			if out.History().UndoCount() != tt.next.History().UndoCount() {
				t.Error("pass-through changed the history")
			}
			if annotation.Count(out.Content()) != annotation.Count(tt.next.Content()) {
				t.Error("pass-through changed the annotations")
			}
		})
	}
}

func TestIdentityLaw(t *testing.T) {
	s := commented()
	before, err := annotation.MarshalMap(annotation.Get(s.Content()))
	if err != nil {
		t.Fatal(err)
	}

	out := New().Reposition(s, s)
	after, err := annotation.MarshalMap(annotation.Get(out.Content()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("annotations changed:\n%s\n%s", before, after)
	}
}

func TestUndoSkipsRepositioning(t *testing.T) {
	prev := commented()
	next := edit(t, prev, state.InsertCharacters, func(c document.Content) (document.Content, error) {
		return document.InsertText(c, document.Collapsed("a", 0), "X")
	})
	out := New().Reposition(prev, next)

	if out.History().UndoCount() != next.History().UndoCount() {
		t.Fatalf("repositioning added undo entries: %d vs %d", out.History().UndoCount(), next.History().UndoCount())
	}
	if !out.AllowUndo() {
		t.Error("AllowUndo left disabled")
	}
	if out.Selection() != next.Selection() {
		t.Errorf("selection = %v, want %v", out.Selection(), next.Selection())
	}

	undone, err := out.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if undone.Content().BlockAt(0).Text != "hello world" {
		t.Errorf("undo restored %q", undone.Content().BlockAt(0).Text)
	}
	if got := onlySelection(t, undone); got != world {
		t.Errorf("undo restored comment at %v, want %v", got, world)
	}
}

func TestRoundTripLaw(t *testing.T) {
	c := document.NewContent(
		document.NewBlock("a", "The quick brown fox"),
		document.NewBlock("b", "jumps over"),
		document.NewBlock("c", "the lazy dog"),
	)
	c = annotation.Merge(c, document.Range("a", 4, "a", 9), annotation.Highlight{Tag: "quick"})
	c = annotation.Merge(c, document.Range("a", 10, "b", 5), annotation.Highlight{Tag: "brown-jumps"})
	c = annotation.Merge(c, document.Range("c", 4, "c", 8), annotation.Highlight{Tag: "lazy"})
	c = annotation.Merge(c, document.Range("a", 0, "c", 12), annotation.Highlight{Tag: "all"})
	prev := state.New(c, 0)

	edits := []struct {
		name string
		ct   state.ChangeType
		fn   func(document.Content) (document.Content, error)
	}{
		{"remove across blocks", state.RemoveRange, func(c document.Content) (document.Content, error) {
			return document.RemoveRange(c, document.Range("a", 6, "c", 2))
		}},
		{"insert word", state.InsertCharacters, func(c document.Content) (document.Content, error) {
			return document.InsertText(c, document.Collapsed("b", 6), "right ")
		}},
		{"split", state.SplitBlock, func(c document.Content) (document.Content, error) {
			return document.SplitBlock(c, document.Range("a", 3, "a", 10), "")
		}},
		{"paste fragment", state.InsertFragment, func(c document.Content) (document.Content, error) {
			return document.InsertFragment(c, document.Collapsed("c", 4), []document.Block{
				document.NewBlock("", "very"),
				document.NewBlock("", "very "),
			})
		}},
		{"delete everything", state.RemoveRange, func(c document.Content) (document.Content, error) {
			return document.RemoveRange(c, document.Range("a", 0, "c", 12))
		}},
	}

	for _, p := range pipelines() {
		for _, e := range edits {
			t.Run(p.engine.Name()+"/"+e.name, func(t *testing.T) {
				next := edit(t, prev, e.ct, e.fn)
				out := p.Reposition(prev, next)
				ix := offset.Flatten(out.Content())

				for _, en := range annotation.Entries(annotation.Get(out.Content())) {
					for _, pos := range []offset.Position{
						{Key: en.Selection.AnchorKey, Offset: en.Selection.AnchorOffset},
						{Key: en.Selection.FocusKey, Offset: en.Selection.FocusOffset},
					} {
						if _, err := ix.Absolute(pos.Key, pos.Offset); err != nil {
							t.Errorf("annotation %v has invalid endpoint %v: %v", en.Payload, pos, err)
						}
					}
				}
			})
		}
	}
}

func TestOutOfBoundsDescriptorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	c := document.NewContent(document.NewBlock("a", "hello world"))
	c = annotation.Merge(c, document.Range("a", 6, "gone", 3), annotation.Highlight{Tag: "h"})
	prev := state.New(c, 0)
	next := edit(t, prev, state.InsertCharacters, func(c document.Content) (document.Content, error) {
		return document.InsertText(c, document.Collapsed("a", 0), "X")
	})

	out := New(WithLogger(logger)).Reposition(prev, next)
	if !strings.Contains(buf.String(), "annotation range out of bounds") {
		t.Errorf("expected a diagnostic, got %q", buf.String())
	}
	if annotation.Count(out.Content()) != 1 {
		t.Error("the session should continue with a clamped annotation")
	}
}

func TestCollisionPolicy(t *testing.T) {
	tests := []struct {
		name    string
		first   document.Selection
		second  document.Selection
		remove  document.Selection
		want    document.Selection
		wantTag string
	}{
		// "second" is clipped onto the untouched "first".
		{"untouched range wins", document.Range("a", 0, "a", 3), document.Range("a", 0, "a", 5), document.Range("a", 3, "a", 5), document.Range("a", 0, "a", 3), "first"},
		// Both move onto [1,3); "first" starts earlier.
		{"first in document order wins", document.Range("a", 1, "a", 4), document.Range("a", 2, "a", 4), document.Range("a", 1, "a", 2), document.Range("a", 1, "a", 3), "first"},
	}

	for _, tt := range tests {
		for _, engine := range []diff.Engine{diff.NewDMP(), diff.NewMyers(diff.DefaultOptions())} {
			t.Run(tt.name+"/"+engine.Name(), func(t *testing.T) {
				var buf bytes.Buffer
				p := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))), WithDiffEngine(engine))

				c := document.NewContent(document.NewBlock("a", "abcdefghij"))
				c = annotation.Merge(c, tt.first, annotation.Highlight{Tag: "first"})
				c = annotation.Merge(c, tt.second, annotation.Highlight{Tag: "second"})
				prev := state.New(c, 0)
				next := edit(t, prev, state.RemoveRange, func(c document.Content) (document.Content, error) {
					return document.RemoveRange(c, tt.remove)
				})

				out, res := p.RepositionWithReport(prev, next)
				if res.Kept != 1 || res.Dropped != 1 {
					t.Errorf("unexpected result %+v", res)
				}
				entries := annotation.Entries(annotation.Get(out.Content()))
				if len(entries) != 1 {
					t.Fatalf("expected 1 annotation, got %d", len(entries))
				}
				if entries[0].Selection != tt.want {
					t.Errorf("survivor at %v, want %v", entries[0].Selection, tt.want)
				}
				if h, ok := entries[0].Payload.(annotation.Highlight); !ok || h.Tag != tt.wantTag {
					t.Errorf("survivor = %+v, want highlight %q", entries[0].Payload, tt.wantTag)
				}

				logs := buf.String()
				if !strings.Contains(logs, "level=WARN") || !strings.Contains(logs, "annotations collapsed onto the same range") {
					t.Errorf("expected a warning, got %q", logs)
				}
				if !strings.Contains(logs, "dropped=highlight") {
					t.Errorf("warning should name the dropped kind, got %q", logs)
				}
			})
		}
	}
}

func TestResolve(t *testing.T) {
	spans := Resolve(commented().Content())
	if len(spans) != 1 || spans[0].Start != 6 || spans[0].End != 11 {
		t.Errorf("unexpected spans %+v", spans)
	}
}
