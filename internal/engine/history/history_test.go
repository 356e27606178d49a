package history

import (
	"errors"
	"testing"

	"github.com/dshills/marginalia/internal/engine/document"
)

func entry(text string) Entry {
	return Entry{Content: document.NewContent(document.NewBlock("a", text)), ChangeType: "insert-characters"}
}

func text(e Entry) string {
	return e.Content.BlockAt(0).Text
}

func TestNewDefaults(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want int
	}{
		{"positive", 5, 5},
		{"zero", 0, DefaultMaxEntries},
		{"negative", -1, DefaultMaxEntries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.max).MaxEntries(); got != tt.want {
				t.Errorf("MaxEntries() = %d, want %d", got, tt.want)
			}
		})
	}

	var zero History
	if zero.MaxEntries() != DefaultMaxEntries {
		t.Error("zero value should use the default limit")
	}
}

func TestUndoRedo(t *testing.T) {
	h := New(10)
	h = h.Push(entry("a"))
	h = h.Push(entry("ab"))

	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("CanUndo=%v CanRedo=%v", h.CanUndo(), h.CanRedo())
	}

	h, prev, err := h.Undo(entry("abc"))
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if text(prev) != "ab" {
		t.Errorf("undo restored %q, want %q", text(prev), "ab")
	}
	if h.UndoCount() != 1 || h.RedoCount() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", h.UndoCount(), h.RedoCount())
	}

	h, next, err := h.Redo(prev)
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if text(next) != "abc" {
		t.Errorf("redo restored %q, want %q", text(next), "abc")
	}
	if h.UndoCount() != 2 || h.RedoCount() != 0 {
		t.Errorf("counts = %d/%d, want 2/0", h.UndoCount(), h.RedoCount())
	}
}

func TestEmptyStacks(t *testing.T) {
	h := New(10)
	if _, _, err := h.Undo(entry("x")); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
	if _, _, err := h.Redo(entry("x")); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
	if _, ok := h.PeekUndo(); ok {
		t.Error("PeekUndo on empty history")
	}
	if _, ok := h.PeekRedo(); ok {
		t.Error("PeekRedo on empty history")
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := New(10).Push(entry("a"))
	h, _, _ = h.Undo(entry("ab"))
	if !h.CanRedo() {
		t.Fatal("expected redo to be available")
	}
	h = h.Push(entry("a"))
	if h.CanRedo() {
		t.Error("Push should clear the redo stack")
	}
}

func TestMaxEntries(t *testing.T) {
	h := New(3)
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		h = h.Push(entry(s))
	}
	if h.UndoCount() != 3 {
		t.Fatalf("UndoCount() = %d, want 3", h.UndoCount())
	}
	top, _ := h.PeekUndo()
	if text(top) != "5" {
		t.Errorf("top = %q, want %q", text(top), "5")
	}
	info := h.UndoInfo()
	if info[0].Chars != 1 || info[0].Description != "insert-characters" {
		t.Errorf("unexpected info %+v", info[0])
	}

	h = h.WithMaxEntries(1)
	if h.UndoCount() != 1 {
		t.Errorf("WithMaxEntries(1) left %d entries", h.UndoCount())
	}
}

func TestHistoryIsImmutable(t *testing.T) {
	base := New(10).Push(entry("a"))
	pushed := base.Push(entry("b"))
	undone, _, _ := pushed.Undo(entry("c"))

	if base.UndoCount() != 1 {
		t.Errorf("base changed: %d entries", base.UndoCount())
	}
	if pushed.UndoCount() != 2 || pushed.RedoCount() != 0 {
		t.Errorf("pushed changed: %d/%d", pushed.UndoCount(), pushed.RedoCount())
	}
	if undone.UndoCount() != 1 || undone.RedoCount() != 1 {
		t.Errorf("undone = %d/%d, want 1/1", undone.UndoCount(), undone.RedoCount())
	}

	// Diverging pushes from the same base must not share storage.
	left := base.Push(entry("left"))
	right := base.Push(entry("right"))
	l, _ := left.PeekUndo()
	r, _ := right.PeekUndo()
	if text(l) != "left" || text(r) != "right" {
		t.Errorf("diverging pushes aliased: %q, %q", text(l), text(r))
	}
}

func TestClear(t *testing.T) {
	h := New(10).Push(entry("a")).Push(entry("b"))
	h, _, _ = h.Undo(entry("c"))
	h = h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("Clear left entries behind")
	}
	if len(h.RedoInfo()) != 0 {
		t.Error("RedoInfo after Clear")
	}
}

func TestClearRedo(t *testing.T) {
	h := New(10).Push(entry("a"))
	h, _, _ = h.Undo(entry("b"))
	cleared := h.ClearRedo()
	if cleared.CanRedo() || !h.CanRedo() {
		t.Error("ClearRedo should only affect the returned history")
	}
	if cleared.UndoCount() != h.UndoCount() {
		t.Error("ClearRedo changed the undo stack")
	}
}

func TestOperationInfo(t *testing.T) {
	h := New(10).Push(entry("a")).Push(entry("héllo"))

	info := h.UndoInfo()
	if len(info) != 2 {
		t.Fatalf("UndoInfo() = %d entries, want 2", len(info))
	}
	if info[0].Chars != 1 || info[1].Chars != 5 {
		t.Errorf("Chars = %d, %d, want 1, 5 (oldest first, counted in runes)", info[0].Chars, info[1].Chars)
	}
	for i, op := range info {
		if op.Description != "insert-characters" {
			t.Errorf("info[%d].Description = %q", i, op.Description)
		}
		if op.Timestamp.IsZero() {
			t.Errorf("info[%d] has no timestamp", i)
		}
	}
	if len(h.RedoInfo()) != 0 {
		t.Error("RedoInfo() should be empty")
	}

	h, _, err := h.Undo(entry("héllo!"))
	if err != nil {
		t.Fatal(err)
	}
	redo := h.RedoInfo()
	if len(redo) != 1 || redo[0].Chars != 6 {
		t.Errorf("RedoInfo() = %+v, want one 6-char entry", redo)
	}
}
