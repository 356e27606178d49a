package annotation

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/dshills/marginalia/internal/engine/document"
)

func testContent() document.Content {
	return document.NewContent(
		document.NewBlock("a", "hello world"),
		document.NewBlock("b", "hello there"),
	)
}

func TestGetEmpty(t *testing.T) {
	c := testContent()
	if m := Get(c); len(m) != 0 {
		t.Errorf("expected empty map, got %v", m)
	}
	if Count(c) != 0 {
		t.Errorf("expected count 0, got %d", Count(c))
	}
}

func TestMergeAndRemove(t *testing.T) {
	c := testContent()
	sel := document.Range("a", 6, "a", 11)
	comment := NewComment("ana", "which world?", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	merged := Merge(c, sel, comment)
	if Count(merged) != 1 {
		t.Fatalf("expected 1 annotation, got %d", Count(merged))
	}
	if Count(c) != 0 {
		t.Error("Merge modified its input")
	}
	got, ok := Get(merged)[sel].(Comment)
	if !ok {
		t.Fatalf("expected a comment, got %T", Get(merged)[sel])
	}
	if got.ID != comment.ID || got.Msg != "which world?" {
		t.Errorf("unexpected comment %+v", got)
	}
	if !merged.SameText(c) {
		t.Error("Merge changed block text")
	}

	removed := Remove(merged, sel)
	if Count(removed) != 0 {
		t.Errorf("expected 0 annotations after Remove, got %d", Count(removed))
	}
	if _, ok := removed.Meta(MetaKey); ok {
		t.Error("expected the metadata entry to be removed with the last annotation")
	}
}

func TestMergeNilRemoves(t *testing.T) {
	sel := document.Range("a", 0, "a", 5)
	c := Merge(testContent(), sel, Highlight{Tag: "h"})
	c = Merge(c, sel, nil)
	if Count(c) != 0 {
		t.Errorf("expected nil payload to remove the entry, got %d", Count(c))
	}
}

func TestGetReturnsCopy(t *testing.T) {
	sel := document.Range("a", 0, "a", 5)
	c := Merge(testContent(), sel, Highlight{Tag: "h"})

	m := Get(c)
	delete(m, sel)
	if Count(c) != 1 {
		t.Error("mutating the map returned by Get changed the content")
	}
}

func TestReplaceKeepsBlocks(t *testing.T) {
	c := testContent()
	m := Map{
		document.Range("a", 0, "a", 5): Highlight{Tag: "x"},
		document.Range("b", 0, "b", 5): Suggestion{Type: "ADD_SUGGESTION", Author: "bo"},
	}
	out := Replace(c, m)
	if Count(out) != 2 {
		t.Errorf("expected 2 annotations, got %d", Count(out))
	}
	if !out.SameText(c) {
		t.Error("Replace changed block text")
	}
	if out.SelectionAfter() != c.SelectionAfter() {
		t.Error("Replace changed the selection markers")
	}
}

func TestEntriesOrder(t *testing.T) {
	m := Map{
		document.Range("b", 0, "b", 1): Highlight{Tag: "3"},
		document.Range("a", 4, "a", 6): Highlight{Tag: "2"},
		document.Range("a", 0, "a", 2): Highlight{Tag: "1"},
		{AnchorKey: "a", AnchorOffset: 0, FocusKey: "a", FocusOffset: 2, IsBackward: true}: Highlight{Tag: "1b"},
	}
	var tags []string
	for _, e := range Entries(m) {
		tags = append(tags, e.Payload.(Highlight).Tag)
	}
	want := []string{"1", "1b", "2", "3"}
	if len(tags) != len(want) {
		t.Fatalf("got %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestFindCommentAndFilter(t *testing.T) {
	c1 := NewComment("ana", "one", time.Time{})
	c2 := NewComment("bo", "two", time.Time{})
	sel2 := document.Range("b", 0, "b", 5)
	m := Map{
		document.Range("a", 0, "a", 5): c1,
		sel2:                           c2,
		document.Range("a", 6, "a", 8): Highlight{Tag: "h"},
	}

	sel, got, ok := FindComment(m, c2.ID)
	if !ok || sel != sel2 || got.Msg != "two" {
		t.Errorf("FindComment = %v, %+v, %v", sel, got, ok)
	}
	if _, _, ok := FindComment(m, "missing"); ok {
		t.Error("expected missing comment not to be found")
	}
	if n := len(Filter(m, KindComment)); n != 2 {
		t.Errorf("expected 2 comments, got %d", n)
	}
}

func TestCommentReply(t *testing.T) {
	c := NewComment("ana", "root", time.Time{})
	r1 := c.Reply(Message{Author: "bo", Msg: "first"})
	r2 := r1.Reply(Message{Author: "cy", Msg: "second"})

	if len(c.Replies) != 0 || len(r1.Replies) != 1 || len(r2.Replies) != 2 {
		t.Errorf("unexpected reply counts %d, %d, %d", len(c.Replies), len(r1.Replies), len(r2.Replies))
	}
	if r2.ID != c.ID {
		t.Error("Reply changed the comment ID")
	}
}

func TestPayloadEnvelope(t *testing.T) {
	date := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		name string
		p    Payload
	}{
		{"comment", Comment{ID: "c1", Message: Message{Author: "ana", Date: date, Msg: "hi"}, Replies: []Message{{Author: "bo", Date: date, Msg: "yo"}}, Resolved: true}},
		{"suggestion", Suggestion{Type: "DELETE_SUGGESTION", Author: "bo", Date: date}},
		{"highlight", Highlight{Tag: "ANNOTATION", Note: "check"}},
		{"opaque", Opaque{Type: "vote", Data: []byte(`{"up":3}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalPayload(tt.p)
			if err != nil {
				t.Fatalf("MarshalPayload: %v", err)
			}
			if !bytes.Contains(data, []byte(`"kind":"`+string(tt.p.Kind())+`"`)) {
				t.Errorf("envelope %s lacks kind %q", data, tt.p.Kind())
			}
			got, err := UnmarshalPayload(data)
			if err != nil {
				t.Fatalf("UnmarshalPayload: %v", err)
			}
			if got.Kind() != tt.p.Kind() {
				t.Errorf("kind = %q, want %q", got.Kind(), tt.p.Kind())
			}
			switch want := tt.p.(type) {
			case Comment:
				c := got.(Comment)
				if c.ID != want.ID || c.Msg != want.Msg || !c.Date.Equal(want.Date) || len(c.Replies) != 1 || !c.Resolved {
					t.Errorf("got %+v, want %+v", c, want)
				}
			case Opaque:
				if !bytes.Equal(got.(Opaque).Data, want.Data) {
					t.Errorf("data = %s, want %s", got.(Opaque).Data, want.Data)
				}
			case Suggestion:
				s := got.(Suggestion)
				if s.Type != want.Type || s.Author != want.Author || !s.Date.Equal(want.Date) {
					t.Errorf("got %+v, want %+v", s, want)
				}
			default:
				if got != tt.p {
					t.Errorf("got %+v, want %+v", got, tt.p)
				}
			}
		})
	}
}

func TestUnmarshalPayloadErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{`, ErrInvalidPayload},
		{"no kind", `{"data":{}}`, ErrUnknownKind},
		{"bad data", `{"kind":"comment","data":"text"}`, ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalPayload([]byte(tt.raw))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMapRoundTrip(t *testing.T) {
	back := document.Selection{AnchorKey: "b", AnchorOffset: 5, FocusKey: "a", FocusOffset: 2, IsBackward: true}
	m := Map{
		document.Range("a", 6, "a", 11): NewComment("ana", "x", time.Time{}),
		back:                            Highlight{Tag: "h"},
	}
	data, err := MarshalMap(m)
	if err != nil {
		t.Fatalf("MarshalMap: %v", err)
	}
	got, err := UnmarshalMap(data)
	if err != nil {
		t.Fatalf("UnmarshalMap: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if _, ok := got[back].(Highlight); !ok {
		t.Errorf("backward selection did not survive encoding: %v", got)
	}
}
