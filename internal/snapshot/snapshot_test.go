package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/logging"
)

func openStore(t *testing.T, compress bool) *Store {
	t.Helper()
	s, err := Open(Options{
		Dir:      filepath.Join(t.TempDir(), "snapshots"),
		Compress: compress,
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.nowFunc = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func annotated() document.Content {
	c := document.NewContent(
		document.NewBlock("a", "hello world"),
		document.NewBlock("b", "hello there"),
	)
	return annotation.Merge(c, document.Range("a", 6, "a", 11), annotation.Highlight{Tag: "x"})
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Error("expected an error for an empty directory")
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	s, err := Open(Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Dir() != dir {
		t.Errorf("Dir = %q, want %q", s.Dir(), dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("store directory not created: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "xz"
		}
		t.Run(name, func(t *testing.T) {
			s := openStore(t, compress)
			docPath := filepath.Join(t.TempDir(), "doc.json")
			c := annotated()

			saved, err := s.Save(docPath, c)
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if saved.Fingerprint != Fingerprint(c) {
				t.Errorf("Fingerprint = %q, want %q", saved.Fingerprint, Fingerprint(c))
			}

			got, err := s.Load(docPath)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Path != saved.Path {
				t.Errorf("Path = %q, want %q", got.Path, saved.Path)
			}
			if !got.Saved.Equal(saved.Saved) {
				t.Errorf("Saved = %v, want %v", got.Saved, saved.Saved)
			}
			if !got.Content.SameText(c) {
				t.Errorf("Texts = %q, want %q", got.Content.Texts(), c.Texts())
			}
			if got.Annotations() != 1 {
				t.Errorf("Annotations = %d, want 1", got.Annotations())
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := openStore(t, false)
	docPath := filepath.Join(t.TempDir(), "doc.json")

	if _, err := s.Save(docPath, annotated()); err != nil {
		t.Fatal(err)
	}
	next := document.FromText("replaced")
	if _, err := s.Save(docPath, next); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load(docPath)
	if err != nil {
		t.Fatal(err)
	}
	if got.Fingerprint != Fingerprint(next) {
		t.Error("expected the second save to replace the first")
	}
	if n := len(s.List(context.Background())); n != 1 {
		t.Errorf("List = %d snapshots, want 1", n)
	}
}

func TestLoadMissing(t *testing.T) {
	s := openStore(t, false)
	_, err := s.Load("nowhere.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete("nowhere.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t, false)
	docPath := filepath.Join(t.TempDir(), "doc.json")
	if _, err := s.Save(docPath, annotated()); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(docPath); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(docPath); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after Delete, got %v", err)
	}
}

func TestListOrdersByPath(t *testing.T) {
	s := openStore(t, true)
	dir := t.TempDir()
	for _, name := range []string{"c.json", "a.json", "b.json"} {
		if _, err := s.Save(filepath.Join(dir, name), annotated()); err != nil {
			t.Fatal(err)
		}
	}

	list := s.List(context.Background())
	if len(list) != 3 {
		t.Fatalf("List = %d snapshots, want 3", len(list))
	}
	for i, want := range []string{"a.json", "b.json", "c.json"} {
		if filepath.Base(list[i].Path) != want {
			t.Errorf("List[%d] = %s, want %s", i, list[i].Path, want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := document.FromText("one", "two")
	b := document.ApplyInlineStyle(a, document.Range(a.FirstKey(), 0, a.FirstKey(), 3), "BOLD")
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("styles should not change the fingerprint")
	}
	if Fingerprint(a) == Fingerprint(document.FromText("one two")) {
		t.Error("block boundaries should change the fingerprint")
	}
	if len(Fingerprint(a)) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(Fingerprint(a)))
	}
}

func TestKeyTransformRoundTrip(t *testing.T) {
	key := keyFor("/tmp/doc.json")
	pk := keyToPathTransform(key)
	if len(pk.Path) != 1 || pk.Path[0] != key[:2] {
		t.Errorf("Path = %v", pk.Path)
	}
	if got := pathToKeyTransform(pk); got != key {
		t.Errorf("inverse = %q, want %q", got, key)
	}
}
