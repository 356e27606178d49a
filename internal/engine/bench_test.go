package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/dshills/marginalia/internal/engine/diff"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/findreplace"
)

// ============================================================================
// Setup Helpers
// ============================================================================

func setupLargeEngine(b *testing.B, blocks, comments int, opts ...Option) *Engine {
	b.Helper()
	list := make([]document.Block, blocks)
	for i := range list {
		list[i] = document.NewBlock(fmt.Sprintf("k%d", i), strings.Repeat("lorem ipsum ", 8))
	}
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	e := New(document.NewContent(list...), opts...)
	for i := 0; i < comments; i++ {
		key := fmt.Sprintf("k%d", i*blocks/comments)
		if _, err := e.AddComment(document.Range(key, 6, key, 11), "bench", "x"); err != nil {
			b.Fatal(err)
		}
	}
	return e
}

// ============================================================================
// Edit Benchmarks
// ============================================================================

func benchmarkInsert(b *testing.B, opts ...Option) {
	e := setupLargeEngine(b, 200, 50, opts...)
	defer e.Close()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := e.InsertText("x"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkInsertDMP(b *testing.B) {
	benchmarkInsert(b)
}

func BenchmarkInsertMyers(b *testing.B) {
	benchmarkInsert(b, WithDiffEngine(diff.NewMyers(diff.DefaultOptions())))
}

// ============================================================================
// Find/Replace Benchmarks
// ============================================================================

func BenchmarkFindNext(b *testing.B) {
	e := setupLargeEngine(b, 200, 0)
	defer e.Close()
	if err := e.Dispatch(findreplace.SetCriteria{Pattern: "ipsum"}); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = e.Dispatch(findreplace.FindNext{})
	}
}

func BenchmarkReplaceAll(b *testing.B) {
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		e := setupLargeEngine(b, 50, 10)
		_ = e.Dispatch(findreplace.SetCriteria{Pattern: "lorem"})
		b.StartTimer()

		_ = e.Dispatch(findreplace.ReplaceAll{Text: "dolor"})

		b.StopTimer()
		_ = e.Close()
		b.StartTimer()
	}
}
