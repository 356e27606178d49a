package diff

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnknownAlgorithm indicates an unsupported diff algorithm name.
var ErrUnknownAlgorithm = errors.New("unknown diff algorithm")

// Algorithm names accepted by New.
const (
	AlgorithmDMP   = "dmp"
	AlgorithmMyers = "myers"
)

// DefaultMaxMemoryMB is the default memory budget for the Myers trace.
const DefaultMaxMemoryMB = 100

// Type indicates the kind of a diff run.
type Type uint8

const (
	// Equal indicates text present in both versions.
	Equal Type = iota

	// Insert indicates text only present in the new version.
	Insert

	// Delete indicates text only present in the old version.
	Delete
)

// String returns a human-readable representation of the type.
func (t Type) String() string {
	switch t {
	case Equal:
		return "equal"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is a single diff run.
type Op struct {
	Type Type
	Text string
	// Len is the length of Text in characters.
	Len int
}

// NewOp creates an op, computing its length.
func NewOp(t Type, text string) Op {
	return Op{Type: t, Text: text, Len: utf8.RuneCountInString(text)}
}

// String returns a human-readable representation of the op.
func (o Op) String() string {
	return fmt.Sprintf("%s(%q)", o.Type, o.Text)
}

// Engine computes diffs.
// Implementations must be deterministic.
type Engine interface {
	// Diff returns the ops transforming oldText into newText.
	Diff(oldText, newText string) []Op

	// Name returns the algorithm name.
	Name() string
}

// Options configures engine construction.
type Options struct {
	// MaxMemoryMB bounds the Myers trace. Zero uses DefaultMaxMemoryMB,
	// a negative value disables the limit.
	MaxMemoryMB int
}

// DefaultOptions returns default engine options.
func DefaultOptions() Options {
	return Options{MaxMemoryMB: DefaultMaxMemoryMB}
}

// New returns the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	switch strings.ToLower(name) {
	case "", AlgorithmDMP:
		return NewDMP(), nil
	case AlgorithmMyers:
		return NewMyers(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
}

// OldLen returns the number of old characters consumed by ops.
func OldLen(ops []Op) int {
	n := 0
	for _, op := range ops {
		if op.Type != Insert {
			n += op.Len
		}
	}
	return n
}

// NewLen returns the number of new characters produced by ops.
func NewLen(ops []Op) int {
	n := 0
	for _, op := range ops {
		if op.Type != Delete {
			n += op.Len
		}
	}
	return n
}

// HasChanges returns true if ops contain any insert or delete.
func HasChanges(ops []Op) bool {
	for _, op := range ops {
		if op.Type != Equal {
			return true
		}
	}
	return false
}

// Validate checks that ops form a single alignment of oldText and newText.
func Validate(oldText, newText string, ops []Op) error {
	var oldSB, newSB strings.Builder
	for i, op := range ops {
		if op.Len != utf8.RuneCountInString(op.Text) {
			return fmt.Errorf("op %d: length %d does not match text %q", i, op.Len, op.Text)
		}
		if op.Len == 0 {
			return fmt.Errorf("op %d: empty run", i)
		}
		switch op.Type {
		case Equal:
			oldSB.WriteString(op.Text)
			newSB.WriteString(op.Text)
		case Delete:
			oldSB.WriteString(op.Text)
		case Insert:
			newSB.WriteString(op.Text)
		default:
			return fmt.Errorf("op %d: unknown type %d", i, op.Type)
		}
	}
	if oldSB.String() != oldText {
		return fmt.Errorf("equal+delete runs do not rebuild the old text")
	}
	if newSB.String() != newText {
		return fmt.Errorf("equal+insert runs do not rebuild the new text")
	}
	return nil
}

// coalesce merges adjacent runs of the same type and drops empty runs.
func coalesce(ops []Op) []Op {
	out := make([]Op, 0, len(ops))
	for _, op := range ops {
		if op.Len == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Type == op.Type {
			out[n-1].Text += op.Text
			out[n-1].Len += op.Len
			continue
		}
		out = append(out, op)
	}
	return out
}
