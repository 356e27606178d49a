// Package runner implements the marginalia commands independently of the
// command line. Each command is a struct whose fields are its inputs and
// whose Do method performs it, writing human-readable output to Out.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/engine"
	"github.com/dshills/marginalia/internal/engine/annotation"
	"github.com/dshills/marginalia/internal/engine/document"
	"github.com/dshills/marginalia/internal/engine/offset"
)

// ErrMissingInput is returned when a required input is not set.
var ErrMissingInput = errors.New("missing input")

// Base holds the inputs shared by every command.
type Base struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
}

func (b Base) out() io.Writer {
	if b.Out == nil {
		return color.Output
	}
	return b.Out
}

func (b Base) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// newEngine opens an engine over c configured from b.
func (b Base) newEngine(c document.Content, opts ...engine.Option) *engine.Engine {
	all := []engine.Option{engine.WithLogger(b.logger())}
	if b.Config != nil {
		all = append(all, engine.WithConfig(b.Config))
	}
	return engine.New(c, append(all, opts...)...)
}

func require(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingInput, name)
	}
	return nil
}

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
)

// FormatRange renders a selection as start-end positions.
func FormatRange(sel document.Selection) string {
	start := offset.Position{Key: sel.StartKey(), Offset: sel.StartOffset()}
	end := offset.Position{Key: sel.EndKey(), Offset: sel.EndOffset()}
	return start.String() + "-" + end.String()
}

// SelectedText returns the text covered by sel, blocks joined by a space.
func SelectedText(c document.Content, sel document.Selection) string {
	ix := offset.Flatten(c)
	start, end, err := ix.Span(sel)
	if err != nil {
		return ""
	}
	runes := []rune(ix.Text())
	return strings.ReplaceAll(string(runes[start:end]), offset.Separator, " ")
}

// describe summarises a payload for display.
func describe(p annotation.Payload) string {
	switch p := p.(type) {
	case annotation.Comment:
		s := fmt.Sprintf("%s (%s): %s", p.Author, p.ID, p.Msg)
		if n := len(p.Replies); n > 0 {
			s += fmt.Sprintf(" [%d replies]", n)
		}
		if p.Resolved {
			s += " [resolved]"
		}
		return s
	case annotation.Suggestion:
		return fmt.Sprintf("%s by %s", p.Type, p.Author)
	case annotation.Highlight:
		if p.Note != "" {
			return p.Tag + ": " + p.Note
		}
		return p.Tag
	case annotation.Opaque:
		return string(p.Data)
	default:
		return ""
	}
}

// printAnnotations writes a table of the annotations of c.
func printAnnotations(w io.Writer, c document.Content) {
	entries := annotation.Entries(annotation.Get(c))
	if len(entries) == 0 {
		_, _ = faint.Fprintln(w, "no annotations")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("RANGE"), bold.Sprint("KIND"), bold.Sprint("TEXT"), bold.Sprint("DETAIL"))
	for _, e := range entries {
		tbl.AddRow(FormatRange(e.Selection), string(e.Payload.Kind()), SelectedText(c, e.Selection), describe(e.Payload))
	}
	_, _ = fmt.Fprintln(w, tbl)
}

// printReport writes the outcome of a repositioning run.
func printReport(w io.Writer, r engine.Report) {
	if r.Skipped {
		_, _ = faint.Fprintf(w, "annotations unchanged (%s)\n", r.Reason)
		return
	}
	_, _ = fmt.Fprintf(w, "repositioned: %d kept, %d dropped\n", r.Kept, r.Dropped)
}
