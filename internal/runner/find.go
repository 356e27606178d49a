package runner

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dshills/marginalia/internal/docfile"
	"github.com/dshills/marginalia/internal/engine"
	"github.com/dshills/marginalia/internal/engine/findreplace"
)

var (
	matchColor  = color.New(color.FgBlack, color.BgYellow)
	activeColor = color.New(color.FgWhite, color.BgRed, color.Bold)
)

// Find lists the matches of a literal pattern.
type Find struct {
	Base

	DocPath       string
	Pattern       string
	CaseSensitive bool

	// Next is the number of find-next steps taken after setting the
	// pattern. The match it lands on is shown as active. Zero leaves no
	// match active.
	Next int
}

// Do performs the search.
func (f *Find) Do(ctx context.Context) error {
	if err := require("document", f.DocPath); err != nil {
		return err
	}
	if err := require("pattern", f.Pattern); err != nil {
		return err
	}

	c, err := docfile.Read(f.DocPath)
	if err != nil {
		return err
	}
	eng := f.newEngine(c, engine.WithReadOnly(true))
	defer eng.Close()

	if err := search(eng, f.Pattern, f.CaseSensitive, f.Next); err != nil {
		return err
	}

	w := f.out()
	count := eng.CountOccurrences()
	switch count {
	case 1:
		_, _ = bold.Fprintf(w, "1 match")
	default:
		_, _ = bold.Fprintf(w, "%d matches", count)
	}
	if term := eng.SearchTerm(); term.Index >= 0 && count > 0 {
		_, _ = faint.Fprintf(w, " (active %d: %q)", term.Index+1, eng.ActiveText())
	}
	_, _ = fmt.Fprintln(w)

	printMatches(w, eng.Matches(), eng.SearchTerm().Index)
	return nil
}

// search sets the criteria and steps next times through the matches.
func search(eng *engine.Engine, pattern string, caseSensitive bool, next int) error {
	if err := eng.Dispatch(findreplace.SetCriteria{Pattern: pattern, CaseSensitive: caseSensitive}); err != nil {
		return err
	}
	for i := 0; i < next; i++ {
		if err := eng.Dispatch(findreplace.FindNext{}); err != nil {
			return err
		}
	}
	return nil
}

// printMatches writes each block holding a match once, matches
// highlighted.
func printMatches(w io.Writer, matches []findreplace.Match, active int) {
	for i := 0; i < len(matches); {
		block := matches[i].Block
		j := i
		for j < len(matches) && matches[j].Block.Key == block.Key {
			j++
		}

		var sb strings.Builder
		runes := []rune(block.Text)
		pos := 0
		for _, m := range matches[i:j] {
			sb.WriteString(string(runes[pos:m.Start]))
			c := matchColor
			if m.Index == active {
				c = activeColor
			}
			sb.WriteString(c.Sprint(string(runes[m.Start:m.End])))
			pos = m.End
		}
		sb.WriteString(string(runes[pos:]))

		_, _ = faint.Fprintf(w, "%s: ", block.Key)
		_, _ = fmt.Fprintln(w, sb.String())
		i = j
	}
}
