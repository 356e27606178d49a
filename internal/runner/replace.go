package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/marginalia/internal/docfile"
	"github.com/dshills/marginalia/internal/engine/findreplace"
)

// Replace substitutes matches of a pattern, repositioning annotations.
type Replace struct {
	Base

	DocPath       string
	Pattern       string
	With          string
	CaseSensitive bool

	// All replaces every match. Otherwise only match Index is replaced.
	All   bool
	Index int

	// Pairs replaces several patterns at once, case-sensitively. When set,
	// Pattern, With, All and Index are ignored.
	Pairs map[string]string

	// OutPath receives the result. When empty the document is written to
	// Out in its own format.
	OutPath string
}

// Do performs the replacement.
func (r *Replace) Do(ctx context.Context) error {
	if err := require("document", r.DocPath); err != nil {
		return err
	}
	if len(r.Pairs) == 0 {
		if err := require("pattern", r.Pattern); err != nil {
			return err
		}
		if r.Index < 0 {
			return errors.New("match index must not be negative")
		}
	}
	format, err := docfile.FormatForPath(r.DocPath)
	if err != nil {
		return err
	}

	c, err := docfile.Read(r.DocPath)
	if err != nil {
		return err
	}
	eng := r.newEngine(c)
	defer eng.Close()

	before := eng.Texts()
	switch {
	case len(r.Pairs) > 0:
		err = eng.Dispatch(findreplace.ReplaceMultiple{Diff: r.Pairs})
	case r.All:
		if err = search(eng, r.Pattern, r.CaseSensitive, 0); err == nil {
			err = eng.Dispatch(findreplace.ReplaceAll{Text: r.With})
		}
	default:
		if err = search(eng, r.Pattern, r.CaseSensitive, r.Index+1); err == nil {
			if eng.CountOccurrences() <= r.Index {
				return fmt.Errorf("match %d not found: %d matches", r.Index, eng.CountOccurrences())
			}
			err = eng.Dispatch(findreplace.Replace{Text: r.With})
		}
	}
	if err != nil {
		return err
	}

	// Leave no search highlights in the written document.
	if err := eng.Dispatch(findreplace.SetCriteria{}); err != nil {
		return err
	}
	result := eng.Content()

	if slices.Equal(before, eng.Texts()) {
		r.logger().Info("nothing replaced", "document", r.DocPath)
	}

	if r.OutPath != "" {
		if err := docfile.Write(r.OutPath, result); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(r.out(), "wrote %s\n", r.OutPath)
		return nil
	}
	data, err := docfile.Marshal(result, format)
	if err != nil {
		return err
	}
	_, err = r.out().Write(data)
	return err
}
