package diff

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DMP is a diff-match-patch engine.
type DMP struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewDMP creates a diff-match-patch engine. The time budget is disabled
// so results never depend on how fast the machine is.
func NewDMP() *DMP {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &DMP{dmp: dmp}
}

// Name returns the algorithm name.
func (d *DMP) Name() string {
	return AlgorithmDMP
}

// Diff returns the character diff of oldText and newText.
func (d *DMP) Diff(oldText, newText string) []Op {
	if oldText == newText {
		if oldText == "" {
			return nil
		}
		return []Op{NewOp(Equal, oldText)}
	}

	diffs := d.dmp.DiffMain(oldText, newText, false)
	ops := make([]Op, 0, len(diffs))
	for _, df := range diffs {
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, NewOp(Equal, df.Text))
		case diffmatchpatch.DiffInsert:
			ops = append(ops, NewOp(Insert, df.Text))
		case diffmatchpatch.DiffDelete:
			ops = append(ops, NewOp(Delete, df.Text))
		}
	}
	return coalesce(ops)
}
