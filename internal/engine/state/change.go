package state

import (
	"errors"
	"fmt"
)

// ErrUnknownChangeType is returned by ParseChangeType.
var ErrUnknownChangeType = errors.New("unknown change type")

// ChangeType names the kind of edit that produced a state.
type ChangeType string

// Change types produced by editing primitives.
const (
	None               ChangeType = ""
	InsertCharacters   ChangeType = "insert-characters"
	BackspaceCharacter ChangeType = "backspace-character"
	DeleteCharacter    ChangeType = "delete-character"
	RemoveRange        ChangeType = "remove-range"
	InsertFragment     ChangeType = "insert-fragment"
	SplitBlock         ChangeType = "split-block"
	AdjustDepth        ChangeType = "adjust-depth"
	ApplyEntity        ChangeType = "apply-entity"
	ChangeBlockData    ChangeType = "change-block-data"
	ChangeBlockType    ChangeType = "change-block-type"
	ChangeInlineStyle  ChangeType = "change-inline-style"
	MoveBlock          ChangeType = "move-block"
	Undo               ChangeType = "undo"
	Redo               ChangeType = "redo"
	SpellcheckChange   ChangeType = "spellcheck-change"
)

// IsContentChange returns true for change types that alter document text
// and therefore move annotation boundaries.
func IsContentChange(t ChangeType) bool {
	switch t {
	case InsertCharacters, BackspaceCharacter, DeleteCharacter,
		RemoveRange, InsertFragment, SplitBlock:
		return true
	}
	return false
}

// coalesces returns true for change types whose consecutive runs share a
// single undo entry, so typing a word undoes as one step.
func coalesces(t ChangeType) bool {
	switch t {
	case InsertCharacters, BackspaceCharacter, DeleteCharacter:
		return true
	}
	return false
}

var changeTypes = []ChangeType{
	InsertCharacters, BackspaceCharacter, DeleteCharacter, RemoveRange,
	InsertFragment, SplitBlock, AdjustDepth, ApplyEntity, ChangeBlockData,
	ChangeBlockType, ChangeInlineStyle, MoveBlock, Undo, Redo, SpellcheckChange,
}

// ChangeTypes returns every named change type.
func ChangeTypes() []ChangeType {
	out := make([]ChangeType, len(changeTypes))
	copy(out, changeTypes)
	return out
}

// ParseChangeType returns the change type named s.
func ParseChangeType(s string) (ChangeType, error) {
	for _, t := range changeTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownChangeType, s)
}
