package offset

import "errors"

// Errors reported next to clamped results.
var (
	// ErrBlockNotFound indicates a block key is not part of the content.
	ErrBlockNotFound = errors.New("block not found")

	// ErrOffsetOutOfRange indicates an offset outside the document or block.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)
