package document

import "errors"

// Errors returned by document operations.
var (
	// ErrBlockNotFound indicates a selection referenced a block key that is
	// not part of the content.
	ErrBlockNotFound = errors.New("block not found")

	// ErrInvalidSelection indicates a selection could not be parsed.
	ErrInvalidSelection = errors.New("invalid selection")
)
