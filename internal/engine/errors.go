package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrClosed indicates the engine was used after Close.
	ErrClosed = errors.New("engine is closed")

	// ErrReadOnly indicates an edit was attempted on a read-only engine.
	ErrReadOnly = errors.New("engine is read-only")

	// ErrCommentNotFound indicates no comment has the requested ID.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrNilEdit indicates Edit was called without an edit function.
	ErrNilEdit = errors.New("nil edit function")
)
