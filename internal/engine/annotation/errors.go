package annotation

import "errors"

// Errors returned by payload and map decoding.
var (
	// ErrUnknownKind indicates an envelope without a kind.
	ErrUnknownKind = errors.New("annotation kind missing")

	// ErrInvalidPayload indicates payload data that does not decode.
	ErrInvalidPayload = errors.New("invalid annotation payload")
)
