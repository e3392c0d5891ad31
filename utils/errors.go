package utils

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedShapeCode reports a type word whose base shape code is
	// outside 1..7. It aborts the whole decode or encode of the value, at any
	// nesting depth.
	ErrUnrecognizedShapeCode = fmt.Errorf("unrecognized shape code")
	// ErrUnrecognizedByteOrder reports a byte order selector other than 0 or 1.
	ErrUnrecognizedByteOrder = fmt.Errorf("unrecognized byte order selector")
	// ErrMisconfiguredFallback reports that the raw-byte fallback codec was
	// asked to decode a structured value without a delegate codec.
	ErrMisconfiguredFallback = fmt.Errorf("raw fallback codec has no delegate")
	ErrInvariantViolation    = fmt.Errorf("invariant violation")
)

// IsMalformedValue reports whether err denotes a value that cannot be decoded
// or encoded, as opposed to a failure of the underlying stream. Stream
// failures are whatever the supplied Reader or Writer returned, unchanged.
func IsMalformedValue(err error) bool {
	return errors.Is(err, ErrUnrecognizedShapeCode) ||
		errors.Is(err, ErrUnrecognizedByteOrder) ||
		errors.Is(err, ErrInvariantViolation)
}
