package features

import "errors"

var (
	// ErrInvalidGrid reports an unusable window size or points-per-row count.
	ErrInvalidGrid = errors.New("invalid sampling configuration")

	// ErrOutOfBounds reports a descriptor window that does not fit in the
	// filter responses.
	ErrOutOfBounds = errors.New("descriptor window out of bounds")

	// ErrDimension reports a descriptor whose length differs from the store's.
	ErrDimension = errors.New("descriptor dimension mismatch")

	// ErrIO reports a failure to create or write a feature artifact.
	ErrIO = errors.New("feature artifact I/O failed")

	// ErrCorrupt reports an artifact that cannot be decoded.
	ErrCorrupt = errors.New("corrupt feature artifact")
)
