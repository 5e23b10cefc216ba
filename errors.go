package gfxrt

import "errors"

// Validation errors returned by the client API. A call that returns one of
// them enqueues nothing.
var (
	ErrTypeMismatch  = errors.New("gfxrt: data type does not match the element")
	ErrOutOfRange    = errors.New("gfxrt: range outside allocation")
	ErrShortBuffer   = errors.New("gfxrt: buffer shorter than range")
	ErrZeroCount     = errors.New("gfxrt: count must be positive")
	ErrWriteDisabled = errors.New("gfxrt: allocation is not writable")
	ErrInvalidUsage  = errors.New("gfxrt: usage not allowed for this operation")
	ErrNotAdapted    = errors.New("gfxrt: operation not allowed on an adapter")
	ErrTooLarge      = errors.New("gfxrt: instance larger than a command record")
	ErrCreateFailed  = errors.New("gfxrt: engine rejected the object")
	ErrDestroyed     = errors.New("gfxrt: context destroyed")
)
