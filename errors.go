package gekkomesh

import "errors"

var (
	// ErrInvalidState is returned by every accessor once the CPU-side data
	// has been released.
	ErrInvalidState = errors.New("mesh data is no longer accessible")
	// ErrLengthMismatch is returned when an attribute array does not have
	// one entry per vertex.
	ErrLengthMismatch = errors.New("attribute length does not match vertex count")

	ErrSlotAbsent       = errors.New("attribute slot is not present")
	ErrVertexOutOfRange = errors.New("vertex index out of range")
	ErrInvalidChannel   = errors.New("invalid uv channel")
)
