package history

import "errors"

var (
	// ErrNotFound is returned when no snapshot exists for the requested key.
	ErrNotFound = errors.New("no rating history")
	// ErrInvalidSnapshot is returned for a snapshot without player or match id.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
