package engine

import "errors"

// ErrOutOfOrder is returned when a match sorts before one already processed.
var ErrOutOfOrder = errors.New("match out of chronological order")
