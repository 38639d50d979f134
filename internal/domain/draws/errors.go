package draws

import "errors"

// ErrTooManyPlayers is returned when the pool exceeds the configured limit.
var ErrTooManyPlayers = errors.New("too many players for draw prediction")
