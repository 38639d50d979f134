package cli

import "errors"

// ErrHistorySubject is returned when history gets neither or both of
// --player and --person.
var ErrHistorySubject = errors.New("exactly one of --player or --person is required")
