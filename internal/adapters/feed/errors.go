package feed

import "errors"

var (
	// ErrInvalidRecord marks a feed row that is not a well-formed 2v2 result.
	ErrInvalidRecord = errors.New("invalid feed record")
	// ErrUnknownClub is returned for a club the feed has no sessions for.
	ErrUnknownClub = errors.New("unknown club")
	// ErrUnknownSession is returned for a session id the feed does not hold.
	ErrUnknownSession = errors.New("unknown session")
)
