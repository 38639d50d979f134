package model

import "time"

// RatingSnapshot is the persisted rating of one player right after one match.
// The (PlayerID, MatchID) pair is unique and a written snapshot never changes.
type RatingSnapshot struct {
	PlayerID     PlayerID
	MatchID      string
	Mu           float64
	Sigma        float64
	Date         time.Time
	StartTime    time.Duration
	SessionIndex int
	Winner       bool
}

// Before orders snapshots chronologically by (date, start time, session index).
func (s *RatingSnapshot) Before(o *RatingSnapshot) bool {
	if !s.Date.Equal(o.Date) {
		return s.Date.Before(o.Date)
	}
	if s.StartTime != o.StartTime {
		return s.StartTime < o.StartTime
	}
	return s.SessionIndex < o.SessionIndex
}

// State returns the rating carried by the snapshot.
func (s *RatingSnapshot) State() RatingState {
	return RatingState{Mu: s.Mu, Sigma: s.Sigma}
}
