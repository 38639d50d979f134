package model

import (
	"fmt"
	"time"
)

// Session is one dated gathering at a club.
type Session struct {
	ID     string
	ClubID string
	Date   time.Time
}

// Result is one side of a match as delivered by the feed.
type Result struct {
	Team   Team
	Winner bool
}

// Match is a single 2v2 game with its chronological key.
type Match struct {
	ID           string
	ClubID       string
	SessionID    string
	Date         time.Time
	StartTime    time.Duration // offset from midnight of Date
	SessionIndex int
	Category     Category
	Results      [2]Result
	WinnerScore  int
	LoserScore   int
}

// Outcome is the validated winner/loser view of a match.
type Outcome struct {
	Winners Team
	Losers  Team
}

// Outcome resolves the winning and losing teams. It fails fast on records the
// feed should have rejected: missing teams, two winners, or a shared player.
func (m *Match) Outcome() (Outcome, error) {
	r0, r1 := m.Results[0], m.Results[1]
	if r0.Team.IsZero() || r1.Team.IsZero() {
		return Outcome{}, fmt.Errorf("%w: match %s has fewer than two teams", ErrMalformedMatch, m.ID)
	}
	if r0.Winner == r1.Winner {
		return Outcome{}, fmt.Errorf("%w: match %s needs exactly one winner", ErrMalformedMatch, m.ID)
	}
	for _, p := range r0.Team.Members() {
		if r1.Team.Has(p) {
			return Outcome{}, fmt.Errorf("%w: player %s on both sides of match %s", ErrMalformedMatch, p, m.ID)
		}
	}
	if m.WinnerScore < m.LoserScore {
		return Outcome{}, fmt.Errorf("%w: match %s winner scored %d < %d", ErrMalformedMatch, m.ID, m.WinnerScore, m.LoserScore)
	}
	if r0.Winner {
		return Outcome{Winners: r0.Team, Losers: r1.Team}, nil
	}
	return Outcome{Winners: r1.Team, Losers: r0.Team}, nil
}

// Margin is winner score minus loser score.
func (m *Match) Margin() int { return m.WinnerScore - m.LoserScore }

// Players lists the four participants, winners first when the outcome is valid.
func (m *Match) Players() []PlayerID {
	out := make([]PlayerID, 0, 4)
	for _, r := range m.Results {
		ms := r.Team.Members()
		out = append(out, ms[0], ms[1])
	}
	return out
}

// Before reports whether m sorts strictly before o by (date, start time,
// session index).
func (m *Match) Before(o *Match) bool {
	if !m.Date.Equal(o.Date) {
		return m.Date.Before(o.Date)
	}
	if m.StartTime != o.StartTime {
		return m.StartTime < o.StartTime
	}
	return m.SessionIndex < o.SessionIndex
}

// NewMatch is a convenience constructor for a decided match.
func NewMatch(id string, winners, losers Team, winnerScore, loserScore int) Match {
	return Match{
		ID:          id,
		Results:     [2]Result{{Team: winners, Winner: true}, {Team: losers}},
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
	}
}
