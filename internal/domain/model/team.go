package model

import "fmt"

// Team is an unordered pair of two distinct players. Members are kept in
// canonical (sorted) order so that AB and BA compare equal with ==.
type Team struct {
	a, b PlayerID
}

// NewTeam builds a canonical team. It fails if the members are equal or empty.
func NewTeam(p1, p2 PlayerID) (Team, error) {
	if p1 == "" || p2 == "" {
		return Team{}, fmt.Errorf("%w: team member missing", ErrMalformedMatch)
	}
	if p1 == p2 {
		return Team{}, fmt.Errorf("%w: player %q partnered with themselves", ErrMalformedMatch, p1)
	}
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return Team{a: p1, b: p2}, nil
}

// MustTeam is NewTeam for literals in tests and fixtures.
func MustTeam(p1, p2 PlayerID) Team {
	t, err := NewTeam(p1, p2)
	if err != nil {
		panic(err)
	}
	return t
}

// Members returns both players in canonical order.
func (t Team) Members() [2]PlayerID { return [2]PlayerID{t.a, t.b} }

// Partner returns the other member of the team.
func (t Team) Partner(id PlayerID) PlayerID {
	if id == t.a {
		return t.b
	}
	return t.a
}

// Has reports whether id is on the team.
func (t Team) Has(id PlayerID) bool { return id == t.a || id == t.b }

// IsZero reports whether the team was never built.
func (t Team) IsZero() bool { return t.a == "" && t.b == "" }

// Less orders teams by their canonical members.
func (t Team) Less(o Team) bool {
	if t.a != o.a {
		return t.a < o.a
	}
	return t.b < o.b
}

func (t Team) String() string { return fmt.Sprintf("[%s, %s]", t.a, t.b) }
