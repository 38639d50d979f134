// Package model contains domain models passed between layers.
package model

// PlayerID is the stable key of a name-based participant record.
type PlayerID string

// PersonID identifies a resolved real-world person that may own several
// PlayerID aliases.
type PersonID string

// RatingState is a player's latent skill estimate. Values are replaced
// wholesale on every update.
type RatingState struct {
	Mu    float64
	Sigma float64
}

// Rated pairs an identity with its rating; identity never travels inside
// the numeric state.
type Rated struct {
	ID    PlayerID
	State RatingState
}
