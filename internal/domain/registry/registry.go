// Package registry owns the per-run mapping from player identity to rating
// state and aggregate statistics.
package registry

import (
	"github.com/okian/shuttlerank/internal/domain/model"
)

// PriorFunc supplies the starting rating for a player seen for the first time.
type PriorFunc func(id model.PlayerID) model.RatingState

// Entry is one registered player.
type Entry struct {
	ID    model.PlayerID
	State model.RatingState
	Stats *PlayerStats
}

// Registry maps identities to ratings and stats for one engine run. It is
// not safe for concurrent use; each engine owns its own instance.
type Registry struct {
	prior PriorFunc
	order []model.PlayerID
	byID  map[model.PlayerID]*Entry
}

// New creates an empty registry that seeds unseen players with prior.
func New(prior PriorFunc) *Registry {
	return &Registry{
		prior: prior,
		byID:  make(map[model.PlayerID]*Entry),
	}
}

// GetOrCreate returns the entry for id, inserting it with the prior first.
func (r *Registry) GetOrCreate(id model.PlayerID) *Entry {
	if e, ok := r.byID[id]; ok {
		return e
	}
	e := &Entry{ID: id, State: r.prior(id), Stats: &PlayerStats{}}
	r.byID[id] = e
	r.order = append(r.order, id)
	return e
}

// Lookup returns the entry for id without creating it.
func (r *Registry) Lookup(id model.PlayerID) (*Entry, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// SetState replaces id's rating wholesale.
func (r *Registry) SetState(id model.PlayerID, s model.RatingState) {
	r.GetOrCreate(id).State = s
}

// Len returns the number of registered players.
func (r *Registry) Len() int { return len(r.order) }

// IDs returns every registered player in first-seen order.
func (r *Registry) IDs() []model.PlayerID {
	out := make([]model.PlayerID, len(r.order))
	copy(out, r.order)
	return out
}

// Entries returns every entry in first-seen order.
func (r *Registry) Entries() []*Entry {
	out := make([]*Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// RecordPartnership credits a pairing between id and partner.
func (r *Registry) RecordPartnership(id, partner model.PlayerID, won bool) {
	r.GetOrCreate(id).Stats.partners.add(partner, won)
}

// RecordOpposition credits a meeting between id and opponent.
func (r *Registry) RecordOpposition(id, opponent model.PlayerID, won bool) {
	r.GetOrCreate(id).Stats.opponents.add(opponent, won)
}

// Partners lists id's partners ordered by matches together, most first.
func (r *Registry) Partners(id model.PlayerID) []PairingStats {
	e, ok := r.byID[id]
	if !ok {
		return nil
	}
	return e.Stats.partners.sorted()
}

// Opponents lists id's opponents ordered by matches against, most first.
func (r *Registry) Opponents(id model.PlayerID) []PairingStats {
	e, ok := r.byID[id]
	if !ok {
		return nil
	}
	return e.Stats.opponents.sorted()
}
