package registry

import "github.com/okian/shuttlerank/internal/domain/model"

// Tally counts occurrences per player and remembers first-insertion order,
// so Top resolves ties to the player that was counted first.
type Tally struct {
	order  []model.PlayerID
	counts map[model.PlayerID]int
}

// Inc adds one to id's count.
func (t *Tally) Inc(id model.PlayerID) {
	if t.counts == nil {
		t.counts = make(map[model.PlayerID]int)
	}
	if _, ok := t.counts[id]; !ok {
		t.order = append(t.order, id)
	}
	t.counts[id]++
}

// Count returns id's count.
func (t *Tally) Count(id model.PlayerID) int { return t.counts[id] }

// Len returns the number of distinct players counted.
func (t *Tally) Len() int { return len(t.order) }

// Top returns the player with the highest count and that count. An empty
// tally yields ("", 0).
func (t *Tally) Top() (model.PlayerID, int) {
	var best model.PlayerID
	bestCount := 0
	for _, id := range t.order {
		if c := t.counts[id]; c > bestCount {
			best, bestCount = id, c
		}
	}
	return best, bestCount
}

// Keys returns the counted players in first-insertion order.
func (t *Tally) Keys() []model.PlayerID {
	out := make([]model.PlayerID, len(t.order))
	copy(out, t.order)
	return out
}
