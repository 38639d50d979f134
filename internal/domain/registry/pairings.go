package registry

import (
	"math"
	"sort"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// PairingStats summarizes games played with or against one other player.
type PairingStats struct {
	Player  model.PlayerID
	Matches int
	Wins    int
}

// WinRate is wins/matches, NaN when no matches were played.
func (p PairingStats) WinRate() float64 {
	if p.Matches == 0 {
		return math.NaN()
	}
	return float64(p.Wins) / float64(p.Matches)
}

type pairings struct {
	order []model.PlayerID
	byID  map[model.PlayerID]*PairingStats
}

func (p *pairings) add(id model.PlayerID, won bool) {
	if p.byID == nil {
		p.byID = make(map[model.PlayerID]*PairingStats)
	}
	ps, ok := p.byID[id]
	if !ok {
		ps = &PairingStats{Player: id}
		p.byID[id] = ps
		p.order = append(p.order, id)
	}
	ps.Matches++
	if won {
		ps.Wins++
	}
}

// sorted returns the pairings by matches desc; ties keep first-seen order.
func (p *pairings) sorted() []PairingStats {
	out := make([]PairingStats, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Matches > out[j].Matches })
	return out
}
