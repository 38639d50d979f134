// Package draws scores every hypothetical 2v2 matchup in a rated pool by its
// draw probability.
//
// The work grows as C(n,4)*3. Use Stream with a cancellable context, or
// WithMaxPlayers, for large pools.
package draws

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/shuttlerank/internal/domain/dedupe"
	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/internal/domain/rating"
	"github.com/okian/shuttlerank/internal/domain/registry"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

// Matchup is one hypothetical game and its draw probability. Teams are in
// canonical order so AB-vs-CD and CD-vs-AB are the same value.
type Matchup struct {
	TeamA       model.Team
	TeamB       model.Team
	Probability float64
}

// Players returns the four players, TeamA first.
func (m Matchup) Players() [4]model.PlayerID {
	a, b := m.TeamA.Members(), m.TeamB.Members()
	return [4]model.PlayerID{a[0], a[1], b[0], b[1]}
}

// Key is the canonical identity of the matchup. Each id is length-prefixed
// so ids containing any separator cannot collide.
func (m Matchup) Key() string {
	var b strings.Builder
	for _, id := range m.Players() {
		b.WriteString(strconv.Itoa(len(id)))
		b.WriteByte(':')
		b.WriteString(string(id))
	}
	return b.String()
}

// Predictor enumerates and scores matchups.
type Predictor struct {
	model      rating.Model
	maxPlayers int
	partition  string
	logger     logger.Logger
}

// New creates a Predictor over m.
func New(m rating.Model, opts ...Option) *Predictor {
	p := &Predictor{model: m, partition: "default"}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Named("draws")
	}
	return p
}

// Predict scores every matchup in reg and returns them by probability,
// highest first. Fewer than four players yields an empty result.
func (p *Predictor) Predict(ctx context.Context, reg *registry.Registry) ([]Matchup, error) {
	var out []Matchup
	err := p.Stream(ctx, reg, func(m Matchup) error {
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	return out, nil
}

// Stream hands each matchup to fn in enumeration order. It stops at the
// first error from fn or when ctx is done.
func (p *Predictor) Stream(ctx context.Context, reg *registry.Registry, fn func(Matchup) error) error {
	pool := rated(reg)
	n := len(pool)
	if p.maxPlayers > 0 && n > p.maxPlayers {
		metrics.RecordErrorByComponent("draws", "too_many_players")
		return fmt.Errorf("%w: %d players, limit %d", ErrTooManyPlayers, n, p.maxPlayers)
	}
	if n < 4 {
		return nil
	}

	seen := dedupe.NewInMemoryDeduper()
	evaluated := 0
	defer func() { metrics.RecordDrawMatchups(p.partition, evaluated) }()

	for i := 0; i < n-3; i++ {
		for j := i + 1; j < n-2; j++ {
			for k := j + 1; k < n-1; k++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				for l := k + 1; l < n; l++ {
					group := [4]model.Rated{pool[i], pool[j], pool[k], pool[l]}
					for _, m := range splits(group) {
						if seen.SeenAndRecord(ctx, m.Key()) {
							continue
						}
						m.Probability = p.score(group, m)
						evaluated++
						if err := fn(m); err != nil {
							return err
						}
					}
				}
			}
		}
	}

	p.logger.Debug(ctx, "draws predicted",
		logger.String("partition", p.partition),
		logger.Int("players", n),
		logger.Int("matchups", evaluated),
	)
	return nil
}

func (p *Predictor) score(group [4]model.Rated, m Matchup) float64 {
	state := func(t model.Team) []model.RatingState {
		out := make([]model.RatingState, 0, 2)
		for _, id := range t.Members() {
			for _, r := range group {
				if r.ID == id {
					out = append(out, r.State)
				}
			}
		}
		return out
	}
	return p.model.PredictDraw(state(m.TeamA), state(m.TeamB))
}

// splits returns the three ways to divide four players into two teams.
func splits(g [4]model.Rated) [3]Matchup {
	pair := func(a, b, c, d int) Matchup {
		t1 := model.MustTeam(g[a].ID, g[b].ID)
		t2 := model.MustTeam(g[c].ID, g[d].ID)
		if t2.Less(t1) {
			t1, t2 = t2, t1
		}
		return Matchup{TeamA: t1, TeamB: t2}
	}
	return [3]Matchup{pair(0, 1, 2, 3), pair(0, 2, 1, 3), pair(0, 3, 1, 2)}
}

// rated snapshots the registry sorted by player id.
func rated(reg *registry.Registry) []model.Rated {
	entries := reg.Entries()
	out := make([]model.Rated, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.Rated{ID: e.ID, State: e.State})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
