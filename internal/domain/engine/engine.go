// Package engine folds an ordered match feed into player ratings and
// aggregate statistics.
//
// An Engine owns its registry exclusively and must be fed from one goroutine.
// Distinct engines share nothing and may run in parallel.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/internal/domain/rating"
	"github.com/okian/shuttlerank/internal/domain/registry"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

// Recorder persists per-match snapshots. Implementations must make Record
// idempotent on (player, match).
type Recorder interface {
	Record(ctx context.Context, snap model.RatingSnapshot) (model.RatingSnapshot, error)
	// Latest returns the newest snapshot for id; ok is false when none exists.
	Latest(ctx context.Context, id model.PlayerID) (snap model.RatingSnapshot, ok bool, err error)
	HasMatch(ctx context.Context, matchID string) (bool, error)
}

// Row is one line of the ranked report.
type Row struct {
	Rank          int
	ID            model.PlayerID
	Mu            float64
	Sigma         float64
	Ordinal       float64
	Wins          int
	Games         int
	WinRate       float64
	AvgWinMargin  float64
	AvgLossMargin float64
	BestPartner   model.PlayerID
	WorstPartner  model.PlayerID
	Nemesis       model.PlayerID
}

// Engine rates one partition of the feed.
type Engine struct {
	model     rating.Model
	reg       *registry.Registry
	partition string

	trackPartnerStats bool
	applyDamping      bool
	damping           DampingPolicy

	recorder Recorder
	resume   bool

	last      model.Match
	hasLast   bool
	processed int
	skipped   int

	logger logger.Logger
}

// New creates an engine over m with a fresh registry.
func New(m rating.Model, opts ...Option) *Engine {
	e := &Engine{
		model:             m,
		reg:               registry.New(m.Prior),
		partition:         "default",
		trackPartnerStats: true,
		damping:           DefaultDampingPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Named("engine")
	}
	return e
}

// Process rates matches in order. It stops at the first malformed or
// out-of-order match; ratings applied before it are kept.
func (e *Engine) Process(ctx context.Context, matches []model.Match) error {
	start := time.Now()
	for i := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.ProcessMatch(ctx, &matches[i]); err != nil {
			metrics.RecordErrorByComponent("engine", "process")
			return err
		}
	}
	metrics.UpdatePlayersRated(e.partition, e.reg.Len())
	metrics.RecordPartitionDuration(e.partition, float64(time.Since(start).Milliseconds()))
	e.logger.Debug(ctx, "partition rated",
		logger.String("partition", e.partition),
		logger.Int("matches", e.processed),
		logger.Int("skipped", e.skipped),
		logger.Int("players", e.reg.Len()),
	)
	return nil
}

// ProcessMatch rates a single match. Matches must arrive in non-decreasing
// (date, start time, session index) order.
func (e *Engine) ProcessMatch(ctx context.Context, m *model.Match) error {
	if e.hasLast && m.Before(&e.last) {
		return fmt.Errorf("%w: %s precedes %s", ErrOutOfOrder, m.ID, e.last.ID)
	}
	out, err := m.Outcome()
	if err != nil {
		return err
	}
	e.last, e.hasLast = *m, true

	if e.resume && e.recorder != nil {
		done, err := e.recorder.HasMatch(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("check match %s: %w", m.ID, err)
		}
		if done {
			e.skipped++
			metrics.RecordMatchSkipped()
			return nil
		}
	}

	winners, losers := out.Winners.Members(), out.Losers.Members()
	ws, err := e.states(ctx, winners)
	if err != nil {
		return err
	}
	ls, err := e.states(ctx, losers)
	if err != nil {
		return err
	}

	newW, newL := e.model.Rate(ws[:], ls[:], m.WinnerScore, m.LoserScore)
	if e.applyDamping {
		for i := range newW {
			newW[i] = e.damping.apply(ws[i], ws[1-i], newW[i])
		}
	}

	for i, id := range winners {
		e.reg.SetState(id, newW[i])
	}
	for i, id := range losers {
		e.reg.SetState(id, newL[i])
	}
	e.updateStats(winners, losers, m.Margin())

	if e.recorder != nil {
		if err := e.record(ctx, m, winners, newW, true); err != nil {
			return err
		}
		if err := e.record(ctx, m, losers, newL, false); err != nil {
			return err
		}
	}

	e.processed++
	metrics.RecordMatchProcessed(e.partition)
	return nil
}

// states resolves a team's current ratings, seeding unseen players from the
// recorder when resuming.
func (e *Engine) states(ctx context.Context, ids [2]model.PlayerID) ([2]model.RatingState, error) {
	var out [2]model.RatingState
	for i, id := range ids {
		if entry, ok := e.reg.Lookup(id); ok {
			out[i] = entry.State
			continue
		}
		if e.resume && e.recorder != nil {
			snap, ok, err := e.recorder.Latest(ctx, id)
			if err != nil {
				return out, fmt.Errorf("seed %s: %w", id, err)
			}
			if ok {
				e.reg.SetState(id, snap.State())
			}
		}
		out[i] = e.reg.GetOrCreate(id).State
	}
	return out, nil
}

func (e *Engine) updateStats(winners, losers [2]model.PlayerID, margin int) {
	for i, id := range winners {
		entry := e.reg.GetOrCreate(id)
		entry.Stats.RecordWin(margin)
		if !e.trackPartnerStats {
			continue
		}
		mate := winners[1-i]
		entry.Stats.PartnerWins.Inc(mate)
		e.reg.RecordPartnership(id, mate, true)
		for _, opp := range losers {
			e.reg.RecordOpposition(id, opp, true)
		}
	}
	for i, id := range losers {
		entry := e.reg.GetOrCreate(id)
		entry.Stats.RecordLoss(margin)
		if !e.trackPartnerStats {
			continue
		}
		mate := losers[1-i]
		entry.Stats.PartnerLosses.Inc(mate)
		e.reg.RecordPartnership(id, mate, false)
		for _, opp := range winners {
			entry.Stats.OpponentLosses.Inc(opp)
			e.reg.RecordOpposition(id, opp, false)
		}
	}
}

func (e *Engine) record(ctx context.Context, m *model.Match, ids [2]model.PlayerID, states []model.RatingState, won bool) error {
	for i, id := range ids {
		_, err := e.recorder.Record(ctx, model.RatingSnapshot{
			PlayerID:     id,
			MatchID:      m.ID,
			Mu:           states[i].Mu,
			Sigma:        states[i].Sigma,
			Date:         m.Date,
			StartTime:    m.StartTime,
			SessionIndex: m.SessionIndex,
			Winner:       won,
		})
		if err != nil {
			return fmt.Errorf("record %s/%s: %w", id, m.ID, err)
		}
	}
	return nil
}

// Results returns one row per player ordered by ordinal, highest first.
// Equal ordinals share a rank and ranks stay consecutive.
func (e *Engine) Results() []Row {
	entries := e.reg.Entries()
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		st := entry.Stats
		rows = append(rows, Row{
			ID:            entry.ID,
			Mu:            entry.State.Mu,
			Sigma:         entry.State.Sigma,
			Ordinal:       e.model.Ordinal(entry.State),
			Wins:          st.Wins,
			Games:         st.Games,
			WinRate:       st.WinRate(),
			AvgWinMargin:  st.AvgWinMargin(),
			AvgLossMargin: st.AvgLossMargin(),
			BestPartner:   st.BestPartner(),
			WorstPartner:  st.WorstPartner(),
			Nemesis:       st.Nemesis(),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Ordinal > rows[j].Ordinal })
	assignRanksWithTies(rows)
	return rows
}

func assignRanksWithTies(rows []Row) {
	rank := 0
	for i := range rows {
		if i == 0 || rows[i].Ordinal != rows[i-1].Ordinal {
			rank++
		}
		rows[i].Rank = rank
	}
}

// Registry exposes the engine's registry for read-only post-processing such
// as draw prediction.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// Model returns the rating model the engine was built with.
func (e *Engine) Model() rating.Model { return e.model }

// Partition returns the partition name.
func (e *Engine) Partition() string { return e.partition }

// Processed returns how many matches were rated.
func (e *Engine) Processed() int { return e.processed }

// Skipped returns how many matches were skipped on resume.
func (e *Engine) Skipped() int { return e.skipped }
