package registry

import (
	"math"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// PlayerStats aggregates one player's results over a single engine run.
type PlayerStats struct {
	Wins  int
	Games int

	avgWinMargin  float64
	avgLossMargin float64

	// PartnerWins counts wins per partner, PartnerLosses losses per partner,
	// OpponentLosses losses per opposing player (the nemesis tracker).
	PartnerWins    Tally
	PartnerLosses  Tally
	OpponentLosses Tally

	// Pairing breakdowns keyed by the other player.
	partners  pairings
	opponents pairings
}

// Losses is games minus wins.
func (s *PlayerStats) Losses() int { return s.Games - s.Wins }

// WinRate is wins/games, NaN before the first game.
func (s *PlayerStats) WinRate() float64 {
	if s.Games == 0 {
		return math.NaN()
	}
	return float64(s.Wins) / float64(s.Games)
}

// AvgWinMargin is the mean margin of won games, NaN without wins.
func (s *PlayerStats) AvgWinMargin() float64 {
	if s.Wins == 0 {
		return math.NaN()
	}
	return s.avgWinMargin
}

// AvgLossMargin is the mean margin of lost games, NaN without losses.
func (s *PlayerStats) AvgLossMargin() float64 {
	if s.Losses() == 0 {
		return math.NaN()
	}
	return s.avgLossMargin
}

// RecordWin folds a won game into the counters with an incremental mean.
func (s *PlayerStats) RecordWin(margin int) {
	s.Games++
	s.Wins++
	s.avgWinMargin += (float64(margin) - s.avgWinMargin) / float64(s.Wins)
}

// RecordLoss folds a lost game into the counters with an incremental mean.
func (s *PlayerStats) RecordLoss(margin int) {
	s.Games++
	s.avgLossMargin += (float64(margin) - s.avgLossMargin) / float64(s.Losses())
}

// BestPartner is the partner this player won with most often.
func (s *PlayerStats) BestPartner() model.PlayerID {
	id, _ := s.PartnerWins.Top()
	return id
}

// WorstPartner is the partner this player lost with most often.
func (s *PlayerStats) WorstPartner() model.PlayerID {
	id, _ := s.PartnerLosses.Top()
	return id
}

// Nemesis is the opponent this player lost to most often.
func (s *PlayerStats) Nemesis() model.PlayerID {
	id, _ := s.OpponentLosses.Top()
	return id
}
