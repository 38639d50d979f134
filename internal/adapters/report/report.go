// Package report renders rating, draw, graph and history tables as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/okian/shuttlerank/internal/domain/draws"
	"github.com/okian/shuttlerank/internal/domain/engine"
	"github.com/okian/shuttlerank/internal/domain/graphrank"
	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/internal/domain/registry"
)

// Report headers.
var (
	RatingsHeader  = []string{"rank", "player", "mu", "sigma", "ordinal", "wins", "games", "win_rate", "avg_win_margin", "avg_loss_margin", "best_partner", "worst_partner", "nemesis"}
	DrawsHeader    = []string{"player_a", "player_b", "player_c", "player_d", "draw_probability"}
	GraphHeader    = []string{"rank", "player", "score"}
	HistoryHeader  = []string{"player", "match_id", "date", "start_time", "mu", "sigma", "ordinal"}
	PairingsHeader = []string{"player", "relation", "other", "matches", "wins", "win_rate"}
)

const floatPrecision = 6

// formatFloat renders NaN as "NaN" so undefined ratios survive a round trip.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', floatPrecision, 64)
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteRatings writes one row per player in the given order.
func WriteRatings(w io.Writer, rows []engine.Row) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			strconv.Itoa(r.Rank),
			string(r.ID),
			formatFloat(r.Mu),
			formatFloat(r.Sigma),
			formatFloat(r.Ordinal),
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Games),
			formatFloat(r.WinRate),
			formatFloat(r.AvgWinMargin),
			formatFloat(r.AvgLossMargin),
			string(r.BestPartner),
			string(r.WorstPartner),
			string(r.Nemesis),
		})
	}
	return writeAll(w, RatingsHeader, out)
}

// WriteDraws writes matchups in the given order. top <= 0 writes all.
func WriteDraws(w io.Writer, matchups []draws.Matchup, top int) error {
	if top > 0 && top < len(matchups) {
		matchups = matchups[:top]
	}
	out := make([][]string, 0, len(matchups))
	for _, m := range matchups {
		p := m.Players()
		out = append(out, []string{string(p[0]), string(p[1]), string(p[2]), string(p[3]), formatFloat(m.Probability)})
	}
	return writeAll(w, DrawsHeader, out)
}

// WriteGraph writes graph scores with consecutive ranks; equal scores share a rank.
func WriteGraph(w io.Writer, scores []graphrank.Score) error {
	out := make([][]string, 0, len(scores))
	rank := 0
	for i, s := range scores {
		if i == 0 || s.Score != scores[i-1].Score {
			rank++
		}
		out = append(out, []string{strconv.Itoa(rank), string(s.ID), formatFloat(s.Score)})
	}
	return writeAll(w, GraphHeader, out)
}

// WriteHistory writes a rating trajectory preceded by the prior as a
// synthetic starting point with empty match and date columns.
func WriteHistory(w io.Writer, who string, snaps []model.RatingSnapshot, prior model.RatingState, ordinal func(model.RatingState) float64) error {
	out := make([][]string, 0, len(snaps)+1)
	out = append(out, []string{who, "", "", "", formatFloat(prior.Mu), formatFloat(prior.Sigma), formatFloat(ordinal(prior))})
	for i := range snaps {
		s := &snaps[i]
		out = append(out, []string{
			string(s.PlayerID),
			s.MatchID,
			s.Date.Format("2006-01-02"),
			formatDuration(s),
			formatFloat(s.Mu),
			formatFloat(s.Sigma),
			formatFloat(ordinal(s.State())),
		})
	}
	return writeAll(w, HistoryHeader, out)
}

func formatDuration(s *model.RatingSnapshot) string {
	return fmt.Sprintf("%02d:%02d", int(s.StartTime.Hours()), int(s.StartTime.Minutes())%60)
}

// WritePairings writes every partner and opponent breakdown in reg.
func WritePairings(w io.Writer, reg *registry.Registry) error {
	var out [][]string
	row := func(id model.PlayerID, relation string, p registry.PairingStats) []string {
		return []string{string(id), relation, string(p.Player), strconv.Itoa(p.Matches), strconv.Itoa(p.Wins), formatFloat(p.WinRate())}
	}
	for _, id := range reg.IDs() {
		for _, p := range reg.Partners(id) {
			out = append(out, row(id, "partner", p))
		}
		for _, p := range reg.Opponents(id) {
			out = append(out, row(id, "opponent", p))
		}
	}
	return writeAll(w, PairingsHeader, out)
}
