package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// Generator defaults.
const (
	defaultGenClubs             = 2
	defaultGenPlayersPerClub    = 12
	defaultGenSessions          = 8
	defaultGenMatchesPerSession = 10
	defaultGenSeed              = 1
	sessionStartHour            = 19
	minutesPerMatch             = 15
	pointsToWin                 = 21
)

// Generator produces a reproducible synthetic feed. Neighbouring clubs share
// half their players so combined partitions see cross-club identities.
type Generator struct {
	clubs             int
	playersPerClub    int
	sessions          int
	matchesPerSession int
	seed              uint64
	start             time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithClubs sets the number of clubs.
func WithClubs(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.clubs = n
		}
	}
}

// WithPlayersPerClub sets each club's pool size; at least four.
func WithPlayersPerClub(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 4 {
			g.playersPerClub = n
		}
	}
}

// WithSessions sets the number of weekly sessions per club.
func WithSessions(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.sessions = n
		}
	}
}

// WithMatchesPerSession sets how many matches each session holds.
func WithMatchesPerSession(n int) GeneratorOption {
	return func(g *Generator) {
		if n > 0 {
			g.matchesPerSession = n
		}
	}
}

// WithSeed fixes the random stream.
func WithSeed(seed uint64) GeneratorOption {
	return func(g *Generator) { g.seed = seed }
}

// WithStart sets the date of the first session.
func WithStart(t time.Time) GeneratorOption {
	return func(g *Generator) { g.start = t.UTC().Truncate(24 * time.Hour) }
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		clubs:             defaultGenClubs,
		playersPerClub:    defaultGenPlayersPerClub,
		sessions:          defaultGenSessions,
		matchesPerSession: defaultGenMatchesPerSession,
		seed:              defaultGenSeed,
		start:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type synthPlayer struct {
	id     model.PlayerID
	skill  float64
	gender byte
}

// Generate returns the synthetic matches in chronological order.
func (g *Generator) Generate() []model.Match {
	rng := rand.New(rand.NewPCG(g.seed, g.seed^0x9e3779b97f4a7c15))

	stride := g.playersPerClub / 2
	total := stride*(g.clubs-1) + g.playersPerClub
	players := make([]synthPlayer, total)
	for i := range players {
		gender := byte('M')
		if rng.IntN(3) == 0 {
			gender = 'L'
		}
		players[i] = synthPlayer{
			id:     model.PlayerID(fmt.Sprintf("player-%03d", i+1)),
			skill:  25 + rng.NormFloat64()*6,
			gender: gender,
		}
	}

	var out []model.Match
	for s := 0; s < g.sessions; s++ {
		date := g.start.AddDate(0, 0, 7*s)
		for c := 0; c < g.clubs; c++ {
			club := "club-" + strconv.Itoa(c+1)
			pool := players[c*stride : c*stride+g.playersPerClub]
			for idx := 0; idx < g.matchesPerSession; idx++ {
				out = append(out, g.match(rng, club, date, idx, pool))
			}
		}
	}
	return NewFeed(out).all
}

func (g *Generator) match(rng *rand.Rand, club string, date time.Time, idx int, pool []synthPlayer) model.Match {
	pick := rng.Perm(len(pool))[:4]
	a, b, c, d := pool[pick[0]], pool[pick[1]], pool[pick[2]], pool[pick[3]]

	perf := (a.skill + b.skill) - (c.skill + d.skill) + rng.NormFloat64()*8
	if perf < 0 {
		a, b, c, d = c, d, a, b
		perf = -perf
	}
	ws, ls := pointsToWin, pointsToWin-2-int(math.Min(perf, 17))
	if perf < 1 && rng.IntN(2) == 0 {
		ws, ls = pointsToWin+1, pointsToWin-1
	}

	m := model.NewMatch(MatchID(club, date, idx), model.MustTeam(a.id, b.id), model.MustTeam(c.id, d.id), ws, ls)
	m.ClubID = club
	m.SessionID = SessionID(club, date)
	m.Date = date
	m.StartTime = sessionStartHour*time.Hour + time.Duration(idx*minutesPerMatch)*time.Minute
	m.SessionIndex = idx
	m.Category = model.ParseCategory(string([]byte{a.gender, b.gender, c.gender, d.gender}))
	return m
}

// WriteCSV writes matches in the feed format, header first.
func WriteCSV(w io.Writer, matches []model.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range matches {
		m := &matches[i]
		out, err := m.Outcome()
		if err != nil {
			return err
		}
		wm, lm := out.Winners.Members(), out.Losers.Members()
		start := time.Time{}.Add(m.StartTime).Format(StartTimeLayout)
		rec := []string{
			m.ClubID, m.Date.Format(DateLayout), start, strconv.Itoa(m.SessionIndex), m.Category.String(),
			string(wm[0]), string(wm[1]), strconv.Itoa(m.WinnerScore),
			string(lm[0]), string(lm[1]), strconv.Itoa(m.LoserScore), m.ID,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
