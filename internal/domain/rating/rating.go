// Package rating defines the pairwise-comparison rating model contract and a
// Thurstone-Mosteller implementation of it.
package rating

import (
	"math"

	"github.com/okian/shuttlerank/internal/domain/model"
)

// Default model parameters.
const (
	defaultMu    = 25.0
	defaultSigma = defaultMu / 3
	defaultBeta  = defaultSigma / 2
	defaultKappa = 0.0001
	defaultTau   = defaultMu / 300
	defaultZ     = 3.0
	// defaultEpsilon is the draw margin used when two teams compare.
	defaultEpsilon = 0.1
)

// Model is a pluggable Bayesian pairwise-comparison rating model.
// Implementations must be deterministic and free of side effects.
type Model interface {
	// Prior returns the rating assigned to a player never seen before.
	Prior(id model.PlayerID) model.RatingState
	// Rate returns the updated ratings of both teams after teamA scored
	// scoreA against teamB's scoreB. Output slices align with the input.
	Rate(teamA, teamB []model.RatingState, scoreA, scoreB int) ([]model.RatingState, []model.RatingState)
	// PredictDraw returns the probability that the two teams draw.
	PredictDraw(teamA, teamB []model.RatingState) float64
	// Ordinal collapses a rating into a single conservative ranking value.
	Ordinal(state model.RatingState) float64
}

// Option applies a configuration option to ThurstoneMostellerFull.
type Option func(*ThurstoneMostellerFull)

// WithMu sets the prior mean.
func WithMu(mu float64) Option {
	return func(m *ThurstoneMostellerFull) { m.mu = mu }
}

// WithSigma sets the prior uncertainty.
func WithSigma(sigma float64) Option {
	return func(m *ThurstoneMostellerFull) {
		if sigma > 0 {
			m.sigma = sigma
		}
	}
}

// WithBeta sets the performance noise.
func WithBeta(beta float64) Option {
	return func(m *ThurstoneMostellerFull) {
		if beta > 0 {
			m.beta = beta
		}
	}
}

// WithTau sets the additive dynamics factor applied before each update.
func WithTau(tau float64) Option {
	return func(m *ThurstoneMostellerFull) {
		if tau >= 0 {
			m.tau = tau
		}
	}
}

// WithKappa sets the floor on the sigma shrink factor.
func WithKappa(kappa float64) Option {
	return func(m *ThurstoneMostellerFull) {
		if kappa > 0 {
			m.kappa = kappa
		}
	}
}

// WithZ sets the number of standard deviations subtracted by Ordinal.
func WithZ(z float64) Option {
	return func(m *ThurstoneMostellerFull) { m.z = z }
}

// ThurstoneMostellerFull compares every team against every other team
// using a Gaussian performance model.
type ThurstoneMostellerFull struct {
	mu      float64
	sigma   float64
	beta    float64
	kappa   float64
	tau     float64
	z       float64
	epsilon float64
}

// NewThurstoneMostellerFull creates the model with the usual defaults
// (mu 25, sigma 25/3, beta 25/6, tau 25/300, z 3).
func NewThurstoneMostellerFull(opts ...Option) *ThurstoneMostellerFull {
	m := &ThurstoneMostellerFull{
		mu:      defaultMu,
		sigma:   defaultSigma,
		beta:    defaultBeta,
		kappa:   defaultKappa,
		tau:     defaultTau,
		z:       defaultZ,
		epsilon: defaultEpsilon,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Prior implements Model.
func (m *ThurstoneMostellerFull) Prior(model.PlayerID) model.RatingState {
	return model.RatingState{Mu: m.mu, Sigma: m.sigma}
}

// Ordinal implements Model.
func (m *ThurstoneMostellerFull) Ordinal(s model.RatingState) float64 {
	return s.Mu - m.z*s.Sigma
}

type teamRating struct {
	players []model.RatingState
	mu      float64
	sigmaSq float64
	rank    int
}

func (m *ThurstoneMostellerFull) team(players []model.RatingState, rank int) teamRating {
	t := teamRating{players: players, rank: rank}
	for _, p := range players {
		t.mu += p.Mu
		t.sigmaSq += p.Sigma * p.Sigma
	}
	return t
}

// Rate implements Model. Higher score ranks first; equal scores are a tie.
func (m *ThurstoneMostellerFull) Rate(teamA, teamB []model.RatingState, scoreA, scoreB int) ([]model.RatingState, []model.RatingState) {
	rankA, rankB := 0, 0
	switch {
	case scoreA > scoreB:
		rankB = 1
	case scoreB > scoreA:
		rankA = 1
	}

	teams := []teamRating{
		m.team(m.withDynamics(teamA), rankA),
		m.team(m.withDynamics(teamB), rankB),
	}
	out := m.compute(teams)
	return out[0], out[1]
}

func (m *ThurstoneMostellerFull) withDynamics(players []model.RatingState) []model.RatingState {
	out := make([]model.RatingState, len(players))
	for i, p := range players {
		out[i] = model.RatingState{Mu: p.Mu, Sigma: math.Sqrt(p.Sigma*p.Sigma + m.tau*m.tau)}
	}
	return out
}

func (m *ThurstoneMostellerFull) compute(teams []teamRating) [][]model.RatingState {
	betaSq := m.beta * m.beta
	out := make([][]model.RatingState, len(teams))

	for i, ti := range teams {
		var omega, delta float64
		for q, tq := range teams {
			if q == i {
				continue
			}
			ciq := math.Sqrt(ti.sigmaSq + tq.sigmaSq + 2*betaSq)
			deltaMu := (ti.mu - tq.mu) / ciq
			sigSqToCiq := ti.sigmaSq / ciq
			gamma := math.Sqrt(ti.sigmaSq) / ciq
			t := m.epsilon / ciq

			switch {
			case tq.rank > ti.rank:
				omega += sigSqToCiq * v(deltaMu, t)
				delta += gamma * sigSqToCiq / ciq * w(deltaMu, t)
			case tq.rank < ti.rank:
				omega -= sigSqToCiq * v(-deltaMu, t)
				delta += gamma * sigSqToCiq / ciq * w(-deltaMu, t)
			default:
				omega += sigSqToCiq * vt(deltaMu, t)
				delta += gamma * sigSqToCiq / ciq * wt(deltaMu, t)
			}
		}

		updated := make([]model.RatingState, len(ti.players))
		for j, p := range ti.players {
			share := p.Sigma * p.Sigma / ti.sigmaSq
			updated[j] = model.RatingState{
				Mu:    p.Mu + share*omega,
				Sigma: p.Sigma * math.Sqrt(math.Max(1-share*delta, m.kappa)),
			}
		}
		out[i] = updated
	}
	return out
}

// PredictDraw implements Model.
func (m *ThurstoneMostellerFull) PredictDraw(teamA, teamB []model.RatingState) float64 {
	n := float64(len(teamA) + len(teamB))
	if n == 0 {
		return 0
	}
	drawProbability := 1 / n
	drawMargin := math.Sqrt(n) * m.beta * phiInv((1+drawProbability)/2)

	a := m.team(teamA, 0)
	b := m.team(teamB, 0)
	pair := func(x, y teamRating) float64 {
		denom := math.Sqrt(n*m.beta*m.beta + x.sigmaSq + y.sigmaSq)
		return phi((drawMargin-x.mu+y.mu)/denom) - phi((y.mu-x.mu-drawMargin)/denom)
	}
	return (pair(a, b) + pair(b, a)) / 2
}
