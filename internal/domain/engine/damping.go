package engine

import (
	"math"

	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/metrics"
)

// DampingPolicy tempers the model's update for lopsided winning pairs. A
// winner far above the teammate keeps less of the mu gain; a winner far
// below the teammate keeps more of the uncertainty.
type DampingPolicy struct {
	// Threshold is the mu gap between teammates that triggers the policy.
	Threshold float64
	// Offset is subtracted from the gap inside the log1p scaling.
	Offset float64
	// MinMu floors a damped mu.
	MinMu float64
	// MaxSigma caps an inflated sigma. It never pulls a sigma below the
	// model's own output.
	MaxSigma float64
}

// DefaultDampingPolicy returns the policy's stock parameters.
func DefaultDampingPolicy() DampingPolicy {
	return DampingPolicy{Threshold: 20, Offset: 6, MinMu: 10, MaxSigma: 8}
}

// apply adjusts one winner's raw update given both teammates' prior states.
func (p DampingPolicy) apply(self, mate, raw model.RatingState) model.RatingState {
	gap := self.Mu - mate.Mu
	out := raw
	switch {
	case gap > p.Threshold:
		delta := raw.Mu - self.Mu
		out.Mu = self.Mu + delta/(1+math.Log1p(gap-p.Offset))
		out.Mu = math.Max(out.Mu, p.MinMu)
		metrics.RecordDampingApplied("mu")
	case -gap > p.Threshold:
		inflated := raw.Sigma * (1 + math.Log1p(-gap-p.Offset)/10)
		out.Sigma = math.Min(inflated, math.Max(p.MaxSigma, raw.Sigma))
		metrics.RecordDampingApplied("sigma")
	}
	return out
}
