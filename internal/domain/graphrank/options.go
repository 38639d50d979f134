package graphrank

import (
	"fmt"
	"strings"

	"github.com/okian/shuttlerank/pkg/logger"
)

// EdgePolicy decides what a repeated (loser, winner) pairing does to the
// existing edge weight.
type EdgePolicy int

const (
	// Accumulate adds each match margin to the edge weight.
	Accumulate EdgePolicy = iota
	// Overwrite keeps only the most recent match margin.
	Overwrite
)

func (p EdgePolicy) String() string {
	if p == Overwrite {
		return "overwrite"
	}
	return "accumulate"
}

// ParseEdgePolicy maps a config value to an EdgePolicy.
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accumulate":
		return Accumulate, nil
	case "overwrite":
		return Overwrite, nil
	default:
		return Accumulate, fmt.Errorf("%w: %q", ErrUnknownEdgePolicy, s)
	}
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithDamping sets the probability of following an edge rather than jumping.
func WithDamping(d float64) Option {
	return func(r *Ranker) {
		if d > 0 && d < 1 {
			r.damping = d
		}
	}
}

// WithTolerance sets the L1 distance between iterations that counts as converged.
func WithTolerance(tol float64) Option {
	return func(r *Ranker) {
		if tol > 0 {
			r.tolerance = tol
		}
	}
}

// WithMaxIterations caps the power iteration.
func WithMaxIterations(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.maxIterations = n
		}
	}
}

// WithEdgePolicy selects how repeated pairings combine.
func WithEdgePolicy(p EdgePolicy) Option {
	return func(r *Ranker) { r.policy = p }
}

// WithPartition names the partition for logs and metrics.
func WithPartition(name string) Option {
	return func(r *Ranker) {
		if name != "" {
			r.partition = name
		}
	}
}

// WithLogger sets a custom logger for the ranker.
func WithLogger(l logger.Logger) Option {
	return func(r *Ranker) {
		if l != nil {
			r.logger = l
		}
	}
}
