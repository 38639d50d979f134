package engine

import (
	"github.com/okian/shuttlerank/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPartition names the partition the engine rates; used in logs and metrics.
func WithPartition(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.partition = name
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPartnerStats toggles partner, opponent and nemesis tracking.
func WithPartnerStats(enabled bool) Option {
	return func(e *Engine) { e.trackPartnerStats = enabled }
}

// WithDamping enables the post-update damping policy with the given policy.
func WithDamping(p DampingPolicy) Option {
	return func(e *Engine) {
		e.applyDamping = true
		e.damping = p
	}
}

// WithRecorder persists a snapshot per (player, match) as matches are rated.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithResume seeds unseen players from the recorder's latest snapshot and
// skips matches the recorder already holds. It has no effect without a
// recorder.
func WithResume(enabled bool) Option {
	return func(e *Engine) { e.resume = enabled }
}
