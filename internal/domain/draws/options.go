package draws

import (
	"github.com/okian/shuttlerank/pkg/logger"
)

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithMaxPlayers refuses pools larger than n. Zero or less disables the check.
func WithMaxPlayers(n int) Option {
	return func(p *Predictor) { p.maxPlayers = n }
}

// WithPartition names the partition for logs and metrics.
func WithPartition(name string) Option {
	return func(p *Predictor) {
		if name != "" {
			p.partition = name
		}
	}
}

// WithLogger sets a custom logger for the predictor.
func WithLogger(l logger.Logger) Option {
	return func(p *Predictor) {
		if l != nil {
			p.logger = l
		}
	}
}
