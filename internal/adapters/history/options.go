package history

import (
	"github.com/okian/shuttlerank/pkg/logger"
)

type settings struct {
	resolver Resolver
	logger   logger.Logger
}

func defaults(opts []Option) settings {
	s := settings{resolver: identityResolver{}}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Named("history")
	}
	return s
}

// Option configures a Store.
type Option func(*settings)

// WithResolver sets the person -> players mapping used by HistoryByPerson.
// Without it every person owns exactly the player with the same id.
func WithResolver(r Resolver) Option {
	return func(s *settings) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
