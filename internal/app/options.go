package app

import (
	"github.com/okian/shuttlerank/internal/adapters/history"
	"github.com/okian/shuttlerank/internal/adapters/report"
	"github.com/okian/shuttlerank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore records rating history per club into s.
func WithStore(s history.Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithReports writes partition reports into d.
func WithReports(d *report.Dir) Option {
	return func(svc *Service) { svc.reports = d }
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}
