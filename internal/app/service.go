// Package app wires the feed, rating engines, analytics and history into a
// batch run.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/okian/shuttlerank/internal/adapters/feed"
	"github.com/okian/shuttlerank/internal/adapters/history"
	"github.com/okian/shuttlerank/internal/adapters/report"
	"github.com/okian/shuttlerank/internal/adapters/worker"
	"github.com/okian/shuttlerank/internal/config"
	"github.com/okian/shuttlerank/internal/domain/draws"
	"github.com/okian/shuttlerank/internal/domain/engine"
	"github.com/okian/shuttlerank/internal/domain/graphrank"
	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/internal/domain/rating"
	"github.com/okian/shuttlerank/pkg/logger"
	"github.com/okian/shuttlerank/pkg/metrics"
)

// PartitionResult summarizes one rated partition.
type PartitionResult struct {
	Name     string
	Matches  int
	Players  int
	Duration time.Duration
	Err      error
}

// Summary describes a finished run.
type Summary struct {
	RunID        string
	Partitions   []PartitionResult
	HistoryClubs int
	Skipped      int
}

// Service runs the rating batch.
type Service struct {
	cfg     *config.Config
	feed    feed.Feed
	model   rating.Model
	store   history.Store
	reports *report.Dir
	logger  logger.Logger
}

// New creates a Service for cfg over f.
func New(cfg *config.Config, f feed.Feed, opts ...Option) *Service {
	s := &Service{
		cfg:  cfg,
		feed: f,
		model: rating.NewThurstoneMostellerFull(
			rating.WithMu(cfg.ModelMu),
			rating.WithSigma(cfg.ModelSigma),
			rating.WithBeta(cfg.ModelBeta),
			rating.WithTau(cfg.ModelTau),
			rating.WithKappa(cfg.ModelKappa),
			rating.WithZ(cfg.ModelZ),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("app")
	}
	return s
}

// Model returns the rating model built from the configuration.
func (s *Service) Model() rating.Model { return s.model }

func (s *Service) partitionOptions() PartitionOptions {
	return PartitionOptions{
		PerClub:  s.cfg.PerClub,
		Combined: s.cfg.Combined,
		Excluded: model.ParseCategory(s.cfg.ExcludedCategory),
	}
}

func (s *Service) engineOptions(name string) []engine.Option {
	opts := []engine.Option{
		engine.WithPartition(name),
		engine.WithPartnerStats(s.cfg.TrackPartnerStats),
		engine.WithLogger(s.logger.Named("engine")),
	}
	if s.cfg.ApplyDampingPolicy {
		opts = append(opts, engine.WithDamping(engine.DampingPolicy{
			Threshold: s.cfg.DampingThreshold,
			Offset:    s.cfg.DampingOffset,
			MinMu:     s.cfg.MinMu,
			MaxSigma:  s.cfg.MaxSigma,
		}))
	}
	return opts
}

// Partitions lists the partitions the configured feed produces.
func (s *Service) Partitions(ctx context.Context) ([]Partition, error) {
	all, err := s.feed.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return Partitions(all, s.partitionOptions())
}

// Partition returns one partition by name.
func (s *Service) Partition(ctx context.Context, name string) (Partition, error) {
	parts, err := s.Partitions(ctx)
	if err != nil {
		return Partition{}, err
	}
	for _, p := range parts {
		if p.Name == name {
			return p, nil
		}
	}
	return Partition{}, fmt.Errorf("%w: %s", ErrUnknownPartition, name)
}

// Rate runs a fresh engine over p.
func (s *Service) Rate(ctx context.Context, p Partition) (*engine.Engine, error) {
	e := engine.New(s.model, s.engineOptions(p.Name)...)
	if err := e.Process(ctx, p.Matches); err != nil {
		return nil, fmt.Errorf("partition %s: %w", p.Name, err)
	}
	return e, nil
}

// Draws rates p and scores every hypothetical matchup of its players.
func (s *Service) Draws(ctx context.Context, p Partition) ([]draws.Matchup, error) {
	e, err := s.Rate(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.predict(ctx, p, e)
}

func (s *Service) predict(ctx context.Context, p Partition, e *engine.Engine) ([]draws.Matchup, error) {
	if s.cfg.DrawTimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.DrawTimeoutMS)*time.Millisecond)
		defer cancel()
	}
	pred := draws.New(s.model,
		draws.WithMaxPlayers(s.cfg.DrawMaxPlayers),
		draws.WithPartition(p.Name),
		draws.WithLogger(s.logger.Named("draws")),
	)
	return pred.Predict(ctx, e.Registry())
}

// Graph ranks p's players by graph centrality.
func (s *Service) Graph(ctx context.Context, p Partition) ([]graphrank.Score, error) {
	policy, err := graphrank.ParseEdgePolicy(s.cfg.GraphEdgePolicy)
	if err != nil {
		return nil, err
	}
	r := graphrank.New(
		graphrank.WithDamping(s.cfg.GraphDamping),
		graphrank.WithTolerance(s.cfg.GraphTolerance),
		graphrank.WithMaxIterations(s.cfg.GraphMaxIterations),
		graphrank.WithEdgePolicy(policy),
		graphrank.WithPartition(p.Name),
		graphrank.WithLogger(s.logger.Named("graphrank")),
	)
	g, err := r.Build(p.Matches)
	if err != nil {
		return nil, fmt.Errorf("partition %s: %w", p.Name, err)
	}
	return r.Rank(ctx, g), nil
}

// Run rates every partition on the worker pool, writes reports, then records
// history one club at a time, each club in a single batch.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	sum := &Summary{RunID: uuid.NewString()}
	log := s.logger.Named("run")
	log.Info(ctx, "run started", logger.String("run_id", sum.RunID))

	all, err := s.feed.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	parts, err := Partitions(all, s.partitionOptions())
	if err != nil {
		return nil, err
	}

	jobs := make([]worker.Job, len(parts))
	sum.Partitions = make([]PartitionResult, len(parts))
	for i := range parts {
		p := parts[i]
		res := &sum.Partitions[i]
		res.Name, res.Matches = p.Name, len(p.Matches)
		jobs[i] = worker.Job{Name: p.Name, Run: func(ctx context.Context) error {
			players, err := s.runPartition(ctx, p)
			res.Players = players
			return err
		}}
	}

	var errs []error
	pool := worker.NewPool(s.cfg.WorkerCount, worker.WithLogger(s.logger.Named("worker-pool")))
	for i, r := range pool.Run(ctx, jobs) {
		sum.Partitions[i].Duration = r.Duration
		sum.Partitions[i].Err = r.Err
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}

	if s.store != nil {
		clubs, skipped, err := s.recordHistory(ctx, all)
		sum.HistoryClubs, sum.Skipped = clubs, skipped
		if err != nil {
			errs = append(errs, err)
		}
	}

	if path := s.cfg.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Warn(ctx, "metrics textfile not written", logger.String("path", path), logger.Error(err))
		}
	}

	log.Info(ctx, "run finished",
		logger.String("run_id", sum.RunID),
		logger.Int("partitions", len(parts)),
		logger.Int("failed", len(errs)),
		logger.Int("history_clubs", sum.HistoryClubs),
	)
	if len(errs) > 0 {
		return sum, fmt.Errorf("%w: %w", ErrRunFailed, errors.Join(errs...))
	}
	return sum, nil
}

func (s *Service) runPartition(ctx context.Context, p Partition) (int, error) {
	e, err := s.Rate(ctx, p)
	if err != nil {
		return 0, err
	}
	players := e.Registry().Len()
	if s.reports == nil {
		return players, nil
	}

	if err := s.reports.Ratings(p.Name, e.Results()); err != nil {
		return players, err
	}
	if s.cfg.TrackPartnerStats {
		if err := s.reports.Pairings(p.Name, e.Registry()); err != nil {
			return players, err
		}
	}
	if s.cfg.EnableDrawPrediction {
		if err := s.writeDraws(ctx, p, e); err != nil {
			return players, err
		}
	}
	if s.cfg.EnableGraphRank {
		scores, err := s.Graph(ctx, p)
		if err != nil {
			return players, err
		}
		if err := s.reports.Graph(p.Name, scores); err != nil {
			return players, err
		}
	}
	return players, nil
}

// writeDraws skips oversized pools with a warning rather than failing the
// partition.
func (s *Service) writeDraws(ctx context.Context, p Partition, e *engine.Engine) error {
	matchups, err := s.predict(ctx, p, e)
	switch {
	case errors.Is(err, draws.ErrTooManyPlayers), errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn(ctx, "draw prediction skipped", logger.String("partition", p.Name), logger.Error(err))
		return nil
	case err != nil:
		return err
	}
	return s.reports.Draws(p.Name, matchups, 0)
}

// recordHistory replays each club's feed into the store. A failing club
// leaves no partial trail and does not stop the others.
func (s *Service) recordHistory(ctx context.Context, all []model.Match) (int, int, error) {
	byClub := ByClub(all)
	clubs := make([]string, 0, len(byClub))
	for c := range byClub {
		clubs = append(clubs, c)
	}
	sort.Strings(clubs)

	var errs []error
	done, skipped := 0, 0
	for _, club := range clubs {
		err := s.store.Batch(ctx, func(w history.Writer) error {
			opts := append(s.engineOptions("history_"+club),
				engine.WithRecorder(w),
				engine.WithResume(s.cfg.Resume),
			)
			e := engine.New(s.model, opts...)
			if err := e.Process(ctx, byClub[club]); err != nil {
				return err
			}
			skipped += e.Skipped()
			return nil
		})
		if err != nil {
			metrics.RecordErrorByComponent("app", "history")
			errs = append(errs, fmt.Errorf("history %s: %w", club, err))
			continue
		}
		done++
	}
	return done, skipped, errors.Join(errs...)
}
