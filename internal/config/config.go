// Package config defines batch configuration and loading hooks.
//
// Conventions:
// - New() builds a Config populated with defaults.
// - Load(ctx) layers a YAML file and environment variables over the defaults.
// - Validate() reports impossible values wrapped in ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// FeedPath points at the ordered matches CSV.
	FeedPath string `koanf:"feed_path"`
	// PersonMapPath points at the player -> person CSV. Optional.
	PersonMapPath string `koanf:"person_map_path"`
	// DBPath is the SQLite file for rank history. Empty keeps history in memory.
	DBPath string `koanf:"db_path"`
	// OutputDir receives one report per partition.
	OutputDir string `koanf:"output_dir"`

	// WorkerCount bounds how many partitions are rated in parallel.
	WorkerCount int `koanf:"worker_count"`

	// PerClub and Combined select which partitions are produced.
	PerClub  bool `koanf:"per_club"`
	Combined bool `koanf:"combined"`
	// ExcludedCategory is left out of overall partitions.
	ExcludedCategory string `koanf:"excluded_category"`

	// Feature flags.
	TrackPartnerStats    bool `koanf:"track_partner_stats"`
	ApplyDampingPolicy   bool `koanf:"apply_damping_policy"`
	EnableDrawPrediction bool `koanf:"enable_draw_prediction"`
	EnableGraphRank      bool `koanf:"enable_graph_rank"`
	// Resume seeds priors from the latest snapshots and skips recorded matches.
	Resume bool `koanf:"resume"`

	// Damping policy parameters.
	DampingThreshold float64 `koanf:"damping_threshold"`
	DampingOffset    float64 `koanf:"damping_offset"`
	MinMu            float64 `koanf:"min_mu"`
	MaxSigma         float64 `koanf:"max_sigma"`

	// Rating model parameters.
	ModelMu    float64 `koanf:"model_mu"`
	ModelSigma float64 `koanf:"model_sigma"`
	ModelBeta  float64 `koanf:"model_beta"`
	ModelTau   float64 `koanf:"model_tau"`
	ModelKappa float64 `koanf:"model_kappa"`
	ModelZ     float64 `koanf:"model_z"`

	// DrawMaxPlayers refuses draw prediction above this pool size (0 = unlimited).
	DrawMaxPlayers int `koanf:"draw_max_players"`
	// DrawTimeoutMS cancels a draw prediction that runs too long (0 = no timeout).
	DrawTimeoutMS int `koanf:"draw_timeout_ms"`

	// Graph ranking parameters.
	GraphDamping       float64 `koanf:"graph_damping"`
	GraphTolerance     float64 `koanf:"graph_tolerance"`
	GraphMaxIterations int     `koanf:"graph_max_iterations"`
	GraphEdgePolicy    string  `koanf:"graph_edge_policy"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump after a run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		FeedPath:             "data/matches.csv",
		OutputDir:            "data/reports",
		WorkerCount:          runtime.NumCPU(),
		PerClub:              true,
		Combined:             true,
		ExcludedCategory:     "Undefined",
		TrackPartnerStats:    true,
		ApplyDampingPolicy:   false,
		EnableDrawPrediction: false,
		EnableGraphRank:      false,
		DampingThreshold:     20,
		DampingOffset:        6,
		MinMu:                10,
		MaxSigma:             8,
		ModelMu:              25,
		ModelSigma:           25.0 / 3.0,
		ModelBeta:            25.0 / 6.0,
		ModelTau:             25.0 / 300.0,
		ModelKappa:           0.0001,
		ModelZ:               3,
		DrawMaxPlayers:       60,
		DrawTimeoutMS:        0,
		GraphDamping:         0.85,
		GraphTolerance:       1e-9,
		GraphMaxIterations:   1000,
		GraphEdgePolicy:      "accumulate",
	}
}

// Validate checks the values that would make a run meaningless.
func (c *Config) Validate() error {
	switch {
	case c.FeedPath == "":
		return fmt.Errorf("%w: feed_path must not be empty", ErrInvalidConfig)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case !c.PerClub && !c.Combined:
		return fmt.Errorf("%w: at least one of per_club or combined must be set", ErrInvalidConfig)
	case c.ModelSigma <= 0 || c.ModelBeta <= 0:
		return fmt.Errorf("%w: model_sigma and model_beta must be positive", ErrInvalidConfig)
	case c.MaxSigma <= 0:
		return fmt.Errorf("%w: max_sigma must be positive", ErrInvalidConfig)
	case c.GraphDamping <= 0 || c.GraphDamping >= 1:
		return fmt.Errorf("%w: graph_damping must be in (0, 1)", ErrInvalidConfig)
	case c.GraphMaxIterations < 1:
		return fmt.Errorf("%w: graph_max_iterations must be at least 1", ErrInvalidConfig)
	}
	switch strings.ToLower(c.GraphEdgePolicy) {
	case "accumulate", "overwrite":
	default:
		return fmt.Errorf("%w: graph_edge_policy must be accumulate or overwrite, got %q", ErrInvalidConfig, c.GraphEdgePolicy)
	}
	return nil
}
