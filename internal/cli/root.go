// Package cli exposes the rating batch as a cobra command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/shuttlerank/internal/adapters/feed"
	"github.com/okian/shuttlerank/internal/adapters/history"
	"github.com/okian/shuttlerank/internal/app"
	"github.com/okian/shuttlerank/internal/config"
	"github.com/okian/shuttlerank/pkg/logger"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	feedPath   string
	personMap  string
	dbPath     string
	outputDir  string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// Root builds the shuttlerank command tree.
func Root() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "shuttlerank",
		Short: "Rate badminton doubles players from an ordered match feed",

		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "YAML config file (overrides SHUTTLERANK_CONFIG)")
	pf.StringVar(&g.feedPath, "feed", "", "matches CSV")
	pf.StringVar(&g.personMap, "person-map", "", "player_id,person CSV")
	pf.StringVar(&g.dbPath, "db", "", "SQLite rank history file; empty keeps history in memory")
	pf.StringVarP(&g.outputDir, "out", "o", "", "report directory")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "", "text or json")

	root.AddCommand(rankCmd(g))
	root.AddCommand(partitionsCmd(g))
	root.AddCommand(graphCmd(g))
	root.AddCommand(drawsCmd(g))
	root.AddCommand(historyCmd(g))
	root.AddCommand(generateCmd(g))
	return root
}

// Execute runs the command tree under ctx.
func Execute(ctx context.Context, args []string) error {
	root := Root()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// load layers flags over the file and environment configuration and
// initializes logging on the command's error stream.
func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFrom(cmd.Context(), g.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("feed") {
		cfg.FeedPath = g.feedPath
	}
	if flags.Changed("person-map") {
		cfg.PersonMapPath = g.personMap
	}
	if flags.Changed("db") {
		cfg.DBPath = g.dbPath
	}
	if flags.Changed("out") {
		cfg.OutputDir = g.outputDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	g.cfg = cfg
	return nil
}

func (g *globals) feed() (*feed.CSVFeed, error) {
	return feed.LoadCSV(g.cfg.FeedPath)
}

// store opens the SQLite history when a path is configured and an in-memory
// one otherwise.
func (g *globals) store() (history.Store, error) {
	resolver, err := feed.LoadResolver(g.cfg.PersonMapPath)
	if err != nil {
		return nil, err
	}
	if g.cfg.DBPath == "" {
		return history.NewMemoryStore(history.WithResolver(resolver)), nil
	}
	s, err := history.OpenSQLite(g.cfg.DBPath, history.WithResolver(resolver))
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", g.cfg.DBPath, err)
	}
	return s, nil
}

// service builds an app.Service over the configured feed.
func (g *globals) service(opts ...app.Option) (*app.Service, error) {
	f, err := g.feed()
	if err != nil {
		return nil, err
	}
	return app.New(g.cfg, f, opts...), nil
}
