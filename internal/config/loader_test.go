package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/shuttlerank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.FeedPath, convey.ShouldEqual, "data/matches.csv")
				convey.So(cfg.ModelZ, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SHUTTLERANK_FEED_PATH", "/tmp/feed.csv")
			_ = os.Setenv("SHUTTLERANK_WORKER_COUNT", "3")
			_ = os.Setenv("SHUTTLERANK_APPLY_DAMPING_POLICY", "true")
			_ = os.Setenv("SHUTTLERANK_MIN_MU", "12.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.FeedPath, convey.ShouldEqual, "/tmp/feed.csv")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.ApplyDampingPolicy, convey.ShouldBeTrue)
				convey.So(cfg.MinMu, convey.ShouldEqual, 12.5)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
output_dir: "/srv/reports"
per_club: false
enable_graph_rank: true
graph_edge_policy: overwrite
worker_count: 8
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SHUTTLERANK_CONFIG", tmpFile)
			_ = os.Setenv("SHUTTLERANK_WORKER_COUNT", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OutputDir, convey.ShouldEqual, "/srv/reports") // from file
				convey.So(cfg.PerClub, convey.ShouldBeFalse)                 // from file
				convey.So(cfg.EnableGraphRank, convey.ShouldBeTrue)          // from file
				convey.So(cfg.GraphEdgePolicy, convey.ShouldEqual, "overwrite")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2) // env wins
				convey.So(cfg.Combined, convey.ShouldBeTrue)      // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("SHUTTLERANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SHUTTLERANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SHUTTLERANK_WORKER_COUNT", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the layered values fail validation", func() {
			_ = os.Setenv("SHUTTLERANK_GRAPH_EDGE_POLICY", "max")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "graph_edge_policy")
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"SHUTTLERANK_CONFIG",
		"SHUTTLERANK_FEED_PATH",
		"SHUTTLERANK_WORKER_COUNT",
		"SHUTTLERANK_APPLY_DAMPING_POLICY",
		"SHUTTLERANK_MIN_MU",
		"SHUTTLERANK_GRAPH_EDGE_POLICY",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "shuttlerank-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
