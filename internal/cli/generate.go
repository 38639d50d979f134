package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/shuttlerank/internal/adapters/feed"
	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/logger"
)

func generateCmd(_ *globals) *cobra.Command {
	var (
		out        string
		seed       uint64
		clubs      int
		players    int
		sessions   int
		perSession int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a reproducible synthetic match feed",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			matches := feed.NewGenerator(
				feed.WithSeed(seed),
				feed.WithClubs(clubs),
				feed.WithPlayersPerClub(players),
				feed.WithSessions(sessions),
				feed.WithMatchesPerSession(perSession),
			).Generate()

			if err := writeFeed(cmd.OutOrStdout(), out, matches); err != nil {
				return err
			}
			logger.Get().Info(cmd.Context(), "feed generated", logger.Int("matches", len(matches)), logger.String("out", out))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&out, "feed-out", "-", "destination CSV; - writes to stdout")
	f.Uint64Var(&seed, "seed", 1, "random seed")
	f.IntVar(&clubs, "clubs", 2, "number of clubs")
	f.IntVar(&players, "players", 12, "players per club")
	f.IntVar(&sessions, "sessions", 8, "sessions per club")
	f.IntVar(&perSession, "matches", 10, "matches per session")
	return cmd
}

// writeFeed writes to stdout when path is empty or "-".
func writeFeed(stdout io.Writer, path string, matches []model.Match) error {
	if path == "" || path == "-" {
		return feed.WriteCSV(stdout, matches)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := feed.WriteCSV(f, matches); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
