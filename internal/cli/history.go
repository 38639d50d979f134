package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/shuttlerank/internal/adapters/report"
	"github.com/okian/shuttlerank/internal/app"
	"github.com/okian/shuttlerank/internal/domain/model"
	"github.com/okian/shuttlerank/pkg/logger"
)

func historyCmd(g *globals) *cobra.Command {
	var player, person string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a player's or person's rating trajectory",
		Long: "Print the recorded rating trajectory, oldest first, preceded by the prior.\n" +
			"Without --db the feed is replayed into memory first.",
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			if (player == "") == (person == "") {
				return ErrHistorySubject
			}
			ctx := cmd.Context()

			store, err := g.store()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Get().Warn(ctx, "closing history store", logger.Error(err))
				}
			}()
			svc, err := g.service(app.WithStore(store))
			if err != nil {
				return err
			}
			if g.cfg.DBPath == "" {
				if _, err := svc.Run(ctx); err != nil {
					return err
				}
			}

			who := player
			var snaps []model.RatingSnapshot
			if player != "" {
				snaps, err = store.History(ctx, model.PlayerID(player))
			} else {
				who = person
				snaps, err = store.HistoryByPerson(ctx, model.PersonID(person))
			}
			if err != nil {
				return fmt.Errorf("history for %s: %w", who, err)
			}
			m := svc.Model()
			return report.WriteHistory(cmd.OutOrStdout(), who, snaps, m.Prior(model.PlayerID(who)), m.Ordinal)
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "player id")
	cmd.Flags().StringVar(&person, "person", "", "person id from the person map")
	return cmd
}
