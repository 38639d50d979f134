package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/shuttlerank/internal/adapters/report"
	"github.com/okian/shuttlerank/internal/app"
	"github.com/okian/shuttlerank/pkg/logger"
)

func rankCmd(g *globals) *cobra.Command {
	var resume, damping, draws, graph bool
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rate every partition, write reports and record history",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("resume") {
				g.cfg.Resume = resume
			}
			if flags.Changed("damping") {
				g.cfg.ApplyDampingPolicy = damping
			}
			if flags.Changed("draws") {
				g.cfg.EnableDrawPrediction = draws
			}
			if flags.Changed("graph") {
				g.cfg.EnableGraphRank = graph
			}

			store, err := g.store()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logger.Get().Warn(cmd.Context(), "closing history store", logger.Error(err))
				}
			}()
			reports, err := report.NewDir(g.cfg.OutputDir)
			if err != nil {
				return err
			}
			svc, err := g.service(app.WithStore(store), app.WithReports(reports))
			if err != nil {
				return err
			}

			sum, runErr := svc.Run(cmd.Context())
			if sum != nil {
				if err := printSummary(cmd, sum); err != nil {
					return err
				}
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "seed priors from recorded history and skip recorded matches")
	cmd.Flags().BoolVar(&damping, "damping", false, "apply the post-update damping policy")
	cmd.Flags().BoolVar(&draws, "draws", false, "write draw prediction reports")
	cmd.Flags().BoolVar(&graph, "graph", false, "write graph ranking reports")
	return cmd
}

func printSummary(cmd *cobra.Command, sum *app.Summary) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run %s\n", sum.RunID)
	fmt.Fprintln(tw, "PARTITION\tMATCHES\tPLAYERS\tDURATION\tSTATUS")
	for _, p := range sum.Partitions {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", p.Name, p.Matches, p.Players, p.Duration.Round(time.Microsecond), status)
	}
	fmt.Fprintf(tw, "history: %d clubs recorded, %d matches skipped\n", sum.HistoryClubs, sum.Skipped)
	return tw.Flush()
}
