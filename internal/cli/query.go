package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/shuttlerank/internal/adapters/report"
)

func partitionsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "partitions",
		Short: "List the partitions the feed produces",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := g.service()
			if err != nil {
				return err
			}
			parts, err := svc.Partitions(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PARTITION\tMATCHES")
			for _, p := range parts {
				fmt.Fprintf(tw, "%s\t%d\n", p.Name, len(p.Matches))
			}
			return tw.Flush()
		},
	}
}

func graphCmd(g *globals) *cobra.Command {
	var partition string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Rank a partition's players by win-graph centrality",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := g.service()
			if err != nil {
				return err
			}
			p, err := svc.Partition(cmd.Context(), partition)
			if err != nil {
				return err
			}
			scores, err := svc.Graph(cmd.Context(), p)
			if err != nil {
				return err
			}
			return report.WriteGraph(cmd.OutOrStdout(), scores)
		},
	}
	cmd.Flags().StringVarP(&partition, "partition", "p", "all_overall", "partition name")
	return cmd
}

func drawsCmd(g *globals) *cobra.Command {
	var (
		partition string
		top       int
	)
	cmd := &cobra.Command{
		Use:   "draws",
		Short: "List the most balanced hypothetical matchups in a partition",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := g.service()
			if err != nil {
				return err
			}
			p, err := svc.Partition(cmd.Context(), partition)
			if err != nil {
				return err
			}
			matchups, err := svc.Draws(cmd.Context(), p)
			if err != nil {
				return err
			}
			return report.WriteDraws(cmd.OutOrStdout(), matchups, top)
		},
	}
	cmd.Flags().StringVarP(&partition, "partition", "p", "all_overall", "partition name")
	cmd.Flags().IntVarP(&top, "top", "n", 20, "matchups to print (0 prints all)")
	return cmd
}
