package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osintlab/intelgraph/internal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge-graph node counts and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalytics(func(ctx context.Context, deps *analyticsDeps) error {
			stats, err := deps.store.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("entities: %d\nclaims:   %d\nsources:  %d\nevents:   %d\n\n",
				stats.Entities, stats.Claims, stats.Sources, stats.Events)

			analyzer := analytics.NewTemporalAnalyzer(deps.store, deps.cfg.Analytics, deps.logger)
			summary, err := analyzer.Summary(ctx)
			if err != nil {
				return err
			}
			for _, window := range []string{"24h", "7d", "30d"} {
				w := summary.Windows[window]
				fmt.Printf("%-4s %6d claims  %6d active entities\n", window, w.TotalClaims, w.ActiveEntities)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
