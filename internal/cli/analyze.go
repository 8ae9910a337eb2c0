package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/osintlab/intelgraph/internal/analytics"
)

var (
	analyzeEntity  string
	analyzeDays    int
	analyzePeriod  string
	analyzeHours   int
	analyzeOut     string
	analyzePersist bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run an analysis engine over the knowledge graph",
}

// reportOut resolves the --out flag: empty means stdout, a directory
// gets a timestamped filename for the report kind.
func reportOut(kind string) string {
	if analyzeOut == "" {
		return ""
	}
	if fi, err := os.Stat(analyzeOut); err == nil && fi.IsDir() {
		return analytics.ReportPath(analyzeOut, kind)
	}
	return analyzeOut
}

var contradictionsCmd = &cobra.Command{
	Use:   "contradictions",
	Short: "Detect conflicting claims among recent graph claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalytics(func(ctx context.Context, deps *analyticsDeps) error {
			detector := analytics.NewDetector(deps.store, deps.nli, deps.cfg.Analytics, deps.logger)

			report, err := detector.Report(ctx, analyzeEntity, analyzeDays)
			if err != nil {
				return err
			}
			if analyzePersist {
				if err := detector.Persist(ctx, report.Top); err != nil {
					return err
				}
			}
			return analytics.WriteReport(reportOut("contradictions"), report)
		})
	},
}

var credibilityCmd = &cobra.Command{
	Use:   "credibility [source-name]",
	Short: "Score source credibility from the graph record",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalytics(func(ctx context.Context, deps *analyticsDeps) error {
			scorer := analytics.NewScorer(deps.store, deps.history, deps.cfg.Analytics, deps.logger)

			if len(args) == 1 {
				score, err := scorer.ScoreSource(ctx, args[0], analyzeDays)
				if err != nil {
					return err
				}
				return analytics.WriteReport(reportOut("credibility"), score)
			}
			report, err := scorer.Report(ctx, analyzeDays)
			if err != nil {
				return err
			}
			return analytics.WriteReport(reportOut("credibility"), report)
		})
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Classify entity coverage trends over a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalytics(func(ctx context.Context, deps *analyticsDeps) error {
			analyzer := analytics.NewTemporalAnalyzer(deps.store, deps.cfg.Analytics, deps.logger)

			if analyzeEntity != "" {
				timeline, err := analyzer.Timeline(ctx, analyzeEntity, analyzeDays)
				if err != nil {
					return err
				}
				return analytics.WriteReport(reportOut("timeline"), timeline)
			}
			trends, err := analyzer.Trends(ctx, analyzePeriod)
			if err != nil {
				return err
			}
			return analytics.WriteReport(reportOut("trends"), trends)
		})
	},
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Detect abnormal activity in the recent window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAnalytics(func(ctx context.Context, deps *analyticsDeps) error {
			analyzer := analytics.NewTemporalAnalyzer(deps.store, deps.cfg.Analytics, deps.logger)

			anomalies, err := analyzer.Anomalies(ctx, analyzeHours)
			if err != nil {
				return err
			}
			if len(anomalies) == 0 && analyzeOut == "" {
				fmt.Println("no anomalies detected")
				return nil
			}
			return analytics.WriteReport(reportOut("anomalies"), anomalies)
		})
	},
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeEntity, "entity", "", "restrict to one entity")
	analyzeCmd.PersistentFlags().IntVar(&analyzeDays, "days", 0, "lookback window in days (default from config)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeOut, "out", "", "write the JSON report to a file, or a timestamped file under a directory")

	contradictionsCmd.Flags().BoolVar(&analyzePersist, "persist", false, "write detected contradictions back as graph edges")
	trendsCmd.Flags().StringVar(&analyzePeriod, "period", "7d", "trend period: 24h, 7d, 30d")
	anomaliesCmd.Flags().IntVar(&analyzeHours, "hours", 0, "anomaly window in hours (default from config)")

	analyzeCmd.AddCommand(contradictionsCmd, credibilityCmd, trendsCmd, anomaliesCmd)
	rootCmd.AddCommand(analyzeCmd)
}
