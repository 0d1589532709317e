package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/status"
)

var (
	historyDate  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved health logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		res, err := a.client.LookupUser(ctx, userID, remote.Filters{Limit: historyLimit, Date: historyDate})
		if err != nil {
			return err
		}
		if len(res.Entries) == 0 {
			fmt.Println(gray("no logs"))
			return nil
		}
		for _, e := range res.Entries {
			line := fmt.Sprintf("%s  steps %-6.0f sleep %-4.1f", e.Date, e.TotalSteps(), e.AverageSleep())
			if e.AnomalyScore != nil {
				line += fmt.Sprintf("  score %.3f %s", *e.AnomalyScore, anomalyText(status.ClassifyAnomaly(*e.AnomalyScore, e.Threshold)))
			}
			fmt.Printf("%s  %s\n", line, gray(e.ID))
		}
		fmt.Printf("%s\n", gray(fmt.Sprintf("%d of %d", len(res.Entries), res.Count)))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved health log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if err := a.client.DeleteLog(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("%s deleted %s\n", green("✓"), args[0])
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show anomaly statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		st, err := a.client.GetStatistics(ctx, userID)
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n", cyan("=== Statistics for "+userID+" ==="))
		fmt.Printf("  Logs:       %d\n", st.TotalLogs)
		fmt.Printf("  Anomalies:  %d (%.1f%%)\n", st.AnomalyCount, st.AnomalyRate*100)
		fmt.Printf("  Average:    %.3f %s\n", st.AvgAnomalyScore, anomalyText(status.ClassifyAnomaly(st.AvgAnomalyScore, 0)))
		fmt.Printf("  Max:        %.3f %s\n", st.MaxAnomalyScore, anomalyText(status.ClassifyAnomaly(st.MaxAnomalyScore, 0)))
		fmt.Printf("  Min:        %.3f %s\n", st.MinAnomalyScore, anomalyText(status.ClassifyAnomaly(st.MinAnomalyScore, 0)))
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyDate, "date", "", "only logs for this day (YYYY-MM-DD)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum number of logs")
	rootCmd.AddCommand(historyCmd, deleteCmd, statsCmd)
}
