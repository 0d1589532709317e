package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/parkbj12/songil-ai/internal/status"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload an exported health data file for analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := a.client.UploadHealthData(ctx, userID, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		if res.Message != "" {
			fmt.Println(res.Message)
		}
		fmt.Printf("  %d samples, anomaly score %.3f: %s\n", len(res.SensorData), res.AnomalyScore,
			anomalyText(status.ClassifyAnomaly(res.AnomalyScore, res.Threshold)))
		if res.Feedback != "" {
			fmt.Printf("  %s %s\n", cyan("Feedback:"), res.Feedback)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
