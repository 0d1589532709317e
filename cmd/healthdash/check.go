package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkbj12/songil-ai/internal/healthcheck"
	"github.com/parkbj12/songil-ai/internal/healthcheck/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
)

var sample remote.SensorSample

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Analyse and save today's readings",
	Long:  `Run anomaly detection on today's readings, save the result and show today's summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !sample.HasMetrics() {
			return healthcheck.ErrNoMetrics
		}
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		res, err := a.checks.Check(ctx, sample)
		if res != nil {
			printCheck(res)
		}
		if errors.Is(err, healthcheck.ErrNotSaved) {
			return fmt.Errorf("%w; run the check again to retry", err)
		}
		return err
	},
}

func printCheck(res *entity.Result) {
	p := res.Prediction
	fmt.Printf("\n%s\n", cyan("=== Health check "+res.Date+" ==="))
	if res.Sample.HeartRate > 0 {
		fmt.Printf("  Heart rate:  %.0f bpm (%s)\n", res.Sample.HeartRate, heartRateText(res.Sample.HeartRate))
	}
	fmt.Printf("  Steps:       %.0f (%s)\n", res.Sample.Steps, stepsText(res.Sample.Steps))
	if res.Sample.Sleep > 0 {
		fmt.Printf("  Sleep:       %.1f h\n", res.Sample.Sleep)
	}
	if res.Sample.Temperature > 0 {
		fmt.Printf("  Temperature: %.1f °C\n", res.Sample.Temperature)
	}
	fmt.Printf("  Activity:    %.0f\n", res.Sample.Activity)

	fmt.Printf("\n  Anomaly score %.3f / threshold %.3f: %s\n", p.AnomalyScore, p.Threshold, anomalyText(res.Anomaly))
	for i, f := range p.TopAnomalousFeatures() {
		fmt.Printf("    %d. %s %.2f\n", i+1, f.Name, f.Score)
	}
	if p.Feedback != "" {
		fmt.Printf("\n  %s %s\n", cyan("Feedback:"), p.Feedback)
	}
	if p.Notification != nil && p.Notification.Message != "" {
		fmt.Printf("  %s %s\n", gray("Contacts:"), p.Notification.Message)
	}
	if !res.Saved {
		fmt.Printf("\n  %s\n", red("not saved"))
		return
	}
	fmt.Printf("\n  %s %s\n", green("saved"), gray(res.DocumentID))
	if s := res.Summary; s != nil && s.Score != nil {
		fmt.Printf("  Health score: %s (%s), %d emergency contacts\n", gradeText(*s.Score), s.Grade, s.ContactCount)
	}
	if pr := res.Progress; pr != nil {
		printProgress(*pr)
	}
}

func init() {
	f := checkCmd.Flags()
	f.Float64Var(&sample.HeartRate, "heart-rate", 0, "heart rate in bpm")
	f.Float64Var(&sample.Steps, "steps", 0, "steps today")
	f.Float64Var(&sample.Sleep, "sleep", 0, "hours slept")
	f.Float64Var(&sample.Temperature, "temperature", 0, "body temperature in °C")
	f.Float64Var(&sample.Activity, "activity", 0, "activity estimate; derived from steps when omitted")
	rootCmd.AddCommand(checkCmd)
}
