package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/parkbj12/songil-ai/internal/goal"
	goalentity "github.com/parkbj12/songil-ai/internal/goal/entity"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage daily step and sleep goals",
}

var goalSetCmd = &cobra.Command{
	Use:   "set steps|sleep TARGET",
	Short: "Set a daily goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		metric, err := goal.ParseMetric(args[0])
		if err != nil {
			return err
		}
		target, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("%w: target %q is not a number", goal.ErrInvalidGoal, args[1])
		}
		if _, err := a.goals.SetGoal(ctx, userID, metric, target); err != nil {
			return err
		}
		fmt.Printf("%s %s goal set to %s\n", green("✓"), metric, strconv.FormatFloat(target, 'f', -1, 64))
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show goals and today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		g, err := a.goals.Goals(ctx, userID)
		if err != nil {
			return err
		}
		if g.Steps == nil && g.Sleep == nil {
			fmt.Println(gray("no goals set; try `healthdash goal set steps 8000`"))
			return nil
		}
		if g.Steps != nil {
			fmt.Printf("  Steps goal: %.0f\n", *g.Steps)
		}
		if g.Sleep != nil {
			fmt.Printf("  Sleep goal: %.1f h\n", *g.Sleep)
		}
		p, err := a.goals.Refresh(ctx, userID)
		if err != nil {
			a.logger.Warnw("goal progress refresh failed", "err", err)
			return nil
		}
		if p.Empty() {
			fmt.Println(gray("  no check today yet"))
			return nil
		}
		printProgress(p)
		return nil
	},
}

func printProgress(p goalentity.Progress) {
	if p.Steps != nil {
		fmt.Printf("  Steps progress: %s\n", bar(*p.Steps))
	}
	if p.Sleep != nil {
		fmt.Printf("  Sleep progress: %s\n", bar(*p.Sleep))
	}
}

func bar(pct float64) string {
	const width = 20
	n := int(pct / 100 * width)
	s := ""
	for i := 0; i < width; i++ {
		if i < n {
			s += "█"
		} else {
			s += "░"
		}
	}
	text := fmt.Sprintf("%s %3.0f%%", s, pct)
	if pct >= 100 {
		return green(text)
	}
	return text
}

func init() {
	goalCmd.AddCommand(goalSetCmd, goalShowCmd)
	rootCmd.AddCommand(goalCmd)
}
