package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reminderCmd = &cobra.Command{
	Use:   "reminder [HH:MM]",
	Short: "Show or set the daily check reminder time",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 1 {
			if err := a.reminder.SetTime(ctx, args[0]); err != nil {
				return err
			}
		}
		fmt.Printf("daily reminder at %s\n", a.reminder.Time(ctx))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reminderCmd)
}
