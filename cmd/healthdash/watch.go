package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parkbj12/songil-ai/internal/user/entity"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay running to receive check-ins and the daily reminder",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		userID, err := a.requireUser(ctx)
		if err != nil {
			return err
		}
		// the poller stops on its own once the session drops out of Valid
		a.validator.OnChange(func(st entity.State) {
			if st.Phase == entity.PhaseValid {
				a.poller.Start(ctx)
			}
		})
		a.poller.Start(ctx)
		go a.reminder.Run(ctx)

		fmt.Printf("%s watching as %s (first check-in poll in %s, reminder at %s). Ctrl+C to stop.\n",
			green("●"), userID, a.cfg.PollInitial, a.reminder.Time(ctx))
		<-ctx.Done()
		fmt.Println(gray("stopped"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
