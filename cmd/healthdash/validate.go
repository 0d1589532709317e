package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate ID",
	Short: "Validate a user id and remember it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := a.login(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		kind := "new user"
		if st.Existing {
			kind = "existing user"
		}
		fmt.Printf("%s %s %s\n", green("✓"), st.Candidate, gray("("+kind+")"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
