package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	contactentity "github.com/parkbj12/songil-ai/internal/contact/entity"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage emergency contacts",
	Long:  `Edit the local contact list, then upload it with 'contacts save'.`,
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List emergency contacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		list, err := a.contacts.List(ctx)
		if err != nil {
			return err
		}
		printContacts(list)
		return nil
	},
}

var contactsAddCmd = &cobra.Command{
	Use:   "add NAME EMAIL [PHONE]",
	Short: "Add an emergency contact",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		phone := ""
		if len(args) == 3 {
			phone = args[2]
		}
		c, err := a.contacts.Add(ctx, args[0], args[1], phone)
		if err != nil {
			return err
		}
		fmt.Printf("%s added %s <%s>; run `healthdash contacts save` to upload\n", green("✓"), c.Name, c.Email)
		return nil
	},
}

var contactsRemoveCmd = &cobra.Command{
	Use:   "remove N",
	Short: "Remove the Nth contact as shown by 'contacts list'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("contact number %q is not a number", args[0])
		}
		c, err := a.contacts.Remove(ctx, n-1)
		if err != nil {
			return err
		}
		fmt.Printf("%s removed %s <%s>\n", green("✓"), c.Name, c.Email)
		return nil
	},
}

var contactsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Upload the contact list to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if err := a.contacts.Save(ctx); err != nil {
			return err
		}
		fmt.Printf("%s emergency contacts saved\n", green("✓"))
		return nil
	},
}

var contactsLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Replace the local list with the server's copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		list, err := a.contacts.Load(ctx)
		if err != nil {
			return err
		}
		printContacts(list)
		return nil
	},
}

func printContacts(list []contactentity.EmergencyContact) {
	if len(list) == 0 {
		fmt.Println(gray("no emergency contacts"))
		return
	}
	for i, c := range list {
		line := fmt.Sprintf("%d. %s <%s>", i+1, c.Name, c.Email)
		if c.Phone != "" {
			line += " " + gray(c.Phone)
		}
		fmt.Println(line)
	}
}

var emailCmd = &cobra.Command{
	Use:   "email [ADDRESS]",
	Short: "Show or set the email that receives anomaly alerts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		if len(args) == 1 {
			if err := a.contacts.SaveEmail(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("%s alert email set to %s\n", green("✓"), args[0])
			return nil
		}
		email, err := a.contacts.LoadEmail(ctx)
		if err != nil {
			return err
		}
		if email == "" {
			fmt.Println(gray("no alert email set"))
			return nil
		}
		fmt.Println(email)
		return nil
	},
}

var alertYes bool

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Send an emergency alert to every contact",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		list, err := a.contacts.List(ctx)
		if err != nil {
			return err
		}
		if len(list) > 0 && !alertYes {
			printContacts(list)
			answer, err := readline.Line(yellow("Send an emergency alert to these contacts? [y/N] "))
			if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
				fmt.Println(gray("cancelled"))
				return nil
			}
		}
		if err := a.contacts.SendEmergencyAlert(ctx); err != nil {
			return err
		}
		fmt.Printf("%s emergency alert sent. If this is urgent, also call emergency services.\n", green("✓"))
		return nil
	},
}

func init() {
	alertCmd.Flags().BoolVarP(&alertYes, "yes", "y", false, "do not ask for confirmation")
	contactsCmd.AddCommand(contactsListCmd, contactsAddCmd, contactsRemoveCmd, contactsSaveCmd, contactsLoadCmd)
	rootCmd.AddCommand(contactsCmd, emailCmd, alertCmd)
}
