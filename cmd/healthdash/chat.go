package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/parkbj12/songil-ai/internal/notification"
)

var chatCmd = &cobra.Command{
	Use:   "chat [MESSAGE]",
	Short: "Talk to the health assistant",
	Long:  `Send one message, or start an interactive conversation when no message is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if _, err := a.requireUser(ctx); err != nil {
			return err
		}
		// surface any pending check-in so the reply answers it
		if err := a.poller.Poll(ctx); err != nil && !errors.Is(err, notification.ErrInFlight) {
			a.logger.Warnw("check-in poll failed", "err", err)
		}
		if len(args) > 0 {
			return sendChat(ctx, strings.Join(args, " "))
		}
		return chatREPL(ctx)
	},
}

func sendChat(ctx context.Context, msg string) error {
	reply, err := a.chat.Send(ctx, msg)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", cyan("bot:"), reply)
	return nil
}

func chatREPL(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("you> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	fmt.Println(gray("Type a message, or 'exit' to quit."))
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if err := sendChat(ctx, line); err != nil {
			fmt.Printf("%s %s\n", red("Error:"), describe(err))
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
