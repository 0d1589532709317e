package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parkbj12/songil-ai/pkg/utilities"
)

var (
	cfgPath  string
	userFlag string

	logger *zap.SugaredLogger
	a      *app
)

var rootCmd = &cobra.Command{
	Use:           "healthdash",
	Short:         "Daily health check client",
	Long:          `Record daily health readings, get anomaly feedback and stay in touch with emergency contacts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		a, err = newApp(cmd.Context(), cfgPath, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if a != nil {
			a.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("HEALTHDASH_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id (defaults to the last validated id)")
}

func main() {
	os.Exit(run())
}

func run() int {
	// best-effort: without a .env the real environment is used
	_ = godotenv.Load()

	logCfg := utilities.ConfigFromEnv()
	if os.Getenv("LOG_LEVEL") == "" && !logCfg.Dev {
		logCfg.Level = "warn"
	}
	lg, err := utilities.Init(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer lg.Sync()
	logger = lg.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), describe(err))
		return 1
	}
	return 0
}
