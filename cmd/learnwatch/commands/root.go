package commands

import (
	"context"
	"fmt"
	"learnwatch/lib/checker"
	"learnwatch/lib/obfstore"
	"learnwatch/lib/telemetry"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool
)

// set up by the root command before any subcommand runs
var (
	config Config
	tel    telemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The configuration file, a config.local.json5 next to it overrides it.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Log debug messages.")
}

var rootCmd = &cobra.Command{
	Use:   "learnwatch",
	Short: "learnwatch checks the course site for announcements, files, homework and discussions added since the last check.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*debug)

		var err error
		config, err = readConfig(*configPath)
		if err != nil {
			return fmt.Errorf("read config %s: %w", *configPath, err)
		}

		tel, err = telemetry.Setup(cmd.Context(), "learnwatch", config.Telemetry)
		if err != nil {
			return fmt.Errorf("set up telemetry: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newStore() *obfstore.Store {
	return obfstore.New(config.StorePath)
}

func newChecker() (*checker.Checker, error) {
	opts, err := config.clientOptions()
	if err != nil {
		return nil, err
	}
	return checker.New(checker.Options{
		Store:         newStore(),
		Prompter:      newTerminalPrompter(),
		Client:        opts,
		LoginAttempts: config.LoginAttempts,
		Report:        report,
	}), nil
}
