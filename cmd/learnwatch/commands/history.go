package commands

import (
	"errors"
	"learnwatch/lib/history"
	"learnwatch/lib/serviceutil"
	"os"

	"github.com/spf13/cobra"
)

var limit *int

func init() {
	limit = historyCmd.Flags().Int("limit", 10, "How many checks to list.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <count>]",
	Short: "Lists the most recent checks and the updates they found.",
	Run: func(cmd *cobra.Command, args []string) {
		if config.History.Path == "" {
			serviceutil.Fatal("cannot list history", errors.New("history.path is not configured"))
		}
		store, err := history.Open(config.History.Path)
		if err != nil {
			serviceutil.Fatal("failed to open history", err)
		}
		defer store.Close()

		runs, err := store.Recent(cmd.Context(), *limit)
		if err != nil {
			serviceutil.Fatal("failed to read history", err)
		}
		renderHistory(os.Stdout, runs)
	},
}
