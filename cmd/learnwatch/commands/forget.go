package commands

import (
	"fmt"
	"learnwatch/lib/serviceutil"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(forgetCmd)
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Deletes the stored credential and snapshot, the next check starts over.",
	Run: func(cmd *cobra.Command, args []string) {
		err := newStore().Remove()
		if err != nil {
			serviceutil.Fatal("failed to remove store", err)
		}
		fmt.Fprintf(os.Stderr, "Removed %s.\n", config.StorePath)
	},
}
