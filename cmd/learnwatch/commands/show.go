package commands

import (
	"fmt"
	"learnwatch/lib/timezone"
	"os"

	"github.com/spf13/cobra"
)

var courseFilter *string

func init() {
	courseFilter = showCmd.Flags().String("course", "", "Only list items of courses whose title resembles this.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [--course <title>]",
	Short: "Lists every item recorded by the last check.",
	Run: func(cmd *cobra.Command, args []string) {
		st, ok := newStore().Load(cmd.Context())
		if !ok {
			fmt.Fprintln(os.Stderr, "Nothing is stored yet, run `learnwatch check` first.")
			return
		}
		fmt.Fprintf(os.Stderr, "Stored for %s.\n", st.Credential)
		renderSnapshot(os.Stdout, filterItems(st.Snapshot.Items, *courseFilter), timezone.Now())
	},
}
