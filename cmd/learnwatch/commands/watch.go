package commands

import (
	"learnwatch/lib/serviceutil"
	"learnwatch/lib/telemetry"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var interval *int

func init() {
	interval = watchCmd.Flags().Int("interval", 0, "Minutes between checks, defaults to watch.interval_minutes.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--interval <minutes>]",
	Short: "Checks the site repeatedly until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		minutes := config.Watch.IntervalMinutes
		if *interval > 0 {
			minutes = *interval
		}
		every := time.Duration(minutes) * time.Minute

		c, err := newChecker()
		if err != nil {
			serviceutil.Fatal("failed to set up checker", err)
		}
		telemetry.InstrumentPerfStats(ctx, time.Minute)

		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			err := checkOnce(ctx, c)
			if err != nil {
				slog.WarnContext(ctx, "check failed, retrying at the next interval", "err", err)
			}
			slog.InfoContext(ctx, "next check scheduled", "at", time.Now().Add(every).Format(time.TimeOnly))

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	},
}
