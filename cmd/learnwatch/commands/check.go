package commands

import (
	"context"
	"fmt"
	"learnwatch/lib/checker"
	"learnwatch/lib/history"
	"learnwatch/lib/notify"
	"learnwatch/lib/serviceutil"
	"learnwatch/lib/telemetry"
	"learnwatch/lib/timezone"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks the site once and lists everything new since the previous check.",
	Run: func(cmd *cobra.Command, args []string) {
		c, err := newChecker()
		if err != nil {
			serviceutil.Fatal("failed to set up checker", err)
		}
		err = checkOnce(cmd.Context(), c)
		if err != nil {
			tel.Shutdown(context.Background())
			os.Exit(1)
		}
	},
}

// report hands a finished check to the optional history log and mailer. It
// runs on the checker's worker.
func report(ctx context.Context, result *checker.Result) {
	if config.History.Path != "" {
		store, err := history.Open(config.History.Path)
		if err != nil {
			slog.ErrorContext(ctx, "failed to open history", "path", config.History.Path, "err", err)
		} else {
			defer store.Close()
			run := history.NewRun(timezone.Now(), result.Credential.UserId, result.Courses, result.Total, result.Items)
			err = store.Record(ctx, run)
			if err != nil {
				slog.ErrorContext(ctx, "failed to record check", "err", err)
			}
		}
	}

	if config.Smtp.Enabled() && len(result.Items) > 0 {
		err := notify.NewMailer(config.Smtp).Send(ctx, result.Items)
		if err != nil {
			slog.ErrorContext(ctx, "failed to mail updates", "err", err)
		}
	}
}

// checkOnce runs a check and prints its progress and outcome. A cancelled
// login is not an error.
func checkOnce(ctx context.Context, c *checker.Checker) error {
	started := time.Now()
	events, err := c.Start(ctx)
	if err != nil {
		return err
	}

	var final error
	for event := range events {
		switch event.Kind {
		case checker.EventProgress:
			fmt.Fprintln(os.Stderr, event.Message)
		case checker.EventResult:
			result := event.Result
			if len(result.Items) > 0 {
				renderDelta(os.Stdout, result.Items)
			}
			fmt.Fprintf(os.Stderr, "Check complete, %d updates across %d courses.\n", len(result.Items), result.Courses)
			fmt.Fprintf(os.Stderr, "Main page: %s\n", result.MainPageUrl)
			telemetry.RecordCheck(ctx, "result", len(result.Items), time.Since(started))
		case checker.EventError:
			fmt.Fprintln(os.Stderr, event.Message)
			final = event.Err
			telemetry.RecordCheck(ctx, "error", 0, time.Since(started))
		case checker.EventCancelled:
			telemetry.RecordCheck(ctx, "cancelled", 0, time.Since(started))
		}
	}
	return final
}
