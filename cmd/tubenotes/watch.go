package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"tubenotes/shared/scheduler"

	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	flags := &runFlags{}
	var scheduleFlag string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Summarize the channel on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}

			schedule := a.cfg.Schedule
			if scheduleFlag != "" {
				schedule = scheduleFlag
			}

			err = scheduler.New(schedule, a).Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&scheduleFlag, "schedule", "", "Cron expression for scheduled runs (overrides config)")
	return cmd
}
