// Package schedule implements the schedule command, which runs ingestion
// passes on a cron schedule until interrupted.
package schedule

import (
	"context"
	"fmt"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsharvest/cmd/common"
)

// Command returns the schedule command for use in the root command.
func Command() *cobra.Command {
	var spec string
	var sourceSlugs []string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run ingestion passes on a cron schedule",
		Long: `Run ingestion passes repeatedly on a cron schedule until interrupted.
The schedule defaults to every 15 minutes and can be overridden with --cron
or the schedule.spec configuration key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			if spec == "" {
				spec = deps.Config.Schedule.Spec
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pipeline, err := common.NewPipeline(ctx, deps)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			return runScheduler(ctx, deps, pipeline, spec, sourceSlugs)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression for ingestion passes")
	cmd.Flags().StringSliceVar(
		&sourceSlugs,
		"source",
		nil,
		"source slug to ingest (repeatable; default all active sources)",
	)

	return cmd
}

// runScheduler blocks running scheduled passes until the context is done.
// Overlapping passes are skipped: a tick that fires while the previous pass
// is still running is dropped rather than queued.
func runScheduler(
	ctx context.Context,
	deps *common.Deps,
	pipeline *common.Pipeline,
	spec string,
	sourceSlugs []string,
) error {
	log := deps.Logger.WithComponent("schedule")

	var running atomic.Bool
	scheduler := cron.New()

	_, err := scheduler.AddFunc(spec, func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous pass still running, skipping tick")
			return
		}
		defer running.Store(false)

		if _, runErr := pipeline.Orchestrator.Run(ctx, sourceSlugs...); runErr != nil {
			log.Error("scheduled pass failed", "error", runErr.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	log.Info("scheduler started", "cron", spec)
	scheduler.Start()

	<-ctx.Done()

	log.Info("shutdown signal received")
	<-scheduler.Stop().Done()

	return nil
}
