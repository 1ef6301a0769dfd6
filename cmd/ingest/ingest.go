// Package ingest implements the ingest command, which runs one ingestion
// pass on demand.
package ingest

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/newsharvest/cmd/common"
	"github.com/jonesrussell/newsharvest/internal/domain"
	"github.com/jonesrussell/newsharvest/internal/logger"
)

// Command returns the ingest command for use in the root command.
func Command() *cobra.Command {
	var sourceSlugs []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion pass",
		Long: `Run one ingestion pass over all active sources, or over the subset
selected with --source. The pass fetches each source's listing pages,
extracts and normalizes new articles, and commits them to the catalog.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := common.NewDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pipeline, err := common.NewPipeline(ctx, deps)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			report, err := pipeline.Orchestrator.Run(ctx, sourceSlugs...)
			if err != nil {
				return err
			}

			logReport(deps.Logger, report)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(
		&sourceSlugs,
		"source",
		nil,
		"source slug to ingest (repeatable; default all active sources)",
	)

	return cmd
}

// logReport logs the per-source outcome of a finished run.
func logReport(log logger.Interface, report *domain.RunReport) {
	for slug, sr := range report.Sources {
		log.Info("source report",
			"source", slug,
			"success", sr.Success,
			"candidates", sr.Candidates,
			"fetched", sr.Fetched,
			"parsed", sr.Parsed,
			"created", sr.Created,
			"updated", sr.Updated,
			"skipped", sr.Skipped,
			"failed", sr.Failed,
		)

		for _, failure := range sr.Failures {
			log.Warn("failure",
				"source", failure.SourceSlug,
				"url", failure.URL,
				"stage", string(failure.Stage),
				"kind", failure.Kind,
				"message", failure.Message,
			)
		}
	}
}
