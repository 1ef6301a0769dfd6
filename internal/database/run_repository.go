package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/newsharvest/internal/domain"
)

// RunRepository persists per-source ingestion run summaries.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// RecordRun inserts one source's run summary.
func (r *RunRepository) RecordRun(ctx context.Context, report *domain.SourceReport) error {
	query := `
		INSERT INTO ingestion_runs (id, source_slug, started_at, finished_at,
		                            candidates, fetched, parsed, created, updated,
		                            skipped, failed, success, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(
		ctx,
		query,
		uuid.New().String(),
		report.SourceSlug,
		report.StartedAt,
		report.FinishedAt,
		report.Candidates,
		report.Fetched,
		report.Parsed,
		report.Created,
		report.Updated,
		report.Skipped,
		report.Failed,
		report.Success,
		joinFailures(report.Failures),
	)
	if err != nil {
		return classify(err)
	}

	return nil
}

// joinFailures flattens failure descriptors into the errors text column,
// one line per failure.
func joinFailures(failures []domain.Failure) string {
	if len(failures) == 0 {
		return ""
	}

	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		lines = append(lines, fmt.Sprintf("[%s/%s] %s: %s", f.Stage, f.Kind, f.URL, f.Message))
	}

	return strings.Join(lines, "\n")
}
