package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/eventscope/eventscope/internal/models"
)

const jobColumns = `job_id, source_location, status, total_lines, processed_lines,
	error_lines, errors, created_at, start_time, end_time`

// CreateJob inserts a new PENDING job for the given source file.
func (p *PostgresStore) CreateJob(ctx context.Context, sourceLocation string) (*models.IngestionJob, error) {
	if sourceLocation == "" {
		return nil, errors.New("sourceLocation required")
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO ingestion_jobs(job_id, source_location, status)
		VALUES ($1, $2, 'PENDING')
		RETURNING `+jobColumns,
		uuid.New().String(), sourceLocation)

	return scanJob(row)
}

// ClaimNextJob atomically hands the oldest PENDING job to exactly one caller.
//
// FOR UPDATE SKIP LOCKED makes concurrent claimants skip rows another worker
// is already inspecting instead of blocking on them, so each PENDING job is
// claimed exactly once and claimants never wait on each other. Returns
// ErrNoJob when nothing is PENDING.
func (p *PostgresStore) ClaimNextJob(ctx context.Context) (*models.IngestionJob, error) {
	row := p.pool.QueryRow(ctx, `
		UPDATE ingestion_jobs
		SET status = 'PROCESSING'
		WHERE job_id = (
			SELECT job_id
			FROM ingestion_jobs
			WHERE status = 'PENDING'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoJob
	}
	return job, err
}

// SetJobStatus transitions a job's status. PROCESSING stamps start_time;
// COMPLETED and FAILED stamp end_time and append any accompanying error
// messages. Terminal states never regress: the WHERE clause refuses to touch
// rows already COMPLETED or FAILED.
func (p *PostgresStore) SetJobStatus(ctx context.Context, jobID string, status models.JobStatus, errMsgs []string) error {
	if errMsgs == nil {
		errMsgs = []string{}
	}

	var err error
	if status.Terminal() {
		_, err = p.pool.Exec(ctx, `
			UPDATE ingestion_jobs
			SET status = $2,
			    end_time = now(),
			    errors = errors || $3,
			    error_lines = cardinality(errors || $3)
			WHERE job_id = $1 AND status NOT IN ('COMPLETED', 'FAILED')
		`, jobID, string(status), errMsgs)
	} else {
		_, err = p.pool.Exec(ctx, `
			UPDATE ingestion_jobs
			SET status = $2,
			    start_time = CASE WHEN $2 = 'PROCESSING' THEN now() ELSE start_time END
			WHERE job_id = $1 AND status NOT IN ('COMPLETED', 'FAILED')
		`, jobID, string(status))
	}
	return err
}

// UpdateJobProgress overwrites the progress counters for a job. Calling it
// twice with the same arguments is indistinguishable from calling it once.
// The error list determines error_lines; total_lines is only touched when
// totalLines is non-nil. Jobs already in a terminal status are left alone.
func (p *PostgresStore) UpdateJobProgress(ctx context.Context, jobID string, processedLines int, errMsgs []string, totalLines *int) error {
	if errMsgs == nil {
		errMsgs = []string{}
	}

	_, err := p.pool.Exec(ctx, `
		UPDATE ingestion_jobs
		SET processed_lines = $2,
		    errors = $3,
		    error_lines = cardinality($3::text[]),
		    total_lines = COALESCE($4, total_lines)
		WHERE job_id = $1
		  AND status NOT IN ('COMPLETED', 'FAILED')
	`, jobID, processedLines, errMsgs, totalLines)
	return err
}

// GetJob fetches one job by id. Returns ErrNotFound when no row matches.
func (p *PostgresStore) GetJob(ctx context.Context, jobID string) (*models.IngestionJob, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM ingestion_jobs
		WHERE job_id = $1
	`, jobID)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func scanJob(row pgx.Row) (*models.IngestionJob, error) {
	var j models.IngestionJob
	err := row.Scan(&j.JobID, &j.SourceLocation, &j.Status, &j.TotalLines,
		&j.ProcessedLines, &j.ErrorLines, &j.Errors, &j.CreatedAt,
		&j.StartTime, &j.EndTime)
	if err != nil {
		return nil, err
	}
	j.CreatedAt = j.CreatedAt.UTC()
	return &j, nil
}
