// Package worker runs the ingestion loop: claim a job, parse its file line
// by line, write events, report progress and a terminal status.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventscope/eventscope/internal/metrics"
	"github.com/eventscope/eventscope/internal/models"
	"github.com/eventscope/eventscope/internal/parser"
	"github.com/eventscope/eventscope/internal/store"
)

// JobQueue is what the worker needs from the job store.
type JobQueue interface {
	ClaimNextJob(ctx context.Context) (*models.IngestionJob, error)
	SetJobStatus(ctx context.Context, jobID string, status models.JobStatus, errMsgs []string) error
	UpdateJobProgress(ctx context.Context, jobID string, processedLines int, errMsgs []string, totalLines *int) error
}

// EventSink is what the worker needs from the event store.
type EventSink interface {
	InsertEvent(ctx context.Context, ev *models.Event) (bool, error)
}

// Worker polls the job queue and processes claimed jobs one at a time.
// Multiple workers may run against the same queue; the claim operation
// guarantees each job is handed to exactly one of them.
type Worker struct {
	jobs         JobQueue
	events       EventSink
	pollInterval time.Duration
	logger       *zap.Logger
}

// New creates a worker over the given stores.
func New(jobs JobQueue, events EventSink, pollInterval time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		jobs:         jobs,
		events:       events,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run drives the claim/process loop until ctx is canceled. After processing
// a job it re-polls immediately; otherwise it sleeps for the poll interval.
// A store error during one cycle is logged and the loop continues.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Duration("poll_interval", w.pollInterval))

	for {
		job, err := w.jobs.ClaimNextJob(ctx)
		switch {
		case err == nil:
			metrics.RecordJobClaimed()
			w.processJob(ctx, job)
			continue
		case errors.Is(err, store.ErrNoJob):
			// Nothing pending; fall through to the poll sleep.
		case ctx.Err() != nil:
			w.logger.Info("worker stopped")
			return
		default:
			w.logger.Error("claim failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// processJob runs one claimed job to a terminal state. Per-line failures are
// recorded and skipped; only faults outside the per-line scope (unreadable
// file, store write failure) fail the job. The input file is deleted on
// either terminal path.
func (w *Worker) processJob(ctx context.Context, job *models.IngestionJob) {
	start := time.Now()
	log := w.logger.With(zap.String("job_id", job.JobID), zap.String("source", job.SourceLocation))
	log.Info("processing job")

	defer func() {
		metrics.RecordJobDuration(time.Since(start).Seconds())
	}()

	if err := w.jobs.SetJobStatus(ctx, job.JobID, models.JobProcessing, nil); err != nil {
		log.Error("failed to mark job processing", zap.Error(err))
		return
	}

	data, err := os.ReadFile(job.SourceLocation)
	if err != nil {
		w.failJob(ctx, log, job, err)
		return
	}

	lines := splitLines(string(data))

	// Processable estimate: one line is assumed to be a header. Clamped so
	// an empty file reports zero, not -1.
	total := len(lines) - 1
	if total < 0 {
		total = 0
	}
	if err := w.jobs.UpdateJobProgress(ctx, job.JobID, 0, nil, &total); err != nil {
		w.failJob(ctx, log, job, err)
		return
	}

	texts := make([]string, len(lines))
	for i, line := range lines {
		texts[i] = line.text
	}
	p := parser.New(parser.DetectDelimiter(texts))

	processed := 0
	var lineErrs []string
	for i, line := range lines {
		if i == 0 && parser.IsHeader(line.text) {
			continue
		}

		ev, err := p.Decode(line.text)
		if err != nil {
			lineErrs = append(lineErrs, fmt.Sprintf("line %d: %v", line.num, err))
			metrics.RecordLineError()
			continue
		}

		// The write must commit before the progress report reflects it.
		if _, err := w.events.InsertEvent(ctx, ev); err != nil {
			w.failJob(ctx, log, job, err)
			return
		}
		processed++
		metrics.RecordLineProcessed()

		if err := w.jobs.UpdateJobProgress(ctx, job.JobID, processed, lineErrs, nil); err != nil {
			w.failJob(ctx, log, job, err)
			return
		}
	}

	// Final report with the cumulative count and the full error list.
	if err := w.jobs.UpdateJobProgress(ctx, job.JobID, processed, lineErrs, nil); err != nil {
		w.failJob(ctx, log, job, err)
		return
	}

	// Line errors are informational; the job still completes.
	if err := w.jobs.SetJobStatus(ctx, job.JobID, models.JobCompleted, nil); err != nil {
		log.Error("failed to mark job completed", zap.Error(err))
		return
	}
	metrics.RecordJobFinished(string(models.JobCompleted))
	w.removeSource(log, job.SourceLocation)
	log.Info("job completed",
		zap.Int("processed_lines", processed),
		zap.Int("error_lines", len(lineErrs)))
}

// failJob transitions a job to FAILED with the fault's message as its single
// recorded error, then disposes of the input file.
func (w *Worker) failJob(ctx context.Context, log *zap.Logger, job *models.IngestionJob, cause error) {
	log.Error("job failed", zap.Error(cause))
	if err := w.jobs.SetJobStatus(ctx, job.JobID, models.JobFailed, []string{cause.Error()}); err != nil {
		log.Error("failed to mark job failed", zap.Error(err))
	}
	metrics.RecordJobFinished(string(models.JobFailed))
	w.removeSource(log, job.SourceLocation)
}

// removeSource deletes a job's input file. Failures are logged, not escalated.
func (w *Worker) removeSource(log *zap.Logger, path string) {
	if err := os.Remove(path); err != nil {
		log.Warn("failed to delete input file", zap.Error(err))
	}
}

// inputLine pairs a line's text with its 1-based physical position in the
// file, so error messages keep pointing at the original file after blank
// lines are filtered out.
type inputLine struct {
	num  int
	text string
}

// splitLines breaks file content into physical lines, dropping lines that
// are empty after trimming.
func splitLines(content string) []inputLine {
	var out []inputLine
	for i, l := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, inputLine{num: i + 1, text: l})
	}
	return out
}
