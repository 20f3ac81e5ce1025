package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avaldeso/machina"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time interface check
var _ machina.Queue = (*Queue)(nil)

// retryBackoff is the delay before a failed job becomes eligible again.
const retryBackoff = 30 * time.Second

// NewQueue creates a PostgreSQL-backed job queue.
func NewQueue(pool *pgxpool.Pool, logger *slog.Logger) *Queue {
	return &Queue{
		pool:   pool,
		logger: logger,
	}
}

// Queue is a PostgreSQL-backed job queue implementation.
type Queue struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Enqueue adds a job to the queue.
func (q *Queue) Enqueue(ctx context.Context, job *machina.Job, opts ...machina.EnqueueOption) error {
	for _, opt := range opts {
		opt(job)
	}

	// Set defaults
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = machina.JobStatusPending
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	if job.ScheduledAt.IsZero() {
		job.ScheduledAt = time.Now()
	}
	if job.MaxAttempts == 0 {
		job.MaxAttempts = 3
	}

	query := `
		INSERT INTO jobs (
			id, queue_name, job_type, payload, status,
			priority, max_attempts, attempt_count, scheduled_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.pool.Exec(ctx, query,
		job.ID,
		job.QueueName,
		job.JobType,
		job.Payload,
		job.Status,
		job.Priority,
		job.MaxAttempts,
		job.AttemptCount,
		job.ScheduledAt,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueueing job: %w", err)
	}

	q.logger.Debug("job enqueued",
		slog.String("job_id", job.ID.String()),
		slog.String("job_type", job.JobType),
		slog.String("queue", job.QueueName))

	return nil
}

// Dequeue retrieves the next available job from a queue.
// SKIP LOCKED lets concurrent workers drain the same queue without
// fighting over rows.
func (q *Queue) Dequeue(ctx context.Context, queueName string) (*machina.Job, error) {
	query := `
		UPDATE jobs
		SET status = $1, started_at = $2, attempt_count = attempt_count + 1
		WHERE id = (
			SELECT id FROM jobs
			WHERE queue_name = $3
			AND status = $4
			AND scheduled_at <= $5
			ORDER BY priority DESC, created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, queue_name, job_type, payload, status,
			priority, max_attempts, attempt_count, scheduled_at, created_at,
			started_at, completed_at, result, error_message, worker_id
	`

	now := time.Now()
	row := q.pool.QueryRow(ctx, query,
		machina.JobStatusRunning,
		now,
		queueName,
		machina.JobStatusPending,
		now,
	)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No jobs available
		}
		return nil, fmt.Errorf("dequeuing job: %w", err)
	}

	return job, nil
}

// Complete marks a job as completed.
func (q *Queue) Complete(ctx context.Context, jobID uuid.UUID, result []byte) error {
	query := `
		UPDATE jobs
		SET status = $1, completed_at = $2, result = $3
		WHERE id = $4
	`

	_, err := q.pool.Exec(ctx, query,
		machina.JobStatusCompleted,
		time.Now(),
		result,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("completing job: %w", err)
	}

	q.logger.Debug("job completed", slog.String("job_id", jobID.String()))
	return nil
}

// Fail records a job failure. While retry attempts remain the job goes
// back to pending with a backoff delay; otherwise it is marked failed.
func (q *Queue) Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	query := `
		UPDATE jobs
		SET status = CASE WHEN attempt_count < max_attempts THEN $1::text ELSE $2::text END,
			scheduled_at = CASE WHEN attempt_count < max_attempts THEN $3::timestamptz ELSE scheduled_at END,
			completed_at = CASE WHEN attempt_count < max_attempts THEN NULL ELSE $4::timestamptz END,
			error_message = $5
		WHERE id = $6
		RETURNING status
	`

	now := time.Now()
	var status machina.JobStatus
	err := q.pool.QueryRow(ctx, query,
		machina.JobStatusPending,
		machina.JobStatusFailed,
		now.Add(retryBackoff),
		now,
		errMsg,
		jobID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return machina.NotFound("Job not found")
		}
		return fmt.Errorf("failing job: %w", err)
	}

	if status == machina.JobStatusPending {
		q.logger.Debug("job requeued for retry",
			slog.String("job_id", jobID.String()),
			slog.String("error", errMsg))
	} else {
		q.logger.Debug("job failed",
			slog.String("job_id", jobID.String()),
			slog.String("error", errMsg))
	}
	return nil
}

// GetJob retrieves a job by its ID.
func (q *Queue) GetJob(ctx context.Context, jobID uuid.UUID) (*machina.Job, error) {
	query := `
		SELECT id, queue_name, job_type, payload, status,
			priority, max_attempts, attempt_count, scheduled_at, created_at,
			started_at, completed_at, result, error_message, worker_id
		FROM jobs
		WHERE id = $1
	`

	job, err := scanJob(q.pool.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Job not found")
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}

	return job, nil
}

// CancelJob cancels a pending job.
func (q *Queue) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	query := `
		UPDATE jobs
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := q.pool.Exec(ctx, query,
		machina.JobStatusCancelled,
		time.Now(),
		jobID,
		machina.JobStatusPending,
	)
	if err != nil {
		return fmt.Errorf("cancelling job: %w", err)
	}

	if result.RowsAffected() == 0 {
		return machina.Invalid("Can only cancel pending jobs")
	}

	q.logger.Debug("job cancelled", slog.String("job_id", jobID.String()))
	return nil
}

// scanJob reads one job row, normalizing nullable columns.
func scanJob(row pgx.Row) (*machina.Job, error) {
	job := &machina.Job{}
	var startedAt, completedAt *time.Time
	var result []byte
	var errorMessage, workerID *string

	err := row.Scan(
		&job.ID,
		&job.QueueName,
		&job.JobType,
		&job.Payload,
		&job.Status,
		&job.Priority,
		&job.MaxAttempts,
		&job.AttemptCount,
		&job.ScheduledAt,
		&job.CreatedAt,
		&startedAt,
		&completedAt,
		&result,
		&errorMessage,
		&workerID,
	)
	if err != nil {
		return nil, err
	}

	job.StartedAt = startedAt
	job.CompletedAt = completedAt
	job.Result = result
	if errorMessage != nil {
		job.ErrorMessage = *errorMessage
	}
	if workerID != nil {
		job.WorkerID = *workerID
	}

	return job, nil
}
