package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
)

// JobResponse is the public view of a queued job. Payload and worker
// internals are not exposed.
type JobResponse struct {
	ID           uuid.UUID         `json:"id"`
	JobType      string            `json:"jobType"`
	Status       machina.JobStatus `json:"status"`
	Done         bool              `json:"done"`
	AttemptCount int               `json:"attemptCount"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	CompletedAt  *time.Time        `json:"completedAt,omitempty"`
}

func newJobResponse(job *machina.Job) JobResponse {
	return JobResponse{
		ID:           job.ID,
		JobType:      job.JobType,
		Status:       job.Status,
		Done:         job.Status.IsTerminal(),
		AttemptCount: job.AttemptCount,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// handleGetJob returns the status of a queued job so clients can poll
// the outcome of an enqueued report email.
func (s *Server) handleGetJob(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := requireUser(c); err != nil {
		return err
	}

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	job, err := s.queue.GetJob(ctx, id)
	if err != nil {
		return err
	}

	return RespondOK(c, newJobResponse(job))
}

func (s *Server) handleCancelJob(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := requireAdmin(c); err != nil {
		return err
	}

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.queue.CancelJob(ctx, id); err != nil {
		return err
	}

	job, err := s.queue.GetJob(ctx, id)
	if err != nil {
		return err
	}

	return RespondOK(c, newJobResponse(job))
}
