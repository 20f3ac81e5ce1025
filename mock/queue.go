package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.Queue = (*Queue)(nil)

// Queue is a mock implementation of machina.Queue. When no Fn fields are
// set it behaves as a minimal in-memory queue, which is enough for most
// handler and worker tests.
type Queue struct {
	EnqueueFn   func(ctx context.Context, job *machina.Job, opts ...machina.EnqueueOption) error
	DequeueFn   func(ctx context.Context, queueName string) (*machina.Job, error)
	CompleteFn  func(ctx context.Context, jobID uuid.UUID, result []byte) error
	FailFn      func(ctx context.Context, jobID uuid.UUID, errMsg string) error
	GetJobFn    func(ctx context.Context, jobID uuid.UUID) (*machina.Job, error)
	CancelJobFn func(ctx context.Context, jobID uuid.UUID) error

	mu   sync.RWMutex
	jobs map[uuid.UUID]*machina.Job
}

// NewQueue creates a new mock queue with initialized storage.
func NewQueue() *Queue {
	return &Queue{
		jobs: make(map[uuid.UUID]*machina.Job),
	}
}

func (q *Queue) Enqueue(ctx context.Context, job *machina.Job, opts ...machina.EnqueueOption) error {
	if q.EnqueueFn != nil {
		return q.EnqueueFn(ctx, job, opts...)
	}
	for _, opt := range opts {
		opt(job)
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = machina.JobStatusPending
	job.CreatedAt = time.Now()

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.jobs == nil {
		q.jobs = make(map[uuid.UUID]*machina.Job)
	}
	q.jobs[job.ID] = job
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, queueName string) (*machina.Job, error) {
	if q.DequeueFn != nil {
		return q.DequeueFn(ctx, queueName)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.Status == machina.JobStatusPending && job.QueueName == queueName {
			job.Status = machina.JobStatusRunning
			return job, nil
		}
	}
	return nil, nil
}

func (q *Queue) Complete(ctx context.Context, jobID uuid.UUID, result []byte) error {
	if q.CompleteFn != nil {
		return q.CompleteFn(ctx, jobID, result)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[jobID]; ok {
		job.Status = machina.JobStatusCompleted
		job.Result = result
	}
	return nil
}

func (q *Queue) Fail(ctx context.Context, jobID uuid.UUID, errMsg string) error {
	if q.FailFn != nil {
		return q.FailFn(ctx, jobID, errMsg)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[jobID]; ok {
		job.Status = machina.JobStatusFailed
		job.ErrorMessage = errMsg
	}
	return nil
}

func (q *Queue) GetJob(ctx context.Context, jobID uuid.UUID) (*machina.Job, error) {
	if q.GetJobFn != nil {
		return q.GetJobFn(ctx, jobID)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if job, ok := q.jobs[jobID]; ok {
		return job, nil
	}
	return nil, machina.NotFound("Job not found")
}

func (q *Queue) CancelJob(ctx context.Context, jobID uuid.UUID) error {
	if q.CancelJobFn != nil {
		return q.CancelJobFn(ctx, jobID)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[jobID]
	if !ok {
		return machina.NotFound("Job not found")
	}
	if job.Status != machina.JobStatusPending {
		return machina.Invalid("Only pending jobs can be cancelled")
	}
	job.Status = machina.JobStatusCancelled
	return nil
}
