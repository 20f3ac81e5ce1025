package jobs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/metrics"
	"github.com/avaldeso/machina/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() machina.QueueConfig {
	return machina.QueueConfig{
		WorkerCount:  1,
		PollInterval: 10 * time.Millisecond,
		JobTimeout:   time.Second,
	}
}

func TestWorkerProcessesJob(t *testing.T) {
	queue := mock.NewQueue()
	worker := NewWorker(queue, testLogger(), metrics.New(), testConfig())

	var mu sync.Mutex
	var handled *machina.Job
	worker.Register("test_job", machina.JobHandlerFunc(func(ctx context.Context, job *machina.Job) error {
		mu.Lock()
		defer mu.Unlock()
		handled = job
		return nil
	}))

	job := &machina.Job{QueueName: machina.QueueDefault, JobType: "test_job"}
	require.NoError(t, queue.Enqueue(context.Background(), job))

	worker.Start(context.Background())
	defer worker.Stop()

	require.Eventually(t, func() bool {
		got, err := queue.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == machina.JobStatusCompleted
	}, 2*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, handled)
	assert.Equal(t, job.ID, handled.ID)
}

func TestWorkerFailsJobOnHandlerError(t *testing.T) {
	queue := mock.NewQueue()
	worker := NewWorker(queue, testLogger(), metrics.New(), testConfig())

	worker.Register("test_job", machina.JobHandlerFunc(func(ctx context.Context, job *machina.Job) error {
		return machina.Internal("boom", nil)
	}))

	job := &machina.Job{QueueName: machina.QueueDefault, JobType: "test_job"}
	require.NoError(t, queue.Enqueue(context.Background(), job))

	worker.Start(context.Background())
	defer worker.Stop()

	require.Eventually(t, func() bool {
		got, err := queue.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == machina.JobStatusFailed
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWorkerFailsJobWithoutHandler(t *testing.T) {
	queue := mock.NewQueue()
	worker := NewWorker(queue, testLogger(), metrics.New(), testConfig())

	job := &machina.Job{QueueName: machina.QueueDefault, JobType: "unknown_job"}
	require.NoError(t, queue.Enqueue(context.Background(), job))

	worker.Start(context.Background())
	defer worker.Stop()

	require.Eventually(t, func() bool {
		got, err := queue.GetJob(context.Background(), job.ID)
		return err == nil && got.Status == machina.JobStatusFailed
	}, 2*time.Second, 20*time.Millisecond)
}

func TestReportEmailHandler(t *testing.T) {
	reportID := uuid.New()

	reports := &mock.ReportService{
		FindReportByIDFn: func(ctx context.Context, id uuid.UUID) (*machina.Report, error) {
			// Jobs run under a synthetic admin, not the submitter.
			caller := machina.UserFromContext(ctx)
			require.NotNil(t, caller)
			assert.Equal(t, machina.RoleAdmin, caller.Role)

			return &machina.Report{
				ID:          id,
				ClientName:  "Acme Mining",
				MachineType: "Excavator",
			}, nil
		},
	}

	var gotOpts machina.RenderOptions
	renderer := &mock.ReportRenderer{
		RenderReportFn: func(ctx context.Context, report *machina.Report, opts machina.RenderOptions) ([]byte, error) {
			gotOpts = opts
			return []byte("%PDF-1.4"), nil
		},
	}

	email := &mock.EmailService{}

	handler := &ReportEmailHandler{
		Reports:  reports,
		Renderer: renderer,
		Email:    email,
		Logger:   testLogger(),
	}

	payload, _ := json.Marshal(machina.ReportEmailPayload{
		ReportID:   reportID,
		Recipients: []string{"client@example.com"},
		Branded:    true,
	})
	job := &machina.Job{ID: uuid.New(), JobType: machina.JobTypeReportEmail, Payload: payload}

	require.NoError(t, handler.Handle(context.Background(), job))

	assert.True(t, gotOpts.Branded)
	require.Len(t, email.ReportEmails, 1)
	sent := email.ReportEmails[0]
	assert.Equal(t, []string{"client@example.com"}, sent.To)
	assert.Equal(t, "Inspection report: Acme Mining (Excavator)", sent.Subject)
	require.NotNil(t, sent.Attachment)
	assert.Equal(t, "report-"+reportID.String()+".pdf", sent.Attachment.Name)
	assert.Equal(t, "application/pdf", sent.Attachment.ContentType)
}

func TestReportEmailHandlerBadPayload(t *testing.T) {
	handler := &ReportEmailHandler{
		Reports:  &mock.ReportService{},
		Renderer: &mock.ReportRenderer{},
		Email:    &mock.EmailService{},
		Logger:   testLogger(),
	}

	job := &machina.Job{ID: uuid.New(), JobType: machina.JobTypeReportEmail, Payload: []byte("{not json")}
	assert.Error(t, handler.Handle(context.Background(), job))
}
