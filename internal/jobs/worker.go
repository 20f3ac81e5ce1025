// Package jobs runs background workers that drain the job queue.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/metrics"
)

// Worker polls the queue and dispatches jobs to registered handlers.
// Jobs run under a synthetic admin principal so report assembly is not
// subject to the submitting user's visibility scope.
type Worker struct {
	queue    machina.Queue
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cfg      machina.QueueConfig
	handlers map[string]machina.JobHandler

	wg   sync.WaitGroup
	stop chan struct{}
}

// NewWorker creates a worker pool for the given queue. Zero config
// fields fall back to the queue defaults.
func NewWorker(queue machina.Queue, logger *slog.Logger, m *metrics.Metrics, cfg machina.QueueConfig) *Worker {
	def := machina.DefaultQueueConfig()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	return &Worker{
		queue:    queue,
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
		handlers: make(map[string]machina.JobHandler),
		stop:     make(chan struct{}),
	}
}

// Register binds a handler to a job type. Must be called before Start.
func (w *Worker) Register(jobType string, handler machina.JobHandler) {
	w.handlers[jobType] = handler
}

// Start launches the worker goroutines.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.WorkerCount; i++ {
		w.wg.Add(1)
		go w.run(ctx, fmt.Sprintf("worker-%d", i))
	}
	w.logger.Info("job workers started", slog.Int("count", w.cfg.WorkerCount))
}

// Stop signals all workers to finish their current job and exit.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
	w.logger.Info("job workers stopped")
}

func (w *Worker) run(ctx context.Context, id string) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx, id)
		}
	}
}

func (w *Worker) poll(ctx context.Context, workerID string) {
	job, err := w.queue.Dequeue(ctx, machina.QueueDefault)
	if err != nil {
		w.logger.Error("dequeue failed",
			slog.String("worker", workerID),
			slog.String("error", err.Error()))
		return
	}
	if job == nil {
		return
	}

	handler, ok := w.handlers[job.JobType]
	if !ok {
		w.logger.Error("no handler for job type",
			slog.String("job_id", job.ID.String()),
			slog.String("job_type", job.JobType))
		_ = w.queue.Fail(ctx, job.ID, "no handler registered for job type "+job.JobType)
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	err = handler.Handle(jobCtx, job)
	w.metrics.RecordJob(job.JobType, time.Since(start), err)

	if err != nil {
		w.logger.Warn("job failed",
			slog.String("worker", workerID),
			slog.String("job_id", job.ID.String()),
			slog.String("job_type", job.JobType),
			slog.String("error", err.Error()))
		_ = w.queue.Fail(ctx, job.ID, err.Error())
		return
	}

	if err := w.queue.Complete(ctx, job.ID, nil); err != nil {
		w.logger.Error("failed to mark job complete",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
	}
}

// ReportEmailHandler processes report_email jobs: assemble the report,
// render it to PDF, and send it to the requested recipients.
type ReportEmailHandler struct {
	Reports  machina.ReportService
	Renderer machina.ReportRenderer
	Email    machina.EmailService
	Logger   *slog.Logger
}

// systemPrincipal is the admin identity jobs run under.
func systemPrincipal() *machina.User {
	return &machina.User{
		Username: "system",
		Role:     machina.RoleAdmin,
		Status:   machina.UserStatusActive,
	}
}

// Handle implements machina.JobHandler.
func (h *ReportEmailHandler) Handle(ctx context.Context, job *machina.Job) error {
	var payload machina.ReportEmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("decoding report email payload: %w", err)
	}

	ctx = machina.NewContextWithUser(ctx, systemPrincipal())

	report, err := h.Reports.FindReportByID(ctx, payload.ReportID)
	if err != nil {
		return fmt.Errorf("fetching report %s: %w", payload.ReportID, err)
	}

	pdfBytes, err := h.Renderer.RenderReport(ctx, report, machina.RenderOptions{Branded: payload.Branded})
	if err != nil {
		return fmt.Errorf("rendering report %s: %w", payload.ReportID, err)
	}

	subject := fmt.Sprintf("Inspection report: %s (%s)", report.ClientName, report.MachineType)
	message := payload.Message
	if message == "" {
		message = "Please find the attached machinery inspection report."
	}

	attachment := &machina.Attachment{
		Name:        fmt.Sprintf("report-%s.pdf", report.ID),
		ContentType: "application/pdf",
		Content:     pdfBytes,
	}

	if err := h.Email.SendReportEmail(ctx, payload.Recipients, subject, message, attachment); err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}

	h.Logger.Info("report email delivered",
		slog.String("report_id", payload.ReportID.String()),
		slog.Int("recipients", len(payload.Recipients)))
	return nil
}
