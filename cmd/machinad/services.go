package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/jobs"
	"github.com/avaldeso/machina/internal/metrics"
	"github.com/avaldeso/machina/internal/pdf"
	"github.com/avaldeso/machina/postgres"
)

// Services holds all application services.
type Services struct {
	UserService          machina.UserService
	SessionService       machina.SessionService
	ReportService        machina.ReportService
	ComponentTypeService machina.ComponentTypeService
	FileStorage          machina.FileStorage
	EmailService         machina.EmailService
	Queue                machina.Queue
	Renderer             machina.ReportRenderer
	Metrics              *metrics.Metrics
	Worker               *jobs.Worker
}

// initServices initializes all application services.
func initServices(ctx context.Context, pool *pgxpool.Pool, cfg *Config, logger *slog.Logger) (*Services, error) {
	// File storage first; report reconciliation depends on it.
	fileStorage, err := initFileStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("file storage initialized", slog.String("provider", cfg.StorageProvider))

	// Database wrapper with all domain services
	db := postgres.NewDB(pool, logger, fileStorage)
	logger.Info("database services initialized")

	// Email service
	emailService := initEmailService(cfg, logger)
	logger.Info("email service initialized", slog.String("provider", cfg.EmailProvider))

	// Queue
	queue := postgres.NewQueue(pool, logger)
	logger.Info("queue service initialized")

	queueCfg := machina.QueueConfig{
		WorkerCount:  cfg.QueueWorkerCount,
		PollInterval: cfg.QueuePollInterval,
		JobTimeout:   cfg.QueueJobTimeout,
	}

	// PDF renderer
	renderer := pdf.NewRenderer(cfg.PDFCompanyName)

	// Metrics registry
	m := metrics.New()

	// Background worker handling report email jobs
	worker := jobs.NewWorker(queue, logger, m, queueCfg)
	worker.Register(machina.JobTypeReportEmail, &jobs.ReportEmailHandler{
		Reports:  db.ReportService,
		Renderer: renderer,
		Email:    emailService,
		Logger:   logger,
	})

	return &Services{
		UserService:          db.UserService,
		SessionService:       db.SessionService,
		ReportService:        db.ReportService,
		ComponentTypeService: db.ComponentTypeService,
		FileStorage:          fileStorage,
		EmailService:         emailService,
		Queue:                queue,
		Renderer:             renderer,
		Metrics:              m,
		Worker:               worker,
	}, nil
}

// initFileStorage creates the appropriate file storage implementation.
func initFileStorage(ctx context.Context, cfg *Config, logger *slog.Logger) (machina.FileStorage, error) {
	storageCfg := machina.StorageConfig{
		Provider:  cfg.StorageProvider,
		LocalPath: cfg.StorageLocalPath,
		LocalURL:  cfg.StorageLocalURL,
		S3Bucket:  cfg.StorageS3Bucket,
		S3Region:  cfg.StorageS3Region,
		S3BaseURL: cfg.StorageS3BaseURL,
	}

	return postgres.NewFileStorage(ctx, logger, storageCfg)
}

// initEmailService creates the appropriate email service implementation.
func initEmailService(cfg *Config, logger *slog.Logger) machina.EmailService {
	emailCfg := machina.EmailConfig{
		Provider:            cfg.EmailProvider,
		FromAddress:         cfg.EmailFromAddress,
		FromName:            cfg.EmailFromName,
		PostmarkServerToken: cfg.EmailPostmarkToken,
	}

	return postgres.NewEmailService(logger, emailCfg)
}
