package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.ReportService = (*ReportService)(nil)

// ReportService is a mock implementation of machina.ReportService.
type ReportService struct {
	FindReportByIDFn func(ctx context.Context, id uuid.UUID) (*machina.Report, error)
	FindReportsFn    func(ctx context.Context, filter machina.ReportFilter) ([]*machina.Report, int, error)
	CreateReportFn   func(ctx context.Context, report *machina.Report) error
	UpdateReportFn   func(ctx context.Context, id uuid.UUID, upd machina.ReportUpdate, uploads []machina.PhotoUpload) (*machina.Report, error)
	CloseReportFn    func(ctx context.Context, id uuid.UUID) (*machina.Report, error)
	DeleteReportFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *ReportService) FindReportByID(ctx context.Context, id uuid.UUID) (*machina.Report, error) {
	if s.FindReportByIDFn != nil {
		return s.FindReportByIDFn(ctx, id)
	}
	return nil, machina.NotFound("Report not found")
}

func (s *ReportService) FindReports(ctx context.Context, filter machina.ReportFilter) ([]*machina.Report, int, error) {
	if s.FindReportsFn != nil {
		return s.FindReportsFn(ctx, filter)
	}
	return []*machina.Report{}, 0, nil
}

func (s *ReportService) CreateReport(ctx context.Context, report *machina.Report) error {
	if s.CreateReportFn != nil {
		return s.CreateReportFn(ctx, report)
	}
	return nil
}

func (s *ReportService) UpdateReport(ctx context.Context, id uuid.UUID, upd machina.ReportUpdate, uploads []machina.PhotoUpload) (*machina.Report, error) {
	if s.UpdateReportFn != nil {
		return s.UpdateReportFn(ctx, id, upd, uploads)
	}
	return nil, machina.NotFound("Report not found")
}

func (s *ReportService) CloseReport(ctx context.Context, id uuid.UUID) (*machina.Report, error) {
	if s.CloseReportFn != nil {
		return s.CloseReportFn(ctx, id)
	}
	return nil, machina.NotFound("Report not found")
}

func (s *ReportService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	if s.DeleteReportFn != nil {
		return s.DeleteReportFn(ctx, id)
	}
	return nil
}
