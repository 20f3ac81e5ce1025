package mock

import (
	"context"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.ReportRenderer = (*ReportRenderer)(nil)

// ReportRenderer is a mock implementation of machina.ReportRenderer.
type ReportRenderer struct {
	RenderReportFn func(ctx context.Context, report *machina.Report, opts machina.RenderOptions) ([]byte, error)
}

func (r *ReportRenderer) RenderReport(ctx context.Context, report *machina.Report, opts machina.RenderOptions) ([]byte, error) {
	if r.RenderReportFn != nil {
		return r.RenderReportFn(ctx, report, opts)
	}
	return []byte("%PDF-1.4 mock"), nil
}
