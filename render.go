package machina

import "context"

// RenderOptions selects how a report document is produced.
type RenderOptions struct {
	// Branded includes the company letterhead. Viewer-role callers
	// receive the unbranded variant.
	Branded bool
}

// ReportRenderer produces a binary document from a fully assembled
// report (components with parameters and photos, suggested parts).
type ReportRenderer interface {
	// RenderReport renders the report to PDF bytes.
	RenderReport(ctx context.Context, report *Report, opts RenderOptions) ([]byte, error)
}
