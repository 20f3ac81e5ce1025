// Package pdf renders inspection reports to PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/avaldeso/machina"
	"github.com/jung-kurt/gofpdf"
)

// Compile-time interface check
var _ machina.ReportRenderer = (*Renderer)(nil)

// Renderer produces PDF documents from assembled reports.
type Renderer struct {
	// CompanyName appears on the branded letterhead.
	CompanyName string
}

// NewRenderer creates a report renderer.
func NewRenderer(companyName string) *Renderer {
	return &Renderer{CompanyName: companyName}
}

// RenderReport renders the report to PDF bytes. The branded variant
// carries the company letterhead; viewers get the unbranded one.
func (r *Renderer) RenderReport(ctx context.Context, report *machina.Report, opts machina.RenderOptions) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()

	if opts.Branded && r.CompanyName != "" {
		doc.SetFont("Helvetica", "B", 18)
		doc.CellFormat(0, 10, r.CompanyName, "", 1, "C", false, 0, "")
		doc.Ln(2)
	}

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 8, "Machinery Inspection Report", "", 1, "C", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 10)
	r.field(doc, "Client", report.ClientName)
	r.field(doc, "Machine type", report.MachineType)
	r.field(doc, "Model", report.Model)
	r.field(doc, "Serial number", report.SerialNumber)
	r.field(doc, "Hourmeter", fmt.Sprintf("%.1f h", report.Hourmeter))
	r.field(doc, "Report date", report.ReportDate.Format("2006-01-02"))
	r.field(doc, "OTT", report.OTT)
	r.field(doc, "Status", string(report.Status))
	r.field(doc, "Closure", string(report.Closure))
	if report.User != nil {
		r.field(doc, "Inspector", report.User.FullName())
	}
	doc.Ln(2)

	if report.ServiceReason != "" {
		r.section(doc, "Reason of service", report.ServiceReason)
	}

	for i, component := range report.Components {
		doc.Ln(2)
		doc.SetFont("Helvetica", "B", 12)
		name := fmt.Sprintf("Component %d", i+1)
		if component.Type != nil {
			name = component.Type.Name
		}
		doc.CellFormat(0, 7, fmt.Sprintf("%s  [%s, priority %s]", name, component.Status, component.Priority), "B", 1, "L", false, 0, "")

		doc.SetFont("Helvetica", "", 10)
		if component.Findings != "" {
			doc.MultiCell(0, 5, "Findings: "+component.Findings, "", "L", false)
		}
		if component.Suggestions != "" {
			doc.MultiCell(0, 5, "Suggestions: "+component.Suggestions, "", "L", false)
		}

		if len(component.Parameters) > 0 {
			r.parameterTable(doc, component.Parameters)
		}
		if len(component.Photos) > 0 {
			names := make([]string, 0, len(component.Photos))
			for _, photo := range component.Photos {
				names = append(names, photo.OriginalName)
			}
			doc.SetFont("Helvetica", "I", 9)
			doc.MultiCell(0, 5, "Photos: "+strings.Join(names, ", "), "", "L", false)
			doc.SetFont("Helvetica", "", 10)
		}
	}

	if len(report.SuggestedParts) > 0 {
		doc.Ln(3)
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 7, "Suggested parts", "B", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		for _, part := range report.SuggestedParts {
			doc.CellFormat(0, 5, fmt.Sprintf("%dx %s  %s", part.Quantity, part.PartNumber, part.Description), "", 1, "L", false, 0, "")
		}
	}

	if report.Conclusions != "" {
		doc.Ln(3)
		r.section(doc, "Conclusions", report.Conclusions)
	}
	if report.OverallSuggestions != "" {
		r.section(doc, "Overall suggestions", report.OverallSuggestions)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) field(doc *gofpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(40, 6, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (r *Renderer) section(doc *gofpdf.Fpdf, title, body string) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, body, "", "L", false)
}

func (r *Renderer) parameterTable(doc *gofpdf.Fpdf, params []machina.Parameter) {
	doc.SetFont("Helvetica", "B", 9)
	doc.CellFormat(50, 6, "Parameter", "1", 0, "L", false, 0, "")
	doc.CellFormat(25, 6, "Min", "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 6, "Max", "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 6, "Measured", "1", 0, "R", false, 0, "")
	doc.CellFormat(25, 6, "Corrected", "1", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, p := range params {
		corrected := "no"
		if p.Corrected {
			corrected = "yes"
		}
		doc.CellFormat(50, 6, p.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(25, 6, fmt.Sprintf("%.2f", p.MinValue), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, fmt.Sprintf("%.2f", p.MaxValue), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, fmt.Sprintf("%.2f", p.MeasuredValue), "1", 0, "R", false, 0, "")
		doc.CellFormat(25, 6, corrected, "1", 1, "C", false, 0, "")
	}
}
