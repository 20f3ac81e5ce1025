package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
)

func sampleReport() *machina.Report {
	return &machina.Report{
		ID:           uuid.New(),
		ClientName:   "Acme Mining",
		MachineType:  "Excavator",
		Model:        "320D",
		SerialNumber: "CAT00320D",
		Hourmeter:    1250.5,
		ReportDate:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Status:       machina.ReportStatusCompleted,
		Closure:      machina.ClosurePending,
		User: &machina.User{
			FirstName: "Jane",
			LastName:  "Smith",
			Username:  "jsmith",
		},
		Components: []*machina.Component{
			{
				Type:     &machina.ComponentType{Name: "Engine"},
				Findings: "Oil pressure below spec at idle.",
				Status:   machina.ComponentStatusPending,
				Priority: machina.PriorityHigh,
				Parameters: []machina.Parameter{
					{Name: "Oil pressure", MinValue: 1, MaxValue: 5, MeasuredValue: 0.8},
				},
			},
		},
		SuggestedParts: []*machina.SuggestedPart{
			{PartNumber: "1R-0739", Description: "Oil filter", Quantity: 2},
		},
	}
}

func TestRenderReport(t *testing.T) {
	r := NewRenderer("Machina Heavy Industries")

	data, err := r.RenderReport(context.Background(), sampleReport(), machina.RenderOptions{Branded: true})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	// A valid PDF starts with the %PDF header.
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderReportUnbranded(t *testing.T) {
	r := NewRenderer("Machina Heavy Industries")
	report := sampleReport()

	branded, err := r.RenderReport(context.Background(), report, machina.RenderOptions{Branded: true})
	require.NoError(t, err)

	unbranded, err := r.RenderReport(context.Background(), report, machina.RenderOptions{Branded: false})
	require.NoError(t, err)
	require.NotEmpty(t, unbranded)

	assert.NotEqual(t, branded, unbranded, "branded letterhead must change the output")
}

func TestRenderReportMinimal(t *testing.T) {
	r := NewRenderer("")

	report := &machina.Report{
		ID:          uuid.New(),
		ClientName:  "Acme Mining",
		MachineType: "Excavator",
		Status:      machina.ReportStatusDraft,
		Closure:     machina.ClosurePending,
	}

	data, err := r.RenderReport(context.Background(), report, machina.RenderOptions{Branded: true})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
