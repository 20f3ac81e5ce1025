package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
)

func validUpdate() machina.ReportUpdate {
	return machina.ReportUpdate{
		ClientName:  "Acme Mining",
		MachineType: "Excavator",
		Hourmeter:   100,
		Status:      machina.ReportStatusDraft,
		Components: []machina.ComponentChange{
			{
				TypeID:   uuid.New(),
				Status:   machina.ComponentStatusPending,
				Priority: machina.PriorityMedium,
			},
		},
		SuggestedParts: []machina.SuggestedPartChange{
			{PartNumber: "P-100", Quantity: 1},
		},
	}
}

func TestValidateReportUpdate(t *testing.T) {
	assert.NoError(t, validateReportUpdate(validUpdate()))
}

func TestValidateReportUpdateFieldErrors(t *testing.T) {
	upd := validUpdate()
	upd.ClientName = ""
	upd.Hourmeter = -1
	upd.Status = "open"
	upd.Components[0].TypeID = uuid.Nil
	upd.Components[0].Priority = "urgent"
	upd.SuggestedParts[0].Quantity = 0

	err := validateReportUpdate(upd)
	require.Error(t, err)
	assert.Equal(t, machina.EINVALID, machina.ErrorCode(err))

	fields := machina.ErrorFields(err)
	assert.Contains(t, fields, "clientName")
	assert.Contains(t, fields, "hourmeter")
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "components[0].typeId")
	assert.Contains(t, fields, "components[0].priority")
	assert.Contains(t, fields, "suggestedParts[0].quantity")
}

func TestValidateReportUpdateClosure(t *testing.T) {
	upd := validUpdate()

	bad := machina.ClosureState("REOPENED")
	upd.Closure = &bad
	err := validateReportUpdate(upd)
	require.Error(t, err)
	assert.Contains(t, machina.ErrorFields(err), "closure")

	good := machina.ClosureClosed
	upd.Closure = &good
	assert.NoError(t, validateReportUpdate(upd))
}

func TestUpdateReportRejectsOrphanUpload(t *testing.T) {
	svc := &ReportService{db: &DB{}}
	admin := &machina.User{ID: uuid.New(), Role: machina.RoleAdmin}
	ctx := machina.NewContextWithUser(context.Background(), admin)

	upd := validUpdate()
	uploads := []machina.PhotoUpload{{
		ComponentIndex: len(upd.Components),
		OriginalName:   "photo.jpg",
		ContentType:    "image/jpeg",
		Content:        strings.NewReader("jpegdata"),
	}}

	// Rejected before any database work happens.
	_, err := svc.UpdateReport(ctx, uuid.New(), upd, uploads)
	require.Error(t, err)
	assert.Equal(t, machina.EINVALID, machina.ErrorCode(err))

	uploads[0].ComponentIndex = -1
	_, err = svc.UpdateReport(ctx, uuid.New(), upd, uploads)
	require.Error(t, err)
	assert.Equal(t, machina.EINVALID, machina.ErrorCode(err))
}
