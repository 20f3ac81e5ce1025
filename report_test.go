package machina

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanEditReport(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	admin := &User{ID: otherID, Role: RoleAdmin}
	owner := &User{ID: ownerID, Role: RoleUser}
	other := &User{ID: otherID, Role: RoleUser}
	viewer := &User{ID: ownerID, Role: RoleViewer}

	assert.True(t, CanEditReport(admin, ownerID), "admins edit any report")
	assert.True(t, CanEditReport(owner, ownerID), "owners edit their own reports")
	assert.False(t, CanEditReport(other, ownerID), "non-owners cannot edit")
	assert.False(t, CanEditReport(viewer, ownerID), "viewers never edit, even their own")
	assert.False(t, CanEditReport(nil, ownerID))
}

func TestCanViewReport(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	admin := &User{ID: otherID, Role: RoleAdmin}
	user := &User{ID: otherID, Role: RoleUser}
	viewerOwner := &User{ID: ownerID, Role: RoleViewer}
	viewerOther := &User{ID: otherID, Role: RoleViewer}

	assert.True(t, CanViewReport(admin, ownerID))
	assert.True(t, CanViewReport(user, ownerID), "regular users see all reports")
	assert.True(t, CanViewReport(viewerOwner, ownerID))
	assert.False(t, CanViewReport(viewerOther, ownerID), "viewers only see their own")
	assert.False(t, CanViewReport(nil, ownerID))
}

func TestCanDeleteReport(t *testing.T) {
	assert.True(t, CanDeleteReport(&User{Role: RoleAdmin}))
	assert.False(t, CanDeleteReport(&User{Role: RoleUser}))
	assert.False(t, CanDeleteReport(&User{Role: RoleViewer}))
	assert.False(t, CanDeleteReport(nil))
}

func TestClosureState(t *testing.T) {
	assert.True(t, ClosurePending.Valid())
	assert.True(t, ClosureClosed.Valid())
	assert.False(t, ClosureState("OPEN").Valid())
	assert.False(t, ClosureState("").Valid())

	r := &Report{Closure: ClosurePending}
	assert.False(t, r.IsClosed())
	r.Closure = ClosureClosed
	assert.True(t, r.IsClosed())
}

func TestReportStatusValid(t *testing.T) {
	assert.True(t, ReportStatusDraft.Valid())
	assert.True(t, ReportStatusCompleted.Valid())
	assert.True(t, ReportStatusArchived.Valid())
	assert.False(t, ReportStatus("open").Valid())
}
