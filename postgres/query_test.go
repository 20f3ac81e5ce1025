package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
)

func toSQL(t *testing.T, opts []ListOption) (string, []any) {
	t.Helper()
	b := applyOptions(psql.Select("r.id").From("reports r"), opts)
	query, args, err := b.ToSql()
	require.NoError(t, err)
	return query, args
}

func TestReportListOptionsViewerScope(t *testing.T) {
	viewer := &machina.User{ID: uuid.New(), Role: machina.RoleViewer}

	opts := reportListOptions(machina.ReportFilter{}, viewer)
	query, args := toSQL(t, opts)

	assert.Contains(t, query, "r.user_id = $1")
	require.Len(t, args, 1)
	assert.Equal(t, viewer.ID, args[0])
}

func TestReportListOptionsViewerWithUserNameFilter(t *testing.T) {
	viewer := &machina.User{ID: uuid.New(), Role: machina.RoleViewer}
	userName := "smith"

	opts := reportListOptions(machina.ReportFilter{UserName: &userName}, viewer)
	query, args := toSQL(t, opts)

	// The name match is a grouped OR, so the owner scope stays ANDed in.
	assert.Contains(t, query, "r.user_id = $1 AND (")
	assert.Contains(t, query, "ILIKE $2 OR u.username ILIKE $3)")
	require.Len(t, args, 3)
	assert.Equal(t, viewer.ID, args[0])
}

func TestReportListOptionsAdminUnscoped(t *testing.T) {
	admin := &machina.User{ID: uuid.New(), Role: machina.RoleAdmin}

	opts := reportListOptions(machina.ReportFilter{}, admin)
	query, _ := toSQL(t, opts)

	assert.NotContains(t, query, "r.user_id")
}

func TestReportListOptionsFilters(t *testing.T) {
	machineType := "Excavator"
	clientName := "acme"
	serial := "SN-9"
	userName := "smith"
	status := machina.ReportStatusCompleted
	closure := machina.ClosureClosed

	filter := machina.ReportFilter{
		MachineType:  &machineType,
		ClientName:   &clientName,
		SerialNumber: &serial,
		UserName:     &userName,
		Status:       &status,
		Closure:      &closure,
	}
	caller := &machina.User{ID: uuid.New(), Role: machina.RoleUser}

	query, args := toSQL(t, reportListOptions(filter, caller))

	assert.Contains(t, query, "LOWER(r.machine_type) = LOWER($1)")
	assert.Contains(t, query, "r.client_name ILIKE $2")
	assert.Contains(t, query, "r.serial_number ILIKE $3")
	assert.Contains(t, query, "u.username ILIKE $5")
	assert.Contains(t, query, "r.status = $6")
	assert.Contains(t, query, "r.closure = $7")

	assert.Equal(t, "Excavator", args[0])
	assert.Equal(t, "%acme%", args[1])
	assert.Equal(t, "%SN-9%", args[2])
	assert.Equal(t, "%smith%", args[3])
}

func TestWithPage(t *testing.T) {
	query, _ := toSQL(t, []ListOption{WithPage(1, 20)})
	assert.Contains(t, query, "LIMIT 20")
	assert.Contains(t, query, "OFFSET 0")

	query, _ = toSQL(t, []ListOption{WithPage(3, 10)})
	assert.Contains(t, query, "OFFSET 20")

	// Page below 1 clamps to the first page.
	query, _ = toSQL(t, []ListOption{WithPage(0, 10)})
	assert.Contains(t, query, "OFFSET 0")

	// No limit means no pagination clauses at all.
	query, _ = toSQL(t, []ListOption{WithPage(1, 0)})
	assert.NotContains(t, query, "LIMIT")
}

func TestWithDefaultSort(t *testing.T) {
	query, _ := toSQL(t, []ListOption{WithDefaultSort()})
	assert.Contains(t, query, "ORDER BY r.created_at DESC, r.id DESC")
}
