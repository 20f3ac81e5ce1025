package postgres

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/migrations"
	"github.com/avaldeso/machina/mock"
)

// setupTestDB connects to the database named by GOOSE_DBSTRING and brings
// the schema up to date. Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	connString := os.Getenv("GOOSE_DBSTRING")
	if connString == "" {
		t.Skip("GOOSE_DBSTRING not set, skipping integration tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	sqlDB := stdlib.OpenDBFromPool(pool)
	require.NoError(t, goose.Up(sqlDB, "."))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db := NewDB(pool, logger, mock.NewFileStorage())

	cleanup := func() {
		_ = sqlDB.Close()
		pool.Close()
	}
	return db, cleanup
}

// createTestUser inserts a user row and registers cleanup of the user and
// every report it owns.
func createTestUser(t *testing.T, db *DB, role machina.Role) *machina.User {
	t.Helper()

	ctx := context.Background()
	user := &machina.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: "insp-" + uuid.NewString()[:8],
		Role:     role,
		Status:   machina.UserStatusActive,
	}
	_, err := db.pool.Exec(ctx, `
		INSERT INTO users (id, email, username, password_hash, role, status)
		VALUES ($1, $2, $3, '', $4, $5)
	`, user.ID, user.Email, user.Username, user.Role, user.Status)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.pool.Exec(ctx, `DELETE FROM reports WHERE user_id = $1`, user.ID)
		_, _ = db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

// componentTypeID resolves one of the seeded catalog entries.
func componentTypeID(t *testing.T, db *DB, name string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := db.pool.QueryRow(context.Background(),
		`SELECT id FROM component_types WHERE name = $1`, name).Scan(&id)
	require.NoError(t, err)
	return id
}

func createSeedReport(t *testing.T, db *DB, ctx context.Context) *machina.Report {
	t.Helper()
	report := &machina.Report{
		ClientName:  "Acme Mining",
		MachineType: "Excavator",
		Hourmeter:   1200,
	}
	require.NoError(t, db.ReportService.CreateReport(ctx, report))
	return report
}

func baseUpdate() machina.ReportUpdate {
	return machina.ReportUpdate{
		ClientName:  "Acme Mining",
		MachineType: "Excavator",
		Hourmeter:   1200,
		ReportDate:  time.Now(),
		Status:      machina.ReportStatusDraft,
	}
}

func componentChange(typeID uuid.UUID, findings string) machina.ComponentChange {
	return machina.ComponentChange{
		TypeID:   typeID,
		Findings: findings,
		Status:   machina.ComponentStatusPending,
		Priority: machina.PriorityLow,
	}
}

func componentByFindings(t *testing.T, report *machina.Report, findings string) *machina.Component {
	t.Helper()
	for _, c := range report.Components {
		if c.Findings == findings {
			return c
		}
	}
	t.Fatalf("no component with findings %q", findings)
	return nil
}

func countRows(t *testing.T, db *DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func TestUpdateReportIdentityRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, db, machina.RoleUser)
	ctx := machina.NewContextWithUser(context.Background(), owner)
	engineType := componentTypeID(t, db, "Engine")

	report := createSeedReport(t, db, ctx)

	upd := baseUpdate()
	upd.Components = []machina.ComponentChange{componentChange(engineType, "ok")}
	got, err := db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)
	require.Len(t, got.Components, 1)
	existingID := got.Components[0].ID

	// One existing id (unchanged fields) plus one component without an
	// id: exactly one update and one insert.
	upd.Components = []machina.ComponentChange{
		{
			ID:       &existingID,
			TypeID:   engineType,
			Findings: "ok",
			Status:   machina.ComponentStatusPending,
			Priority: machina.PriorityLow,
		},
		componentChange(engineType, "leak"),
	}
	got, err = db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)

	require.Len(t, got.Components, 2)
	assert.Equal(t, existingID, componentByFindings(t, got, "ok").ID)
	assert.NotEqual(t, existingID, componentByFindings(t, got, "leak").ID)
	assert.Equal(t, 2, countRows(t, db,
		`SELECT COUNT(*) FROM components WHERE report_id = $1`, report.ID))
}

func TestUpdateReportRollsBackOnFailure(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, db, machina.RoleUser)
	ctx := machina.NewContextWithUser(context.Background(), owner)
	engineType := componentTypeID(t, db, "Engine")

	report := createSeedReport(t, db, ctx)

	upd := baseUpdate()
	upd.Components = []machina.ComponentChange{componentChange(engineType, "ok")}
	upd.SuggestedParts = []machina.SuggestedPartChange{
		{PartNumber: "FLT-100", Quantity: 2},
	}
	_, err := db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)

	// Second component references a type that does not exist, forcing a
	// constraint violation after the scalar update and part replacement
	// have already run inside the transaction.
	bad := baseUpdate()
	bad.ClientName = "Globex Quarry"
	bad.Components = []machina.ComponentChange{
		componentChange(engineType, "changed"),
		componentChange(uuid.New(), "bogus type"),
	}
	bad.SuggestedParts = nil
	_, err = db.ReportService.UpdateReport(ctx, report.ID, bad, nil)
	require.Error(t, err)
	assert.Equal(t, machina.EINVALID, machina.ErrorCode(err))

	// Everything is back to the pre-call state.
	after, err := db.ReportService.FindReportByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Mining", after.ClientName)
	require.Len(t, after.Components, 1)
	assert.Equal(t, "ok", after.Components[0].Findings)
	require.Len(t, after.SuggestedParts, 1)
	assert.Equal(t, "FLT-100", after.SuggestedParts[0].PartNumber)
}

func TestUpdateReportDeletesComponentWithPhotos(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, db, machina.RoleUser)
	ctx := machina.NewContextWithUser(context.Background(), owner)
	engineType := componentTypeID(t, db, "Engine")
	hydraulicType := componentTypeID(t, db, "Hydraulic System")

	report := createSeedReport(t, db, ctx)

	upd := baseUpdate()
	upd.Components = []machina.ComponentChange{
		componentChange(engineType, "keep"),
		componentChange(hydraulicType, "drop"),
	}
	uploads := []machina.PhotoUpload{{
		ComponentIndex: 1,
		OriginalName:   "leak.jpg",
		ContentType:    "image/jpeg",
		Size:           8,
		Content:        strings.NewReader("jpegdata"),
	}}
	got, err := db.ReportService.UpdateReport(ctx, report.ID, upd, uploads)
	require.NoError(t, err)
	require.Len(t, got.Components, 2)

	keep := componentByFindings(t, got, "keep")
	drop := componentByFindings(t, got, "drop")
	require.Len(t, drop.Photos, 1)

	// Omitting the second component's id deletes it and its photos;
	// the retained component is untouched.
	upd.Components = []machina.ComponentChange{
		{
			ID:       &keep.ID,
			TypeID:   engineType,
			Findings: "keep",
			Status:   machina.ComponentStatusPending,
			Priority: machina.PriorityLow,
		},
	}
	got, err = db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)

	require.Len(t, got.Components, 1)
	assert.Equal(t, keep.ID, got.Components[0].ID)
	assert.Equal(t, 0, countRows(t, db,
		`SELECT COUNT(*) FROM photos WHERE component_id = $1`, drop.ID))
}

func TestUpdateReportReplacesSuggestedParts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, db, machina.RoleUser)
	ctx := machina.NewContextWithUser(context.Background(), owner)

	report := createSeedReport(t, db, ctx)

	upd := baseUpdate()
	upd.SuggestedParts = []machina.SuggestedPartChange{
		{PartNumber: "FLT-100", Quantity: 2},
		{PartNumber: "HSE-220", Description: "Return hose", Quantity: 1},
	}
	_, err := db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, countRows(t, db,
		`SELECT COUNT(*) FROM suggested_parts WHERE report_id = $1`, report.ID))

	// An empty list wipes every persisted part, no diffing involved.
	upd.SuggestedParts = nil
	_, err = db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, countRows(t, db,
		`SELECT COUNT(*) FROM suggested_parts WHERE report_id = $1`, report.ID))
}

func TestUpdateReportKeepAndReplaceScenario(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	owner := createTestUser(t, db, machina.RoleUser)
	ctx := machina.NewContextWithUser(context.Background(), owner)
	engineType := componentTypeID(t, db, "Engine")
	hydraulicType := componentTypeID(t, db, "Hydraulic System")

	report := createSeedReport(t, db, ctx)

	upd := baseUpdate()
	upd.Components = []machina.ComponentChange{
		componentChange(engineType, "ok"),
		componentChange(hydraulicType, "leak"),
	}
	uploads := []machina.PhotoUpload{{
		ComponentIndex: 1,
		OriginalName:   "leak.jpg",
		ContentType:    "image/jpeg",
		Size:           8,
		Content:        strings.NewReader("jpegdata"),
	}}
	got, err := db.ReportService.UpdateReport(ctx, report.ID, upd, uploads)
	require.NoError(t, err)

	c1 := componentByFindings(t, got, "ok")
	c2 := componentByFindings(t, got, "leak")

	// Resubmit c1 by id and a new component without an id: c1 survives
	// verbatim, c2 and its photos go away, the new component is inserted.
	upd.Components = []machina.ComponentChange{
		{
			ID:       &c1.ID,
			TypeID:   engineType,
			Findings: "ok",
			Status:   machina.ComponentStatusPending,
			Priority: machina.PriorityLow,
		},
		componentChange(engineType, "new"),
	}
	got, err = db.ReportService.UpdateReport(ctx, report.ID, upd, nil)
	require.NoError(t, err)

	require.Len(t, got.Components, 2)
	assert.Equal(t, c1.ID, componentByFindings(t, got, "ok").ID)
	assert.Equal(t, "new", componentByFindings(t, got, "new").Findings)
	for _, c := range got.Components {
		assert.NotEqual(t, c2.ID, c.ID)
	}
	assert.Equal(t, 0, countRows(t, db,
		`SELECT COUNT(*) FROM components WHERE id = $1`, c2.ID))
	assert.Equal(t, 0, countRows(t, db,
		`SELECT COUNT(*) FROM photos WHERE component_id = $1`, c2.ID))
}
