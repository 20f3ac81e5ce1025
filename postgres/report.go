package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/avaldeso/machina"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that ReportService implements machina.ReportService.
var _ machina.ReportService = (*ReportService)(nil)

// ReportService implements machina.ReportService using PostgreSQL.
type ReportService struct {
	db *DB
}

const reportColumns = `r.id, r.user_id, r.client_name, r.machine_type, r.model,
	r.serial_number, r.hourmeter, r.report_date, r.ott, r.service_reason,
	r.conclusions, r.overall_suggestions, r.status, r.closure, r.created_at, r.updated_at`

func (s *ReportService) FindReportByID(ctx context.Context, id uuid.UUID) (*machina.Report, error) {
	caller := machina.UserFromContext(ctx)
	if caller == nil {
		return nil, machina.Unauthorized("Authentication required")
	}

	report, err := s.findReportByID(ctx, s.db.pool, id)
	if err != nil {
		return nil, err
	}

	// Viewers only see their own reports; an unowned report is
	// indistinguishable from a missing one.
	if !machina.CanViewReport(caller, report.UserID) {
		return nil, machina.NotFound("Report not found")
	}

	if err := s.loadReportChildren(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) FindReports(ctx context.Context, filter machina.ReportFilter) ([]*machina.Report, int, error) {
	caller := machina.UserFromContext(ctx)
	if caller == nil {
		return nil, 0, machina.Unauthorized("Authentication required")
	}

	opts := reportListOptions(filter, caller)

	countQuery, countArgs, err := applyOptions(
		psql.Select("COUNT(*)").
			From("reports r").
			Join("users u ON u.id = r.user_id"),
		opts,
	).ToSql()
	if err != nil {
		return nil, 0, machina.Internal("Failed to build report count query", err)
	}

	var total int
	if err := s.db.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, machina.Internal("Failed to count reports", err)
	}

	pageOpts := append(opts, WithDefaultSort(), WithPage(filter.Page, filter.Limit))
	query, args, err := applyOptions(
		psql.Select(reportColumns, "u.id", "u.username", "u.first_name", "u.last_name", "u.role").
			From("reports r").
			Join("users u ON u.id = r.user_id"),
		pageOpts,
	).ToSql()
	if err != nil {
		return nil, 0, machina.Internal("Failed to build report query", err)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, machina.Internal("Failed to query reports", err)
	}
	defer rows.Close()

	var reports []*machina.Report
	for rows.Next() {
		report := &machina.Report{}
		user := &machina.User{}
		if err := rows.Scan(
			&report.ID,
			&report.UserID,
			&report.ClientName,
			&report.MachineType,
			&report.Model,
			&report.SerialNumber,
			&report.Hourmeter,
			&report.ReportDate,
			&report.OTT,
			&report.ServiceReason,
			&report.Conclusions,
			&report.OverallSuggestions,
			&report.Status,
			&report.Closure,
			&report.CreatedAt,
			&report.UpdatedAt,
			&user.ID,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.Role,
		); err != nil {
			return nil, 0, machina.Internal("Failed to scan report", err)
		}
		report.User = user
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, machina.Internal("Failed to read reports", err)
	}

	return reports, total, nil
}

func (s *ReportService) CreateReport(ctx context.Context, report *machina.Report) error {
	caller := machina.UserFromContext(ctx)
	if caller == nil {
		return machina.Unauthorized("Authentication required")
	}
	if caller.Role == machina.RoleViewer {
		return machina.Forbidden("Viewers cannot create reports")
	}

	if report.ClientName == "" || report.MachineType == "" {
		return machina.Invalid("Client name and machine type are required")
	}

	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.UserID = caller.ID
	if report.Status == "" {
		report.Status = machina.ReportStatusDraft
	} else if !report.Status.Valid() {
		return machina.Invalid("Invalid report status: %s", report.Status)
	}
	report.Closure = machina.ClosurePending
	if report.ReportDate.IsZero() {
		report.ReportDate = time.Now()
	}

	query := `
		INSERT INTO reports (
			id, user_id, client_name, machine_type, model, serial_number,
			hourmeter, report_date, ott, service_reason, conclusions,
			overall_suggestions, status, closure
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`
	err := s.db.pool.QueryRow(ctx, query,
		report.ID,
		report.UserID,
		report.ClientName,
		report.MachineType,
		report.Model,
		report.SerialNumber,
		report.Hourmeter,
		report.ReportDate,
		report.OTT,
		report.ServiceReason,
		report.Conclusions,
		report.OverallSuggestions,
		report.Status,
		report.Closure,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return machina.Internal("Failed to create report", err)
	}

	s.db.logger.Info("report created",
		slog.String("report_id", report.ID.String()),
		slog.String("user_id", report.UserID.String()))
	return nil
}

// UpdateReport reconciles the persisted report against the desired state.
// All database writes happen in one transaction; new photo uploads go to
// object storage before their rows are inserted, and pruned storage
// objects are deleted best-effort after commit.
func (s *ReportService) UpdateReport(ctx context.Context, id uuid.UUID, upd machina.ReportUpdate, uploads []machina.PhotoUpload) (*machina.Report, error) {
	caller := machina.UserFromContext(ctx)
	if caller == nil {
		return nil, machina.Unauthorized("Authentication required")
	}

	if err := validateReportUpdate(upd); err != nil {
		return nil, err
	}
	for _, up := range uploads {
		if up.ComponentIndex < 0 || up.ComponentIndex >= len(upd.Components) {
			return nil, machina.Invalid("Photo upload references component index %d, but only %d components were submitted",
				up.ComponentIndex, len(upd.Components))
		}
	}

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return nil, machina.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Lock the report row for the duration of the reconciliation so
	// concurrent edits to the same report serialize.
	var ownerID uuid.UUID
	var closure machina.ClosureState
	err = tx.QueryRow(ctx,
		`SELECT user_id, closure FROM reports WHERE id = $1 FOR UPDATE`, id,
	).Scan(&ownerID, &closure)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Report not found")
		}
		return nil, machina.Internal("Failed to fetch report", err)
	}

	if closure == machina.ClosureClosed {
		return nil, machina.Forbidden("Report is closed and cannot be edited")
	}
	if !machina.CanEditReport(caller, ownerID) {
		return nil, machina.Forbidden("Not authorized to edit this report")
	}

	// Storage keys to remove once the transaction commits. Deleting
	// after commit keeps storage failures from aborting the sync.
	var pruneKeys []string

	if err := s.updateReportFields(ctx, tx, id, upd); err != nil {
		return nil, err
	}

	keys, err := s.syncComponents(ctx, tx, id, upd.Components, uploads)
	if err != nil {
		return nil, err
	}
	pruneKeys = append(pruneKeys, keys...)

	if err := s.replaceSuggestedParts(ctx, tx, id, upd.SuggestedParts); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, machina.Internal("Failed to commit report update", err)
	}

	s.pruneStorage(ctx, pruneKeys)

	s.db.logger.Info("report reconciled",
		slog.String("report_id", id.String()),
		slog.Int("components", len(upd.Components)),
		slog.Int("uploads", len(uploads)),
		slog.Int("pruned_photos", len(pruneKeys)))

	report, err := s.findReportByID(ctx, s.db.pool, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadReportChildren(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) CloseReport(ctx context.Context, id uuid.UUID) (*machina.Report, error) {
	caller := machina.UserFromContext(ctx)
	if caller == nil {
		return nil, machina.Unauthorized("Authentication required")
	}

	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return nil, machina.Internal("Failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var ownerID uuid.UUID
	var closure machina.ClosureState
	err = tx.QueryRow(ctx,
		`SELECT user_id, closure FROM reports WHERE id = $1 FOR UPDATE`, id,
	).Scan(&ownerID, &closure)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Report not found")
		}
		return nil, machina.Internal("Failed to fetch report", err)
	}

	if closure == machina.ClosureClosed {
		return nil, machina.Forbidden("Report is already closed")
	}
	if !machina.CanEditReport(caller, ownerID) {
		return nil, machina.Forbidden("Not authorized to close this report")
	}

	_, err = tx.Exec(ctx,
		`UPDATE reports SET closure = $1, updated_at = NOW() WHERE id = $2`,
		machina.ClosureClosed, id,
	)
	if err != nil {
		return nil, machina.Internal("Failed to close report", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, machina.Internal("Failed to commit report closure", err)
	}

	s.db.logger.Info("report closed",
		slog.String("report_id", id.String()),
		slog.String("closed_by", caller.ID.String()))

	return s.findReportByID(ctx, s.db.pool, id)
}

func (s *ReportService) DeleteReport(ctx context.Context, id uuid.UUID) error {
	caller := machina.UserFromContext(ctx)
	if caller == nil {
		return machina.Unauthorized("Authentication required")
	}
	if !machina.CanDeleteReport(caller) {
		return machina.Forbidden("Only admins can delete reports")
	}

	// Collect storage keys before deleting; rows cascade with the report.
	rows, err := s.db.pool.Query(ctx, `
		SELECT p.filename
		FROM photos p
		JOIN components c ON c.id = p.component_id
		WHERE c.report_id = $1
	`, id)
	if err != nil {
		return machina.Internal("Failed to fetch report photos", err)
	}
	var pruneKeys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return machina.Internal("Failed to scan photo", err)
		}
		pruneKeys = append(pruneKeys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return machina.Internal("Failed to read photos", err)
	}

	result, err := s.db.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return machina.Internal("Failed to delete report", err)
	}
	if result.RowsAffected() == 0 {
		return machina.NotFound("Report not found")
	}

	s.pruneStorage(ctx, pruneKeys)

	s.db.logger.Info("report deleted",
		slog.String("report_id", id.String()),
		slog.String("deleted_by", caller.ID.String()))
	return nil
}

// updateReportFields overwrites the report's scalar fields. The closure
// flag only changes when the payload supplies one; COALESCE keeps the
// persisted value otherwise.
func (s *ReportService) updateReportFields(ctx context.Context, tx pgx.Tx, id uuid.UUID, upd machina.ReportUpdate) error {
	query := `
		UPDATE reports SET
			client_name = $1,
			machine_type = $2,
			model = $3,
			serial_number = $4,
			hourmeter = $5,
			report_date = $6,
			ott = $7,
			service_reason = $8,
			conclusions = $9,
			overall_suggestions = $10,
			status = $11,
			closure = COALESCE($12, closure),
			updated_at = NOW()
		WHERE id = $13
	`
	_, err := tx.Exec(ctx, query,
		upd.ClientName,
		upd.MachineType,
		upd.Model,
		upd.SerialNumber,
		upd.Hourmeter,
		upd.ReportDate,
		upd.OTT,
		upd.ServiceReason,
		upd.Conclusions,
		upd.OverallSuggestions,
		upd.Status,
		upd.Closure,
		id,
	)
	if err != nil {
		return machina.Internal("Failed to update report fields", err)
	}
	return nil
}

// syncComponents diff-syncs the report's components against the desired
// list. Deletion of absent components runs first so an id can never be
// deleted and recreated in the same request. Returns the storage keys of
// pruned photos for post-commit cleanup.
func (s *ReportService) syncComponents(ctx context.Context, tx pgx.Tx, reportID uuid.UUID, desired []machina.ComponentChange, uploads []machina.PhotoUpload) ([]string, error) {
	keepIDs := make([]uuid.UUID, 0, len(desired))
	for _, c := range desired {
		if c.ID != nil {
			keepIDs = append(keepIDs, *c.ID)
		}
	}

	pruneKeys, err := s.deleteAbsentComponents(ctx, tx, reportID, keepIDs)
	if err != nil {
		return nil, err
	}

	uploadsByIndex := make(map[int][]machina.PhotoUpload)
	for _, u := range uploads {
		uploadsByIndex[u.ComponentIndex] = append(uploadsByIndex[u.ComponentIndex], u)
	}

	for i, change := range desired {
		params, err := json.Marshal(change.Parameters)
		if err != nil {
			return nil, machina.Invalid("Invalid parameters for component %d", i)
		}

		var componentID uuid.UUID
		if change.ID != nil {
			componentID = *change.ID
			result, err := tx.Exec(ctx, `
				UPDATE components SET
					type_id = $1, findings = $2, parameters = $3,
					status = $4, suggestions = $5, priority = $6,
					updated_at = NOW()
				WHERE id = $7 AND report_id = $8
			`, change.TypeID, change.Findings, params,
				change.Status, change.Suggestions, change.Priority,
				componentID, reportID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return nil, machina.Invalid("Unknown component type for component %d", i)
				}
				return nil, machina.Internal("Failed to update component", err)
			}
			if result.RowsAffected() == 0 {
				return nil, machina.NotFound("Component %s not found on this report", componentID)
			}
		} else {
			componentID = uuid.New()
			_, err := tx.Exec(ctx, `
				INSERT INTO components (
					id, report_id, type_id, findings, parameters,
					status, suggestions, priority
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, componentID, reportID, change.TypeID, change.Findings,
				params, change.Status, change.Suggestions, change.Priority)
			if err != nil {
				if isForeignKeyViolation(err) {
					return nil, machina.Invalid("Unknown component type for component %d", i)
				}
				return nil, machina.Internal("Failed to insert component", err)
			}
		}

		keys, err := s.syncPhotos(ctx, tx, componentID, change.PhotoURLs, uploadsByIndex[i])
		if err != nil {
			return nil, err
		}
		pruneKeys = append(pruneKeys, keys...)
	}

	return pruneKeys, nil
}

// deleteAbsentComponents removes every component whose id is not in the
// desired set, along with its photo rows. Returns pruned storage keys.
func (s *ReportService) deleteAbsentComponents(ctx context.Context, tx pgx.Tx, reportID uuid.UUID, keepIDs []uuid.UUID) ([]string, error) {
	query := `
		SELECT p.filename
		FROM photos p
		JOIN components c ON c.id = p.component_id
		WHERE c.report_id = $1 AND c.id != ALL($2)
	`
	rows, err := tx.Query(ctx, query, reportID, keepIDs)
	if err != nil {
		return nil, machina.Internal("Failed to fetch photos of removed components", err)
	}
	var pruneKeys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			rows.Close()
			return nil, machina.Internal("Failed to scan photo", err)
		}
		pruneKeys = append(pruneKeys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, machina.Internal("Failed to read photos", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM components WHERE report_id = $1 AND id != ALL($2)`,
		reportID, keepIDs,
	)
	if err != nil {
		return nil, machina.Internal("Failed to delete removed components", err)
	}
	return pruneKeys, nil
}

// syncPhotos prunes photos not referenced in retainedURLs (matched by
// the URL's trailing filename) and inserts a row for each new upload.
// Two photos sharing a filename are indistinguishable here; retention
// keeps whichever rows carry the referenced name.
func (s *ReportService) syncPhotos(ctx context.Context, tx pgx.Tx, componentID uuid.UUID, retainedURLs []string, uploads []machina.PhotoUpload) ([]string, error) {
	retained := make(map[string]bool, len(retainedURLs))
	for _, url := range retainedURLs {
		if key := machina.KeyFromURL(url); key != "" {
			retained[key] = true
		}
	}

	rows, err := tx.Query(ctx,
		`SELECT id, filename FROM photos WHERE component_id = $1`, componentID)
	if err != nil {
		return nil, machina.Internal("Failed to fetch component photos", err)
	}
	type photoRow struct {
		id       uuid.UUID
		filename string
	}
	var stale []photoRow
	for rows.Next() {
		var p photoRow
		if err := rows.Scan(&p.id, &p.filename); err != nil {
			rows.Close()
			return nil, machina.Internal("Failed to scan photo", err)
		}
		if !retained[p.filename] {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, machina.Internal("Failed to read photos", err)
	}

	var pruneKeys []string
	for _, p := range stale {
		if _, err := tx.Exec(ctx, `DELETE FROM photos WHERE id = $1`, p.id); err != nil {
			return nil, machina.Internal("Failed to delete photo", err)
		}
		pruneKeys = append(pruneKeys, p.filename)
	}

	for _, upload := range uploads {
		if !machina.IsAcceptedImageType(upload.ContentType) {
			return nil, machina.Invalid("Unsupported photo type: %s", upload.ContentType)
		}

		key := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.New().String(), filepath.Ext(upload.OriginalName))
		obj, err := s.db.storage.Upload(ctx, key, upload.Content, upload.ContentType)
		if err != nil {
			return nil, machina.Internal("Failed to upload photo", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO photos (
				id, component_id, filename, original_name, url, size, mime_type
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New(), componentID, key, upload.OriginalName,
			obj.URL, obj.Size, obj.ContentType)
		if err != nil {
			return nil, machina.Internal("Failed to insert photo", err)
		}
	}

	return pruneKeys, nil
}

// replaceSuggestedParts deletes every existing part and reinserts the
// desired list verbatim. Parts carry no identity across edits.
func (s *ReportService) replaceSuggestedParts(ctx context.Context, tx pgx.Tx, reportID uuid.UUID, parts []machina.SuggestedPartChange) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM suggested_parts WHERE report_id = $1`, reportID); err != nil {
		return machina.Internal("Failed to delete suggested parts", err)
	}

	for _, part := range parts {
		_, err := tx.Exec(ctx, `
			INSERT INTO suggested_parts (id, report_id, part_number, description, quantity)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), reportID, part.PartNumber, part.Description, part.Quantity)
		if err != nil {
			return machina.Internal("Failed to insert suggested part", err)
		}
	}
	return nil
}

// pruneStorage best-effort deletes storage objects after commit.
// Failures are logged and swallowed; a dangling object is acceptable
// garbage, an aborted sync is not.
func (s *ReportService) pruneStorage(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.db.storage.Delete(ctx, key); err != nil {
			s.db.logger.Warn("failed to delete stored photo",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
}

// querier abstracts the pool and a transaction for read helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// findReportByID fetches a report row with its owner, without
// visibility checks or child rows.
func (s *ReportService) findReportByID(ctx context.Context, q querier, id uuid.UUID) (*machina.Report, error) {
	query := `
		SELECT ` + reportColumns + `,
			u.id, u.email, u.username, u.first_name, u.last_name, u.role
		FROM reports r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`
	report := &machina.Report{}
	user := &machina.User{}
	err := q.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.UserID,
		&report.ClientName,
		&report.MachineType,
		&report.Model,
		&report.SerialNumber,
		&report.Hourmeter,
		&report.ReportDate,
		&report.OTT,
		&report.ServiceReason,
		&report.Conclusions,
		&report.OverallSuggestions,
		&report.Status,
		&report.Closure,
		&report.CreatedAt,
		&report.UpdatedAt,
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Report not found")
		}
		return nil, machina.Internal("Failed to fetch report", err)
	}
	report.User = user
	return report, nil
}

// loadReportChildren populates components (with parameters and photos)
// and suggested parts. Read-only assembly, always against current state.
func (s *ReportService) loadReportChildren(ctx context.Context, report *machina.Report) error {
	rows, err := s.db.pool.Query(ctx, `
		SELECT c.id, c.report_id, c.type_id, c.findings, c.parameters,
			c.status, c.suggestions, c.priority, c.created_at, c.updated_at,
			t.name, t.description
		FROM components c
		JOIN component_types t ON t.id = c.type_id
		WHERE c.report_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`, report.ID)
	if err != nil {
		return machina.Internal("Failed to query components", err)
	}

	byID := make(map[uuid.UUID]*machina.Component)
	var components []*machina.Component
	for rows.Next() {
		component := &machina.Component{}
		ctype := &machina.ComponentType{}
		var params []byte
		if err := rows.Scan(
			&component.ID,
			&component.ReportID,
			&component.TypeID,
			&component.Findings,
			&params,
			&component.Status,
			&component.Suggestions,
			&component.Priority,
			&component.CreatedAt,
			&component.UpdatedAt,
			&ctype.Name,
			&ctype.Description,
		); err != nil {
			rows.Close()
			return machina.Internal("Failed to scan component", err)
		}
		if len(params) > 0 {
			if err := json.Unmarshal(params, &component.Parameters); err != nil {
				rows.Close()
				return machina.Internal("Failed to decode component parameters", err)
			}
		}
		ctype.ID = component.TypeID
		component.Type = ctype
		byID[component.ID] = component
		components = append(components, component)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return machina.Internal("Failed to read components", err)
	}
	report.Components = components

	photoRows, err := s.db.pool.Query(ctx, `
		SELECT p.id, p.component_id, p.filename, p.original_name, p.url,
			p.size, p.mime_type, p.created_at
		FROM photos p
		JOIN components c ON c.id = p.component_id
		WHERE c.report_id = $1
		ORDER BY p.created_at ASC, p.id ASC
	`, report.ID)
	if err != nil {
		return machina.Internal("Failed to query photos", err)
	}
	for photoRows.Next() {
		photo := &machina.Photo{}
		if err := photoRows.Scan(
			&photo.ID,
			&photo.ComponentID,
			&photo.Filename,
			&photo.OriginalName,
			&photo.URL,
			&photo.Size,
			&photo.MimeType,
			&photo.CreatedAt,
		); err != nil {
			photoRows.Close()
			return machina.Internal("Failed to scan photo", err)
		}
		if component, ok := byID[photo.ComponentID]; ok {
			component.Photos = append(component.Photos, photo)
		}
	}
	photoRows.Close()
	if err := photoRows.Err(); err != nil {
		return machina.Internal("Failed to read photos", err)
	}

	partRows, err := s.db.pool.Query(ctx, `
		SELECT id, report_id, part_number, description, quantity, created_at
		FROM suggested_parts
		WHERE report_id = $1
		ORDER BY created_at ASC, id ASC
	`, report.ID)
	if err != nil {
		return machina.Internal("Failed to query suggested parts", err)
	}
	for partRows.Next() {
		part := &machina.SuggestedPart{}
		if err := partRows.Scan(
			&part.ID,
			&part.ReportID,
			&part.PartNumber,
			&part.Description,
			&part.Quantity,
			&part.CreatedAt,
		); err != nil {
			partRows.Close()
			return machina.Internal("Failed to scan suggested part", err)
		}
		report.SuggestedParts = append(report.SuggestedParts, part)
	}
	partRows.Close()
	if err := partRows.Err(); err != nil {
		return machina.Internal("Failed to read suggested parts", err)
	}

	return nil
}

// validateReportUpdate checks the payload shape before any work begins.
func validateReportUpdate(upd machina.ReportUpdate) error {
	fields := map[string]string{}
	if upd.ClientName == "" {
		fields["clientName"] = "Client name is required"
	}
	if upd.MachineType == "" {
		fields["machineType"] = "Machine type is required"
	}
	if upd.Hourmeter < 0 {
		fields["hourmeter"] = "Hourmeter cannot be negative"
	}
	if !upd.Status.Valid() {
		fields["status"] = "Invalid report status"
	}
	if upd.Closure != nil && !upd.Closure.Valid() {
		fields["closure"] = "Invalid closure state"
	}
	for i, c := range upd.Components {
		if c.TypeID == uuid.Nil {
			fields[fmt.Sprintf("components[%d].typeId", i)] = "Component type is required"
		}
		if !c.Status.Valid() {
			fields[fmt.Sprintf("components[%d].status", i)] = "Invalid component status"
		}
		if !c.Priority.Valid() {
			fields[fmt.Sprintf("components[%d].priority", i)] = "Invalid priority"
		}
	}
	for i, p := range upd.SuggestedParts {
		if p.PartNumber == "" {
			fields[fmt.Sprintf("suggestedParts[%d].partNumber", i)] = "Part number is required"
		}
		if p.Quantity <= 0 {
			fields[fmt.Sprintf("suggestedParts[%d].quantity", i)] = "Quantity must be positive"
		}
	}
	if len(fields) > 0 {
		return machina.ErrorWithFields(fields)
	}
	return nil
}
