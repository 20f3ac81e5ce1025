package machina

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Report represents a single machinery inspection event.
type Report struct {
	ID                 uuid.UUID    `json:"id"`
	UserID             uuid.UUID    `json:"userId"`
	ClientName         string       `json:"clientName"`
	MachineType        string       `json:"machineType"`
	Model              string       `json:"model"`
	SerialNumber       string       `json:"serialNumber"`
	Hourmeter          float64      `json:"hourmeter"`
	ReportDate         time.Time    `json:"reportDate"`
	OTT                string       `json:"ott"`
	ServiceReason      string       `json:"serviceReason"`
	Conclusions        string       `json:"conclusions"`
	OverallSuggestions string       `json:"overallSuggestions"`
	Status             ReportStatus `json:"status"`
	Closure            ClosureState `json:"closure"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`

	// Joined fields (populated by some queries)
	User           *User            `json:"user,omitempty"`
	Components     []*Component     `json:"components,omitempty"`
	SuggestedParts []*SuggestedPart `json:"suggestedParts,omitempty"`
}

// ReportStatus represents the workflow status of a report.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusCompleted ReportStatus = "completed"
	ReportStatusArchived  ReportStatus = "archived"
)

// Valid reports whether s is one of the known workflow statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusCompleted, ReportStatusArchived:
		return true
	}
	return false
}

// ClosureState gates edits on a report. Once closed, a report and all of
// its children are frozen; there is no reopening.
type ClosureState string

const (
	ClosurePending ClosureState = "PENDING"
	ClosureClosed  ClosureState = "CLOSED"
)

// Valid reports whether c is one of the known closure states.
func (c ClosureState) Valid() bool {
	return c == ClosurePending || c == ClosureClosed
}

// IsClosed returns true if the report no longer accepts edits.
func (r *Report) IsClosed() bool {
	return r.Closure == ClosureClosed
}

// Authorization guards. Each is a pure function of the caller and the
// report's owner so handlers and services share one source of truth.

// CanEditReport returns true if user may mutate the report's content.
// Closure is checked separately since it yields a different error.
func CanEditReport(user *User, ownerID uuid.UUID) bool {
	if user == nil {
		return false
	}
	if user.Role == RoleAdmin {
		return true
	}
	return user.Role == RoleUser && user.ID == ownerID
}

// CanViewReport returns true if user may read the report.
// Viewers only see reports they own; everyone else sees all reports.
func CanViewReport(user *User, ownerID uuid.UUID) bool {
	if user == nil {
		return false
	}
	if user.Role == RoleViewer {
		return user.ID == ownerID
	}
	return true
}

// CanDeleteReport returns true if user may delete the report.
func CanDeleteReport(user *User) bool {
	return user != nil && user.Role == RoleAdmin
}

// ReportService defines operations for managing inspection reports.
type ReportService interface {
	// FindReportByID retrieves a report with its components (each carrying
	// parameters and photos) and suggested parts.
	// Returns ENOTFOUND if the report does not exist or is outside the
	// caller's visibility scope.
	FindReportByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// FindReports retrieves reports matching the filter criteria, joined
	// with their owner, plus the total count matching the same predicate.
	// Viewer-role callers only ever see their own reports.
	FindReports(ctx context.Context, filter ReportFilter) ([]*Report, int, error)

	// CreateReport creates a new report owned by the calling user.
	// Returns EINVALID if required fields are missing.
	CreateReport(ctx context.Context, report *Report) error

	// UpdateReport reconciles the persisted report against the desired
	// state in upd: scalar fields are overwritten, components are
	// diff-synced by id, photos are retained by filename and uploaded for
	// new files, and suggested parts are replaced wholesale. The whole
	// operation is atomic.
	// Returns ENOTFOUND if the report does not exist.
	// Returns EFORBIDDEN if the report is closed or the caller is neither
	// the owner nor an admin.
	UpdateReport(ctx context.Context, id uuid.UUID, upd ReportUpdate, uploads []PhotoUpload) (*Report, error)

	// CloseReport sets the report's closure state to CLOSED.
	// Returns EFORBIDDEN if already closed or the caller may not edit.
	CloseReport(ctx context.Context, id uuid.UUID) (*Report, error)

	// DeleteReport deletes a report and all associated components, photos,
	// and suggested parts. Admin only.
	// Returns ENOTFOUND if the report does not exist.
	// Returns EFORBIDDEN if the caller is not an admin.
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ReportFilter defines criteria for filtering reports.
// String filters are case-insensitive; MachineType matches exactly,
// the rest match as substrings.
type ReportFilter struct {
	MachineType  *string
	ClientName   *string
	UserName     *string
	SerialNumber *string
	Status       *ReportStatus
	Closure      *ClosureState

	// Pagination (1-indexed page)
	Page  int
	Limit int
}

// ReportUpdate is the full desired state submitted on edit.
// Closure: nil leaves the persisted state untouched; it is never
// implicitly cleared.
type ReportUpdate struct {
	ClientName         string                `json:"clientName" validate:"required"`
	MachineType        string                `json:"machineType" validate:"required"`
	Model              string                `json:"model"`
	SerialNumber       string                `json:"serialNumber"`
	Hourmeter          float64               `json:"hourmeter" validate:"gte=0"`
	ReportDate         time.Time             `json:"reportDate"`
	OTT                string                `json:"ott"`
	ServiceReason      string                `json:"serviceReason"`
	Conclusions        string                `json:"conclusions"`
	OverallSuggestions string                `json:"overallSuggestions"`
	Status             ReportStatus          `json:"status" validate:"required"`
	Closure            *ClosureState         `json:"closure,omitempty"`
	Components         []ComponentChange     `json:"components" validate:"dive"`
	SuggestedParts     []SuggestedPartChange `json:"suggestedParts" validate:"dive"`
}

// ComponentChange is one desired component in an edit payload.
// A nil ID signals an insert; a non-nil ID signals an in-place update.
// PhotoURLs lists the already-stored photos to retain, identified by
// the trailing path segment of each URL.
type ComponentChange struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	TypeID      uuid.UUID       `json:"typeId" validate:"required"`
	Findings    string          `json:"findings"`
	Parameters  []Parameter     `json:"parameters" validate:"dive"`
	Status      ComponentStatus `json:"status" validate:"required"`
	Suggestions string          `json:"suggestions"`
	Priority    Priority        `json:"priority" validate:"required"`
	PhotoURLs   []string        `json:"photos"`
}

// SuggestedPartChange is one desired suggested part in an edit payload.
type SuggestedPartChange struct {
	PartNumber  string `json:"partNumber" validate:"required"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity" validate:"gt=0"`
}
