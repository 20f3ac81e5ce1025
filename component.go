package machina

import (
	"time"

	"github.com/google/uuid"
)

// Component represents one inspected sub-assembly of a machine.
// Components are never created or deleted directly; they only change as
// part of a report reconciliation.
type Component struct {
	ID          uuid.UUID       `json:"id"`
	ReportID    uuid.UUID       `json:"reportId"`
	TypeID      uuid.UUID       `json:"typeId"`
	Findings    string          `json:"findings"`
	Parameters  []Parameter     `json:"parameters"`
	Status      ComponentStatus `json:"status"`
	Suggestions string          `json:"suggestions"`
	Priority    Priority        `json:"priority"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Joined fields (populated by some queries)
	Type   *ComponentType `json:"type,omitempty"`
	Photos []*Photo       `json:"photos,omitempty"`
}

// Parameter is one measured value check on a component. Parameters have
// no identity of their own; the whole list is replaced whenever its
// owning component is updated.
type Parameter struct {
	Name          string  `json:"name" validate:"required"`
	MinValue      float64 `json:"minValue"`
	MaxValue      float64 `json:"maxValue"`
	MeasuredValue float64 `json:"measuredValue"`
	Corrected     bool    `json:"corrected"`
	Observation   string  `json:"observation"`
}

// InRange returns true if the measured value falls within [min, max].
func (p Parameter) InRange() bool {
	return p.MeasuredValue >= p.MinValue && p.MeasuredValue <= p.MaxValue
}

// ComponentStatus represents the remediation state of a component.
type ComponentStatus string

const (
	ComponentStatusCorrected ComponentStatus = "corrected"
	ComponentStatusPending   ComponentStatus = "pending"
)

// Valid reports whether s is one of the known component statuses.
func (s ComponentStatus) Valid() bool {
	return s == ComponentStatusCorrected || s == ComponentStatusPending
}

// Priority represents how urgently a component needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
