package machina

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ComponentType represents an entry in the admin-managed catalog of
// inspectable machine sub-assemblies (engine, hydraulic pump, etc).
type ComponentType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ComponentTypeService defines operations for managing the component
// type catalog. Mutations are admin only.
type ComponentTypeService interface {
	// FindComponentTypeByID retrieves a component type by its ID.
	// Returns ENOTFOUND if the component type does not exist.
	FindComponentTypeByID(ctx context.Context, id uuid.UUID) (*ComponentType, error)

	// FindComponentTypes retrieves component types matching the filter criteria.
	// Returns the matching component types and total count.
	FindComponentTypes(ctx context.Context, filter ComponentTypeFilter) ([]*ComponentType, int, error)

	// CreateComponentType creates a new component type.
	// Returns ECONFLICT if a component type with the same name already exists.
	// Returns EFORBIDDEN if the caller is not an admin.
	CreateComponentType(ctx context.Context, ct *ComponentType) error

	// UpdateComponentType updates an existing component type.
	// Returns ENOTFOUND if the component type does not exist.
	// Returns EFORBIDDEN if the caller is not an admin.
	UpdateComponentType(ctx context.Context, id uuid.UUID, upd ComponentTypeUpdate) (*ComponentType, error)

	// DeleteComponentType deletes a component type.
	// Returns ENOTFOUND if the component type does not exist.
	// Returns ECONFLICT if the component type is referenced by components.
	// Returns EFORBIDDEN if the caller is not an admin.
	DeleteComponentType(ctx context.Context, id uuid.UUID) error
}

// ComponentTypeFilter defines criteria for filtering component types.
type ComponentTypeFilter struct {
	ID     *uuid.UUID
	Name   *string
	Search *string // Search in name and description

	// Pagination
	Offset int
	Limit  int
}

// ComponentTypeUpdate defines fields that can be updated on a component type.
type ComponentTypeUpdate struct {
	Name        *string
	Description *string
}
