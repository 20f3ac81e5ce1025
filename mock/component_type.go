package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.ComponentTypeService = (*ComponentTypeService)(nil)

// ComponentTypeService is a mock implementation of machina.ComponentTypeService.
type ComponentTypeService struct {
	FindComponentTypeByIDFn func(ctx context.Context, id uuid.UUID) (*machina.ComponentType, error)
	FindComponentTypesFn    func(ctx context.Context, filter machina.ComponentTypeFilter) ([]*machina.ComponentType, int, error)
	CreateComponentTypeFn   func(ctx context.Context, ct *machina.ComponentType) error
	UpdateComponentTypeFn   func(ctx context.Context, id uuid.UUID, upd machina.ComponentTypeUpdate) (*machina.ComponentType, error)
	DeleteComponentTypeFn   func(ctx context.Context, id uuid.UUID) error
}

func (s *ComponentTypeService) FindComponentTypeByID(ctx context.Context, id uuid.UUID) (*machina.ComponentType, error) {
	if s.FindComponentTypeByIDFn != nil {
		return s.FindComponentTypeByIDFn(ctx, id)
	}
	return nil, machina.NotFound("Component type not found")
}

func (s *ComponentTypeService) FindComponentTypes(ctx context.Context, filter machina.ComponentTypeFilter) ([]*machina.ComponentType, int, error) {
	if s.FindComponentTypesFn != nil {
		return s.FindComponentTypesFn(ctx, filter)
	}
	return []*machina.ComponentType{}, 0, nil
}

func (s *ComponentTypeService) CreateComponentType(ctx context.Context, ct *machina.ComponentType) error {
	if s.CreateComponentTypeFn != nil {
		return s.CreateComponentTypeFn(ctx, ct)
	}
	return nil
}

func (s *ComponentTypeService) UpdateComponentType(ctx context.Context, id uuid.UUID, upd machina.ComponentTypeUpdate) (*machina.ComponentType, error) {
	if s.UpdateComponentTypeFn != nil {
		return s.UpdateComponentTypeFn(ctx, id, upd)
	}
	return nil, machina.NotFound("Component type not found")
}

func (s *ComponentTypeService) DeleteComponentType(ctx context.Context, id uuid.UUID) error {
	if s.DeleteComponentTypeFn != nil {
		return s.DeleteComponentTypeFn(ctx, id)
	}
	return nil
}
