package http

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
)

// CreateComponentTypeRequest is the request payload for creating a component type.
type CreateComponentTypeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateComponentTypeRequest is the request payload for updating a component type.
type UpdateComponentTypeRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (s *Server) handleListComponentTypes(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	filter := machina.ComponentTypeFilter{}
	if v := c.QueryParam("search"); v != "" {
		filter.Search = &v
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return machina.Invalid("Invalid page size")
		}
		filter.Limit = limit
	}
	if v := c.QueryParam("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return machina.Invalid("Invalid offset")
		}
		filter.Offset = offset
	}

	types, total, err := s.componentTypeService.FindComponentTypes(ctx, filter)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{"data": types, "total": total})
}

func (s *Server) handleGetComponentType(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	ct, err := s.componentTypeService.FindComponentTypeByID(ctx, id)
	if err != nil {
		return err
	}

	return RespondOK(c, ct)
}

func (s *Server) handleCreateComponentType(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req CreateComponentTypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ct := &machina.ComponentType{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.componentTypeService.CreateComponentType(ctx, ct); err != nil {
		return err
	}

	s.log(c).Info("component type created", slog.String("component_type_id", ct.ID.String()))

	return RespondCreated(c, ct)
}

func (s *Server) handleUpdateComponentType(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateComponentTypeRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ct, err := s.componentTypeService.UpdateComponentType(ctx, id, machina.ComponentTypeUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return RespondOK(c, ct)
}

func (s *Server) handleDeleteComponentType(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.componentTypeService.DeleteComponentType(ctx, id); err != nil {
		return err
	}

	return RespondNoContent(c)
}
