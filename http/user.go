package http

import (
	"log/slog"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
)

// User management endpoints. All of them are admin-only; role checks run
// at the top of each handler before any work happens.

// CreateUserRequest is the request payload for creating a user.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"omitempty,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,max=50"`
	Role      string `json:"role" validate:"required,oneof=admin user viewer"`
}

// UpdateUserRequest is the request payload for updating a user.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin user viewer"`
	Status    *string `json:"status" validate:"omitempty,oneof=active suspended"`
}

func (s *Server) handleListUsers(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := requireAdmin(c); err != nil {
		return err
	}

	filter := machina.UserFilter{Limit: defaultPageSize}
	if v := c.QueryParam("role"); v != "" {
		role := machina.Role(v)
		if !role.Valid() {
			return machina.Invalid("Invalid role filter")
		}
		filter.Role = &role
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return machina.Invalid("Invalid page size")
		}
		if limit > maxPageSize {
			limit = maxPageSize
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

	users, total, err := s.userService.FindUsers(ctx, filter)
	if err != nil {
		return err
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, newUserResponse(u))
	}

	return RespondOK(c, map[string]any{"data": resp, "total": total})
}

func (s *Server) handleCreateUser(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := requireAdmin(c); err != nil {
		return err
	}

	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user := &machina.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      machina.Role(req.Role),
	}
	if err := s.userService.CreateUser(ctx, user, req.Password); err != nil {
		return err
	}

	s.log(c).Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))

	// Welcome email is best-effort; a provider outage must not fail the create.
	if s.emailService != nil {
		name := user.FirstName
		if name == "" {
			name = user.Username
		}
		if err := s.emailService.SendWelcomeEmail(ctx, user.Email, name); err != nil {
			s.log(c).Error("sending welcome email",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return RespondCreated(c, newUserResponse(user))
}

func (s *Server) handleUpdateUser(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := requireAdmin(c); err != nil {
		return err
	}

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	upd := machina.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if req.Role != nil {
		role := machina.Role(*req.Role)
		upd.Role = &role
	}
	if req.Status != nil {
		status := machina.UserStatus(*req.Status)
		upd.Status = &status
	}

	user, err := s.userService.UpdateUser(ctx, id, upd)
	if err != nil {
		return err
	}

	return RespondOK(c, newUserResponse(user))
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	admin, err := requireAdmin(c)
	if err != nil {
		return err
	}

	id, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if id == admin.ID {
		return machina.Invalid("Cannot delete your own account")
	}

	if err := s.userService.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.log(c).Info("user deleted", slog.String("user_id", id.String()))

	return RespondNoContent(c)
}
