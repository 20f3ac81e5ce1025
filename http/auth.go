package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avaldeso/machina"
)

// LoginRequest is the request payload for user login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

// LoginResponse is the response payload for user login. The token is
// presented as a bearer token on subsequent requests.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
}

func newUserResponse(user *machina.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		Status:    string(user.Status),
	}
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	// Verify password
	user, err := s.userService.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	// Create session
	session, err := s.sessionService.CreateSession(ctx, user.ID, s.SessionDuration)
	if err != nil {
		s.log(c).Error("failed to create session", slog.String("error", err.Error()))
		return machina.Internal("Login failed", err)
	}

	// Update last login
	_ = s.userService.UpdateLastLogin(ctx, user.ID)

	s.log(c).Info("user logged in", slog.String("user_id", user.ID.String()))

	return RespondOK(c, LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      newUserResponse(user),
	})
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	session := machina.SessionFromContext(ctx)
	if session == nil {
		return machina.Unauthorized("Not logged in")
	}

	if err := s.sessionService.DeleteSession(ctx, session.Token); err != nil && !machina.IsErrorCode(err, machina.ENOTFOUND) {
		s.log(c).Error("failed to delete session", slog.String("error", err.Error()))
	}

	s.log(c).Info("user logged out")

	return RespondSuccess(c, "logged out successfully")
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	return RespondOK(c, newUserResponse(user))
}
