package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.UserService = (*UserService)(nil)

// UserService is a mock implementation of machina.UserService.
type UserService struct {
	FindUserByIDFn    func(ctx context.Context, id uuid.UUID) (*machina.User, error)
	FindUserByEmailFn func(ctx context.Context, email string) (*machina.User, error)
	FindUsersFn       func(ctx context.Context, filter machina.UserFilter) ([]*machina.User, int, error)
	CreateUserFn      func(ctx context.Context, user *machina.User, password string) error
	UpdateUserFn      func(ctx context.Context, id uuid.UUID, upd machina.UserUpdate) (*machina.User, error)
	DeleteUserFn      func(ctx context.Context, id uuid.UUID) error
	VerifyPasswordFn  func(ctx context.Context, email, password string) (*machina.User, error)
	UpdateLastLoginFn func(ctx context.Context, id uuid.UUID) error
}

func (s *UserService) FindUserByID(ctx context.Context, id uuid.UUID) (*machina.User, error) {
	if s.FindUserByIDFn != nil {
		return s.FindUserByIDFn(ctx, id)
	}
	return nil, machina.NotFound("User not found")
}

func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*machina.User, error) {
	if s.FindUserByEmailFn != nil {
		return s.FindUserByEmailFn(ctx, email)
	}
	return nil, machina.NotFound("User not found")
}

func (s *UserService) FindUsers(ctx context.Context, filter machina.UserFilter) ([]*machina.User, int, error) {
	if s.FindUsersFn != nil {
		return s.FindUsersFn(ctx, filter)
	}
	return []*machina.User{}, 0, nil
}

func (s *UserService) CreateUser(ctx context.Context, user *machina.User, password string) error {
	if s.CreateUserFn != nil {
		return s.CreateUserFn(ctx, user, password)
	}
	return nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, upd machina.UserUpdate) (*machina.User, error) {
	if s.UpdateUserFn != nil {
		return s.UpdateUserFn(ctx, id, upd)
	}
	return nil, machina.NotFound("User not found")
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if s.DeleteUserFn != nil {
		return s.DeleteUserFn(ctx, id)
	}
	return nil
}

func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (*machina.User, error) {
	if s.VerifyPasswordFn != nil {
		return s.VerifyPasswordFn(ctx, email, password)
	}
	return nil, machina.Unauthorized("Invalid email or password")
}

func (s *UserService) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	if s.UpdateLastLoginFn != nil {
		return s.UpdateLastLoginFn(ctx, id)
	}
	return nil
}
