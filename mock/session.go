package mock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avaldeso/machina"
)

// Compile-time interface check
var _ machina.SessionService = (*SessionService)(nil)

// SessionService is a mock implementation of machina.SessionService.
type SessionService struct {
	CreateSessionFn              func(ctx context.Context, userID uuid.UUID, duration time.Duration) (*machina.Session, error)
	FindSessionByTokenFn         func(ctx context.Context, token string) (*machina.Session, error)
	FindSessionByTokenWithUserFn func(ctx context.Context, token string) (*machina.Session, error)
	DeleteSessionFn              func(ctx context.Context, token string) error
	DeleteUserSessionsFn         func(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredSessionsFn     func(ctx context.Context) (int, error)
}

func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*machina.Session, error) {
	if s.CreateSessionFn != nil {
		return s.CreateSessionFn(ctx, userID, duration)
	}
	return &machina.Session{
		UserID:    userID,
		Token:     "mock-token",
		ExpiresAt: time.Now().Add(duration),
	}, nil
}

func (s *SessionService) FindSessionByToken(ctx context.Context, token string) (*machina.Session, error) {
	if s.FindSessionByTokenFn != nil {
		return s.FindSessionByTokenFn(ctx, token)
	}
	return nil, machina.NotFound("Session not found")
}

func (s *SessionService) FindSessionByTokenWithUser(ctx context.Context, token string) (*machina.Session, error) {
	if s.FindSessionByTokenWithUserFn != nil {
		return s.FindSessionByTokenWithUserFn(ctx, token)
	}
	return nil, machina.NotFound("Session not found")
}

func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	if s.DeleteSessionFn != nil {
		return s.DeleteSessionFn(ctx, token)
	}
	return nil
}

func (s *SessionService) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	if s.DeleteUserSessionsFn != nil {
		return s.DeleteUserSessionsFn(ctx, userID)
	}
	return nil
}

func (s *SessionService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	if s.CleanupExpiredSessionsFn != nil {
		return s.CleanupExpiredSessionsFn(ctx)
	}
	return 0, nil
}
