package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/patrickmn/go-cache"
)

// Compile-time check that SessionService implements machina.SessionService.
var _ machina.SessionService = (*SessionService)(nil)

// sessionCacheTTL bounds how stale a cached session lookup can be.
// Deletions purge the cache synchronously, so staleness only affects
// expiry, which IsExpired re-checks on every hit.
const sessionCacheTTL = 5 * time.Minute

// SessionService implements machina.SessionService using PostgreSQL with
// an in-memory lookup cache in front of token reads.
type SessionService struct {
	db    *DB
	cache *cache.Cache
}

// NewSessionService creates a session service backed by db.
func NewSessionService(db *DB) *SessionService {
	return &SessionService{
		db:    db,
		cache: cache.New(sessionCacheTTL, 10*time.Minute),
	}
}

func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, duration time.Duration) (*machina.Session, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, machina.Internal("Failed to generate session token", err)
	}

	session := &machina.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(duration),
	}

	err = s.db.pool.QueryRow(ctx, `
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, session.UserID, session.Token, session.ExpiresAt).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		return nil, machina.Internal("Failed to create session", err)
	}

	return session, nil
}

func (s *SessionService) FindSessionByToken(ctx context.Context, token string) (*machina.Session, error) {
	if cached, ok := s.cache.Get(token); ok {
		session := cached.(*machina.Session)
		if session.IsExpired() {
			s.cache.Delete(token)
			return nil, machina.Unauthorized("Session has expired")
		}
		return session, nil
	}

	session := &machina.Session{}
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, user_id, token, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&session.ID, &session.UserID, &session.Token, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Session not found")
		}
		return nil, machina.Internal("Failed to fetch session", err)
	}

	if session.IsExpired() {
		return nil, machina.Unauthorized("Session has expired")
	}

	s.cache.Set(token, session, cache.DefaultExpiration)
	return session, nil
}

func (s *SessionService) FindSessionByTokenWithUser(ctx context.Context, token string) (*machina.Session, error) {
	if cached, ok := s.cache.Get(token); ok {
		session := cached.(*machina.Session)
		if session.IsExpired() {
			s.cache.Delete(token)
			return nil, machina.Unauthorized("Session has expired")
		}
		if session.User != nil {
			return session, nil
		}
	}

	session := &machina.Session{}
	user := &machina.User{}
	err := s.db.pool.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.token, s.expires_at, s.created_at,
			u.id, u.email, u.username, u.first_name, u.last_name,
			u.role, u.status, u.created_at, u.updated_at, u.last_login_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1
	`, token).Scan(
		&session.ID, &session.UserID, &session.Token, &session.ExpiresAt, &session.CreatedAt,
		&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Session not found")
		}
		return nil, machina.Internal("Failed to fetch session", err)
	}

	if session.IsExpired() {
		return nil, machina.Unauthorized("Session has expired")
	}

	session.User = user
	s.cache.Set(token, session, cache.DefaultExpiration)
	return session, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, token string) error {
	s.cache.Delete(token)

	result, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return machina.Internal("Failed to delete session", err)
	}
	if result.RowsAffected() == 0 {
		return machina.NotFound("Session not found")
	}
	return nil
}

func (s *SessionService) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	// Flush the whole cache; per-user invalidation would require a
	// reverse index that isn't worth maintaining here.
	s.cache.Flush()

	if _, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return machina.Internal("Failed to delete user sessions", err)
	}
	return nil
}

func (s *SessionService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	result, err := s.db.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, machina.Internal("Failed to clean up sessions", err)
	}
	return int(result.RowsAffected()), nil
}
