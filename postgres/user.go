package postgres

import (
	"context"
	"errors"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/avaldeso/machina"
	"github.com/avaldeso/machina/internal/auth"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that UserService implements machina.UserService.
var _ machina.UserService = (*UserService)(nil)

// UserService implements machina.UserService using PostgreSQL.
type UserService struct {
	db *DB
}

const userColumns = `id, email, username, first_name, last_name, role, status,
	created_at, updated_at, last_login_at`

func (s *UserService) FindUserByID(ctx context.Context, id uuid.UUID) (*machina.User, error) {
	return s.findUserBy(ctx, "id = $1", id)
}

func (s *UserService) FindUserByEmail(ctx context.Context, email string) (*machina.User, error) {
	return s.findUserBy(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *UserService) findUserBy(ctx context.Context, where string, arg any) (*machina.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user := &machina.User{}
	err := s.db.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("User not found")
		}
		return nil, machina.Internal("Failed to fetch user", err)
	}
	return user, nil
}

func (s *UserService) FindUsers(ctx context.Context, filter machina.UserFilter) ([]*machina.User, int, error) {
	builder := psql.Select(userColumns).From("users")
	countBuilder := psql.Select("COUNT(*)").From("users")

	apply := func(b sq.SelectBuilder) sq.SelectBuilder {
		if filter.ID != nil {
			b = b.Where(sq.Eq{"id": *filter.ID})
		}
		if filter.Email != nil {
			b = b.Where("LOWER(email) = LOWER(?)", *filter.Email)
		}
		if filter.Username != nil {
			b = b.Where("LOWER(username) = LOWER(?)", *filter.Username)
		}
		if filter.Role != nil {
			b = b.Where(sq.Eq{"role": *filter.Role})
		}
		if filter.Status != nil {
			b = b.Where(sq.Eq{"status": *filter.Status})
		}
		return b
	}
	builder = apply(builder)
	countBuilder = apply(countBuilder)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, machina.Internal("Failed to build count query", err)
	}
	var total int
	if err := s.db.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, machina.Internal("Failed to count users", err)
	}

	builder = builder.OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, machina.Internal("Failed to build user query", err)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, machina.Internal("Failed to query users", err)
	}
	defer rows.Close()

	var users []*machina.User
	for rows.Next() {
		user := &machina.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Username,
			&user.FirstName,
			&user.LastName,
			&user.Role,
			&user.Status,
			&user.CreatedAt,
			&user.UpdatedAt,
			&user.LastLoginAt,
		); err != nil {
			return nil, 0, machina.Internal("Failed to scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, machina.Internal("Failed to read users", err)
	}

	return users, total, nil
}

func (s *UserService) CreateUser(ctx context.Context, user *machina.User, password string) error {
	if user.Email == "" || user.Username == "" {
		return machina.Invalid("Email and username are required")
	}
	if !user.Role.Valid() {
		return machina.Invalid("Invalid role: %s", user.Role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return machina.Invalid("Password cannot be empty")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = machina.UserStatusActive
	}

	err = s.db.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, username, first_name, last_name, role, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, user.ID, user.Email, user.Username, user.FirstName, user.LastName,
		user.Role, user.Status, hash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return machina.Conflict("Email or username already in use")
		}
		return machina.Internal("Failed to create user", err)
	}

	s.db.logger.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uuid.UUID, upd machina.UserUpdate) (*machina.User, error) {
	query := `
		UPDATE users SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			role = COALESCE($3, role),
			status = COALESCE($4, status),
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns + `
	`
	user := &machina.User{}
	err := s.db.pool.QueryRow(ctx, query,
		upd.FirstName, upd.LastName, upd.Role, upd.Status, id,
	).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("User not found")
		}
		return nil, machina.Internal("Failed to update user", err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.pool.Exec(ctx,
		`UPDATE users SET status = $1, updated_at = NOW() WHERE id = $2`,
		machina.UserStatusDeleted, id,
	)
	if err != nil {
		return machina.Internal("Failed to delete user", err)
	}
	if result.RowsAffected() == 0 {
		return machina.NotFound("User not found")
	}
	return nil
}

func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (*machina.User, error) {
	query := `SELECT ` + userColumns + `, password_hash FROM users WHERE LOWER(email) = LOWER($1)`
	user := &machina.User{}
	var hash string
	err := s.db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.LastLoginAt,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.Unauthorized("Invalid email or password")
		}
		return nil, machina.Internal("Failed to fetch user", err)
	}

	if err := auth.VerifyPassword(password, hash); err != nil {
		return nil, machina.Unauthorized("Invalid email or password")
	}
	if !user.IsActive() {
		return nil, machina.Forbidden("Account is not active")
	}
	return user, nil
}

func (s *UserService) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.pool.Exec(ctx,
		`UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return machina.Internal("Failed to update last login", err)
	}
	return nil
}
