package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/avaldeso/machina"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time check that ComponentTypeService implements machina.ComponentTypeService.
var _ machina.ComponentTypeService = (*ComponentTypeService)(nil)

// ComponentTypeService implements machina.ComponentTypeService using PostgreSQL.
type ComponentTypeService struct {
	db *DB
}

func (s *ComponentTypeService) FindComponentTypeByID(ctx context.Context, id uuid.UUID) (*machina.ComponentType, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM component_types
		WHERE id = $1
	`
	ct := &machina.ComponentType{}
	err := s.db.pool.QueryRow(ctx, query, id).Scan(
		&ct.ID, &ct.Name, &ct.Description, &ct.CreatedAt, &ct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Component type not found")
		}
		return nil, machina.Internal("Failed to fetch component type", err)
	}
	return ct, nil
}

func (s *ComponentTypeService) FindComponentTypes(ctx context.Context, filter machina.ComponentTypeFilter) ([]*machina.ComponentType, int, error) {
	builder := psql.Select("id", "name", "description", "created_at", "updated_at").
		From("component_types")
	countBuilder := psql.Select("COUNT(*)").From("component_types")

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": *filter.ID})
		countBuilder = countBuilder.Where(sq.Eq{"id": *filter.ID})
	}
	if filter.Name != nil {
		builder = builder.Where("LOWER(name) = LOWER(?)", *filter.Name)
		countBuilder = countBuilder.Where("LOWER(name) = LOWER(?)", *filter.Name)
	}
	if filter.Search != nil {
		pattern := "%" + strings.TrimSpace(*filter.Search) + "%"
		builder = builder.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
		countBuilder = countBuilder.Where("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, machina.Internal("Failed to build count query", err)
	}
	var total int
	if err := s.db.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, machina.Internal("Failed to count component types", err)
	}

	builder = builder.OrderBy("name ASC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, machina.Internal("Failed to build query", err)
	}

	rows, err := s.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, machina.Internal("Failed to query component types", err)
	}
	defer rows.Close()

	var types []*machina.ComponentType
	for rows.Next() {
		ct := &machina.ComponentType{}
		if err := rows.Scan(&ct.ID, &ct.Name, &ct.Description, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
			return nil, 0, machina.Internal("Failed to scan component type", err)
		}
		types = append(types, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, machina.Internal("Failed to read component types", err)
	}

	return types, total, nil
}

func (s *ComponentTypeService) CreateComponentType(ctx context.Context, ct *machina.ComponentType) error {
	caller := machina.UserFromContext(ctx)
	if caller == nil || !caller.IsAdmin() {
		return machina.Forbidden("Only admins can manage component types")
	}
	if ct.Name == "" {
		return machina.Invalid("Component type name is required")
	}

	if ct.ID == uuid.Nil {
		ct.ID = uuid.New()
	}

	err := s.db.pool.QueryRow(ctx, `
		INSERT INTO component_types (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, ct.ID, ct.Name, ct.Description).Scan(&ct.CreatedAt, &ct.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return machina.Conflict("Component type %q already exists", ct.Name)
		}
		return machina.Internal("Failed to create component type", err)
	}

	s.db.logger.Info("component type created",
		slog.String("id", ct.ID.String()),
		slog.String("name", ct.Name))
	return nil
}

func (s *ComponentTypeService) UpdateComponentType(ctx context.Context, id uuid.UUID, upd machina.ComponentTypeUpdate) (*machina.ComponentType, error) {
	caller := machina.UserFromContext(ctx)
	if caller == nil || !caller.IsAdmin() {
		return nil, machina.Forbidden("Only admins can manage component types")
	}

	query := `
		UPDATE component_types SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, created_at, updated_at
	`
	ct := &machina.ComponentType{}
	err := s.db.pool.QueryRow(ctx, query, upd.Name, upd.Description, id).Scan(
		&ct.ID, &ct.Name, &ct.Description, &ct.CreatedAt, &ct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, machina.NotFound("Component type not found")
		}
		if isUniqueViolation(err) {
			return nil, machina.Conflict("Component type name already in use")
		}
		return nil, machina.Internal("Failed to update component type", err)
	}
	return ct, nil
}

func (s *ComponentTypeService) DeleteComponentType(ctx context.Context, id uuid.UUID) error {
	caller := machina.UserFromContext(ctx)
	if caller == nil || !caller.IsAdmin() {
		return machina.Forbidden("Only admins can manage component types")
	}

	result, err := s.db.pool.Exec(ctx, `DELETE FROM component_types WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return machina.Conflict("Component type is still referenced by components")
		}
		return machina.Internal("Failed to delete component type", err)
	}
	if result.RowsAffected() == 0 {
		return machina.NotFound("Component type not found")
	}
	return nil
}
