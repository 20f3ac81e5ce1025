package postgres

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/avaldeso/machina"
	"github.com/google/uuid"
)

// psql builds queries with PostgreSQL-style positional placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// applyOptions folds query options onto a builder.
func applyOptions(b sq.SelectBuilder, opts []ListOption) sq.SelectBuilder {
	for _, opt := range opts {
		b = opt(b)
	}
	return b
}

// ListOption composes one predicate or modifier onto a report query.
// The same options apply to both the page query and the count query so
// the total always matches the filter.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// ByOwner restricts results to reports owned by userID. Applied
// unconditionally for viewer-role callers.
func ByOwner(userID uuid.UUID) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"r.user_id": userID})
	}
}

// ByMachineType matches the machine type exactly, case-insensitively.
func ByMachineType(machineType string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where("LOWER(r.machine_type) = LOWER(?)", machineType)
	}
}

// ByClientName matches a case-insensitive substring of the client name.
func ByClientName(clientName string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.ILike{"r.client_name": "%" + clientName + "%"})
	}
}

// BySerialNumber matches a case-insensitive substring of the serial number.
func BySerialNumber(serial string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.ILike{"r.serial_number": "%" + serial + "%"})
	}
}

// ByUserName matches a case-insensitive substring of the owning user's
// full name, falling back to the username when no name is set. The two
// branches are grouped so the OR never swallows neighboring predicates.
func ByUserName(name string) ListOption {
	pattern := "%" + name + "%"
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Or{
			sq.Expr("TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')) ILIKE ?", pattern),
			sq.ILike{"u.username": pattern},
		})
	}
}

// ByStatus matches the workflow status exactly.
func ByStatus(status machina.ReportStatus) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"r.status": status})
	}
}

// ByClosure matches the closure flag exactly.
func ByClosure(closure machina.ClosureState) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"r.closure": closure})
	}
}

// WithPage applies 1-indexed pagination.
func WithPage(page, limit int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if limit <= 0 {
			return b
		}
		if page < 1 {
			page = 1
		}
		// uint64 arithmetic so a huge page number cannot overflow int.
		return b.Limit(uint64(limit)).Offset(uint64(page-1) * uint64(limit))
	}
}

// WithDefaultSort orders reports newest first. The id tie-break keeps
// pagination stable when timestamps collide at sub-second granularity.
func WithDefaultSort() ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.OrderBy("r.created_at DESC", "r.id DESC")
	}
}

// reportListOptions translates a domain filter into query options.
// The caller's role decides whether an owner predicate is forced in.
func reportListOptions(filter machina.ReportFilter, caller *machina.User) []ListOption {
	var opts []ListOption
	if caller != nil && caller.Role == machina.RoleViewer {
		opts = append(opts, ByOwner(caller.ID))
	}
	if filter.MachineType != nil {
		opts = append(opts, ByMachineType(*filter.MachineType))
	}
	if filter.ClientName != nil {
		opts = append(opts, ByClientName(*filter.ClientName))
	}
	if filter.SerialNumber != nil {
		opts = append(opts, BySerialNumber(*filter.SerialNumber))
	}
	if filter.UserName != nil {
		opts = append(opts, ByUserName(*filter.UserName))
	}
	if filter.Status != nil {
		opts = append(opts, ByStatus(*filter.Status))
	}
	if filter.Closure != nil {
		opts = append(opts, ByClosure(*filter.Closure))
	}
	return opts
}
