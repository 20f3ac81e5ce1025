package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// pgErrCode extracts the PostgreSQL error code from err, or "" when the
// error did not come from the database.
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation reports a unique-constraint hit, e.g. a duplicate
// user email or component-type name.
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == "23505"
}

// isForeignKeyViolation reports a foreign-key violation, e.g. a component
// referencing a catalog entry that does not exist.
func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == "23503"
}
